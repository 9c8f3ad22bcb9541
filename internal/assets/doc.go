// Package assets provides the HTML page templates used to compose documents
// and cards.
//
// # Loader Architecture
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - built-in templates (go:embed)
//	    ├── FilesystemLoader  - templates from a directory on disk
//	    └── AssetResolver     - custom first, embedded fallback
//
// # Directory Structure
//
//	{basePath}/
//	└── templates/
//	    └── {name}.html
//
// A template is plain HTML with {{ slot }} tokens (title, body, styles,
// watermark, modeClass). Slot validation happens when the pipeline parses it.
//
// # Security
//
// Template names are validated before any path is built, and FilesystemLoader
// resolves symlinks and verifies paths stay within basePath.
package assets
