// Package pipeline turns source content into the self-contained HTML page that
// the browser renders.
//
// It has two halves:
//   - the Transformer: front matter, diagram expansion, Markdown to HTML via
//     Goldmark, heading anchors, [TOC] expansion, relative path rewriting
//   - the Compositor: typed template skeletons, mode and user CSS, watermark,
//     code theme CSS, script stripping
//
// Browser work (navigation, capture) lives in the root pagepress package.
package pipeline
