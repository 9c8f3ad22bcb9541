// Package config loads pagepress configuration files.
//
// Files are YAML (.yaml, .yml) or TOML (.toml). Both formats are decoded
// strictly: an unknown key is an error, not a silent no-op.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/alnah/go-pagepress/internal/yamlutil"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound  = errors.New("config file not found")
	ErrEmptyConfigName = errors.New("config name cannot be empty")
	ErrConfigParse     = errors.New("failed to parse config")
	ErrConfigInvalid   = errors.New("invalid config")
)

// appDir is the directory under os.UserConfigDir searched for named configs.
const appDir = "pagepress"

// extensions are tried in order when resolving a config name.
var extensions = []string{".yaml", ".yml", ".toml"}

// Config holds the settings a config file may provide.
// Zero values mean "not set": the caller's defaults apply.
type Config struct {
	Template   string           `yaml:"template" toml:"template" validate:"omitempty,max=64"`
	AssetPath  string           `yaml:"assetPath" toml:"assetPath"`
	Engine     string           `yaml:"engine" toml:"engine" validate:"omitempty,oneof=rod chromedp"`
	Safe       bool             `yaml:"safe" toml:"safe"`
	Capture    CaptureConfig    `yaml:"capture" toml:"capture"`
	Navigation NavigationConfig `yaml:"navigation" toml:"navigation"`
	PDF        PDFConfig        `yaml:"pdf" toml:"pdf"`
	Style      StyleConfig      `yaml:"style" toml:"style"`
	Diagrams   DiagramsConfig   `yaml:"diagrams" toml:"diagrams"`
	Output     OutputConfig     `yaml:"output" toml:"output"`
}

// CaptureConfig selects the capture plan for images.
type CaptureConfig struct {
	Preset            string  `yaml:"preset" toml:"preset" validate:"omitempty,max=32"`
	Mode              string  `yaml:"mode" toml:"mode" validate:"omitempty,oneof=fixed auto measure"`
	DeviceScaleFactor float64 `yaml:"deviceScaleFactor" toml:"deviceScaleFactor" validate:"gte=0,lte=4"`
}

// NavigationConfig controls page loading.
type NavigationConfig struct {
	WaitUntil    string   `yaml:"waitUntil" toml:"waitUntil" validate:"omitempty,oneof=load domcontentloaded networkidle"`
	TimeoutMs    int      `yaml:"timeoutMs" toml:"timeoutMs" validate:"gte=0"`
	AllowNet     []string `yaml:"allowNet" toml:"allowNet" validate:"dive,url"`
	AllowScripts bool     `yaml:"allowScripts" toml:"allowScripts"`
}

// PDFConfig holds print settings.
type PDFConfig struct {
	Format            string  `yaml:"format" toml:"format" validate:"omitempty,oneof=a4 letter legal a3 a5 tabloid"`
	Margin            string  `yaml:"margin" toml:"margin" validate:"omitempty,max=32"`
	Scale             float64 `yaml:"scale" toml:"scale" validate:"omitempty,gte=0.1,lte=2"`
	PageRanges        string  `yaml:"pageRanges" toml:"pageRanges" validate:"omitempty,max=64"`
	Landscape         bool    `yaml:"landscape" toml:"landscape"`
	PreferCSSPageSize *bool   `yaml:"preferCSSPageSize" toml:"preferCSSPageSize"`
}

// StyleConfig holds user styling.
type StyleConfig struct {
	CSS       string `yaml:"css" toml:"css"` // path to a CSS file
	Watermark string `yaml:"watermark" toml:"watermark" validate:"max=50"`
}

// DiagramsConfig controls diagram expansion.
type DiagramsConfig struct {
	Disabled   bool   `yaml:"disabled" toml:"disabled"`
	Theme      string `yaml:"theme" toml:"theme" validate:"omitempty,oneof=default neutral dark forest base"`
	MermaidCLI string `yaml:"mermaidCli" toml:"mermaidCli"`
}

// OutputConfig controls side outputs.
type OutputConfig struct {
	KeepHTML *bool `yaml:"keepHtml" toml:"keepHtml"`
}

// validate is shared; validator.Validate caches struct metadata and is safe
// for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report yaml key names so messages match what users wrote.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field values against their declared rules.
// Called by LoadConfig, but available to callers that build a Config by hand.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", ErrConfigInvalid, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return fmt.Errorf("%w: %s", ErrConfigInvalid, strings.Join(msgs, "; "))
}

// describeFieldError renders e.g. "navigation.waitUntil: must be one of [load domcontentloaded networkidle], got \"idle\"".
func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "oneof":
		return fmt.Sprintf("%s: must be one of [%s], got %q", field, fe.Param(), fmt.Sprint(fe.Value()))
	case "url":
		return fmt.Sprintf("%s: not an absolute URL: %q", field, fmt.Sprint(fe.Value()))
	case "max":
		return fmt.Sprintf("%s: exceeds maximum length %s", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s: out of range (%s %s), got %v", field, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s: failed %q", field, fe.Tag())
	}
}

// LoadConfig loads configuration from a file path or config name.
// If nameOrPath contains a path separator or a known extension, it is read
// directly. Otherwise it is searched in the current directory, then in the
// user config directory. A missing file is an error; there is no fallback.
func LoadConfig(nameOrPath string) (*Config, error) {
	if nameOrPath == "" {
		return nil, ErrEmptyConfigName
	}

	configPath := nameOrPath
	if !isFilePath(nameOrPath) {
		var err error
		configPath, err = resolveConfigPath(nameOrPath)
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, configPath)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg, err := decode(configPath, data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode picks the format from the file extension. Unknown extensions are
// read as YAML.
func decode(path string, data []byte) (*Config, error) {
	var cfg Config

	if strings.EqualFold(filepath.Ext(path), ".toml") {
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, fmt.Errorf("%w: unknown keys: %s", ErrConfigParse, strings.Join(keys, ", "))
		}
		return &cfg, nil
	}

	if err := yamlutil.UnmarshalStrict(data, &cfg); err != nil {
		if errors.Is(err, yamlutil.ErrNilData) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}
	return &cfg, nil
}

// isFilePath returns true if the string looks like a file path rather than a
// config name.
func isFilePath(s string) bool {
	if strings.ContainsAny(s, `/\`) {
		return true
	}
	ext := strings.ToLower(filepath.Ext(s))
	for _, e := range extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// resolveConfigPath searches for name+ext in the current directory, then in
// {UserConfigDir}/pagepress.
func resolveConfigPath(name string) (string, error) {
	dirs := []string{""}
	if userDir, err := os.UserConfigDir(); err == nil {
		dirs = append(dirs, filepath.Join(userDir, appDir))
	}

	tried := make([]string, 0, len(dirs)*len(extensions))
	for _, dir := range dirs {
		for _, ext := range extensions {
			candidate := filepath.Join(dir, name+ext)
			if fileExists(candidate) {
				return candidate, nil
			}
			tried = append(tried, candidate)
		}
	}

	return "", fmt.Errorf("%w: tried %s", ErrConfigNotFound, strings.Join(tried, ", "))
}

// fileExists returns true if the path exists and is a regular file.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
