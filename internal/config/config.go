package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the cinematch configuration.
type Config struct {
	Catalog   CatalogConfig   `yaml:"catalog"`
	Recommend RecommendConfig `yaml:"recommend"`
	Output    OutputConfig    `yaml:"output"`
	Log       LogConfig       `yaml:"log"`
}

// CatalogConfig describes where the movie catalog comes from and how its
// columns become features.
type CatalogConfig struct {
	Path        string             `yaml:"path"`         // CSV or SQLite file (empty = data dir default)
	Format      string             `yaml:"format"`       // auto, csv, or sqlite
	Table       string             `yaml:"table"`        // SQLite table name
	TitleColumn string             `yaml:"title_column"` // Column holding the movie title
	DropColumns []string           `yaml:"drop_columns"` // Non-feature columns to ignore
	Continuous  []string           `yaml:"continuous"`   // Continuous features (empty = detect from data)
	Scale       map[string]float64 `yaml:"scale"`        // Feature -> target max after normalization
}

// RecommendConfig holds request defaults.
type RecommendConfig struct {
	DefaultN int    `yaml:"default_n"` // Results per request
	Chooser  string `yaml:"chooser"`   // prompt or picker
}

// OutputConfig controls presentation.
type OutputConfig struct {
	Format        string `yaml:"format"`          // text or json
	Color         string `yaml:"color"`           // auto, always, or never
	MaxTitleWidth int    `yaml:"max_title_width"` // 0 = terminal width
}

// LogConfig controls diagnostics.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
	File   string `yaml:"file"`   // Log file path (empty = stderr)
}

// DefaultDropColumns are the identifier and free-text columns of the IMDb
// export that carry no distance information.
var DefaultDropColumns = []string{"fn", "tid", "wordsInTitle", "url", "type", "nrOfPhotos", "nrOfGenre"}

// DefaultContinuous are the numeric IMDb columns that get rescaled. The
// remaining feature columns are genre indicators.
var DefaultContinuous = []string{
	"ratingCount", "imdbRating", "duration", "year",
	"nrOfWins", "nrOfNominations", "nrOfNewsArticles", "nrOfUserReviews",
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:        "imdb.csv",
			Format:      "auto",
			Table:       "movies",
			TitleColumn: "title",
			DropColumns: append([]string(nil), DefaultDropColumns...),
			Continuous:  append([]string(nil), DefaultContinuous...),
			Scale:       map[string]float64{},
		},
		Recommend: RecommendConfig{
			DefaultN: 3,
			Chooser:  "prompt",
		},
		Output: OutputConfig{
			Format:        "text",
			Color:         "auto",
			MaxTitleWidth: 0,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
			File:   "",
		},
	}
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from path and applies environment
// overrides. A missing file yields the defaults.
func LoadFromFile(path string) (*Config, error) {
	cfg, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// ReadFile loads configuration from path without environment overrides,
// for callers that write the result back to disk.
func ReadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if file doesn't exist
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves the configuration to path.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by key (e.g., "recommend.default_n").
// List values are joined with commas, scale factors as name=value pairs.
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "catalog":
		return c.getCatalogField(field)
	case "recommend":
		return c.getRecommendField(field)
	case "output":
		return c.getOutputField(field)
	case "log":
		return c.getLogField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by key. The value is validated.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "catalog":
		return c.setCatalogField(field, value)
	case "recommend":
		return c.setRecommendField(field, value)
	case "output":
		return c.setOutputField(field, value)
	case "log":
		return c.setLogField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getCatalogField(field string) (string, error) {
	switch field {
	case "path":
		return c.Catalog.Path, nil
	case "format":
		return c.Catalog.Format, nil
	case "table":
		return c.Catalog.Table, nil
	case "title_column":
		return c.Catalog.TitleColumn, nil
	case "drop_columns":
		return strings.Join(c.Catalog.DropColumns, ","), nil
	case "continuous":
		return strings.Join(c.Catalog.Continuous, ","), nil
	case "scale":
		return formatScale(c.Catalog.Scale), nil
	default:
		return "", fmt.Errorf("unknown field: catalog.%s", field)
	}
}

func (c *Config) setCatalogField(field, value string) error {
	switch field {
	case "path":
		c.Catalog.Path = value
	case "format":
		if !isValidCatalogFormat(value) {
			return fmt.Errorf("invalid format: %s (must be auto, csv, or sqlite)", value)
		}
		c.Catalog.Format = value
	case "table":
		if value == "" {
			return errors.New("invalid table: must not be empty")
		}
		c.Catalog.Table = value
	case "title_column":
		if value == "" {
			return errors.New("invalid title_column: must not be empty")
		}
		c.Catalog.TitleColumn = value
	case "drop_columns":
		c.Catalog.DropColumns = splitList(value)
	case "continuous":
		c.Catalog.Continuous = splitList(value)
	case "scale":
		scale, err := ParseScale(value)
		if err != nil {
			return err
		}
		c.Catalog.Scale = scale
	default:
		return fmt.Errorf("unknown field: catalog.%s", field)
	}
	return nil
}

func (c *Config) getRecommendField(field string) (string, error) {
	switch field {
	case "default_n":
		return strconv.Itoa(c.Recommend.DefaultN), nil
	case "chooser":
		return c.Recommend.Chooser, nil
	default:
		return "", fmt.Errorf("unknown field: recommend.%s", field)
	}
}

func (c *Config) setRecommendField(field, value string) error {
	switch field {
	case "default_n":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for default_n: %w", err)
		}
		if v < 1 {
			return fmt.Errorf("invalid default_n: must be at least 1")
		}
		c.Recommend.DefaultN = v
	case "chooser":
		if !isValidChooser(value) {
			return fmt.Errorf("invalid chooser: %s (must be prompt or picker)", value)
		}
		c.Recommend.Chooser = value
	default:
		return fmt.Errorf("unknown field: recommend.%s", field)
	}
	return nil
}

func (c *Config) getOutputField(field string) (string, error) {
	switch field {
	case "format":
		return c.Output.Format, nil
	case "color":
		return c.Output.Color, nil
	case "max_title_width":
		return strconv.Itoa(c.Output.MaxTitleWidth), nil
	default:
		return "", fmt.Errorf("unknown field: output.%s", field)
	}
}

func (c *Config) setOutputField(field, value string) error {
	switch field {
	case "format":
		if !isValidOutputFormat(value) {
			return fmt.Errorf("invalid format: %s (must be text or json)", value)
		}
		c.Output.Format = value
	case "color":
		if !isValidColorMode(value) {
			return fmt.Errorf("invalid color: %s (must be auto, always, or never)", value)
		}
		c.Output.Color = value
	case "max_title_width":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for max_title_width: %w", err)
		}
		if v < 0 {
			return fmt.Errorf("invalid max_title_width: must be non-negative")
		}
		c.Output.MaxTitleWidth = v
	default:
		return fmt.Errorf("unknown field: output.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "format":
		return c.Log.Format, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "format":
		if !isValidOutputFormat(value) {
			return fmt.Errorf("invalid format: %s (must be text or json)", value)
		}
		c.Log.Format = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !isValidCatalogFormat(c.Catalog.Format) {
		return fmt.Errorf("catalog.format must be auto, csv, or sqlite (got: %s)", c.Catalog.Format)
	}

	if c.Catalog.TitleColumn == "" {
		return errors.New("catalog.title_column must not be empty")
	}

	for name, s := range c.Catalog.Scale {
		if !validScale(s) {
			return fmt.Errorf("catalog.scale.%s must be a finite number > 0 (got: %v)", name, s)
		}
	}

	if c.Recommend.DefaultN < 1 {
		return errors.New("recommend.default_n must be >= 1")
	}

	if !isValidChooser(c.Recommend.Chooser) {
		return fmt.Errorf("recommend.chooser must be prompt or picker (got: %s)", c.Recommend.Chooser)
	}

	if !isValidOutputFormat(c.Output.Format) {
		return fmt.Errorf("output.format must be text or json (got: %s)", c.Output.Format)
	}

	if !isValidColorMode(c.Output.Color) {
		return fmt.Errorf("output.color must be auto, always, or never (got: %s)", c.Output.Color)
	}

	if c.Output.MaxTitleWidth < 0 {
		return errors.New("output.max_title_width must be >= 0")
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	if !isValidOutputFormat(c.Log.Format) {
		return fmt.Errorf("log.format must be text or json (got: %s)", c.Log.Format)
	}

	return nil
}

func isValidCatalogFormat(f string) bool {
	switch f {
	case "auto", "csv", "sqlite":
		return true
	default:
		return false
	}
}

func isValidChooser(ch string) bool {
	switch ch {
	case "prompt", "picker":
		return true
	default:
		return false
	}
}

func isValidOutputFormat(f string) bool {
	switch f {
	case "text", "json":
		return true
	default:
		return false
	}
}

func isValidColorMode(m string) bool {
	switch m {
	case "auto", "always", "never":
		return true
	default:
		return false
	}
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CINEMATCH_CATALOG"); v != "" {
		c.Catalog.Path = v
	}
	if v := os.Getenv("CINEMATCH_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("CINEMATCH_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("CINEMATCH_CHOOSER"); v != "" {
		if isValidChooser(v) {
			c.Recommend.Chooser = v
		}
	}
}

// ListKeys returns the user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"catalog.path",
		"catalog.format",
		"catalog.table",
		"catalog.title_column",
		"catalog.drop_columns",
		"catalog.continuous",
		"catalog.scale",
		"recommend.default_n",
		"recommend.chooser",
		"output.format",
		"output.color",
		"output.max_title_width",
		"log.level",
		"log.format",
		"log.file",
	}
}

// ParseScale parses "name=factor,name=factor" into a scale map. An empty
// string yields an empty map.
func ParseScale(s string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, part := range splitList(s) {
		name, raw, ok := strings.Cut(part, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid scale entry %q (want name=factor)", part)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid scale factor for %s: %w", name, err)
		}
		if !validScale(v) {
			return nil, fmt.Errorf("invalid scale factor for %s: must be a finite number > 0", name)
		}
		out[name] = v
	}
	return out, nil
}

// validScale reports whether s is finite and positive. NaN fails s > 0.
func validScale(s float64) bool {
	return s > 0 && !math.IsInf(s, 0)
}

func formatScale(scale map[string]float64) string {
	names := make([]string, 0, len(scale))
	for name := range scale {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + "=" + strconv.FormatFloat(scale[name], 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
