package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	godotenv "github.com/joho/godotenv"

	"github.com/mahirjain10/image-dimension-converter/internal/naming"
	"github.com/mahirjain10/image-dimension-converter/internal/types"
)

// Environment variables read by InitializeEnvs.
const (
	EnvProfile           = "RESIZER_PROFILE"
	EnvOutputDir         = "RESIZER_OUTPUT_DIR"
	EnvSizes             = "RESIZER_SIZES"
	EnvFormat            = "RESIZER_FORMAT"
	EnvPattern           = "RESIZER_PATTERN"
	EnvStartNumber       = "RESIZER_START_NUMBER"
	EnvIncludeDimensions = "RESIZER_INCLUDE_DIMENSIONS"
	EnvPreviewCache      = "RESIZER_PREVIEW_CACHE"
	EnvWatchDebounceMs   = "RESIZER_WATCH_DEBOUNCE_MS"
)

// DefaultSizes is the size list used when nothing else is configured.
var DefaultSizes = []int{16, 32, 48, 64, 128, 256, 512}

type Config struct {
	OutputDir         string `yaml:"output_dir"`
	Sizes             []int  `yaml:"sizes"`
	Format            string `yaml:"format"`
	NamingPattern     string `yaml:"naming_pattern"`
	StartNumber       int    `yaml:"start_number"`
	IncludeDimensions bool   `yaml:"include_dimensions"`
	PreviewCacheSize  int    `yaml:"preview_cache_size"`
	WatchDebounceMs   int    `yaml:"watch_debounce_ms"`
}

func NewConfig() *Config {
	return &Config{
		OutputDir:         "resized_images",
		Sizes:             append([]int(nil), DefaultSizes...),
		StartNumber:       1,
		IncludeDimensions: true,
		PreviewCacheSize:  10,
		WatchDebounceMs:   500,
	}
}

// InitializeEnvs builds the configuration from defaults, the optional YAML
// profile and environment variables, in increasing order of precedence.
// Dotenv files are loaded first according to APP_ENV; a missing file is not
// an error.
func InitializeEnvs(profilePath string) (*Config, error) {
	loadDotenv()

	if profilePath == "" {
		profilePath = os.Getenv(EnvProfile)
	}

	cfg := NewConfig()
	if profilePath != "" {
		var err error
		if cfg, err = Load(profilePath); err != nil {
			return nil, err
		}
		log.Printf("Loaded profile %s", profilePath)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func loadDotenv() {
	switch env := os.Getenv("APP_ENV"); env {
	case "":
		if err := godotenv.Overload(".env"); err == nil {
			log.Println("Loaded .env")
		}
	default:
		fname := ".env." + env
		if err := godotenv.Overload(fname); err == nil {
			log.Printf("Loaded %s", fname)
		} else if err := godotenv.Overload(".env"); err == nil {
			log.Println("Loaded .env")
		} else {
			log.Printf("No %s or .env found, using system environment variables", fname)
		}
	}
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvOutputDir); ok {
		c.OutputDir = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvSizes); ok {
		sizes, err := ParseSizes(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSizes, err)
		}
		c.Sizes = sizes
	}
	if v, ok := os.LookupEnv(EnvFormat); ok {
		c.Format = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvPattern); ok {
		c.NamingPattern = v
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{EnvStartNumber, &c.StartNumber},
		{EnvPreviewCache, &c.PreviewCacheSize},
		{EnvWatchDebounceMs, &c.WatchDebounceMs},
	}
	for _, e := range ints {
		v, ok := os.LookupEnv(e.name)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", e.name, err)
		}
		*e.dst = n
	}

	if v, ok := os.LookupEnv(EnvIncludeDimensions); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvIncludeDimensions, err)
		}
		c.IncludeDimensions = b
	}
	return nil
}

// Validate checks the settings that every command relies on
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	for _, s := range c.Sizes {
		if s <= 0 {
			return fmt.Errorf("sizes must be positive, got %d", s)
		}
	}
	if _, err := types.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.NamingPattern != "" {
		if err := naming.Validate(c.NamingPattern); err != nil {
			return fmt.Errorf("naming_pattern: %w", err)
		}
	}
	if c.PreviewCacheSize < 1 {
		return fmt.Errorf("preview_cache_size must be at least 1")
	}
	if c.WatchDebounceMs < 0 {
		return fmt.Errorf("watch_debounce_ms must not be negative")
	}
	return nil
}

// ResizeRequest turns the configuration into a request for inputPath.
func (c *Config) ResizeRequest(inputPath string) (types.ResizeRequest, error) {
	format, err := types.ParseFormat(c.Format)
	if err != nil {
		return types.ResizeRequest{}, err
	}
	return types.ResizeRequest{
		InputPath:         inputPath,
		OutputDir:         c.OutputDir,
		Sizes:             append([]int(nil), c.Sizes...),
		NamingPattern:     c.NamingPattern,
		StartNumber:       c.StartNumber,
		IncludeDimensions: c.IncludeDimensions,
		Format:            format,
	}, nil
}

// ParseSizes reads a comma separated size list such as "16, 32,64".
// Empty items are skipped, so "" yields an empty list.
func ParseSizes(s string) ([]int, error) {
	sizes := []int{}
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		n, err := strconv.Atoi(item)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid size %q", item)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
