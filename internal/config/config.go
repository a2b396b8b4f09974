// Application configuration: defaults, TOML file, .env and environment
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"pixel-filter-engine/internal/algorithms"
	"pixel-filter-engine/internal/core"
)

type Config struct {
	Log     LogConfig    `toml:"log"`
	Filters FilterConfig `toml:"filters"`
	Server  ServerConfig `toml:"server"`
}

type LogConfig struct {
	Level  string `toml:"level" validate:"oneof=trace debug info warn error"`
	Format string `toml:"format" validate:"oneof=text json"`
}

// FilterConfig carries the constants that differ between deployments.
type FilterConfig struct {
	BrightnessFactor float64 `toml:"brightness_factor" validate:"gt=0,lte=10"`
	ContrastFactor   float64 `toml:"contrast_factor" validate:"gt=0,lte=10"`
	BlurRadius       int     `toml:"blur_radius" validate:"gte=1,lte=25"`
	Strict           bool    `toml:"strict"`
}

type ServerConfig struct {
	Port           string        `toml:"port" validate:"required,numeric"`
	Mode           string        `toml:"mode" validate:"gin_mode"`
	AllowedOrigins []string      `toml:"allowed_origins" validate:"min=1,dive,required"`
	RateLimit      float64       `toml:"rate_limit" validate:"gte=0"` // requests per second per IP, 0 disables
	MaxUploadMB    int64         `toml:"max_upload_mb" validate:"gte=1,lte=256"`
	RequestTimeout time.Duration `toml:"request_timeout" validate:"gte=1s"`
}

var validate = validator.New()

func init() {
	validate.RegisterValidation("gin_mode", validateGinMode)
}

func validateGinMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "release", "test":
		return true
	}
	return false
}

func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Filters: FilterConfig{
			BrightnessFactor: algorithms.DefaultBrightnessFactor,
			ContrastFactor:   algorithms.DefaultContrastFactor,
			BlurRadius:       algorithms.DefaultBlurRadius,
		},
		Server: ServerConfig{
			Port:           "8080",
			Mode:           "release",
			AllowedOrigins: []string{"*"},
			RateLimit:      25,
			MaxUploadMB:    15,
			RequestTimeout: 30 * time.Second,
		},
	}
}

// Load layers defaults, the optional TOML file at path, .env files and the
// process environment, then validates the result.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv("PORT"); ok {
		c.Server.Port = v
	}
	if v, ok := os.LookupEnv("GIN_MODE"); ok {
		c.Server.Mode = v
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("LOG_FORMAT"); ok {
		c.Log.Format = strings.ToLower(v)
	}
	if v, ok := os.LookupEnv("CORS_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = splitList(v)
	}

	var err error
	if c.Filters.BrightnessFactor, err = envFloat("FILTER_BRIGHTNESS_FACTOR", c.Filters.BrightnessFactor); err != nil {
		return err
	}
	if c.Filters.ContrastFactor, err = envFloat("FILTER_CONTRAST_FACTOR", c.Filters.ContrastFactor); err != nil {
		return err
	}
	if c.Server.RateLimit, err = envFloat("RATE_LIMIT", c.Server.RateLimit); err != nil {
		return err
	}
	if v, ok := os.LookupEnv("FILTER_BLUR_RADIUS"); ok {
		if c.Filters.BlurRadius, err = strconv.Atoi(v); err != nil {
			return fmt.Errorf("FILTER_BLUR_RADIUS: %w", err)
		}
	}
	if v, ok := os.LookupEnv("FILTER_STRICT"); ok {
		if c.Filters.Strict, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("FILTER_STRICT: %w", err)
		}
	}
	return nil
}

func envFloat(key string, def float64) (float64, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FilterSettings converts the filter section for the processor.
func (c *Config) FilterSettings() core.FilterSettings {
	return core.FilterSettings{
		BrightnessFactor: c.Filters.BrightnessFactor,
		ContrastFactor:   c.Filters.ContrastFactor,
		BlurRadius:       c.Filters.BlurRadius,
		Strict:           c.Filters.Strict,
	}
}

// MaxUploadBytes is the multipart size limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}
