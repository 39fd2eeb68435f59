package config

import (
	_ "embed"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

type Config struct {
	Faces    FacesConfig    `yaml:"faces"`
	Capture  CaptureConfig  `yaml:"capture"`
	Stream   StreamConfig   `yaml:"stream"`
	Database DatabaseConfig `yaml:"database"`
	Web      WebConfig      `yaml:"web"`
}

type FacesConfig struct {
	KnownDir       string  `yaml:"known_dir"`
	UnknownDir     string  `yaml:"unknown_dir"`
	UploadDir      string  `yaml:"upload_dir"` // created at startup, not read by any handler
	ModelsDir      string  `yaml:"models_dir"` // dlib .dat model files
	Detector       string  `yaml:"detector"`   // hog or cnn
	MatchTolerance float64 `yaml:"match_tolerance"`
	MatchStrategy  string  `yaml:"match_strategy"` // first or closest
	SaveUnknown    bool    `yaml:"save_unknown"`
}

type CaptureConfig struct {
	Backend      string        `yaml:"backend"` // opencv, v4l2 or directory
	Device       string        `yaml:"device"`  // camera index, device node or directory path
	Width        int           `yaml:"width"`
	Height       int           `yaml:"height"`
	FrameTimeout time.Duration `yaml:"frame_timeout"`
}

type StreamConfig struct {
	JPEGQuality int `yaml:"jpeg_quality"`
}

type DatabaseConfig struct {
	URL          string `yaml:"-"` // PostgreSQL connection URL, embedding cache is disabled when empty
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

type WebConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"` // extra CORS origins, localhost is always allowed
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads a positive float, falling back to defaultVal.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

func envBool(key string, defaultVal bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return defaultVal
}

func envString(key, defaultVal string) string {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		return s
	}
	return defaultVal
}

// envList reads a comma-separated list.
func envList(key string, defaultVal []string) []string {
	s := os.Getenv(key)
	if strings.TrimSpace(s) == "" {
		return defaultVal
	}
	var out []string
	for item := range strings.SplitSeq(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Defaults returns the embedded defaults without any environment overrides.
func Defaults() *Config {
	var cfg Config
	if err := yaml.Unmarshal(defaultsYAML, &cfg); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded defaults.yaml: " + err.Error())
	}
	return &cfg
}

func Load() *Config {
	d := Defaults()

	return &Config{
		Faces: FacesConfig{
			KnownDir:       envString("FACES_KNOWN_DIR", d.Faces.KnownDir),
			UnknownDir:     envString("FACES_UNKNOWN_DIR", d.Faces.UnknownDir),
			UploadDir:      envString("FACES_UPLOAD_DIR", d.Faces.UploadDir),
			ModelsDir:      envString("FACES_MODELS_DIR", d.Faces.ModelsDir),
			Detector:       strings.ToLower(envString("FACES_DETECTOR", d.Faces.Detector)),
			MatchTolerance: envFloat("FACES_MATCH_TOLERANCE", d.Faces.MatchTolerance),
			MatchStrategy:  strings.ToLower(envString("FACES_MATCH_STRATEGY", d.Faces.MatchStrategy)),
			SaveUnknown:    envBool("FACES_SAVE_UNKNOWN", d.Faces.SaveUnknown),
		},
		Capture: CaptureConfig{
			Backend:      strings.ToLower(envString("CAPTURE_BACKEND", d.Capture.Backend)),
			Device:       envString("CAPTURE_DEVICE", d.Capture.Device),
			Width:        envInt("CAPTURE_WIDTH", d.Capture.Width),
			Height:       envInt("CAPTURE_HEIGHT", d.Capture.Height),
			FrameTimeout: envDuration("CAPTURE_FRAME_TIMEOUT", d.Capture.FrameTimeout),
		},
		Stream: StreamConfig{
			JPEGQuality: min(envInt("STREAM_JPEG_QUALITY", d.Stream.JPEGQuality), 100),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", d.Database.MaxOpenConns),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", d.Database.MaxIdleConns),
		},
		Web: WebConfig{
			Host:           envString("WEB_HOST", d.Web.Host),
			Port:           envInt("WEB_PORT", d.Web.Port),
			AllowedOrigins: envList("WEB_ALLOWED_ORIGINS", d.Web.AllowedOrigins),
		},
	}
}

// CacheEnabled reports whether the PostgreSQL embedding cache should be used.
func (c *DatabaseConfig) CacheEnabled() bool {
	return c.URL != ""
}
