package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr    string `env:"LISTEN_ADDR" envDefault:":8080"`
	VisionBackend string `env:"VISION_BACKEND" envDefault:"gemini"`
	GoogleAPIKey  string `env:"GOOGLE_API_KEY"`
	GeminiModel   string `env:"GEMINI_MODEL" envDefault:"models/gemini-1.5-pro-latest"`
	ClaudeAPIKey  string `env:"CLAUDE_API_KEY"`
	ClaudeModel   string `env:"CLAUDE_MODEL" envDefault:"claude-sonnet-4-5"`
	OllamaHost    string `env:"OLLAMA_HOST" envDefault:"http://localhost:11434"`
	OllamaModel   string `env:"OLLAMA_MODEL" envDefault:"llava"`
	MaxUploadMB   int64  `env:"MAX_UPLOAD_MB" envDefault:"20"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT"`
	LogFile       string `env:"LOG_FILE"`
}

// Load reads dotenvFiles (".env" when none are given) into the process
// environment and parses the result. Variables already set in the
// environment take precedence over dotenv values, and missing dotenv files
// are ignored.
func Load(dotenvFiles ...string) (*Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

// MaxUploadBytes is the multipart upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
