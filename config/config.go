package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	DatabaseConnectionString string `envconfig:"DATABASE_CONNECTION_STRING"`
	// postgres or sqlite
	Store      string `envconfig:"CATALOG_STORE" default:"postgres"`
	SQLitePath string `envconfig:"CATALOG_SQLITE_PATH" default:"catalog.db"`

	ListURL        string        `envconfig:"CATALOG_LIST_URL" default:"https://catalog.williams.edu/list/?kywd=&Action=Search&subj=&sbattr=&cn=&enrlmt=&cmp=&sttm=&endtm=&insfn=&insln="`
	SearchURL      string        `envconfig:"CATALOG_SEARCH_URL" default:"https://catalog.williams.edu/"`
	UserAgent      string        `envconfig:"CATALOG_USER_AGENT" default:"catalog-scraper/1.0"`
	RequestTimeout time.Duration `envconfig:"CATALOG_REQUEST_TIMEOUT" default:"30s"`
	RetryCount     int           `envconfig:"CATALOG_RETRY_COUNT" default:"3"`
	RequestRate    float64       `envconfig:"CATALOG_REQUEST_RATE" default:"2"`
	Workers        int           `envconfig:"CATALOG_WORKERS" default:"1"`
	// first or most-complete
	Dedup string `envconfig:"CATALOG_DEDUP" default:"first"`

	// Empty disables the page cache.
	CacheDir string        `envconfig:"CATALOG_CACHE_DIR"`
	CacheTTL time.Duration `envconfig:"CATALOG_CACHE_TTL" default:"24h"`

	TermsFile  string `envconfig:"CATALOG_TERMS_FILE" default:"terms.yaml"`
	Checkpoint string `envconfig:"CATALOG_CHECKPOINT" default:"catalog.json"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load reads configuration from the environment after applying any .env file
// in the working directory.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("CATALOG_STORE must be postgres or sqlite, got %q", c.Store)
	}
	switch c.Dedup {
	case "first", "most-complete":
	default:
		return fmt.Errorf("CATALOG_DEDUP must be first or most-complete, got %q", c.Dedup)
	}
	if c.Workers < 0 {
		return fmt.Errorf("CATALOG_WORKERS must not be negative, got %d", c.Workers)
	}
	return nil
}
