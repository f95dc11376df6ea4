package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Host         string   `koanf:"host" validate:"required"`
	Port         int      `koanf:"port" validate:"min=1,max=65535"`
	AllowOrigins []string `koanf:"allow_origins"`
	LogLevel     string   `koanf:"log_level" validate:"oneof=trace debug info warn error fatal panic disabled"`
	LogFile      string   `koanf:"log_file"`
	MaxUploadMB  int      `koanf:"max_upload_mb" validate:"min=1"`
	RateLimit    int      `koanf:"rate_limit" validate:"min=0"` // запросов в минуту с IP, 0 = без лимита

	Catalog   CatalogConfig   `koanf:"catalog"`
	Recommend RecommendConfig `koanf:"recommend"`
	Poster    PosterConfig    `koanf:"poster"`
}

type CatalogConfig struct {
	Path      string `koanf:"path"`
	HeaderRow int    `koanf:"header_row" validate:"min=1"`
	TitleCol  string `koanf:"title_col" validate:"required"`
	GenresCol string `koanf:"genres_col" validate:"required"`
	IDCol     string `koanf:"id_col"`
	GenreSep  string `koanf:"genre_sep" validate:"required"`
	MaxRows   int    `koanf:"max_rows" validate:"min=0"`
}

type RecommendConfig struct {
	MaxFeatures    int `koanf:"max_features" validate:"min=0"`
	TitleThreshold int `koanf:"title_threshold" validate:"min=1,max=100"`
	TitleLimit     int `koanf:"title_limit" validate:"min=1"`
	GenreLimit     int `koanf:"genre_limit" validate:"min=1"`
	Workers        int `koanf:"workers" validate:"min=0"`
}

type PosterConfig struct {
	Enabled     bool          `koanf:"enabled"`
	BaseURL     string        `koanf:"base_url" validate:"required_if=Enabled true"`
	APIKey      string        `koanf:"api_key"`
	Fallback    string        `koanf:"fallback" validate:"required,url"`
	Timeout     time.Duration `koanf:"timeout"`
	Budget      time.Duration `koanf:"budget"` // на обогащение всего ответа
	RatePerSec  float64       `koanf:"rate_per_sec" validate:"min=0"`
	CacheTTL    time.Duration `koanf:"cache_ttl"`
	Concurrency int           `koanf:"concurrency" validate:"min=0"`
}

// ConfigPathEnvVar overrides the YAML config location.
const ConfigPathEnvVar = "CONFIG_PATH"

var defaultConfigPaths = []string{"config.yaml", "config.yml"}

func defaultConfig() Config {
	return Config{
		Host:         "127.0.0.1",
		Port:         8082,
		AllowOrigins: []string{"*"},
		LogLevel:     "info",
		LogFile:      "logs/movierec.log",
		MaxUploadMB:  64,
		RateLimit:    600,
		Catalog: CatalogConfig{
			Path:      "data/movies.csv",
			HeaderRow: 1,
			TitleCol:  "title",
			GenresCol: "genres",
			IDCol:     "movieId",
			GenreSep:  "|",
			MaxRows:   10000,
		},
		Recommend: RecommendConfig{
			MaxFeatures:    5000,
			TitleThreshold: 60,
			TitleLimit:     9,
			GenreLimit:     15,
		},
		Poster: PosterConfig{
			Enabled:     false,
			BaseURL:     "https://www.omdbapi.com/",
			Fallback:    "https://via.placeholder.com/150?text=No+Image",
			Timeout:     2 * time.Second,
			Budget:      5 * time.Second,
			RatePerSec:  10,
			CacheTTL:    6 * time.Hour,
			Concurrency: 4,
		},
	}
}

// env → путь koanf; имена переменных сервиса сохранены
var envMappings = map[string]string{
	"host":             "host",
	"port":             "port",
	"allow_origins":    "allow_origins",
	"log_level":        "log_level",
	"log_file":         "log_file",
	"max_upload_mb":    "max_upload_mb",
	"rate_limit":       "rate_limit",
	"catalog_path":     "catalog.path",
	"catalog_max_rows": "catalog.max_rows",
	"genre_delimiter":  "catalog.genre_sep",
	"max_features":     "recommend.max_features",
	"title_threshold":  "recommend.title_threshold",
	"title_limit":      "recommend.title_limit",
	"genre_limit":      "recommend.genre_limit",
	"build_workers":    "recommend.workers",
	"poster_enabled":   "poster.enabled",
	"poster_base_url":  "poster.base_url",
	"poster_api_key":   "poster.api_key",
	"poster_fallback":  "poster.fallback",
	"poster_timeout":   "poster.timeout",
	"poster_budget":    "poster.budget",
}

// envTransform возвращает "" для неизвестных переменных, koanf их пропускает.
func envTransform(key string) string {
	return envMappings[strings.ToLower(key)]
}

// Load: defaults → YAML (CONFIG_PATH или ./config.yaml, если есть) → env.
func Load() (Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}
	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return Config{}, fmt.Errorf("load env: %w", err)
	}
	if v, ok := k.Get("allow_origins").(string); ok {
		if err := k.Set("allow_origins", splitList(v)); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
