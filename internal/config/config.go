package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	SourceCSV = "csv"
	SourceSQL = "sql"
)

type Config struct {
	Addr     string        `yaml:"addr"`
	LogLevel string        `yaml:"log_level"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Solver   SolverConfig  `yaml:"solver"`
	Cache    CacheConfig   `yaml:"cache"`
	AMQP     AMQPConfig    `yaml:"amqp"`
	CORS     CORSConfig    `yaml:"cors"`
}

type CatalogConfig struct {
	// Source: "csv" (fichiers plats dans DataDir) ou "sql" (base Driver/DSN).
	Source  string `yaml:"source"`
	DataDir string `yaml:"data_dir"`
	Driver  string `yaml:"driver"`
	DSN     string `yaml:"dsn"`
	// ImportOnStart recharge la base depuis les CSV au démarrage (source "sql").
	ImportOnStart bool `yaml:"import_on_start"`
}

type SolverConfig struct {
	RarityThreshold int           `yaml:"rarity_threshold"`
	MaxExpansions   int           `yaml:"max_expansions"`
	Timeout         time.Duration `yaml:"timeout"`
	DominanceOrder  string        `yaml:"dominance_order"`
	MaxConcurrent   int           `yaml:"max_concurrent"`
}

type CacheConfig struct {
	// Size: nombre de plans gardés en cache; 0 désactive le cache.
	Size int `yaml:"size"`
}

type AMQPConfig struct {
	// URL vide: pas de transfert des événements.
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Default construit la configuration depuis l'environnement seul.
func Default() Config {
	cfg := Config{
		Addr:     envOr("STREAMPLAN_ADDR", "127.0.0.1:8080"),
		LogLevel: envOr("STREAMPLAN_LOG_LEVEL", "info"),
		Catalog: CatalogConfig{
			Source:  envOr("STREAMPLAN_CATALOG_SOURCE", SourceCSV),
			DataDir: envOr("STREAMPLAN_DATA_DIR", "data"),
			Driver:  envOr("STREAMPLAN_DB_DRIVER", "sqlite"),
			DSN:     envOr("STREAMPLAN_DB_DSN", "streamplan.db"),
		},
		Cache: CacheConfig{Size: envInt("STREAMPLAN_CACHE_SIZE", 1024)},
		AMQP:  AMQPConfig{URL: os.Getenv("STREAMPLAN_AMQP_URL")},
	}
	if origins := os.Getenv("STREAMPLAN_CORS_ORIGINS"); origins != "" {
		cfg.CORS.AllowedOrigins = strings.Split(origins, ",")
	}
	cfg.setDefaults()
	return cfg
}

// Load lit un fichier YAML (les ${VAR} sont substituées) par-dessus Default.
// Un chemin vide renvoie Default.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Catalog.Source {
	case SourceCSV, SourceSQL:
	default:
		return fmt.Errorf("config: unknown catalog source %q", c.Catalog.Source)
	}
	switch c.Catalog.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: unknown db driver %q", c.Catalog.Driver)
	}
	switch c.Solver.DominanceOrder {
	case "price", "catalog":
	default:
		return fmt.Errorf("config: unknown dominance order %q", c.Solver.DominanceOrder)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("config: cache size must be >= 0")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Addr == "" {
		c.Addr = "127.0.0.1:8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Catalog.Source == "" {
		c.Catalog.Source = SourceCSV
	}
	if c.Catalog.DataDir == "" {
		c.Catalog.DataDir = "data"
	}
	if c.Catalog.Driver == "" {
		c.Catalog.Driver = "sqlite"
	}
	if c.Solver.RarityThreshold == 0 {
		c.Solver.RarityThreshold = 4
	}
	if c.Solver.MaxExpansions == 0 {
		c.Solver.MaxExpansions = 2_000_000
	}
	if c.Solver.Timeout == 0 {
		c.Solver.Timeout = 10 * time.Second
	}
	if c.Solver.DominanceOrder == "" {
		c.Solver.DominanceOrder = "price"
	}
	if c.Solver.MaxConcurrent == 0 {
		c.Solver.MaxConcurrent = 4
	}
	if c.AMQP.Exchange == "" {
		c.AMQP.Exchange = "streamplan"
	}
	if c.AMQP.RoutingKey == "" {
		c.AMQP.RoutingKey = "plans"
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}
