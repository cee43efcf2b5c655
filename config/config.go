package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot.
type Config struct {
	Bot     BotConfig     `yaml:"bot"`
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`

	// Credenciales — solo desde el entorno, nunca del YAML.
	Credentials Credentials `yaml:"-"`
}

// BotConfig controla el comportamiento del loop de polling.
type BotConfig struct {
	Contract        string `yaml:"contract"`         // dirección del contrato NFT (Base)
	Collection      string `yaml:"collection"`       // nombre a mostrar si la API no lo da
	DeepLinkBase    string `yaml:"deep_link_base"`   // base del link al marketplace
	IntervalSeconds int    `yaml:"interval_seconds"` // intervalo regular entre ciclos
	CooldownSeconds int    `yaml:"cooldown_seconds"` // espera reducida tras publicar una venta
	FetchLimit      int    `yaml:"fetch_limit"`      // máximo de ventas por fetch
}

// APIConfig contiene los base URLs de las APIs externas.
type APIConfig struct {
	ReservoirBase string `yaml:"reservoir_base"`
	OpenSeaBase   string `yaml:"opensea_base"`
}

// StorageConfig controla dónde se persiste el dedup store.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, o ":memory:"
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Credentials agrupa los secretos inyectados por entorno. El core los trata
// como valores opacos.
type Credentials struct {
	ReservoirAPIKey    string
	TwitterAPIKey      string
	TwitterAPISecret   string
	TwitterToken       string
	TwitterTokenSecret string
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Si el YAML no existe se usan los defaults — las credenciales vienen
// siempre del entorno.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	case os.IsNotExist(err):
		// sin archivo → solo defaults + entorno
	default:
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	return &cfg, nil
}

// PollInterval devuelve el intervalo regular como time.Duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Bot.IntervalSeconds) * time.Second
}

// Cooldown devuelve la espera tras un ciclo que publicó ventas.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.Bot.CooldownSeconds) * time.Second
}

// Validate verifica que las credenciales necesarias para publicar existan.
// En dry-run no se llama — el console publisher no necesita secretos.
func (c *Config) Validate() error {
	if c.Credentials.ReservoirAPIKey == "" {
		return fmt.Errorf("config.Validate: RESERVOIR_API_KEY is required")
	}
	missing := ""
	switch {
	case c.Credentials.TwitterAPIKey == "":
		missing = "TWITTER_API_KEY"
	case c.Credentials.TwitterAPISecret == "":
		missing = "TWITTER_API_SECRET"
	case c.Credentials.TwitterToken == "":
		missing = "TWITTER_ACCESS_TOKEN"
	case c.Credentials.TwitterTokenSecret == "":
		missing = "TWITTER_ACCESS_TOKEN_SECRET"
	}
	if missing != "" {
		return fmt.Errorf("config.Validate: %s is required", missing)
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están
// presentes. Los nombres siguen al deployment original del bot.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONTRACT_ADDRESS"); v != "" {
		cfg.Bot.Contract = v
	}
	if v := os.Getenv("CHECK_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Bot.CooldownSeconds = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}

	cfg.Credentials = Credentials{
		ReservoirAPIKey:    os.Getenv("RESERVOIR_API_KEY"),
		TwitterAPIKey:      os.Getenv("TWITTER_API_KEY"),
		TwitterAPISecret:   os.Getenv("TWITTER_API_SECRET"),
		TwitterToken:       os.Getenv("TWITTER_ACCESS_TOKEN"),
		TwitterTokenSecret: os.Getenv("TWITTER_ACCESS_TOKEN_SECRET"),
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Bot.Contract == "" {
		cfg.Bot.Contract = "0x424d781e0163b5a42ca2f27d036c2d5c561022c3"
	}
	if cfg.Bot.Collection == "" {
		cfg.Bot.Collection = "Primitive"
	}
	if cfg.Bot.DeepLinkBase == "" {
		cfg.Bot.DeepLinkBase = "https://opensea.io/assets/base"
	}
	if cfg.Bot.IntervalSeconds <= 0 {
		cfg.Bot.IntervalSeconds = 300
	}
	if cfg.Bot.CooldownSeconds <= 0 {
		cfg.Bot.CooldownSeconds = cfg.Bot.IntervalSeconds
	}
	if cfg.Bot.FetchLimit <= 0 {
		cfg.Bot.FetchLimit = 100
	}
	if cfg.API.ReservoirBase == "" {
		cfg.API.ReservoirBase = "https://api-base.reservoir.tools"
	}
	if cfg.API.OpenSeaBase == "" {
		cfg.API.OpenSeaBase = "https://api.opensea.io"
	}
	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "data/salebot.db"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}
