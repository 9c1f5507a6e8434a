package config

import (
	"fmt"  // Error wrapping
	"time" // Token lifetime

	"github.com/joho/godotenv"             // For loading .env files
	"github.com/kelseyhightower/envconfig" // Environment decoding into the struct below
)

// Config holds the application configuration
type Config struct {
	AppPort      string `envconfig:"APP_PORT" default:"8080"`      // Application port
	InternalPort string `envconfig:"INTERNAL_PORT" default:"4001"` // Loopback listener for the chat bot routes
	DBUser       string `envconfig:"DB_USER"`                      // Database user
	DBPassword   string `envconfig:"DB_PASSWORD"`                  // Database password
	DBHost       string `envconfig:"DB_HOST" default:"127.0.0.1"`
	DBPort       string `envconfig:"DB_PORT" default:"3306"`
	DBName       string `envconfig:"DB_NAME" default:"pollopollo"`
	IsProd       bool   `envconfig:"IS_PROD"` // Is production environment

	JWTSecret     string        `envconfig:"JWT_SECRET" required:"true"` // JWT signing secret
	TokenTTL      time.Duration `envconfig:"TOKEN_TTL" default:"168h"`   // Token lifetime, 7 days
	DeviceAddress string        `envconfig:"OBYTE_DEVICE_ADDRESS"`       // Chat bot device address used in pairing links
	ObyteHub      string        `envconfig:"OBYTE_HUB" default:"obyte.org/bb"`

	RedisAddr string `envconfig:"REDIS_ADDR"` // Redis server address, cache disabled when empty
	RedisPass string `envconfig:"REDIS_PASS"` // Redis password
	RedisDB   int    `envconfig:"REDIS_DB"`   // Redis database number

	SMTPHost     string `envconfig:"SMTP_HOST"` // Emails are only logged when empty
	SMTPPort     int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"SMTP_USER"`
	SMTPPassword string `envconfig:"SMTP_PASSWORD"`
	MailFrom     string `envconfig:"MAIL_FROM" default:"pollopollo@pollopollo.org"`

	ImageDir      string `envconfig:"IMAGE_DIR" default:"./static"` // Disk image folder
	S3Bucket      string `envconfig:"S3_BUCKET"`                    // S3 used instead of disk when set
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Endpoint    string `envconfig:"S3_ENDPOINT"`
	S3AccessKey   string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey   string `envconfig:"S3_SECRET_KEY"`
	StaticBaseURL string `envconfig:"STATIC_BASE_URL" default:"static"` // Prefix for thumbnail paths in responses

	BridgeURL string `envconfig:"BRIDGE_URL" default:"http://localhost:8004"` // Obyte chat bot endpoint

	PriceFeedURL      string `envconfig:"PRICE_FEED_URL"` // Exchange rate refresh disabled when empty
	PriceFeedPath     string `envconfig:"PRICE_FEED_PATH" default:"GBYTE_USD"`
	PriceFeedSchedule string `envconfig:"PRICE_FEED_SCHEDULE" default:"@every 10m"`

	AuthRatePerSecond float64 `envconfig:"AUTH_RATE_PER_SECOND" default:"1"` // Login attempts per client IP
	AuthRateBurst     int     `envconfig:"AUTH_RATE_BURST" default:"5"`
}

// Security is the part of the configuration the user repository needs to issue tokens
// and build pairing links.
type Security struct {
	JWTSecret     string
	TokenTTL      time.Duration
	DeviceAddress string
	ObyteHub      string
}

// LoadConfig loads configuration from a .env file (if present) and the environment
func LoadConfig() (*Config, error) {
	_ = godotenv.Load() // Load .env file if present
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if cfg.InternalPort == cfg.AppPort {
		return nil, fmt.Errorf("load config: INTERNAL_PORT must differ from APP_PORT (%s)", cfg.AppPort)
	}
	return &cfg, nil
}

// Security returns the token and pairing settings
func (c *Config) Security() Security {
	return Security{
		JWTSecret:     c.JWTSecret,
		TokenTTL:      c.TokenTTL,
		DeviceAddress: c.DeviceAddress,
		ObyteHub:      c.ObyteHub,
	}
}

// MySQLDSN builds the Data Source Name for the MySQL driver
func (c *Config) MySQLDSN() string {
	return c.DBUser + ":" + c.DBPassword + "@tcp(" + c.DBHost + ":" + c.DBPort + ")/" + c.DBName + "?parseTime=true&charset=utf8mb4"
}
