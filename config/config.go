package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	StorageMySQL = "mysql"
	StorageMongo = "mongo"
	StorageFile  = "file"
)

type Config struct {
	App      AppConfig
	HTTP     HTTPConfig
	Storage  StorageConfig
	Session  SessionConfig
	Tokens   TokenConfig
	Mail     MailConfig
	Password PasswordConfig
	Log      LogConfig
}

type AppConfig struct {
	SecretKey string
	BaseURL   string

	// nil selects the built-in gmail rules
	DotlessEmailDomains []string
}

type HTTPConfig struct {
	Host string
	Port string
}

type StorageConfig struct {
	Driver        string
	MySQLDSN      string
	MongoURI      string
	MongoDatabase string
	DataFile      string
}

type SessionConfig struct {
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	RedisAddr    string
	RedisPass    string
	RedisDB      int
}

type TokenConfig struct {
	VerifyMaxAge time.Duration
	ResetMaxAge  time.Duration
}

type MailConfig struct {
	FromAddress    string
	FromName       string
	SendGridAPIKey string
	SendGridHost   string
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	Timeout        time.Duration
}

type PasswordConfig struct {
	Policy     PasswordPolicy
	BcryptCost int
}

type LogConfig struct {
	Level  string
	Format string
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

type PasswordPolicy struct {
	MinLength        int
	RequireUppercase bool
	RequireLowercase bool
	RequireNumber    bool
	RequireSpecial   bool
}

func (p PasswordPolicy) Validate(password string) error {
	if len(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long", MaxPasswordBytes)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

// HasMailTransport reports whether at least one outbound mail transport is configured.
func (m MailConfig) HasMailTransport() bool {
	return m.SendGridAPIKey != "" || m.SMTPHost != ""
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	secretKey := os.Getenv("SECRET_KEY")
	if secretKey == "" {
		return nil, errors.New("SECRET_KEY environment variable is required")
	}

	storage, err := loadStorage()
	if err != nil {
		return nil, err
	}

	return &Config{
		App: AppConfig{
			SecretKey: secretKey,
			BaseURL:   strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:8080"), "/"),

			DotlessEmailDomains: getListEnv("EMAIL_DOTLESS_DOMAINS"),
		},
		HTTP: HTTPConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("PORT", getEnv("HTTP_PORT", "8080")),
		},
		Storage: storage,
		Session: SessionConfig{
			TTL:          getDurationEnv("SESSION_TTL", 7*24*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE_NAME", "mj_session"),
			CookieSecure: getBoolEnv("SESSION_COOKIE_SECURE", false),
			RedisAddr:    os.Getenv("REDIS_ADDR"),
			RedisPass:    os.Getenv("REDIS_PASSWORD"),
			RedisDB:      getIntEnv("REDIS_DB", 0),
		},
		Tokens: TokenConfig{
			VerifyMaxAge: getDurationEnv("VERIFY_TOKEN_MAX_AGE", 24*time.Hour),
			ResetMaxAge:  getDurationEnv("RESET_TOKEN_MAX_AGE", time.Hour),
		},
		Mail: MailConfig{
			FromAddress:    getEnv("MAIL_FROM_ADDRESS", "no-reply@moodjournal.local"),
			FromName:       getEnv("MAIL_FROM_NAME", "Mood Journal"),
			SendGridAPIKey: os.Getenv("SENDGRID_API_KEY"),
			SendGridHost:   os.Getenv("SENDGRID_HOST"),
			SMTPHost:       os.Getenv("SMTP_HOST"),
			SMTPPort:       getIntEnv("SMTP_PORT", 587),
			SMTPUsername:   os.Getenv("SMTP_USERNAME"),
			SMTPPassword:   os.Getenv("SMTP_PASSWORD"),
			Timeout:        time.Duration(getIntEnv("MAIL_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Password: PasswordConfig{
			Policy:     loadPasswordPolicy(),
			BcryptCost: getIntEnv("BCRYPT_COST", bcrypt.DefaultCost),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}, nil
}

func loadStorage() (StorageConfig, error) {
	storage := StorageConfig{
		Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageMySQL)),
		MySQLDSN:      os.Getenv("MYSQL_DSN"),
		MongoURI:      os.Getenv("MONGODB_URI"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "mood_tracker"),
		DataFile:      getEnv("DATA_FILE", "data/moods.json"),
	}

	switch storage.Driver {
	case StorageMySQL:
		if storage.MySQLDSN == "" {
			return storage, errors.New("MYSQL_DSN environment variable is required")
		}
	case StorageMongo:
		if storage.MongoURI == "" {
			return storage, errors.New("MONGODB_URI environment variable is required")
		}
	case StorageFile:
	default:
		return storage, fmt.Errorf("unsupported STORAGE_DRIVER %q", storage.Driver)
	}

	return storage, nil
}

func (c *Config) DSN() string {
	return c.Storage.MySQLDSN
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv returns nil when key is unset, so callers can tell "unset" from
// an explicitly empty list.
func getListEnv(key string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}

	items := []string{}
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func loadPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:        getIntEnv("PASSWORD_MIN_LENGTH", 6),
		RequireUppercase: getBoolEnv("PASSWORD_REQUIRE_UPPERCASE", false),
		RequireLowercase: getBoolEnv("PASSWORD_REQUIRE_LOWERCASE", false),
		RequireNumber:    getBoolEnv("PASSWORD_REQUIRE_NUMBER", false),
		RequireSpecial:   getBoolEnv("PASSWORD_REQUIRE_SPECIAL", false),
	}
}
