package config

import (
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory = "memory"
	DriverMySQL  = "mysql"
	DriverMongo  = "mongo"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable.
type Config struct {
	Env           string // application environment (e.g. "dev", "prod")
	Port          string // HTTP port to listen on
	PublicBaseURL string // fixed public address for the discovery endpoint; empty means derive from the request
	StoreDriver   string // memory | mysql | mongo
	DBUser        string // mysql username
	DBPass        string // mysql password (optional)
	DBHost        string // mysql host address
	DBPort        string // mysql port number
	DBName        string // mysql database name
	MongoURI      string // mongo connection string
	MongoDB       string // mongo database name
	BcryptCost    int    // bcrypt cost for password hashing
	LogLevel      string // debug | info | warn | error
}

// Load reads a .env file when one exists, then builds a Config from the
// environment. Variables required by the selected store driver are enforced
// by must() and missing values stop the program.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("could not read .env file", "error", err)
	}

	cfg := Config{
		Env:           envStr("APP_ENV", "dev"),
		Port:          envStr("APP_PORT", "8000"),
		PublicBaseURL: strings.TrimRight(os.Getenv("PUBLIC_BASE_URL"), "/"),
		StoreDriver:   strings.ToLower(envStr("STORE_DRIVER", DriverMemory)),
		BcryptCost:    envInt("BCRYPT_COST", 12),
		LogLevel:      envStr("LOG_LEVEL", "info"),
	}

	switch cfg.StoreDriver {
	case DriverMySQL:
		cfg.DBUser = must("DB_USER")
		cfg.DBPass = os.Getenv("DB_PASS") // empty allowed
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = envStr("DB_PORT", "3306")
		cfg.DBName = must("DB_NAME")
	case DriverMongo:
		cfg.MongoURI = must("MONGO_URI")
		cfg.MongoDB = envStr("MONGO_DB", "octofit_db")
	case DriverMemory:
	default:
		log.Fatalf("unknown STORE_DRIVER %q (want memory, mysql or mongo)", cfg.StoreDriver)
	}
	return cfg
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
