package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL     = "mysql"
	DriverPostgres  = "postgres"
	DriverPostgREST = "postgrest"
)

type Config struct {
	AppPort  string
	LogLevel string

	// DBDriver selects the table gateway: mysql, postgres or postgrest.
	DBDriver string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	PostgresDSN string

	PostgRESTURL string
	PostgRESTKey string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret   string
	JWTTTLHours int

	IdleLockSecs     int
	TablePageSize    int
	SearchDebounceMS int
	SearchCacheSecs  int
	SearchCacheSize  int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads the environment, after loading a .env file when one exists.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:  strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "juvenat"),
		MySQLUser: getenv("MYSQL_USER", "juvenat"),
		MySQLPass: getenv("MYSQL_PASS", "juvenat"),

		PostgresDSN: os.Getenv("POSTGRES_DSN"),

		PostgRESTURL: strings.TrimRight(os.Getenv("POSTGREST_URL"), "/"),
		PostgRESTKey: os.Getenv("POSTGREST_KEY"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:   os.Getenv("JWT_SECRET"),
		JWTTTLHours: getint("JWT_TTL_HOURS", 12),

		IdleLockSecs:     getint("IDLE_LOCK_SECONDS", 120),
		TablePageSize:    getint("TABLE_PAGE_SIZE", 100),
		SearchDebounceMS: getint("SEARCH_DEBOUNCE_MS", 300),
		SearchCacheSecs:  getint("SEARCH_CACHE_TTL_SECONDS", 30),
		SearchCacheSize:  getint("SEARCH_CACHE_SIZE", 256),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case DriverPostgREST:
		if c.PostgRESTURL == "" || c.PostgRESTKey == "" {
			return errors.New("missing PostgREST config (POSTGREST_URL/KEY)")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if c.IdleLockSecs <= 0 {
		return errors.New("IDLE_LOCK_SECONDS must be positive")
	}
	if c.TablePageSize <= 0 || c.TablePageSize > 1000 {
		return fmt.Errorf("TABLE_PAGE_SIZE %d out of range (1..1000)", c.TablePageSize)
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime for DATETIME; clientFoundRows so updates report matched rows
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&clientFoundRows=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN is the connection string for the selected SQL driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverPostgres {
		return c.PostgresDSN
	}
	return c.MySQLDSN()
}

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }
func (c *Config) IdleLock() time.Duration { return time.Duration(c.IdleLockSecs) * time.Second }
func (c *Config) JWTTTL() time.Duration   { return time.Duration(c.JWTTTLHours) * time.Hour }
func (c *Config) SearchDebounce() time.Duration {
	return time.Duration(c.SearchDebounceMS) * time.Millisecond
}
func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.SearchCacheSecs) * time.Second
}
