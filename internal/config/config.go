package config // package config loads application configuration from environment variables

import (
	"log" // log is used to report configuration errors and halt execution
	"os"  // os provides access to environment variables
	"time"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations.
type Config struct {
	Env             string        // application environment (e.g. "dev", "prod")
	Port            string        // HTTP port to listen on
	DBUser          string        // database username
	DBPass          string        // database password (optional)
	DBHost          string        // database host address
	DBPort          string        // database port number
	DBName          string        // database name
	DBMaxOpenConns  int           // connection pool ceiling
	DBMaxIdleConns  int           // idle connections kept for reuse
	DBConnLifetime  time.Duration // max age before a pooled connection is recycled
	JWTSecret       string        // secret used to verify bearer tokens issued by the auth service
	TicketPrefix    string        // prefix for generated ticket numbers
	RedeemWindowMin int           // minutes past schedule start during which a ticket may still be scanned
}

// Load reads configuration values from environment variables and returns a
// Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. The redemption
// window stands in for schedule start plus film duration; once it has
// elapsed a ticket can no longer be scanned and reads report it expired.
func Load() Config {
	return Config{
		Env:             must("APP_ENV"),      // environment (dev/test/prod)
		Port:            must("APP_PORT"),     // port to bind the HTTP server
		DBUser:          must("DB_USER"),      // database user
		DBPass:          os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:          must("DB_HOST"),      // database host
		DBPort:          must("DB_PORT"),      // database port
		DBName:          must("DB_NAME"),      // database name
		DBMaxOpenConns:  envInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:  envInt("DB_MAX_IDLE_CONNS", 25),
		DBConnLifetime:  envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		JWTSecret:       must("JWT_SECRET"),   // shared secret for verifying access tokens
		TicketPrefix:    envStr("TICKET_PREFIX", "TKT"),
		RedeemWindowMin: envInt("TICKET_REDEEM_WINDOW_MIN", 180),
	}
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
