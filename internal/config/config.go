package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time converts TTL integers into durations
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Absence of a required value is a fatal
// startup error, never a runtime fallback: a server running without a
// signing secret or bootstrap credentials must refuse to start.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to sign all four token kinds

	AccessTTL     time.Duration // access token time-to-live
	RefreshTTL    time.Duration // refresh token time-to-live
	ResetTTL      time.Duration // password-reset token time-to-live
	ActivationTTL time.Duration // account-activation token time-to-live

	BcryptCost int // bcrypt cost for password hashing

	SuperadminEmail    string // first-boot superadmin login
	SuperadminPassword string // first-boot superadmin password

	BaseURL string // external base URL embedded in emailed links
}

// Load reads configuration values from environment variables and returns
// a Config. Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message. Each token kind has
// its own independently tunable TTL.
func Load() Config {
	return Config{
		Env:       must("APP_ENV"),      // environment (dev/test/prod)
		Port:      must("APP_PORT"),     // port to bind the HTTP server
		DBUser:    must("DB_USER"),      // database user
		DBPass:    os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:    must("DB_HOST"),      // database host
		DBPort:    must("DB_PORT"),      // database port
		DBName:    must("DB_NAME"),      // database name
		JWTSecret: must("JWT_SECRET"),   // secret used for signing JWTs

		AccessTTL:     time.Duration(mustInt("ACCESS_TOKEN_TTL_MIN")) * time.Minute,
		RefreshTTL:    time.Duration(mustInt("REFRESH_TOKEN_TTL_DAYS")) * 24 * time.Hour,
		ResetTTL:      time.Duration(mustInt("RESET_TOKEN_TTL_MIN")) * time.Minute,
		ActivationTTL: time.Duration(mustInt("ACTIVATION_TOKEN_TTL_MIN")) * time.Minute,

		BcryptCost: mustInt("BCRYPT_COST"), // bcrypt cost factor

		SuperadminEmail:    must("SUPERADMIN_EMAIL"),    // bootstrap login
		SuperadminPassword: must("SUPERADMIN_PASSWORD"), // bootstrap password

		BaseURL: must("APP_BASE_URL"), // e.g. https://reading.example.com
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

// mustInt is like must() but converts the retrieved string into an integer.
// If conversion fails, the application logs a fatal error and exits.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}
