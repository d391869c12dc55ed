package utils

import (
	"database/sql"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// BuildPostgresDSNFromEnv reads PG_HOST, PG_PORT, PG_USER, PG_PASSWORD, PG_DB and PG_SSLMODE.
// PG_DSN, when set, wins over the individual variables.
func BuildPostgresDSNFromEnv() string {
	if dsn := os.Getenv("PG_DSN"); dsn != "" {
		return dsn
	}
	host := envOr("PG_HOST", "localhost")
	port := envOr("PG_PORT", "5432")
	user := envOr("PG_USER", "postgres")
	pass := os.Getenv("PG_PASSWORD")
	db := envOr("PG_DB", "parks")
	ssl := envOr("PG_SSLMODE", "disable")
	dsn := "postgres://" + user
	if pass != "" {
		dsn += ":" + pass
	}
	dsn += "@" + host + ":" + port + "/" + db + "?sslmode=" + ssl
	return dsn
}

// OpenPostgresFromEnv opens a pool sized by PG_MAX_OPEN_CONNS / PG_MAX_IDLE_CONNS.
func OpenPostgresFromEnv() (*sql.DB, error) {
	db, err := sql.Open("postgres", BuildPostgresDSNFromEnv())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(envInt("PG_MAX_OPEN_CONNS", 50))
	db.SetMaxIdleConns(envInt("PG_MAX_IDLE_CONNS", 25))
	return db, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// envInt ignores values that do not parse.
func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
