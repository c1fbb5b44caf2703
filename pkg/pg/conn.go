package pg

import (
	"database/sql"
	"fmt"
	"net/url"
)

// Config addresses one postgres server. Read and write handles each get one.
type Config struct {
	User     string
	Host     string
	Port     string
	Password string
	Database string
	// SSLMode defaults to disable.
	SSLMode string
}

// DSN renders the config as a postgres URL, escaping credentials.
func (c Config) DSN() string {
	mode := c.SSLMode
	if mode == "" {
		mode = "disable"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:     "/" + c.Database,
		RawQuery: url.Values{"sslmode": []string{mode}}.Encode(),
	}
	return u.String()
}

func newSqlConnection(config Config) (*sql.DB, error) {
	return sql.Open("postgres", config.DSN())
}
