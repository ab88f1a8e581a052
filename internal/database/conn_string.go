package database

import (
	"fmt"
	"net/url"

	"github.com/jmorel/presence-relay/internal/config"
)

// BuildConnString renders a pgx-compatible connection URL from config.
// The sslmode comes straight from config; defaults fill it in before
// validation. The password is escaped so credentials containing URL
// metacharacters survive parsing.
func BuildConnString(cfg config.DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		url.QueryEscape(cfg.Password),
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.SSLMode,
	)
}
