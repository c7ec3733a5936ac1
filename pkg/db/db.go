package db

import (
	"net"
	"net/url"

	"github.com/Khin-96/pochi-sub000/pkg/config"
)

func GetDBDSN(config *config.DatabaseConfig) string {
	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(config.User, config.Password),
		Host:     net.JoinHostPort(config.Host, config.Port),
		Path:     "/" + config.DBName,
		RawQuery: url.Values{"sslmode": []string{config.SSLMode}}.Encode(),
	}
	return dsn.String()
}
