package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jmoiron/sqlx"
)

// PostgresOption for Postgres options
type PostgresOption struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

// PostgresConfig for configuring Postgres
type PostgresConfig struct {
	Host         string           `mapstructure:"host"`
	Port         uint16           `mapstructure:"port"`
	Database     string           `mapstructure:"database"`
	Username     string           `mapstructure:"username"`
	Password     string           `mapstructure:"password"`
	MaxOpenConns int              `mapstructure:"max_open_conns"`
	MaxIdleConns int              `mapstructure:"max_idle_conns"`
	Options      []PostgresOption `mapstructure:"options"`
}

func (c PostgresConfig) optionsString() string {
	opts := []string{"sslmode=disable"}
	for _, o := range c.Options {
		key := url.QueryEscape(o.Key)
		value := url.QueryEscape(o.Value)
		opts = append(opts, key+"="+value)
	}
	return strings.Join(opts, "&")
}

// DSN returns data source name
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?%s",
		url.QueryEscape(c.Username), url.QueryEscape(c.Password),
		c.Host, c.Port, c.Database, c.optionsString())
}

// MustConnect connects to database using sqlx
func (c PostgresConfig) MustConnect() *sqlx.DB {
	db := sqlx.MustConnect("postgres", c.DSN())

	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	return db
}
