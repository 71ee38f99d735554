package config

import (
	"fmt"
	"github.com/jmoiron/sqlx"
	"net/url"
	"strings"
)

// MySQLOption for MySQL options
type MySQLOption struct {
	Key   string `mapstructure:"key"`
	Value string `mapstructure:"value"`
}

// MySQLConfig for configuring MySQL
type MySQLConfig struct {
	Host         string        `mapstructure:"host"`
	Port         uint16        `mapstructure:"port"`
	Database     string        `mapstructure:"database"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	MaxOpenConns int           `mapstructure:"max_open_conns"`
	MaxIdleConns int           `mapstructure:"max_idle_conns"`
	Options      []MySQLOption `mapstructure:"options"`
}

func (c MySQLConfig) optionsString() string {
	opts := c.Options

	// commit timestamps are DATETIME columns, the driver must scan them into
	// time.Time; migration files contain multiple statements
	required := map[string]string{
		"parseTime":       "true",
		"multiStatements": "true",
	}
	for _, o := range opts {
		delete(required, o.Key)
	}
	for _, key := range []string{"multiStatements", "parseTime"} {
		if value, ok := required[key]; ok {
			opts = append(opts, MySQLOption{Key: key, Value: value})
		}
	}

	var result []string
	for _, o := range opts {
		key := url.QueryEscape(o.Key)
		value := url.QueryEscape(o.Value)
		result = append(result, key+"="+value)
	}
	return strings.Join(result, "&")
}

// DSN returns data source name
func (c MySQLConfig) DSN() string {
	optStr := c.optionsString()
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s", c.Username, c.Password, c.Host, c.Port, c.Database, optStr)
}

// MustConnect connects to database using sqlx
func (c MySQLConfig) MustConnect() *sqlx.DB {
	db := sqlx.MustConnect("mysql", c.DSN())

	db.SetMaxOpenConns(c.MaxOpenConns)
	db.SetMaxIdleConns(c.MaxIdleConns)
	return db
}
