package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	SourceBackend = "backend"
	SourceMySQL   = "mysql"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	PushGateway string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	BackendBase string
	BackendKey  string
	BackendRPS  int
	Source      string
	Workers     int
	CacheTTL    time.Duration
	TimeZone    string
	Synonyms    []string
	CORSOrigins []string
}

var defaults = map[string]any{
	"APP_ENV":                  "prod",
	"HTTP_ADDR":                ":8080",
	"METRICS_ADDR":             ":9100",
	"PUSHGATEWAY_URL":          "",
	"MYSQL_DSN":                "root:root@tcp(localhost:3306)/tango?parseTime=true&charset=utf8mb4,utf8&loc=UTC",
	"REDIS_ADDR":               "localhost:6379",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"BACKEND_BASE_URL":         "http://localhost:3000/api",
	"BACKEND_API_KEY":          "",
	"BACKEND_RPS":              5,
	"CATALOG_SOURCE":           SourceBackend,
	"INGEST_WORKERS":           8,
	"CACHE_TTL_SECONDS":        300,
	"TIMEZONE":                 "America/Argentina/Buenos_Aires",
	"CONTINUOUS_OPEN_SYNONYMS": "",
	"CORS_ORIGINS":             "*",
}

// Load reads configuration from the environment, falling back to an optional
// tango.yaml in the working directory or ./config, then to defaults.
func Load() Config {
	v := viper.New()
	v.SetConfigName("tango")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) {
			log.Warn().Err(err).Msg("config file ignored")
		}
	} else {
		log.Info().Str("file", v.ConfigFileUsed()).Msg("config file loaded")
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) Config {
	c := Config{
		AppEnv:      v.GetString("APP_ENV"),
		HTTPAddr:    v.GetString("HTTP_ADDR"),
		MetricsAddr: v.GetString("METRICS_ADDR"),
		PushGateway: v.GetString("PUSHGATEWAY_URL"),
		MySQLDSN:    v.GetString("MYSQL_DSN"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisDB:     v.GetInt("REDIS_DB"),
		RedisPass:   v.GetString("REDIS_PASSWORD"),
		BackendBase: strings.TrimRight(v.GetString("BACKEND_BASE_URL"), "/"),
		BackendKey:  v.GetString("BACKEND_API_KEY"),
		BackendRPS:  v.GetInt("BACKEND_RPS"),
		Source:      strings.ToLower(strings.TrimSpace(v.GetString("CATALOG_SOURCE"))),
		Workers:     v.GetInt("INGEST_WORKERS"),
		CacheTTL:    time.Duration(v.GetInt("CACHE_TTL_SECONDS")) * time.Second,
		TimeZone:    v.GetString("TIMEZONE"),
		Synonyms:    splitList(v.GetString("CONTINUOUS_OPEN_SYNONYMS")),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
	}
	if c.Source != SourceBackend && c.Source != SourceMySQL {
		log.Warn().Str("source", c.Source).Msg("unknown CATALOG_SOURCE, using backend")
		c.Source = SourceBackend
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.BackendKey == "" {
		log.Warn().Msg("BACKEND_API_KEY is empty")
	}
	return c
}

// Location resolves TimeZone, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := LoadLocation(c.TimeZone)
	if err != nil {
		log.Warn().Err(err).Str("tz", c.TimeZone).Msg("falling back to UTC")
		return time.UTC
	}
	return loc
}

func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", name, err)
	}
	return loc, nil
}

// splitList splits a comma separated value, keeping inner spaces ("24 h").
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
