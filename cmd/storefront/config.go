package main

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"storefront/pkg/infrastructure/mysql"
)

const appID = "storefront"

type config struct {
	LogLevel string `envconfig:"log_level" default:"info"`

	ServeHTTPAddress string `envconfig:"serve_http_address" default:":8080"`
	ServeGRPCAddress string `envconfig:"serve_grpc_address" default:":8081"`
	StaticDir        string `envconfig:"static_dir"`

	DatabaseUser           string        `envconfig:"database_user" required:"true"`
	DatabasePassword       string        `envconfig:"database_password" required:"true"`
	DatabaseHost           string        `envconfig:"database_host" default:"localhost:3306"`
	DatabaseName           string        `envconfig:"database_name" default:"storefront"`
	DatabaseConnectTimeout time.Duration `envconfig:"database_connect_timeout" default:"30s"`

	SeedInventoryFloor int `envconfig:"seed_inventory_floor" default:"50"`

	KafkaBrokers []string `envconfig:"kafka_brokers"`
	KafkaTopic   string   `envconfig:"kafka_topic" default:"storefront-events"`
}

// parseConfig reads STOREFRONT_* variables, a local .env file is loaded first
// when present.
func parseConfig() (*config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	c := &config{}
	if err := envconfig.Process(appID, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse env")
	}
	return c, nil
}

func (c *config) dsn() mysql.DSN {
	return mysql.DSN{
		User:     c.DatabaseUser,
		Password: c.DatabasePassword,
		Host:     c.DatabaseHost,
		Database: c.DatabaseName,
	}
}

func initLogger(c *config) {
	log.SetFormatter(&log.JSONFormatter{})
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown log level, using info")
		level = log.InfoLevel
	}
	log.SetLevel(level)
}
