// Package config loads process configuration from the environment.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

// Config holds every setting the storefront and the demo API read at startup.
type Config struct {
	Addr          string `env:"STOREFRONT_ADDR" envDefault:":8080"`
	DataDir       string `env:"STOREFRONT_DATA_DIR" envDefault:"data"`
	UploadDir     string `env:"STOREFRONT_UPLOAD_DIR" envDefault:"uploads"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"storefront-dev-secret"`
	MaxUploadMB   int64  `env:"MAX_UPLOAD_MB" envDefault:"20"`

	// MySQLDSN switches document storage from JSON files to a MySQL table.
	MySQLDSN string `env:"MYSQL_DSN"`
	TiDBCA   string `env:"TIDB_CA" envDefault:"/etc/ssl/certs/ca-certificates.crt"`

	// CloudinaryURL enables mirroring uploaded images to Cloudinary.
	CloudinaryURL string `env:"CLOUDINARY_URL"`

	DemoAPIAddr string `env:"DEMO_API_ADDR" envDefault:":8081"`

	Logger Logger `envPrefix:"LOG_"`
}

// Logger configures the zap logger.
type Logger struct {
	Mode       string `env:"MODE" envDefault:"development"`
	FileEnable bool   `env:"FILE_ENABLE" envDefault:"false"`
	Filename   string `env:"FILENAME" envDefault:"storefront.log"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, errors.Wrap(err, "parse env")
	}
	return cfg, nil
}

// MaxUploadBytes is the multipart memory limit derived from MaxUploadMB.
func (c Config) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 20 << 20
	}
	return c.MaxUploadMB << 20
}
