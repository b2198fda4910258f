package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port             int    `envconfig:"PORT" default:"8080"`
	StaticDir        string `envconfig:"STATIC_DIR" default:"./web"`
	AllowedOrigins   string `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
	DefaultColor     string `envconfig:"DEFAULT_COLOR" default:"#000000"`
	DefaultRadius    int    `envconfig:"DEFAULT_RADIUS" default:"20"`
	MaxExportSize    int    `envconfig:"MAX_EXPORT_SIZE" default:"4096"`
	MaxExportCircles int    `envconfig:"MAX_EXPORT_CIRCLES" default:"2000"`
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	LogFile          string `envconfig:"LOG_FILE"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Origins splits AllowedOrigins into trimmed, non-empty entries.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// OriginHosts returns the origins without their scheme, the form websocket
// origin patterns expect.
func (c *Config) OriginHosts() []string {
	origins := c.Origins()
	hosts := make([]string, 0, len(origins))
	for _, o := range origins {
		if i := strings.Index(o, "://"); i != -1 {
			o = o[i+3:]
		}
		hosts = append(hosts, o)
	}
	return hosts
}
