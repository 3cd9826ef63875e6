package config

import "time"

// Config holds runtime settings for the toilettracker CLI.
//
// Durations are time.Duration values. FixedLatitude and FixedLongitude are
// used only with Locator "fixed".
type Config struct {
	APIURL              string        `koanf:"api_url"`
	RequestTimeout      time.Duration `koanf:"request_timeout"`
	GeoTimeout          time.Duration `koanf:"geo_timeout"`
	OnlineCheckInterval time.Duration `koanf:"online_check_interval"`
	DBPath              string        `koanf:"db_path"`
	LogLevel            string        `koanf:"log_level"`
	Locator             string        `koanf:"locator"`
	GeoURL              string        `koanf:"geo_url"`
	FixedLatitude       float64       `koanf:"fixed_latitude"`
	FixedLongitude      float64       `koanf:"fixed_longitude"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIURL = "https://toilet-tracker-backend-1.onrender.com"
	c.RequestTimeout = 30 * time.Second
	c.GeoTimeout = 15 * time.Second
	c.OnlineCheckInterval = 10 * time.Second
	c.DBPath = "tracker.db"
	c.LogLevel = "info"
	c.Locator = "ip"
	c.GeoURL = "http://ip-api.com/json/"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
