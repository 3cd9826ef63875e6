package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/toilettracker/internal/flagx"
	"github.com/dmitrijs2005/toilettracker/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish an absent key from an explicit zero.
type JsonConfig struct {
	APIURL              string          `json:"api_url"`
	RequestTimeout      *timex.Duration `json:"request_timeout"`
	GeoTimeout          *timex.Duration `json:"geo_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
	DBPath              string          `json:"db_path"`
	LogLevel            string          `json:"log_level"`
	Locator             string          `json:"locator"`
	GeoURL              string          `json:"geo_url"`
	FixedLatitude       *float64        `json:"fixed_latitude"`
	FixedLongitude      *float64        `json:"fixed_longitude"`
}

// parseJson overlays cfg with the JSON file named by -c or -config. Without
// the flag nothing is loaded. Read and decode errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.APIURL, jc.APIURL)
	overlayString(&cfg.DBPath, jc.DBPath)
	overlayString(&cfg.LogLevel, jc.LogLevel)
	overlayString(&cfg.Locator, jc.Locator)
	overlayString(&cfg.GeoURL, jc.GeoURL)

	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.GeoTimeout != nil {
		cfg.GeoTimeout = jc.GeoTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
	if jc.FixedLatitude != nil {
		cfg.FixedLatitude = *jc.FixedLatitude
	}
	if jc.FixedLongitude != nil {
		cfg.FixedLongitude = *jc.FixedLongitude
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
