package config

import (
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "TT_"

// parseEnv overlays cfg with TT_* environment variables. TT_GEO_TIMEOUT maps
// to the geo_timeout key; unset variables leave cfg untouched. Decode errors
// panic.
func parseEnv(cfg *Config) {
	k := koanf.New(".")

	provider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	})
	if err := k.Load(provider, nil); err != nil {
		panic(err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		panic(err)
	}
}
