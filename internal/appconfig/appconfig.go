// Package appconfig loads envs shared by api and worker binaries
package appconfig

import (
	"log"
	"time"

	"github.com/spf13/cast"
	"github.com/wb-go/wbf/config"
)

// Getter - то, что нужно хелперам от конфига
type Getter interface {
	GetString(key string) string
}

// Load reads envs and .env-file, exits the app if the file is broken
func Load(envFile string) *config.Config {
	appConfig := config.New()
	appConfig.EnableEnv("")
	if err := appConfig.LoadEnvFiles(envFile); err != nil {
		log.Fatalf("Failed to load envs: %s\nExiting app...", err)
	}
	return appConfig
}

// String returns def when the key is empty
func String(cfg Getter, key, def string) string {
	if v := cfg.GetString(key); v != "" {
		return v
	}
	return def
}

// Int returns def when the key is empty, not a number or not positive
func Int(cfg Getter, key string, def int) int {
	v, err := cast.ToIntE(cfg.GetString(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

// Duration accepts "15s"-like values
func Duration(cfg Getter, key string, def time.Duration) time.Duration {
	v, err := cast.ToDurationE(cfg.GetString(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
