package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "CLINIC"

// Config captures the settings of the clinic scheduler.
type Config struct {
	SQLiteDSN            string
	TimezoneName         string
	Location             *time.Location
	MaxBatchSize         int
	MaxSeriesOccurrences int
	SlotMinutes          int
	DayStartHour         int
	DayEndHour           int
	RoomCatalog          string
	SnapshotTTL          time.Duration
	LogLevel             string
	LogFormat            string
}

var defaults = map[string]any{
	"sqlite_dsn":             "clinic.db",
	"timezone":               "America/Guayaquil",
	"max_batch_size":         10,
	"max_series_occurrences": 52,
	"slot_minutes":           30,
	"day_start_hour":         8,
	"day_end_hour":           18,
	"room_catalog":           "",
	"snapshot_ttl":           "15s",
	"log_level":              "info",
	"log_format":             "json",
}

// Load reads configuration from CLINIC_* environment variables and an optional
// YAML file. When configFile is empty, clinic.yaml in the working directory is
// used if present. Environment variables take precedence over the file.
//
// Every invalid value is reported in a single error.
func Load(configFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", envName(key), err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("clinic")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	return parse(v)
}

func parse(v *viper.Viper) (Config, error) {
	cfg := Config{
		SQLiteDSN:    strings.TrimSpace(v.GetString("sqlite_dsn")),
		TimezoneName: strings.TrimSpace(v.GetString("timezone")),
		RoomCatalog:  strings.TrimSpace(v.GetString("room_catalog")),
		LogLevel:     strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
		LogFormat:    strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
	}
	invalid := make([]string, 0, 2)

	if cfg.SQLiteDSN == "" {
		invalid = append(invalid, envName("sqlite_dsn"))
	}

	loc, err := time.LoadLocation(cfg.TimezoneName)
	if err != nil || cfg.TimezoneName == "" {
		invalid = append(invalid, envName("timezone"))
	} else {
		cfg.Location = loc
	}

	readInt := func(key string, lo, hi int, dst *int) {
		n, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
		if err != nil || n < lo || n > hi {
			invalid = append(invalid, envName(key))
			return
		}
		*dst = n
	}
	readInt("max_batch_size", 1, 1000, &cfg.MaxBatchSize)
	readInt("max_series_occurrences", 1, 1000, &cfg.MaxSeriesOccurrences)
	readInt("slot_minutes", 1, 24*60, &cfg.SlotMinutes)
	readInt("day_start_hour", 0, 23, &cfg.DayStartHour)
	readInt("day_end_hour", 1, 24, &cfg.DayEndHour)
	if cfg.DayEndHour != 0 && cfg.DayStartHour >= cfg.DayEndHour {
		invalid = append(invalid, envName("day_end_hour"))
	}

	ttl, err := time.ParseDuration(strings.TrimSpace(v.GetString("snapshot_ttl")))
	if err != nil || ttl <= 0 {
		invalid = append(invalid, envName("snapshot_ttl"))
	} else {
		cfg.SnapshotTTL = ttl
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		invalid = append(invalid, envName("log_level"))
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		invalid = append(invalid, envName("log_format"))
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid configuration values: %s", strings.Join(invalid, ", "))
	}
	return cfg, nil
}

func envName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(key)
}
