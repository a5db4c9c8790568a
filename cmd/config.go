package main

import (
	"errors"
	"strings"
	"time"

	"awareness_bell/internal/logger"
	"awareness_bell/internal/notify"

	"github.com/spf13/viper"
)

const envPrefix = "BELL"

// settings is the resolved configuration.
type settings struct {
	Port      string
	DBPath    string
	Log       logger.Options
	Autostart bool

	Tone          notify.ToneConfig
	ToneTimeout   time.Duration
	Speech        notify.SpeechConfig
	SpeechTimeout time.Duration

	QuotesPath  string
	QuotesWatch bool

	SigningKey string
	TokenTTL   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("db.path", "bell.db")

	v.SetDefault("log.level", logger.InfoLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 10)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)

	v.SetDefault("bell.autostart", false)

	v.SetDefault("tone.path", "assets/bell.mp3")
	v.SetDefault("tone.command", "ffplay")
	v.SetDefault("tone.args", []string{"-nodisp", "-autoexit", "-loglevel", "quiet", notify.FilePlaceholder})
	v.SetDefault("tone.timeout", "2m")

	v.SetDefault("speech.command", "espeak-ng")
	v.SetDefault("speech.args", []string{"-s", "125", notify.TextPlaceholder})
	v.SetDefault("speech.timeout", "2m")

	v.SetDefault("quotes.path", "quotes.txt")
	v.SetDefault("quotes.watch", true)

	v.SetDefault("auth.signing_key", "")
	v.SetDefault("auth.token_ttl", "1h")
}

// loadConfig reads configs/config.yml when present and applies BELL_*
// environment overrides.
func loadConfig() (*settings, error) {
	v := viper.New()
	setDefaults(v)

	v.AddConfigPath("configs")
	v.SetConfigName("config")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *settings {
	return &settings{
		Port:   v.GetString("port"),
		DBPath: v.GetString("db.path"),
		Log: logger.Options{
			Level:      v.GetString("log.level"),
			File:       v.GetString("log.file"),
			MaxSizeMB:  v.GetInt("log.max_size_mb"),
			MaxBackups: v.GetInt("log.max_backups"),
			MaxAgeDays: v.GetInt("log.max_age_days"),
		},
		Autostart: v.GetBool("bell.autostart"),
		Tone: notify.ToneConfig{
			Command: v.GetString("tone.command"),
			Args:    v.GetStringSlice("tone.args"),
			Asset:   v.GetString("tone.path"),
		},
		ToneTimeout: v.GetDuration("tone.timeout"),
		Speech: notify.SpeechConfig{
			Command: v.GetString("speech.command"),
			Args:    v.GetStringSlice("speech.args"),
		},
		SpeechTimeout: v.GetDuration("speech.timeout"),
		QuotesPath:    v.GetString("quotes.path"),
		QuotesWatch:   v.GetBool("quotes.watch"),
		SigningKey:    v.GetString("auth.signing_key"),
		TokenTTL:      v.GetDuration("auth.token_ttl"),
	}
}
