// Package config carga la configuración de vetclinic con viper:
// defaults, archivo YAML opcional, variables VETCLINIC_* y flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix      = "VETCLINIC"
	DefaultAppName = "vetclinic"
	DefaultLogFile = "clinica_veterinaria.log"
)

type Config struct {
	AppName           string    `mapstructure:"app_name"`
	PetsFile          string    `mapstructure:"pets_file"`
	ConsultationsFile string    `mapstructure:"consultations_file"`
	Log               LogConfig `mapstructure:"log"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	// File vacío => stderr.
	File string `mapstructure:"file"`
}

func Defaults() Config {
	return Config{
		AppName:           DefaultAppName,
		PetsFile:          "mascotas_dueños.csv",
		ConsultationsFile: "consultas.json",
		Log: LogConfig{
			Level:  "info",
			Format: "text",
			File:   DefaultLogFile,
		},
	}
}

// flagKeys mapea flags de la CLI a keys de configuración.
var flagKeys = map[string]string{
	"pets-file":          "pets_file",
	"consultations-file": "consultations_file",
	"log-level":          "log.level",
	"log-format":         "log.format",
	"log-file":           "log.file",
}

// Load resuelve la configuración. configFile vacío busca vetclinic.yaml en el
// directorio actual; si no existe se siguen usando defaults + env + flags.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("app_name", d.AppName)
	v.SetDefault("pets_file", d.PetsFile)
	v.SetDefault("consultations_file", d.ConsultationsFile)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file", d.Log.File)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("vetclinic")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.PetsFile) == "" {
		return errors.New("pets_file is required")
	}
	if strings.TrimSpace(c.ConsultationsFile) == "" {
		return errors.New("consultations_file is required")
	}
	if c.PetsFile == c.ConsultationsFile {
		return fmt.Errorf("pets_file and consultations_file must differ (both %q)", c.PetsFile)
	}
	return nil
}

// OpenLogOutput abre el archivo de log en modo append. Devuelve stderr si no hay archivo.
func (c LogConfig) OpenLogOutput() (*os.File, func() error, error) {
	if strings.TrimSpace(c.File) == "" {
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", c.File, err)
	}
	return f, f.Close, nil
}
