package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EternisAI/syshealth/internal/api/http"
	"github.com/EternisAI/syshealth/internal/db"
	"github.com/EternisAI/syshealth/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log  logging.Config
	Http http.Config
	DB   db.Config  `mapstructure:"db"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowOrigins string `mapstructure:"allow_origins"`
}

var config Config

func ParseCommaSeparated(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func InitConfig() {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/syshealth-server")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("log.level", logging.LOG_LEVEL_INFO)
	viper.SetDefault("log.format", "text")
	viper.SetDefault("http.port", 5000)
	viper.SetDefault("cors.allow_origins", "*")

	_ = viper.BindEnv("db.url", "DATABASE_URL")

	if err := viper.ReadInConfig(); err != nil {
		panic(err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(err)
	}

	logging.Init(config.Log)

	if logging.IsDebug(config.Log) {
		redacted := config
		redacted.DB.Url = "<redacted>"
		configJSON, err := json.MarshalIndent(redacted, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
