package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/EternisAI/syshealth/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log    logging.Config
	Server ServerConfig `mapstructure:"server"`
	Report ReportConfig `mapstructure:"report"`
}

type ServerConfig struct {
	Url string `mapstructure:"url"`
}

type ReportConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

var config Config

func InitConfig() {
	_ = godotenv.Load()

	viper.SetConfigName("application")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./cmd/syshealth-agent")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("log.level", logging.LOG_LEVEL_INFO)
	viper.SetDefault("log.format", "text")
	viper.SetDefault("server.url", "http://localhost:5000")
	viper.SetDefault("report.interval", 30*time.Minute)
	viper.SetDefault("report.timeout", 15*time.Second)

	_ = viper.BindEnv("server.url", "SYSHEALTH_SERVER_URL")

	// application.yml is optional for the agent.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(err)
		}
	}

	if err := viper.Unmarshal(&config); err != nil {
		panic(err)
	}

	logging.Init(config.Log)

	if logging.IsDebug(config.Log) {
		configJSON, err := json.MarshalIndent(config, "", "  ")
		if err == nil {
			fmt.Println("Config loaded:")
			fmt.Println(string(configJSON))
		}
	}
}
