package main

import (
	"fmt"
	"strings"

	"TG_adrewards/internal/model"
	"TG_adrewards/internal/repository"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`

	TelegramAuth TelegramAuthConfig `yaml:"telegramAuth"`
	Rewards      RewardsConfig      `yaml:"rewards"`

	// Ads is the catalog loaded into the store on startup; the admin API
	// can extend and toggle it afterwards.
	Ads []AdConfig `yaml:"ads"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type TelegramAuthConfig struct {
	TelegramBotToken string `yaml:"telegramBotToken"`
	DebugMode        bool   `yaml:"debugMode"`
	AdminTelegramID  int64  `yaml:"adminTelegramId"`
}

type RewardsConfig struct {
	ReferralBonus float64 `yaml:"referralBonus"`
}

type AdConfig struct {
	Title         string  `yaml:"title"`
	Description   string  `yaml:"description"`
	URL           string  `yaml:"url"`
	Reward        float64 `yaml:"reward"`
	CooldownHours int     `yaml:"cooldownHours"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) AdCatalog() []model.Advertisement {
	ads := make([]model.Advertisement, len(c.Ads))
	for i, ad := range c.Ads {
		ads[i] = model.Advertisement{
			Title:         ad.Title,
			Description:   ad.Description,
			URL:           ad.URL,
			Reward:        ad.Reward,
			CooldownHours: ad.CooldownHours,
		}
	}
	return ads
}
