package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string   `mapstructure:"listen_addr"`
	Port              string   `mapstructure:"port"`
	DatabasePath      string   `mapstructure:"database_path"`
	SessionSecret     string   `mapstructure:"session_secret"`
	GinMode           string   `mapstructure:"gin_mode"`
	AllowedOrigins    []string `mapstructure:"allowed_origins"`
	SuperRootUserName string   `mapstructure:"super_root_user_name"`
	SuperRootPassword string   `mapstructure:"super_root_password"`
}

// LoadDotEnv 读取工作目录下的 .env，文件不存在时忽略。
func LoadDotEnv(paths ...string) error {
	err := godotenv.Load(paths...)
	if err != nil && errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() AppConfig {
	port := env("PORT", "8080")

	listenAddr := env("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      env("DATABASE_PATH", "deepwork.db"),
		SessionSecret:     env("SESSION_SECRET", "deepwork-dev-secret"),
		GinMode:           env("GIN_MODE", "release"),
		AllowedOrigins:    splitList(os.Getenv("ALLOWED_ORIGINS")),
		SuperRootUserName: env("SUPER_ROOT_USER_NAME", ""),
		SuperRootPassword: env("SUPER_ROOT_PASSWORD", ""),
	}
}

// LoadFile 在环境变量配置之上叠加 YAML 文件中的非空项，path 为空时等同于 Load。
func LoadFile(path string) (AppConfig, error) {
	cfg := Load()
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	var overlay AppConfig
	if err := v.Unmarshal(&overlay); err != nil {
		return cfg, fmt.Errorf("decode config %s: %w", path, err)
	}

	merge(&cfg.ListenAddr, overlay.ListenAddr)
	merge(&cfg.Port, overlay.Port)
	merge(&cfg.DatabasePath, overlay.DatabasePath)
	merge(&cfg.SessionSecret, overlay.SessionSecret)
	merge(&cfg.GinMode, overlay.GinMode)
	merge(&cfg.SuperRootUserName, overlay.SuperRootUserName)
	merge(&cfg.SuperRootPassword, overlay.SuperRootPassword)
	if len(overlay.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = overlay.AllowedOrigins
	}
	// 文件只改了端口时监听地址跟随端口
	if overlay.Port != "" && overlay.ListenAddr == "" && strings.TrimSpace(os.Getenv("LISTEN_ADDR")) == "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", cfg.Port)
	}
	return cfg, nil
}

func env(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func merge(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}

func splitList(raw string) []string {
	var items []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
