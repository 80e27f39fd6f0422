// internal/config/config.go
//
// Package config 載入伺服器設定。優先序（後者覆蓋前者）：
// 內建預設值 → YAML 設定檔 → 環境變數 → 命令列旗標（由 cmd/server 套用）。
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPort 為未設定時的監聽埠。
const DefaultPort = 14002

// Config 為整個行程的設定。
type Config struct {
	Server ServerConfig `yaml:"server"`
	Admin  AdminConfig  `yaml:"admin"`
	Log    LogConfig    `yaml:"log"`
	Seed   SeedConfig   `yaml:"seed"`
}

// ServerConfig 為文字協定監聽設定。
type ServerConfig struct {
	Port         int  `yaml:"port"`
	MaxLineBytes int  `yaml:"max_line_bytes"`
	EchoRequests bool `yaml:"echo_requests"`
}

// AdminConfig 為 /health 與 /metrics 的 HTTP 監聽設定；Addr 為空時不啟動。
type AdminConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig 控制 zap logger。
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// SeedConfig 指定種子檔；File 為空時使用內嵌的示範客戶。
type SeedConfig struct {
	File string `yaml:"file"`
}

// Default 回傳內建預設值。
func Default() Config {
	return Config{
		Server: ServerConfig{Port: DefaultPort, MaxLineBytes: 4096},
		Admin:  AdminConfig{Addr: ":9102"},
		Log:    LogConfig{Level: "info"},
	}
}

// Load 依序套用預設值、path 指定的 YAML 檔與環境變數。
// path 為空字串時略過設定檔；檔案不存在視為錯誤。
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := ApplyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// ApplyEnvOverrides 以 NEWBANK_* 環境變數覆蓋設定。
func ApplyEnvOverrides(cfg *Config) error {
	if raw := strings.TrimSpace(os.Getenv("NEWBANK_PORT")); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("NEWBANK_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if addr, ok := os.LookupEnv("NEWBANK_ADMIN_ADDR"); ok {
		cfg.Admin.Addr = strings.TrimSpace(addr)
	}
	if file := strings.TrimSpace(os.Getenv("NEWBANK_SEED_FILE")); file != "" {
		cfg.Seed.File = file
	}
	if level := strings.TrimSpace(os.Getenv("NEWBANK_LOG_LEVEL")); level != "" {
		cfg.Log.Level = level
	}
	return nil
}

// Validate 檢查設定值範圍。
func (c Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Server.MaxLineBytes <= 0 {
		return errors.New("server.max_line_bytes must be positive")
	}
	return nil
}

// ListenAddr 回傳文字協定的監聽位址，例如 ":14002"。
func (c Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
