package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"recording_backend/internal/validator"

	"gopkg.in/yaml.v2"
)

const defaultConfigPath = "config/config.yaml"

type Config struct {
	Server struct {
		Host            string        `yaml:"host"`
		Port            int           `yaml:"port" validate:"min=1,max=65535"`
		Env             string        `yaml:"env" validate:"oneof=development production test"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Storage struct {
		Type      string `yaml:"type" validate:"oneof=local cloudflare_r2"` // local, cloudflare_r2
		BasePath  string `yaml:"base_path" validate:"required_if=Type local"`
		Bucket    string `yaml:"bucket" validate:"required_if=Type cloudflare_r2"`
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Endpoint  string `yaml:"endpoint" validate:"required_if=Type cloudflare_r2"`
	} `yaml:"storage"`

	Upload struct {
		// MaxSize в байтах
		MaxSize int64 `yaml:"max_size" validate:"min=1"`

		// AllowedExtensions без точки: wav
		AllowedExtensions []string `yaml:"allowed_extensions" validate:"min=1,dive,file-ext"`

		// FieldName - имя multipart-поля с файлом
		FieldName string `yaml:"field_name" validate:"required"`

		// Mode: raw, multipart, auto
		Mode string `yaml:"mode" validate:"oneof=raw multipart auto"`
	} `yaml:"upload"`

	RateLimit struct {
		Limit float64 `yaml:"limit" validate:"min=0"` // запросов в секунду на IP, 0 = выключено
		Burst int     `yaml:"burst" validate:"min=0"`
	} `yaml:"rate_limit"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 5000
	cfg.Server.Env = "production"
	cfg.Server.ReadTimeout = 30 * time.Second
	cfg.Server.WriteTimeout = 30 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "static/uploads"

	cfg.Upload.MaxSize = 16 * 1024 * 1024 // 16MB
	cfg.Upload.AllowedExtensions = []string{"wav"}
	cfg.Upload.FieldName = "audio"
	cfg.Upload.Mode = "auto"

	cfg.RateLimit.Limit = 5
	cfg.RateLimit.Burst = 10

	return &cfg
}

// Load собирает конфигурацию: значения по умолчанию, затем YAML-файл
// (CONFIG_PATH или config/config.yaml), затем переменные окружения.
func Load() (*Config, error) {
	cfg := Default()

	configPath, explicit := os.LookupEnv("CONFIG_PATH")
	if !explicit {
		configPath = defaultConfigPath
	}

	if err := cfg.loadFile(configPath); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file at %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file at %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("SERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SERVER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		c.Server.Env = v
	}

	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		c.Storage.Type = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.Storage.BasePath = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		c.Storage.Bucket = v
	}
	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		c.Storage.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY"); v != "" {
		c.Storage.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_KEY"); v != "" {
		c.Storage.SecretKey = v
	}

	if v := os.Getenv("UPLOAD_MAX_SIZE"); v != "" {
		size, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid UPLOAD_MAX_SIZE %q: %w", v, err)
		}
		c.Upload.MaxSize = size
	}
	if v := os.Getenv("UPLOAD_ALLOWED_EXTENSIONS"); v != "" {
		c.Upload.AllowedExtensions = strings.Split(v, ",")
	}
	if v := os.Getenv("UPLOAD_FIELD_NAME"); v != "" {
		c.Upload.FieldName = v
	}
	if v := os.Getenv("UPLOAD_MODE"); v != "" {
		c.Upload.Mode = v
	}

	return nil
}

// normalize приводит расширения к виду "wav": без точки, в нижнем регистре.
func (c *Config) normalize() {
	exts := make([]string, 0, len(c.Upload.AllowedExtensions))
	for _, ext := range c.Upload.AllowedExtensions {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	c.Upload.AllowedExtensions = exts
	c.Upload.Mode = strings.ToLower(strings.TrimSpace(c.Upload.Mode))
}

// Validate проверяет конфигурацию по тегам validate.
func (c *Config) Validate() error {
	if err := validator.New().Validate(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Address возвращает адрес для http.Server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
