package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DEFAULT_LISTEN = "localhost:7328"
	DEFAULT_YEAR   = 2022
	// 最大请求体50MiB
	DEFAULT_MAX_BODY_BYTES = 50 << 20
)

// Config 服务配置，优先级：命令行 > 环境变量 > 配置文件 > 默认值
type Config struct {
	Listen   string `yaml:"listen"`
	LogLevel string `yaml:"log-level"`
	Pprof    string `yaml:"pprof"`
	// 快照位置 [format: {dir} or {db}.{col}]
	Store    string `yaml:"store"`
	MongoURI string `yaml:"mongo-uri"`
	// 快照下载缓存目录，空为不缓存
	Cache string `yaml:"cache"`
	// 当前年份，可被修改；其他年份只读
	Year    int `yaml:"year"`
	Workers int `yaml:"workers"`
	// 请求体上限/byte
	MaxBodyBytes int `yaml:"max-body-bytes"`
}

func DefaultConfig() Config {
	return Config{
		Listen:       DEFAULT_LISTEN,
		LogLevel:     "info",
		Pprof:        "",
		Year:         DEFAULT_YEAR,
		MaxBodyBytes: DEFAULT_MAX_BODY_BYTES,
	}
}

// ReadConfig 读取yaml配置文件，file为空时只用默认值
func ReadConfig(file string) (Config, error) {
	config := DefaultConfig()
	if file == "" {
		return config, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return config, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("parse config file %s: %w", file, err)
	}
	return config, nil
}

// ApplyEnv 读取.env（可选）与CONNECTIVITY_*环境变量
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	c.Listen = getEnv("CONNECTIVITY_LISTEN", c.Listen)
	c.LogLevel = getEnv("CONNECTIVITY_LOG_LEVEL", c.LogLevel)
	c.Pprof = getEnv("CONNECTIVITY_PPROF", c.Pprof)
	c.Store = getEnv("CONNECTIVITY_STORE", c.Store)
	c.MongoURI = getEnv("MONGO_URI", c.MongoURI)
	c.Cache = getEnv("CONNECTIVITY_CACHE", c.Cache)
	var err error
	if c.Year, err = getEnvInt("CONNECTIVITY_YEAR", c.Year); err != nil {
		return err
	}
	if c.Workers, err = getEnvInt("CONNECTIVITY_WORKERS", c.Workers); err != nil {
		return err
	}
	if c.MaxBodyBytes, err = getEnvInt("CONNECTIVITY_MAX_BODY_BYTES", c.MaxBodyBytes); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if _, ok := LOG_LEVELS[c.LogLevel]; !ok {
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	if c.Store == "" {
		return errors.New("store is required [format: {dir} or {db}.{col}]")
	}
	if c.Year <= 0 {
		return fmt.Errorf("invalid year: %d", c.Year)
	}
	if c.Workers < 0 {
		return fmt.Errorf("invalid workers: %d", c.Workers)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("invalid max body bytes: %d", c.MaxBodyBytes)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", key, err)
	}
	return i, nil
}
