package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 应用程序配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	Document DocumentConfig `mapstructure:"document"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`                            // 服务器主机
	Port int    `mapstructure:"port" validate:"min=1,max=65535"` // 服务器端口
}

// OllamaConfig 模型服务配置
type OllamaConfig struct {
	Model       string        `mapstructure:"model"`                              // 模型名称
	BaseURL     string        `mapstructure:"base_url"`                           // 服务端点
	Temperature float32       `mapstructure:"temperature" validate:"gte=0,lte=1"` // 采样温度
	Timeout     time.Duration `mapstructure:"timeout"`                            // 单次请求超时
	MaxRetries  int           `mapstructure:"max_retries" validate:"gte=0"`       // 失败后的最大重试次数
	RetryDelay  time.Duration `mapstructure:"retry_delay"`                        // 重试前的固定延迟
	MaxTokens   int           `mapstructure:"max_tokens"`                         // 最大生成token数，0表示不限制
}

// DocumentConfig 文档处理配置
type DocumentConfig struct {
	MaxChars int `mapstructure:"max_chars" validate:"gte=0"` // 章节提取的文本预算（按rune计），0表示不限制
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level"`        // 日志级别
	File       string `mapstructure:"file"`         // 日志文件路径，空表示只输出到标准输出
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // 单个日志文件的最大体积
	MaxBackups int    `mapstructure:"max_backups"`  // 保留的旧日志文件数
	MaxAgeDays int    `mapstructure:"max_age_days"` // 旧日志文件的保留天数
}

// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	var config Config

	// 先加载.env文件（如果存在）
	_ = godotenv.Load()

	// 设置默认配置路径
	if configPath == "" {
		configPath = "config.yaml" // 默认在当前目录寻找config.yaml
	}

	// 初始化viper
	v := viper.New()

	// 设置配置文件路径和类型
	v.SetConfigFile(configPath)

	// 尝试读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// 找不到配置文件时使用默认值，其他错误直接返回
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else if os.IsNotExist(err) {
			log.Printf("Warning: Config file not found at %s, using defaults", configPath)
		} else {
			return nil, fmt.Errorf("failed to read config file: %v", err)
		}
	} else {
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	}

	// 设置默认值
	setDefaults(v)

	// 支持环境变量覆盖，如OLLAMA_MODEL、OLLAMA_BASE_URL、OLLAMA_TEMPERATURE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 解析配置到结构体
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	// 处理历史遗留的环境变量名
	resConfig := processEnvironmentVariables(&config)

	// 校验配置合法性
	if err := validateConfig(resConfig); err != nil {
		return nil, err
	}

	return resConfig, nil
}

// processEnvironmentVariables 处理不符合viper键名规则的环境变量
// API_HOST和API_PORT是部署脚本一直在用的名字，继续支持
func processEnvironmentVariables(cfg *Config) *Config {
	if host := os.Getenv("API_HOST"); host != "" {
		cfg.Server.Host = host
	}

	if port := os.Getenv("API_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		} else {
			log.Printf("Warning: invalid API_PORT value %q, keeping %d", port, cfg.Server.Port)
		}
	}

	return cfg
}

// validateConfig 校验配置取值范围
func validateConfig(cfg *Config) error {
	validate := validator.New()
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %v", err)
	}
	return nil
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	// 服务器默认配置
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8000)

	// 模型服务默认配置
	v.SetDefault("ollama.model", "llama3.1")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.temperature", 0.7)
	v.SetDefault("ollama.timeout", "60s")
	v.SetDefault("ollama.max_retries", 1)
	v.SetDefault("ollama.retry_delay", "500ms")
	v.SetDefault("ollama.max_tokens", 0)

	// 文档处理默认配置
	v.SetDefault("document.max_chars", 12000)

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
