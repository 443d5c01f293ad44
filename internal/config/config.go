package config

import (
	"fmt"
	"strings"

	"github.com/shopora/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	UserJWT  JWTConfig      `mapstructure:"user_jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Email    EmailConfig    `mapstructure:"email"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Captcha  CaptchaConfig  `mapstructure:"captcha"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置，driver 支持 sqlite 与 postgres
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"`
	DSN    string             `mapstructure:"dsn"`
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig Token 签发配置，管理端与商城用户各持一份
type JWTConfig struct {
	SecretKey             string `mapstructure:"secret"`
	ExpireHours           int    `mapstructure:"expire_hours"`
	RememberMeExpireHours int    `mapstructure:"remember_me_expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// EmailConfig 邮件服务配置
type EmailConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
	UseTLS   bool   `mapstructure:"use_tls"`
	UseSSL   bool   `mapstructure:"use_ssl"`
}

// PaymentConfig 支付网关配置
type PaymentConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	AuthToken string `mapstructure:"auth_token"`
}

// CaptchaConfig 验证码配置
type CaptchaConfig struct {
	Provider string             `mapstructure:"provider"`
	Scenes   []string           `mapstructure:"scenes"`
	Image    CaptchaImageConfig `mapstructure:"image"`
}

// CaptchaImageConfig 图片验证码配置
type CaptchaImageConfig struct {
	Length        int `mapstructure:"length"`
	Width         int `mapstructure:"width"`
	Height        int `mapstructure:"height"`
	NoiseCount    int `mapstructure:"noise_count"`
	ExpireSeconds int `mapstructure:"expire_seconds"`
	MaxStore      int `mapstructure:"max_store"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
	PasswordPolicy PasswordPolicyConfig `mapstructure:"password_policy"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// PasswordPolicyConfig 密码策略配置
type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

func setDefaults() {
	defaults := map[string]interface{}{
		"server.host": "0.0.0.0",
		"server.port": "8080",
		"server.mode": "debug",

		"log.dir":          "",
		"log.filename":     "shopora.log",
		"log.max_size_mb":  100,
		"log.max_backups":  7,
		"log.max_age_days": 30,
		"log.compress":     true,

		"database.driver":                          "sqlite",
		"database.dsn":                             "./db/shopora.db",
		"database.pool.max_open_conns":             1,
		"database.pool.max_idle_conns":             1,
		"database.pool.conn_max_lifetime_seconds":  0,
		"database.pool.conn_max_idle_time_seconds": 0,

		"jwt.secret":                        "change-me-in-production",
		"jwt.expire_hours":                  24,
		"user_jwt.secret":                   "user-change-me-in-production",
		"user_jwt.expire_hours":             24,
		"user_jwt.remember_me_expire_hours": 168,

		"redis.enabled":  true,
		"redis.host":     "127.0.0.1",
		"redis.port":     6379,
		"redis.password": "",
		"redis.db":       0,
		"redis.prefix":   "sp",

		"queue.enabled":     true,
		"queue.host":        "127.0.0.1",
		"queue.port":        6379,
		"queue.password":    "",
		"queue.db":          1,
		"queue.concurrency": 10,
		"queue.queues": map[string]int{
			"default":  10,
			"critical": 5,
		},

		"cors.allowed_origins": []string{"*"},
		"cors.allowed_methods": []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		"cors.allowed_headers": []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
			"X-Session-Id",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           600,

		"security.login_rate_limit.window_seconds": 300,
		"security.login_rate_limit.max_attempts":   5,
		"security.login_rate_limit.block_seconds":  900,
		"security.password_policy.min_length":      8,
		"security.password_policy.require_upper":   true,
		"security.password_policy.require_lower":   true,
		"security.password_policy.require_number":  true,
		"security.password_policy.require_special": false,

		"email.enabled":   false,
		"email.host":      "",
		"email.port":      587,
		"email.username":  "",
		"email.password":  "",
		"email.from":      "",
		"email.from_name": "",
		"email.use_tls":   true,
		"email.use_ssl":   false,

		"payment.base_url":   "",
		"payment.auth_token": "",

		"captcha.provider":             "none",
		"captcha.scenes":               []string{},
		"captcha.image.length":         5,
		"captcha.image.width":          240,
		"captcha.image.height":         80,
		"captcha.image.noise_count":    2,
		"captcha.image.expire_seconds": 300,
		"captcha.image.max_store":      10240,
	}
	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
}

// Load 从 config.yml 加载配置，配置文件缺失时回退到环境变量与默认值
func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./")
	viper.AddConfigPath("../")
	viper.AddConfigPath("./etc")

	setDefaults()

	// 环境变量支持，如 server.port -> SERVER_PORT
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("config unmarshal failed: %w", err))
	}

	return &cfg
}
