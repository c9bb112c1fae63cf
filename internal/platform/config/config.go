package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Cfg 是一个全局变量，用于存储所有应用程序的配置
var Cfg *Config

// Config 结构体定义了应用程序的所有配置项
// 它与 config.yaml 文件的结构完全对应
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Remote    RemoteConfig    `mapstructure:"remote"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Dedup     DedupConfig     `mapstructure:"dedup"`
	Listing   ListingConfig   `mapstructure:"listing"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Complaint ComplaintConfig `mapstructure:"complaint"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig 定义了服务器相关的配置
type ServerConfig struct {
	Mode    string     `mapstructure:"mode"`
	Address string     `mapstructure:"address"`
	Cors    CorsConfig `mapstructure:"cors"`
	// CookieSecret 用于签名访客Cookie。为空时启动时随机生成，重启后所有访客身份失效。
	CookieSecret string `mapstructure:"cookieSecret"`
}

// CorsConfig 定义了CORS相关的配置
type CorsConfig struct {
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
}

// RemoteConfig 定义了外部托管服务的地址
type RemoteConfig struct {
	ProfilesURL  string `mapstructure:"profilesURL"`
	UploadURL    string `mapstructure:"uploadURL"`
	ComplaintURL string `mapstructure:"complaintURL"`
	// Timeout 为0表示不设置超时
	Timeout time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig 定义了数据库和缓存相关的配置
type DatabaseConfig struct {
	Redis  RedisConfig  `mapstructure:"redis"`
	Sqlite SqliteConfig `mapstructure:"sqlite"`
}

// RedisConfig 定义了Redis的配置
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SqliteConfig 定义了SQLite的配置
type SqliteConfig struct {
	Path string `mapstructure:"path"`
}

// DedupConfig 定义了浏览去重标记的持久化配置
type DedupConfig struct {
	FlushInterval time.Duration `mapstructure:"flushInterval"`
}

// ListingConfig 定义了列表快照的配置
type ListingConfig struct {
	// RefreshInterval 为0表示只在启动和变更后重新加载
	RefreshInterval time.Duration `mapstructure:"refreshInterval"`
}

// AdminConfig 定义了管理入口的口令。
// 这只是一个界面开关，不是安全边界。
type AdminConfig struct {
	Password string `mapstructure:"password"`
}

// ComplaintConfig 定义了申诉的频率限制
type ComplaintConfig struct {
	// MaxPerDay 是每个IP在24小时内允许提交的申诉数，0表示不限制
	MaxPerDay int `mapstructure:"maxPerDay"`
}

// UploadConfig 定义了图片上传后端
type UploadConfig struct {
	// Backend 为 "remote" 或 "minio"
	Backend string      `mapstructure:"backend"`
	Minio   MinioConfig `mapstructure:"minio"`
}

// MinioConfig 定义了MinIO/S3兼容存储的配置
type MinioConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"accessKey"`
	SecretKey     string `mapstructure:"secretKey"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"useSSL"`
	Region        string `mapstructure:"region"`
	PublicBaseURL string `mapstructure:"publicBaseURL"`
}

// LogConfig 定义了日志配置
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

const (
	UploadBackendRemote = "remote"
	UploadBackendMinio  = "minio"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.cors.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.cookieSecret", "")
	// 没有默认值的键无法被 AutomaticEnv 覆盖，这里显式登记为空
	v.SetDefault("remote.profilesURL", "")
	v.SetDefault("remote.uploadURL", "")
	v.SetDefault("remote.complaintURL", "")
	v.SetDefault("database.redis.password", "")
	v.SetDefault("admin.password", "")
	v.SetDefault("complaint.maxPerDay", 5)
	v.SetDefault("upload.minio.endpoint", "")
	v.SetDefault("upload.minio.accessKey", "")
	v.SetDefault("upload.minio.secretKey", "")
	v.SetDefault("upload.minio.bucket", "")
	v.SetDefault("upload.minio.useSSL", false)
	v.SetDefault("upload.minio.publicBaseURL", "")
	v.SetDefault("log.development", false)
	v.SetDefault("remote.timeout", 0)
	v.SetDefault("database.sqlite.path", "famelist.db")
	v.SetDefault("database.redis.address", "localhost:6379")
	v.SetDefault("database.redis.db", 0)
	v.SetDefault("dedup.flushInterval", time.Minute)
	v.SetDefault("listing.refreshInterval", 0)
	v.SetDefault("upload.backend", UploadBackendRemote)
	v.SetDefault("upload.minio.region", "us-east-1")
	v.SetDefault("log.level", "info")
}

// LoadConfig 函数负责查找、加载和解析配置文件
// 它会依次在传入的路径、./config 和 . 中查找名为 config.yaml 的文件
func LoadConfig(paths ...string) (*Config, error) {
	// .env 不存在不是错误
	_ = godotenv.Load()

	v := viper.New()

	// 1. 设置配置文件名和类型
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// 2. 添加配置文件搜索路径
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	// 3. 允许通过环境变量覆盖配置，例如 REMOTE_PROFILESURL=https://...
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	// 4. 读取配置文件。配置文件缺失时完全依赖默认值和环境变量
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("无法读取配置文件: %w", err)
		}
	}

	// 5. 将配置反序列化到结构体中
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("无法解析配置: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// 6. 将加载的配置赋值给全局变量
	Cfg = &cfg

	return Cfg, nil
}

// Validate 检查启动所必需的配置项
func (c *Config) Validate() error {
	if c.Remote.ProfilesURL == "" {
		return errors.New("配置缺失: remote.profilesURL")
	}
	switch c.Upload.Backend {
	case UploadBackendRemote:
		if c.Remote.UploadURL == "" {
			return errors.New("配置缺失: remote.uploadURL")
		}
	case UploadBackendMinio:
		if c.Upload.Minio.Endpoint == "" || c.Upload.Minio.Bucket == "" {
			return errors.New("配置缺失: upload.minio.endpoint 或 upload.minio.bucket")
		}
	default:
		return fmt.Errorf("未知的上传后端: %q", c.Upload.Backend)
	}
	if c.Remote.Timeout < 0 {
		return errors.New("remote.timeout 不能为负数")
	}
	if c.Dedup.FlushInterval <= 0 {
		return errors.New("dedup.flushInterval 必须大于0")
	}
	if c.Listing.RefreshInterval < 0 {
		return errors.New("listing.refreshInterval 不能为负数")
	}
	return nil
}
