package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // 容器镜像可能不带时区数据库

	"github.com/spf13/viper"
)

// 存储驱动名称
const (
	DriverCSV      = "csv"
	DriverSheets   = "sheets"
	DriverWorkbook = "workbook"
	DriverPostgres = "postgres"
	DriverNone     = "none" // 仅用于 writer_driver，表示只读部署
)

// Config 应用全局配置结构体
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig HTTP 服务器配置
type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// StoreConfig 表格后端配置
//
// 读与写可以使用不同驱动：默认通过匿名 CSV 导出读取，通过授权 API 追加。
// writer_driver 设为 none（或留空）即为只读部署。
type StoreConfig struct {
	ReaderDriver    string        `mapstructure:"reader_driver"`
	WriterDriver    string        `mapstructure:"writer_driver"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id"`
	ExportBaseURL   string        `mapstructure:"export_base_url"`  // 为空时按 spreadsheet_id 拼接
	CredentialsFile string        `mapstructure:"credentials_file"` // 服务账号密钥
	WorkbookPath    string        `mapstructure:"workbook_path"`    // workbook 驱动使用的本地 .xlsx
	StaffSheet      string        `mapstructure:"staff_sheet"`
	EventSheet      string        `mapstructure:"event_sheet"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// ExportURL 匿名 CSV 导出的基础地址
func (c *StoreConfig) ExportURL() string {
	if c.ExportBaseURL != "" {
		return strings.TrimRight(c.ExportBaseURL, "/")
	}
	return "https://docs.google.com/spreadsheets/d/" + c.SpreadsheetID
}

// DatabaseConfig PostgreSQL 数据库配置（仅 postgres 驱动使用）
type DatabaseConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Name         string `mapstructure:"name"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	SSLMode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
}

// DSN 生成 PostgreSQL 连接字符串
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig 读缓存配置
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// AuthConfig 共享口令与会话配置
type AuthConfig struct {
	Password     string        `mapstructure:"password"`      // 明文口令，仅在未配置 hash 时使用
	PasswordHash string        `mapstructure:"password_hash"` // bcrypt hash
	JWTSecret    string        `mapstructure:"jwt_secret"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	LoginLimit   int           `mapstructure:"login_limit"`  // 窗口内允许的登录尝试次数
	LoginWindow  time.Duration `mapstructure:"login_window"` // 登录限流窗口
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AppConfig 业务相关配置
type AppConfig struct {
	Timezone string `mapstructure:"timezone"` // 活动日期默认值所用时区
	TopN     int    `mapstructure:"top_n"`    // 排行榜默认条数
}

// Location 返回业务时区，无法解析时回退 UTC
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load 从配置文件与环境变量加载配置
// 优先级：环境变量 > 配置文件 > 默认值
func Load(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadCLI 命令行工具加载配置：不签发会话，跳过口令与 JWT 校验
func LoadCLI(path string) (*Config, error) {
	cfg, err := load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateStore(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(path string) (*Config, error) {
	v := viper.New()

	// ── 默认值 ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("store.reader_driver", DriverCSV)
	v.SetDefault("store.writer_driver", DriverSheets)
	v.SetDefault("store.staff_sheet", "Staff Roster")
	v.SetDefault("store.event_sheet", "Event Log")
	v.SetDefault("store.spreadsheet_id", "")
	v.SetDefault("store.export_base_url", "")
	v.SetDefault("store.credentials_file", "")
	v.SetDefault("store.workbook_path", "data/staff-tracker.xlsx")
	v.SetDefault("store.timeout", "10s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "staff_tracker")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 10)
	v.SetDefault("db.max_idle_conns", 5)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("cache.ttl", "5s")

	// 无默认值的键也要登记，否则 Unmarshal 读不到对应环境变量
	v.SetDefault("auth.password", "")
	v.SetDefault("auth.password_hash", "")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.session_ttl", "8h")
	v.SetDefault("auth.login_limit", 10)
	v.SetDefault("auth.login_window", "1m")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("app.timezone", "Asia/Dubai")
	v.SetDefault("app.top_n", 10)

	// ── 配置文件 ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── 环境变量 ──
	v.SetEnvPrefix("STAFF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}
	return &cfg, nil
}

// Validate 校验关键配置项
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 不能为空")
	}
	if len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("配置校验失败: auth.jwt_secret 长度不能少于 16 字符")
	}
	if c.Auth.Password == "" && c.Auth.PasswordHash == "" {
		return fmt.Errorf("配置校验失败: auth.password 与 auth.password_hash 至少配置一项")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("配置校验失败: server.port 必须在 1-65535 之间")
	}
	return c.ValidateStore()
}

// ValidateStore 校验表格后端相关配置
func (c *Config) ValidateStore() error {
	if c.Store.StaffSheet == "" || c.Store.EventSheet == "" {
		return fmt.Errorf("配置校验失败: store.staff_sheet 与 store.event_sheet 不能为空")
	}

	switch c.Store.ReaderDriver {
	case DriverCSV, DriverSheets, DriverWorkbook, DriverPostgres:
	default:
		return fmt.Errorf("配置校验失败: 不支持的读取驱动 %q", c.Store.ReaderDriver)
	}
	switch c.Store.WriterDriver {
	case "", DriverNone, DriverSheets, DriverWorkbook, DriverPostgres:
	case DriverCSV:
		return fmt.Errorf("配置校验失败: csv 导出只读，不能作为写入驱动")
	default:
		return fmt.Errorf("配置校验失败: 不支持的写入驱动 %q", c.Store.WriterDriver)
	}

	if (c.UsesDriver(DriverCSV) || c.UsesDriver(DriverSheets)) && c.Store.SpreadsheetID == "" && c.Store.ExportBaseURL == "" {
		return fmt.Errorf("配置校验失败: store.spreadsheet_id 不能为空")
	}
	if c.UsesDriver(DriverSheets) && c.Store.CredentialsFile == "" {
		return fmt.Errorf("配置校验失败: sheets 驱动需要 store.credentials_file")
	}
	if c.UsesDriver(DriverWorkbook) && c.Store.WorkbookPath == "" {
		return fmt.Errorf("配置校验失败: workbook 驱动需要 store.workbook_path")
	}
	if c.Store.Timeout <= 0 {
		return fmt.Errorf("配置校验失败: store.timeout 必须大于 0")
	}
	return nil
}

// ReadOnly writer_driver 为空或 none 时不创建写入驱动，所有写操作返回只读错误
func (c *Config) ReadOnly() bool {
	return c.Store.WriterDriver == "" || c.Store.WriterDriver == DriverNone
}

// UsesDriver 判断读或写是否使用了指定驱动
func (c *Config) UsesDriver(driver string) bool {
	return c.Store.ReaderDriver == driver || c.Store.WriterDriver == driver
}
