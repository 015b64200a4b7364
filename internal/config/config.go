package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 全局配置结构体（完全匹配config.yaml）
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`   // 服务器配置
	Database DatabaseConfig `mapstructure:"database"` // PostgreSQL配置
	Log      LogConfig      `mapstructure:"log"`      // 日志配置
	Browser  BrowserConfig  `mapstructure:"browser"`  // 无头浏览器与游戏账号
	Crawl    CrawlConfig    `mapstructure:"crawl"`    // 爬取节奏与上限
	News     NewsConfig     `mapstructure:"news"`     // 新闻解析
	Schedule ScheduleConfig `mapstructure:"schedule"` // 定时任务
	Export   ExportConfig   `mapstructure:"export"`   // CSV导出
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port int    `mapstructure:"port"` // 服务端口
	Mode string `mapstructure:"mode"` // Gin运行模式：debug/release/test
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`               // 连接DSN（URL形式）
	MaxOpenConns    int           `mapstructure:"max_open_conns"`    // 最大打开连接数
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`    // 最大空闲连接数
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"` // 连接最大存活时间
	LogLevel        string        `mapstructure:"log_level"`         // GORM日志级别：silent/error/warn/info
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug/info/warn/error
	Format string `mapstructure:"format"` // text/json
}

// BrowserConfig 浏览器会话配置
type BrowserConfig struct {
	BaseURL      string        `mapstructure:"base_url"`      // 游戏地址，以 / 结尾
	Email        string        `mapstructure:"email"`         // 登录邮箱
	Password     string        `mapstructure:"password"`      // 登录密码
	Headless     bool          `mapstructure:"headless"`      // 是否无头模式
	UserAgent    string        `mapstructure:"user_agent"`    // 自定义UA
	Proxy        string        `mapstructure:"proxy"`         // 代理地址
	LoginTimeout time.Duration `mapstructure:"login_timeout"` // 登录等待上限
	WaitTimeout  time.Duration `mapstructure:"wait_timeout"`  // 等待元素出现的上限
}

// CrawlConfig 爬取配置
type CrawlConfig struct {
	ParkStartID          int64         `mapstructure:"park_start_id"`          // 公园顺序爬取的起始id
	RequestDelay         time.Duration `mapstructure:"request_delay"`          // 上一页处理完到下一次请求的间隔
	MaxConsecutiveErrors int           `mapstructure:"max_consecutive_errors"` // 连续失败多少次视为到达末尾
	MaxItems             int           `mapstructure:"max_items"`              // 单次最多成功入库数，0 不限
	PageSettleDelay      time.Duration `mapstructure:"page_settle_delay"`      // 导航后的等待
	OuterSettleDelay     time.Duration `mapstructure:"outer_settle_delay"`     // 选择国家后的等待
	InnerSettleDelay     time.Duration `mapstructure:"inner_settle_delay"`     // 选择城市后的等待
	ModalSettleDelay     time.Duration `mapstructure:"modal_settle_delay"`     // 打开商店弹窗后的等待
	MainPlayer           string        `mapstructure:"main_player"`            // 登录账号在游戏中的玩家名，玩家数据历史挂到该玩家
}

// NewsConfig 新闻配置
type NewsConfig struct {
	Timezone string `mapstructure:"timezone"` // 新闻时间所在时区
}

// ScheduleConfig 定时任务（6位cron，含秒）
type ScheduleConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Timezone   string `mapstructure:"timezone"`
	StaticData string `mapstructure:"static_data"` // 城市、设施、导出
	News       string `mapstructure:"news"`        // 新闻
}

// ExportConfig 导出配置
type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

// LoadConfig 加载配置文件（config/config.yaml），敏感项从 .env 覆盖（不提交 git）
func LoadConfig() (*Config, error) {
	return LoadConfigFrom("./config")
}

// LoadConfigFrom 从指定目录加载 config.yaml
func LoadConfigFrom(dir string) (*Config, error) {
	// 1. 加载 .env（若存在），env 中的值会覆盖 config.yaml 中同名字段
	_ = godotenv.Load() // 忽略错误（.env 可不存在）

	// 2. 读取 config.yaml
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	// 3. 敏感字段：用 env 覆盖（优先级 env > yaml）
	overrideFromEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate 拒绝会让爬取无法结束或节奏失控的配置
func (c *Config) validate() error {
	if c.Crawl.MaxConsecutiveErrors <= 0 {
		return fmt.Errorf("crawl.max_consecutive_errors 必须大于0，当前为%d", c.Crawl.MaxConsecutiveErrors)
	}
	if c.Crawl.RequestDelay < 0 {
		return fmt.Errorf("crawl.request_delay 不能为负数，当前为%s", c.Crawl.RequestDelay)
	}
	if c.Crawl.MaxItems < 0 {
		return fmt.Errorf("crawl.max_items 不能为负数，当前为%d", c.Crawl.MaxItems)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("browser.base_url", "https://www.themeparkindustries.com/tpiv4/")
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.login_timeout", "30s")
	v.SetDefault("browser.wait_timeout", "10s")
	v.SetDefault("crawl.park_start_id", 1)
	v.SetDefault("crawl.request_delay", "1500ms")
	v.SetDefault("crawl.max_consecutive_errors", 10)
	v.SetDefault("crawl.max_items", 5000)
	v.SetDefault("crawl.page_settle_delay", "500ms")
	v.SetDefault("crawl.outer_settle_delay", "500ms")
	v.SetDefault("crawl.inner_settle_delay", "700ms")
	v.SetDefault("crawl.modal_settle_delay", "300ms")
	v.SetDefault("news.timezone", "Europe/Paris")
	v.SetDefault("schedule.enabled", true)
	v.SetDefault("schedule.timezone", "Europe/Paris")
	v.SetDefault("schedule.static_data", "0 0 */3 * * *")
	v.SetDefault("schedule.news", "0 * * * * *")
	v.SetDefault("export.dir", "./exports")
}

// overrideFromEnv 用环境变量覆盖敏感配置
func overrideFromEnv(cfg *Config) {
	if v := os.Getenv("TPI_EMAIL"); v != "" {
		cfg.Browser.Email = v
	}
	if v := os.Getenv("TPI_PASSWORD"); v != "" {
		cfg.Browser.Password = v
	}
	if v := os.Getenv("TPI_BASE_URL"); v != "" {
		cfg.Browser.BaseURL = v
	}
	if v := os.Getenv("TPI_PROXY"); v != "" {
		cfg.Browser.Proxy = v
	}
	if v := os.Getenv("TPI_PLAYER_NAME"); v != "" {
		cfg.Crawl.MainPlayer = v
	}
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}
