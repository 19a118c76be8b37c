// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"os"
	"path/filepath"
	"time"

	"github.com/aibianji/sticky-notes-app/pkg/debounce"
	"github.com/aibianji/sticky-notes-app/pkg/storage/local_fs"
	"github.com/aibianji/sticky-notes-app/pkg/util"

	"github.com/creasty/defaults"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// AppConfig 应用配置
type AppConfig struct {
	File     string          `yaml:"-"` // 配置文件路径，不序列化
	Server   ServerConfig    `yaml:"server"`
	Log      LogConfig       `yaml:"log"`
	Database DatabaseConfig  `yaml:"database"`
	App      AppSettings     `yaml:"app"`
	Note     NoteConfig      `yaml:"note"`
	Trash    TrashConfig     `yaml:"trash"`
	Reminder ReminderConfig  `yaml:"reminder"`
	LocalFS  local_fs.Config `yaml:"local-fs"`
}

// LogConfig 日志配置
type LogConfig struct {
	// Level 日志级别，参见 zapcore.ParseLevel
	Level string `yaml:"level" default:"warn"`
	// File 日志文件路径，默认为 stderr
	File string `yaml:"file" default:"storage/logs/log.log"`
	// Production 是否启用 JSON 输出
	Production bool `yaml:"production" default:"true"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	// RunMode 运行模式
	RunMode string `yaml:"run-mode" default:"release"`
	// HttpPort HTTP 端口
	HttpPort string `yaml:"http-port" default:"127.0.0.1:9460"`
	// PrivateHttpListen 私有 HTTP 监听地址（运行指标与 pprof），为空时不启动
	PrivateHttpListen string `yaml:"private-http-listen"`
	// ReadTimeout 读取超时（秒）
	ReadTimeout int `yaml:"read-timeout" default:"60"`
	// WriteTimeout 写入超时（秒）
	WriteTimeout int `yaml:"write-timeout" default:"60"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	// Type 数据库类型
	Type string `yaml:"type" default:"sqlite"`
	// Path SQLite 数据库文件路径
	Path string `yaml:"path" default:"storage/database/notes.sqlite3"`
	// TablePrefix 表前缀
	TablePrefix string `yaml:"table-prefix"`
	// AutoMigrate 是否启用自动迁移
	AutoMigrate bool `yaml:"auto-migrate" default:"true"`
	// MaxIdleConns 最大闲置连接数，默认 10
	MaxIdleConns int `yaml:"max-idle-conns" default:"10"`
	// MaxOpenConns 最大打开连接数，默认 100
	MaxOpenConns int `yaml:"max-open-conns" default:"100"`
	// ConnMaxLifetime 连接最大生命周期，支持格式：30m（分钟）、1h（小时），默认 30m
	ConnMaxLifetime string `yaml:"conn-max-lifetime" default:"30m"`
	// ConnMaxIdleTime 空闲连接最大生命周期，支持格式：10m（分钟）、1h（小时），默认 10m
	ConnMaxIdleTime string `yaml:"conn-max-idle-time" default:"10m"`
}

// AppSettings 应用设置
type AppSettings struct {
	// Language 响应消息语言，支持 en / zh_cn
	Language string `yaml:"language" default:"en"`
	// DefaultPageSize 默认页面大小
	DefaultPageSize int `yaml:"default-page-size" default:"20"`
	// MaxPageSize 最大页面大小
	MaxPageSize int `yaml:"max-page-size" default:"200"`
	// DefaultContextTimeout 默认上下文超时时间（秒）
	DefaultContextTimeout int `yaml:"default-context-timeout" default:"60"`
	// UploadMaxSize 截图上传大小上限（MB）
	UploadMaxSize int `yaml:"upload-max-size" default:"10"`
	// UploadAllowExts 允许上传的截图扩展名
	UploadAllowExts []string `yaml:"upload-allow-exts" default:"[\".png\", \".jpg\", \".jpeg\", \".gif\", \".webp\"]"`
}

// NoteConfig 便签编辑与保存配置
type NoteConfig struct {
	// ContentSaveDelay 内容编辑静默保存延迟，支持格式：500ms、1s
	ContentSaveDelay string `yaml:"content-save-delay" default:"500ms"`
	// SearchReloadDelay 搜索驱动的列表刷新延迟
	SearchReloadDelay string `yaml:"search-reload-delay" default:"300ms"`
	// WriteTimeout 单次写入超时时间
	WriteTimeout string `yaml:"write-timeout" default:"30s"`
	// DefaultColor 新建便签的默认颜色
	DefaultColor string `yaml:"default-color" default:"#FFF7B1"`
}

// TrashConfig 回收站配置
type TrashConfig struct {
	// RetentionTime 回收站保留时间，超过后自动清除，支持格式：30d（天）、720h（小时）
	RetentionTime string `yaml:"retention-time" default:"30d"`
	// SweepSchedule 自动清理的 cron 表达式，默认每小时
	SweepSchedule string `yaml:"sweep-schedule" default:"0 * * * *"`
}

// ReminderConfig 提醒配置
type ReminderConfig struct {
	// DispatchInterval 到期提醒巡检间隔
	DispatchInterval string `yaml:"dispatch-interval" default:"30s"`
	// UpcomingWindow 即将到期列表的可选时间上界，为空或 0 表示不限制
	UpcomingWindow string `yaml:"upcoming-window"`
}

// LoadConfig 从文件加载配置
// 返回配置实例和配置文件的绝对路径
func LoadConfig(f string) (*AppConfig, string, error) {
	realpath, err := filepath.Abs(f)
	if err != nil {
		return nil, "", err
	}
	realpath = filepath.Clean(realpath)

	c := new(AppConfig)
	c.File = realpath

	// 设置默认值
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "set default config failed")
	}

	file, err := os.ReadFile(realpath)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "read config file failed")
	}

	err = yaml.Unmarshal(file, c)
	if err != nil {
		return nil, realpath, errors.Wrap(err, "parse config file failed")
	}

	// 再次设置默认值，以填充 YAML 中存在但值为空的字段
	// defaults.Set 只有在字段为该类型的零值时才会填充
	if err := defaults.Set(c); err != nil {
		return nil, realpath, errors.Wrap(err, "re-set default config failed")
	}

	return c, realpath, nil
}

// Save 保存配置到文件
func (c *AppConfig) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "marshal config failed")
	}

	err = os.WriteFile(c.File, data, 0644)
	if err != nil {
		return errors.Wrap(err, "write config file failed")
	}

	return nil
}

// GetDebounceConfig 获取内容保存防抖配置
func (c *AppConfig) GetDebounceConfig() debounce.Config {
	cfg := debounce.DefaultConfig()

	if c.Note.ContentSaveDelay != "" {
		if d, err := util.ParseDuration(c.Note.ContentSaveDelay); err == nil {
			cfg.QuietPeriod = d
		}
	}
	if c.Note.WriteTimeout != "" {
		if d, err := util.ParseDuration(c.Note.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	return cfg
}

// GetSearchReloadDelay 获取搜索刷新防抖延迟
func (c *AppConfig) GetSearchReloadDelay() time.Duration {
	if d, err := util.ParseDuration(c.Note.SearchReloadDelay); err == nil {
		return d
	}
	return 300 * time.Millisecond
}

// GetTrashRetention 获取回收站保留时间
func (c *AppConfig) GetTrashRetention() time.Duration {
	if d, err := util.ParseDuration(c.Trash.RetentionTime); err == nil {
		return d
	}
	return 30 * 24 * time.Hour // 理论上不会走到这里，因为有默认值
}

// GetReminderDispatchInterval 获取提醒巡检间隔
func (c *AppConfig) GetReminderDispatchInterval() time.Duration {
	if d, err := util.ParseDuration(c.Reminder.DispatchInterval); err == nil {
		return d
	}
	return 30 * time.Second
}

// GetReminderUpcomingWindow 获取即将到期列表的可选时间上界，0 表示不限制
func (c *AppConfig) GetReminderUpcomingWindow() time.Duration {
	if c.Reminder.UpcomingWindow == "" {
		return 0
	}
	if d, err := util.ParseDuration(c.Reminder.UpcomingWindow); err == nil {
		return d
	}
	return 0
}
