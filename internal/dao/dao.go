// Package dao 实现数据访问层
package dao

import (
	"context"
	"time"

	"github.com/aibianji/sticky-notes-app/internal/model"
	"github.com/aibianji/sticky-notes-app/pkg/fileurl"
	"github.com/aibianji/sticky-notes-app/pkg/util"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig 数据库配置（与 app.DatabaseConfig 字段对应，避免包循环依赖）
type DatabaseConfig struct {
	Type            string
	Path            string
	TablePrefix     string
	AutoMigrate     bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao 数据访问对象，持有数据库连接
type Dao struct {
	db     *gorm.DB
	ctx    context.Context
	config *DatabaseConfig
	logger *zap.Logger
}

// Option Dao 配置选项
type Option func(*Dao)

// WithConfig 注入数据库配置
func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) {
		d.config = c
	}
}

// WithLogger 注入日志器
func WithLogger(l *zap.Logger) Option {
	return func(d *Dao) {
		d.logger = l
	}
}

// New 创建 Dao 实例
func New(db *gorm.DB, ctx context.Context, options ...Option) *Dao {
	d := &Dao{
		db:  db,
		ctx: ctx,
	}
	for _, opt := range options {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// DB 获取底层 gorm 连接
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// NewDBEngine 初始化数据库连接
func NewDBEngine(c *DatabaseConfig) (*gorm.DB, error) {

	if c.Type != "" && c.Type != "sqlite" {
		return nil, errors.Errorf("unsupported database type: %s", c.Type)
	}

	// 确保数据库目录存在
	if err := fileurl.CreatePath(c.Path, 0755); err != nil {
		return nil, errors.Wrap(err, "create database path failed")
	}

	db, err := gorm.Open(sqlite.Open(c.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true, // 使用单数表名
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "open database failed")
	}
	if c.RunMode == "debug" {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	// 获取通用数据库对象 sql.DB，配置连接池
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	if c.ConnMaxLifetime != "" {
		if v, err := util.ParseDuration(c.ConnMaxLifetime); err == nil {
			sqlDB.SetConnMaxLifetime(v)
		}
	} else {
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	if c.ConnMaxIdleTime != "" {
		if v, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil {
			sqlDB.SetConnMaxIdleTime(v)
		}
	}

	if c.AutoMigrate {
		for _, key := range []string{"Note", "Category", "Reminder"} {
			if err := model.AutoMigrate(db, key); err != nil {
				return nil, errors.Wrapf(err, "auto migrate %s failed", key)
			}
		}
	}

	return db, nil
}
