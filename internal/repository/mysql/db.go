package mysql

import (
	"fmt"
	"sync"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/example/asati/internal/config"
)

var (
	db      *gorm.DB
	initErr error
	once    sync.Once
)

// Init 初始化全局 GORM 实例并迁移 models 对应的表
func Init(cfg *config.MySQLConfig, models ...any) (*gorm.DB, error) {
	once.Do(func() {
		var err error
		db, err = gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err != nil {
			initErr = fmt.Errorf("connect mysql: %w", err)
			return
		}
		if len(models) > 0 {
			if err = db.AutoMigrate(models...); err != nil {
				initErr = fmt.Errorf("auto migrate: %w", err)
			}
		}
	})
	return db, initErr
}

// DB 获取全局 DB
func DB() *gorm.DB {
	return db
}
