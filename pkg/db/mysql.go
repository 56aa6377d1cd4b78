package db

import (
	"sync"
	"time"

	"g2pw-converter/config"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

var mysqlDB *gorm.DB
var mysqlOnce sync.Once

// InitMySQL 初始化语料库 MySQL 连接，配置了副本时启用读写分离
func InitMySQL(cfg *config.GlobalConfig) error {
	var err error
	mysqlOnce.Do(func() {
		mc := cfg.MySQLConfig
		mysqlDB, err = gorm.Open(mysql.Open(mc.DSN()), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			zap.S().Errorf("连接 MySQL 失败: %v", err)
			return
		}

		if len(mc.Replicas) > 0 {
			replicas := make([]gorm.Dialector, 0, len(mc.Replicas))
			for _, dsn := range mc.ReplicaDSNs() {
				replicas = append(replicas, mysql.Open(dsn))
			}
			if err = mysqlDB.Use(dbresolver.Register(dbresolver.Config{
				Replicas: replicas,
			})); err != nil {
				zap.S().Errorf("注册读写分离失败: %v", err)
				return
			}
		}

		sqlDB, e := mysqlDB.DB()
		if e != nil {
			err = e
			return
		}
		sqlDB.SetMaxOpenConns(16)
		sqlDB.SetMaxIdleConns(4)
		sqlDB.SetConnMaxLifetime(time.Hour)

		if err = sqlDB.Ping(); err != nil {
			zap.S().Errorf("MySQL 连接测试失败: %v", err)
			return
		}

		zap.S().Debug("MySQL 初始化完成...")
	})
	return err
}

// GetMySQL 获取 MySQL 连接
func GetMySQL() *gorm.DB {
	return mysqlDB
}
