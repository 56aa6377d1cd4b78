package config

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

// MySQLConfig 语料库 MySQL 配置
type MySQLConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     any    `json:"port" yaml:"port"` // 兼容字符串与数字写法
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
	Database string `json:"database" yaml:"database"`
	// 只读副本地址，为空时读写同库
	Replicas []string `json:"replicas" yaml:"replicas"`
}

func (m *MySQLConfig) Validate() []error {
	var errs = make([]error, 0)
	if m.Host == "" {
		errs = append(errs, errors.Errorf("MySQL 地址不能为空"))
	}
	if m.Database == "" {
		errs = append(errs, errors.Errorf("MySQL 数据库名不能为空"))
	}
	if port := cast.ToInt(m.Port); port <= 0 || port > 65535 {
		errs = append(errs, errors.Errorf("MySQL 端口非法: %v", m.Port))
	}
	return errs
}

func (m *MySQLConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		m.User, m.Password, m.Host, cast.ToInt(m.Port), m.Database)
}

// ReplicaDSNs 只读副本 DSN 列表
func (m *MySQLConfig) ReplicaDSNs() []string {
	dsns := make([]string, 0, len(m.Replicas))
	for _, addr := range m.Replicas {
		dsns = append(dsns, fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			m.User, m.Password, addr, m.Database))
	}
	return dsns
}
