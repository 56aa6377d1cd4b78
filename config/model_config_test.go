package config

import (
	"path/filepath"
	"testing"
)

// TestModelConfigValidate 测试模型配置校验
func TestModelConfigValidate(t *testing.T) {
	cfg := NewDefaultModelConfig()
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("默认配置校验失败: %v", errs)
	}

	cfg = NewDefaultModelConfig()
	cfg.ModelDir = ""
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Error("空模型目录应校验失败")
	}

	// torch checkpoint 不受支持
	cfg = NewDefaultModelConfig()
	cfg.Backend = "torch"
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Error("torch 后端应校验失败")
	}

	cfg = NewDefaultModelConfig()
	cfg.Style = "wade-giles"
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Error("未知输出风格应校验失败")
	}

	cfg = NewDefaultModelConfig()
	cfg.BatchSize = 0
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Error("非法批大小应校验失败")
	}
}

// TestOnnxModelPath 测试 onnx 模型路径推导
func TestOnnxModelPath(t *testing.T) {
	cfg := NewDefaultModelConfig()
	cfg.ModelDir = "/models/g2pw"
	if got := cfg.OnnxModelPath(); got != filepath.Join("/models/g2pw", "g2pw.onnx") {
		t.Errorf("OnnxModelPath = %q", got)
	}

	cfg.CheckpointPath = "/models/custom.onnx"
	if got := cfg.OnnxModelPath(); got != "/models/custom.onnx" {
		t.Errorf("OnnxModelPath = %q", got)
	}
}

// TestMySQLConfigValidate 测试 MySQL 配置校验与 DSN 拼装
func TestMySQLConfigValidate(t *testing.T) {
	cfg := &MySQLConfig{Host: "127.0.0.1", Port: 3306, User: "root", Database: "g2p_corpus"}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("合法配置校验失败: %v", errs)
	}

	// 端口兼容字符串写法
	cfg.Port = "3306"
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("字符串端口校验失败: %v", errs)
	}

	cfg.Port = 0
	if errs := cfg.Validate(); len(errs) == 0 {
		t.Error("非法端口应校验失败")
	}

	cfg = &MySQLConfig{Host: "db.internal", Port: 3306, User: "g2p", Password: "pw", Database: "corpus"}
	want := "g2p:pw@tcp(db.internal:3306)/corpus?charset=utf8mb4&parseTime=True&loc=Local"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
