package config

import (
	"os"

	"github.com/pkg/errors"
)

// SegmenterConfig 分词与词性标注配置
type SegmenterConfig struct {
	CRFModelPath string `json:"crfModelPath" yaml:"crfModelPath"` // teatak/seg CRF 模型路径
	POSDictPath  string `json:"posDictPath" yaml:"posDictPath"`   // 词 -> CKIP 词性标签词典（TSV），可选
}

func (s *SegmenterConfig) Validate() []error {
	var errs = make([]error, 0)
	if s.CRFModelPath != "" {
		if _, err := os.Stat(s.CRFModelPath); err != nil {
			errs = append(errs, errors.Errorf("CRF 模型文件不存在: %s", s.CRFModelPath))
		}
	}
	return errs
}

func NewDefaultSegmenterConfig() *SegmenterConfig {
	return &SegmenterConfig{}
}
