package config

import (
	"path/filepath"

	"g2pw-converter/pkg/lexicon"

	"github.com/pkg/errors"
)

// 输出风格，取值与 lexicon 包保持一致
const (
	StyleBopomofo = lexicon.StyleBopomofo // 注音符号（模型原生输出）
	StylePinyin   = lexicon.StylePinyin   // 拼音 + 声调数字
)

// 推理后端，目前仅支持 onnx
const (
	BackendONNX = "onnx"
)

// ModelConfig G2PW 模型配置
type ModelConfig struct {
	ModelDir           string `json:"modelDir" yaml:"modelDir"`                     // 模型目录（词典、词表、onnx 模型）
	Backend            string `json:"backend" yaml:"backend"`                       // 推理后端
	CheckpointPath     string `json:"checkpointPath" yaml:"checkpointPath"`         // onnx 模型路径，为空时取 modelDir/g2pw.onnx
	OnnxRuntimeLibPath string `json:"onnxRuntimeLibPath" yaml:"onnxRuntimeLibPath"` // onnxruntime 动态库路径
	Style              string `json:"style" yaml:"style"`                           // 输出风格 bopomofo | pinyin
	BatchSize          int    `json:"batchSize" yaml:"batchSize"`                   // 推理批大小
	NumThreads         int    `json:"numThreads" yaml:"numThreads"`                 // onnx 线程数，0 表示默认
	WindowSize         int    `json:"windowSize" yaml:"windowSize"`                 // 查询字截窗大小
	UseMask            bool   `json:"useMask" yaml:"useMask"`                       // 是否构造候选读音掩码
	UseCharPhoneme     bool   `json:"useCharPhoneme" yaml:"useCharPhoneme"`         // 标签是否带字前缀（"字 注音"）
	UsePOS             bool   `json:"usePos" yaml:"usePos"`                         // 是否附加词性特征
	EnableS2T          bool   `json:"enableS2t" yaml:"enableS2t"`                   // 是否将简体输入逐字转为繁体
	DownloadURL        string `json:"downloadUrl" yaml:"downloadUrl"`               // 模型包下载地址
}

func (m *ModelConfig) Validate() []error {
	var errs = make([]error, 0)
	if m.ModelDir == "" {
		errs = append(errs, errors.Errorf("模型目录不能为空"))
	}
	if m.Backend != BackendONNX {
		// torch checkpoint 属于 Python 实现，Go 侧不支持
		errs = append(errs, errors.Errorf("不支持的推理后端 %q，当前仅支持 %s", m.Backend, BackendONNX))
	}
	if m.Style != StyleBopomofo && m.Style != StylePinyin {
		errs = append(errs, errors.Errorf("未知的输出风格 %q", m.Style))
	}
	if m.BatchSize <= 0 {
		errs = append(errs, errors.Errorf("批大小必须大于 0"))
	}
	if m.WindowSize <= 0 {
		errs = append(errs, errors.Errorf("截窗大小必须大于 0"))
	}
	return errs
}

func NewDefaultModelConfig() *ModelConfig {
	return &ModelConfig{
		ModelDir:    "./G2PWModel",
		Backend:     BackendONNX,
		Style:       StylePinyin,
		BatchSize:   256,
		WindowSize:  32,
		UseMask:     true,
		DownloadURL: "https://storage.googleapis.com/esun-ai/g2pW/G2PWModel-v2-onnx.zip",
	}
}

// OnnxModelPath onnx 模型文件路径
func (m *ModelConfig) OnnxModelPath() string {
	if m.CheckpointPath != "" {
		return m.CheckpointPath
	}
	return filepath.Join(m.ModelDir, "g2pw.onnx")
}
