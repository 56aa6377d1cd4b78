package onnx

import (
	"fmt"
	"runtime"
	"sync"

	"g2pw-converter/pkg/dataset"

	ort "github.com/yalue/onnxruntime_go"
	"go.uber.org/zap"
)

// g2pw.onnx 的固定输入名
var baseInputNames = []string{
	"input_ids",
	"token_type_ids",
	"attention_mask",
	"phoneme_mask",
	"char_ids",
	"position_ids",
}

var envOnce sync.Once

// initRuntime 初始化 onnxruntime 环境，进程内仅执行一次
func initRuntime(libPath string) error {
	var err error
	envOnce.Do(func() {
		if libPath == "" {
			libPath = defaultLibraryPath()
		}
		ort.SetSharedLibraryPath(libPath)
		if err = ort.InitializeEnvironment(); err != nil {
			zap.S().Errorf("初始化 onnxruntime 失败: %v", err)
			return
		}
		zap.S().Debugf("onnxruntime 初始化完成，动态库: %s", libPath)
	})
	return err
}

// defaultLibraryPath 按平台返回 onnxruntime 动态库默认文件名，依赖系统查找路径
func defaultLibraryPath() string {
	switch runtime.GOOS {
	case "windows":
		return "onnxruntime.dll"
	case "darwin":
		return "libonnxruntime.dylib"
	default:
		return "libonnxruntime.so"
	}
}

// Options 会话选项
type Options struct {
	LibraryPath string // onnxruntime 动态库路径，为空时取平台默认名
	NumThreads  int    // 算子内线程数，0 表示 onnxruntime 默认
}

// Session g2pW onnx 推理会话
type Session struct {
	sess       *ort.DynamicAdvancedSession
	inputNames []string
	hasPOS     bool
}

// NewSession 打开 onnx 模型并创建推理会话
// 模型图包含 pos_ids 输入时自动附加词性特征
func NewSession(modelPath string, opts Options) (*Session, error) {
	if err := initRuntime(opts.LibraryPath); err != nil {
		return nil, err
	}

	inputs, outputs, err := ort.GetInputOutputInfo(modelPath)
	if err != nil {
		return nil, fmt.Errorf("读取模型输入输出信息失败: %v", err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("模型没有输出节点")
	}

	hasPOS := false
	for _, in := range inputs {
		if in.Name == "pos_ids" {
			hasPOS = true
			break
		}
	}
	inputNames := baseInputNames
	if hasPOS {
		inputNames = append(append([]string{}, baseInputNames...), "pos_ids")
	}

	sessOpts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("创建会话选项失败: %v", err)
	}
	defer sessOpts.Destroy()
	if opts.NumThreads > 0 {
		if err := sessOpts.SetIntraOpNumThreads(opts.NumThreads); err != nil {
			return nil, fmt.Errorf("设置线程数失败: %v", err)
		}
	}

	sess, err := ort.NewDynamicAdvancedSession(modelPath, inputNames, []string{outputs[0].Name}, sessOpts)
	if err != nil {
		return nil, fmt.Errorf("创建推理会话失败: %v", err)
	}

	return &Session{sess: sess, inputNames: inputNames, hasPOS: hasPOS}, nil
}

// HasPOSInput 模型是否接受 pos_ids 输入
func (s *Session) HasPOSInput() bool {
	return s.hasPOS
}

// Run 执行一批推理，返回每条查询的标签概率分布
func (s *Session) Run(batch *dataset.Batch) ([][]float32, error) {
	n := batch.Size()
	if n == 0 {
		return nil, nil
	}
	seqShape := ort.NewShape(int64(n), int64(batch.SeqLen))
	vecShape := ort.NewShape(int64(n))

	inputIDs, err := ort.NewTensor(seqShape, flattenInt64(batch.InputIDs))
	if err != nil {
		return nil, fmt.Errorf("构造 input_ids 失败: %v", err)
	}
	defer inputIDs.Destroy()

	tokenTypeIDs, err := ort.NewTensor(seqShape, flattenInt64(batch.TokenTypeIDs))
	if err != nil {
		return nil, fmt.Errorf("构造 token_type_ids 失败: %v", err)
	}
	defer tokenTypeIDs.Destroy()

	attentionMask, err := ort.NewTensor(seqShape, flattenInt64(batch.AttentionMask))
	if err != nil {
		return nil, fmt.Errorf("构造 attention_mask 失败: %v", err)
	}
	defer attentionMask.Destroy()

	maskShape := ort.NewShape(int64(n), int64(len(batch.PhonemeMask[0])))
	phonemeMask, err := ort.NewTensor(maskShape, flattenFloat32(batch.PhonemeMask))
	if err != nil {
		return nil, fmt.Errorf("构造 phoneme_mask 失败: %v", err)
	}
	defer phonemeMask.Destroy()

	charIDs, err := ort.NewTensor(vecShape, append([]int64{}, batch.CharIDs...))
	if err != nil {
		return nil, fmt.Errorf("构造 char_ids 失败: %v", err)
	}
	defer charIDs.Destroy()

	positionIDs, err := ort.NewTensor(vecShape, append([]int64{}, batch.PositionIDs...))
	if err != nil {
		return nil, fmt.Errorf("构造 position_ids 失败: %v", err)
	}
	defer positionIDs.Destroy()

	inputs := []ort.Value{inputIDs, tokenTypeIDs, attentionMask, phonemeMask, charIDs, positionIDs}

	if s.hasPOS {
		posIDs, err := ort.NewTensor(vecShape, append([]int64{}, batch.POSIDs...))
		if err != nil {
			return nil, fmt.Errorf("构造 pos_ids 失败: %v", err)
		}
		defer posIDs.Destroy()
		inputs = append(inputs, posIDs)
	}

	outputs := make([]ort.Value, 1)
	if err := s.sess.Run(inputs, outputs); err != nil {
		return nil, fmt.Errorf("推理失败: %v", err)
	}
	probsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("模型输出类型非 float32")
	}
	defer probsTensor.Destroy()

	shape := probsTensor.GetShape()
	if len(shape) != 2 || int(shape[0]) != n {
		return nil, fmt.Errorf("模型输出形状异常: %v", shape)
	}
	data := probsTensor.GetData()
	nLabels := int(shape[1])

	probs := make([][]float32, n)
	for i := 0; i < n; i++ {
		row := make([]float32, nLabels)
		copy(row, data[i*nLabels:(i+1)*nLabels])
		probs[i] = row
	}
	return probs, nil
}

// Close 释放会话
func (s *Session) Close() error {
	if s.sess != nil {
		return s.sess.Destroy()
	}
	return nil
}

func flattenInt64(rows [][]int64) []int64 {
	if len(rows) == 0 {
		return nil
	}
	flat := make([]int64, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}

func flattenFloat32(rows [][]float32) []float32 {
	if len(rows) == 0 {
		return nil
	}
	flat := make([]float32, 0, len(rows)*len(rows[0]))
	for _, row := range rows {
		flat = append(flat, row...)
	}
	return flat
}
