package model

// SentenceResult 一句话的注音结果
// Readings 与句子 rune 一一对应，无法注音的位置为 nil
type SentenceResult struct {
	Sentence    string    `json:"sentence"`
	Readings    []*string `json:"readings"`
	Confidences []float32 `json:"confidences,omitempty"` // 多音字位置的模型置信度，其余为 0
}
