package model

// Sample 表示一条多音字训练样本，存储到 DuckDB
// 一行标注语料可以产出多条样本（每个标注的多音字一条）
type Sample struct {
	ID          string `json:"id"`           // UUID
	Sentence    string `json:"sentence"`     // 去掉注记后的干净句子
	CharIndex   int    `json:"char_index"`   // 多音字在句中的下标（按 rune 计）
	Phoneme     string `json:"phoneme"`      // 标注读音
	SourceID    uint   `json:"source_id"`    // 对应 tbl_g2p_corpus 表的 id
	Source      string `json:"source"`       // 语料来源
	ErrorReason string `json:"error_reason"` // 解析失败原因，成功时为空
}

// TableName 指定表名
func (Sample) TableName() string {
	return "g2p_samples"
}
