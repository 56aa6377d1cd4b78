package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// CorpusSentence 表示 tbl_g2p_corpus 表，一行一条带注音标注的语料
// Text 为标注格式文本，多音字后跟 "_拼音_" 注记，如 "我们都_dou1_喜欢"
type CorpusSentence struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	Source    string         `gorm:"column:source" json:"source"` // 语料来源标识
	Text      string         `gorm:"type:text" json:"text"`       // 标注格式文本
	Meta      JSONMeta       `gorm:"type:text" json:"meta"`       // 附加元信息 JSON
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

// TableName 指定表名
func (CorpusSentence) TableName() string {
	return "tbl_g2p_corpus"
}

// JSONMeta 是一个自定义类型，用于存储和解析语料的 JSON 元信息
type JSONMeta struct {
	Data map[string]interface{} `json:"-"`
	Raw  string                 `json:"-"`
}

// Value 实现 driver.Valuer 接口，用于将 JSONMeta 存储到数据库
func (j JSONMeta) Value() (driver.Value, error) {
	if j.Raw != "" {
		return j.Raw, nil
	}
	if j.Data != nil {
		bytes, err := json.Marshal(j.Data)
		if err != nil {
			return nil, err
		}
		return string(bytes), nil
	}
	return nil, nil
}

// Scan 实现 sql.Scanner 接口，用于从数据库读取 JSONMeta
func (j *JSONMeta) Scan(value interface{}) error {
	if value == nil {
		j.Data = nil
		j.Raw = ""
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	j.Raw = string(bytes)

	var data map[string]interface{}
	if err := json.Unmarshal(bytes, &data); err != nil {
		// 解析失败时保留原始字符串
		j.Data = nil
		return nil
	}
	j.Data = data
	return nil
}

// MarshalJSON 实现 json.Marshaler 接口
func (j JSONMeta) MarshalJSON() ([]byte, error) {
	if j.Data != nil {
		return json.Marshal(j.Data)
	}
	if j.Raw != "" {
		return []byte(j.Raw), nil
	}
	return []byte("{}"), nil
}

// UnmarshalJSON 实现 json.Unmarshaler 接口
func (j *JSONMeta) UnmarshalJSON(data []byte) error {
	j.Raw = string(data)
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	j.Data = m
	return nil
}
