package tokenizer

import (
	"fmt"
	"os"
	"strings"
)

// BERT 特殊符号
const (
	TokenCLS = "[CLS]"
	TokenSEP = "[SEP]"
	TokenPAD = "[PAD]"
	TokenUNK = "[UNK]"
)

// Tokenizer 字级 BERT 分词器，从 vocab.txt 加载词表
// 中文 G2P 输入逐字成 token，不做 WordPiece 子词切分
type Tokenizer struct {
	vocab map[string]int64

	clsID int64
	sepID int64
	padID int64
	unkID int64
}

// Load 从 vocab.txt 加载词表，一行一个 token，行号即 id
func Load(vocabPath string) (*Tokenizer, error) {
	data, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("读取词表失败: %v", err)
	}

	vocab := make(map[string]int64)
	var id int64
	for _, line := range strings.Split(string(data), "\n") {
		token := strings.TrimRight(line, "\r\n")
		if token == "" {
			continue
		}
		vocab[token] = id
		id++
	}

	t := &Tokenizer{vocab: vocab}
	for _, sp := range []struct {
		token string
		dst   *int64
	}{
		{TokenCLS, &t.clsID},
		{TokenSEP, &t.sepID},
		{TokenPAD, &t.padID},
		{TokenUNK, &t.unkID},
	} {
		tid, ok := vocab[sp.token]
		if !ok {
			return nil, fmt.Errorf("词表缺少特殊符号 %s", sp.token)
		}
		*sp.dst = tid
	}
	return t, nil
}

// VocabSize 词表大小
func (t *Tokenizer) VocabSize() int {
	return len(t.vocab)
}

// CLS [CLS] id
func (t *Tokenizer) CLS() int64 { return t.clsID }

// SEP [SEP] id
func (t *Tokenizer) SEP() int64 { return t.sepID }

// PAD [PAD] id
func (t *Tokenizer) PAD() int64 { return t.padID }

// EncodeChars 逐字编码，未收录字取 [UNK]
func (t *Tokenizer) EncodeChars(chars []string) []int64 {
	ids := make([]int64, len(chars))
	for i, ch := range chars {
		if id, ok := t.vocab[strings.ToLower(ch)]; ok {
			ids[i] = id
			continue
		}
		ids[i] = t.unkID
	}
	return ids
}
