package dataset

import (
	"g2pw-converter/pkg/lexicon"
	"g2pw-converter/pkg/tokenizer"
)

// Query 一次多音字查询：句子与查询字的 rune 下标
type Query struct {
	Sentence  string
	CharIndex int
	Char      string
	POSID     int64 // 查询字所在词的词性标签下标，未启用词性时为 0（UNK）
}

// Batch 一批查询构造出的模型输入
type Batch struct {
	InputIDs      [][]int64
	TokenTypeIDs  [][]int64
	AttentionMask [][]int64
	PhonemeMask   [][]float32
	CharIDs       []int64
	PositionIDs   []int64
	POSIDs        []int64
	SeqLen        int
}

// Size 批内查询数
func (b *Batch) Size() int {
	return len(b.InputIDs)
}

// Builder 按 g2pW 模型输入格式构造特征
type Builder struct {
	tok        *tokenizer.Tokenizer
	lex        *lexicon.Lexicon
	windowSize int
	useMask    bool
}

func NewBuilder(tok *tokenizer.Tokenizer, lex *lexicon.Lexicon, windowSize int, useMask bool) *Builder {
	return &Builder{
		tok:        tok,
		lex:        lex,
		windowSize: windowSize,
		useMask:    useMask,
	}
}

// Build 构造一批模型输入，批内按最长序列右侧补 [PAD]
func (b *Builder) Build(queries []Query) *Batch {
	batch := &Batch{
		InputIDs:      make([][]int64, 0, len(queries)),
		TokenTypeIDs:  make([][]int64, 0, len(queries)),
		AttentionMask: make([][]int64, 0, len(queries)),
		PhonemeMask:   make([][]float32, 0, len(queries)),
		CharIDs:       make([]int64, 0, len(queries)),
		PositionIDs:   make([]int64, 0, len(queries)),
		POSIDs:        make([]int64, 0, len(queries)),
	}

	type encoded struct {
		ids      []int64
		position int64
	}
	encs := make([]encoded, 0, len(queries))
	maxLen := 0

	for _, q := range queries {
		chars, idx := b.truncate([]rune(q.Sentence), q.CharIndex)
		ids := b.tok.EncodeChars(chars)

		// [CLS] 前缀、[SEP] 后缀，查询位置整体后移一位
		seq := make([]int64, 0, len(ids)+2)
		seq = append(seq, b.tok.CLS())
		seq = append(seq, ids...)
		seq = append(seq, b.tok.SEP())

		encs = append(encs, encoded{ids: seq, position: int64(idx + 1)})
		if len(seq) > maxLen {
			maxLen = len(seq)
		}

		batch.PhonemeMask = append(batch.PhonemeMask, b.phonemeMask(q.Char))
		batch.CharIDs = append(batch.CharIDs, int64(b.lex.CharID(q.Char)))
		batch.POSIDs = append(batch.POSIDs, q.POSID)
	}

	for _, e := range encs {
		inputIDs := make([]int64, maxLen)
		tokenType := make([]int64, maxLen)
		attention := make([]int64, maxLen)
		for i := 0; i < maxLen; i++ {
			if i < len(e.ids) {
				inputIDs[i] = e.ids[i]
				attention[i] = 1
			} else {
				inputIDs[i] = b.tok.PAD()
			}
		}
		batch.InputIDs = append(batch.InputIDs, inputIDs)
		batch.TokenTypeIDs = append(batch.TokenTypeIDs, tokenType)
		batch.AttentionMask = append(batch.AttentionMask, attention)
		batch.PositionIDs = append(batch.PositionIDs, e.position)
	}

	batch.SeqLen = maxLen
	return batch
}

// truncate 以查询字为中心截窗，返回窗内字符与查询字新下标
func (b *Builder) truncate(runes []rune, charIndex int) ([]string, int) {
	if len(runes) <= b.windowSize {
		return runesToChars(runes), charIndex
	}

	start := charIndex - b.windowSize/2
	if start < 0 {
		start = 0
	}
	if start+b.windowSize > len(runes) {
		start = len(runes) - b.windowSize
	}
	return runesToChars(runes[start : start+b.windowSize]), charIndex - start
}

// phonemeMask 候选读音掩码，非候选标签置 0
func (b *Builder) phonemeMask(char string) []float32 {
	mask := make([]float32, len(b.lex.Labels))
	if !b.useMask {
		for i := range mask {
			mask[i] = 1
		}
		return mask
	}
	for _, id := range b.lex.CandidateLabelIDs(char) {
		mask[id] = 1
	}
	return mask
}

func runesToChars(runes []rune) []string {
	chars := make([]string, len(runes))
	for i, r := range runes {
		chars[i] = string(r)
	}
	return chars
}
