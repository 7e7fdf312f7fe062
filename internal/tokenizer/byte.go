package tokenizer

import (
	"fmt"
	"strings"
	"unicode"
)

// ByteVocabSize is the vocabulary size of the byte-level tokenizer.
const ByteVocabSize = 256

// ByteTokenizer maps text to token ids one byte at a time. It stands in for
// a real subword tokenizer: the engine only relies on the Encode/Decode
// contract, not on any particular vocabulary.
type ByteTokenizer struct {
	// CleanupSpaces normalises decoding artifacts: whitespace runs collapse
	// to a single space, invalid UTF-8 is dropped, and the result is
	// trimmed.
	CleanupSpaces bool
}

// NewByteTokenizer returns a byte-level tokenizer with cleanup enabled.
func NewByteTokenizer() *ByteTokenizer {
	return &ByteTokenizer{CleanupSpaces: true}
}

func (t *ByteTokenizer) Encode(text string) ([]int, error) {
	ids := make([]int, len(text))
	for i := 0; i < len(text); i++ {
		ids[i] = int(text[i])
	}
	return ids, nil
}

func (t *ByteTokenizer) Decode(ids []int) (string, error) {
	s, err := t.DecodeRaw(ids)
	if err != nil {
		return "", err
	}
	if t.CleanupSpaces {
		s = cleanup(s)
	}
	return s, nil
}

// DecodeRaw decodes without cleanup. Streaming uses it so per-token decoding
// does not mangle whitespace.
func (t *ByteTokenizer) DecodeRaw(ids []int) (string, error) {
	buf := make([]byte, len(ids))
	for i, id := range ids {
		if id < 0 || id >= ByteVocabSize {
			return "", fmt.Errorf("decode: token id %d out of range [0,%d)", id, ByteVocabSize)
		}
		buf[i] = byte(id)
	}
	return string(buf), nil
}

func cleanup(s string) string {
	s = strings.ToValidUTF8(s, "")
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}
