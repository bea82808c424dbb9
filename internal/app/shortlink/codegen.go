package shortlink

import (
	"crypto/rand"
	"errors"
	"math/big"
)

const (
	CodeAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	CodeLength   = 8
)

// IssuedFilter remembers codes this process already handed out. MightExist may
// report false positives but never false negatives.
type IssuedFilter interface {
	Add(code string)
	MightExist(code string) bool
}

// SampleGenerator draws CodeLength characters without replacement from
// CodeAlphabet, so no character repeats within one code.
type SampleGenerator struct {
	alphabet string
	length   int
	issued   IssuedFilter
	// maxSkips bounds how many filtered candidates are discarded per call.
	maxSkips int
}

func NewSampleGenerator(issued IssuedFilter) *SampleGenerator {
	return &SampleGenerator{
		alphabet: CodeAlphabet,
		length:   CodeLength,
		issued:   issued,
		maxSkips: 16,
	}
}

func (g *SampleGenerator) Generate() (string, error) {
	for skip := 0; ; skip++ {
		code, err := sample(g.alphabet, g.length)
		if err != nil {
			return "", err
		}
		if g.issued == nil || skip >= g.maxSkips || !g.issued.MightExist(code) {
			return code, nil
		}
	}
}

// sample runs a partial Fisher-Yates shuffle over the alphabet.
func sample(alphabet string, n int) (string, error) {
	if n > len(alphabet) {
		return "", errors.New("code length exceeds alphabet size")
	}
	pool := []byte(alphabet)
	for i := 0; i < n; i++ {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool)-i)))
		if err != nil {
			return "", err
		}
		k := i + int(j.Int64())
		pool[i], pool[k] = pool[k], pool[i]
	}
	return string(pool[:n]), nil
}
