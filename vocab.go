package charnet

import (
	"fmt"
	"sort"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var v Vocab
	serializer.RegisterTypedDeserializer(v.SerializerType(), DeserializeVocab)
}

// A Vocab is a bijection between the distinct characters
// of a corpus and the contiguous integer codes [0, n).
//
// Codes are assigned in increasing code point order, so
// the same corpus always produces the same mapping and a
// vocabulary can be rebuilt to match an old checkpoint.
type Vocab struct {
	runes []rune
	codes map[rune]int
}

// NewVocab builds a Vocab from the distinct characters in
// text.
func NewVocab(text string) *Vocab {
	seen := map[rune]bool{}
	for _, r := range text {
		seen[r] = true
	}
	runes := make([]rune, 0, len(seen))
	for r := range seen {
		runes = append(runes, r)
	}
	sort.Slice(runes, func(i, j int) bool {
		return runes[i] < runes[j]
	})
	return newVocab(runes)
}

func newVocab(runes []rune) *Vocab {
	codes := make(map[rune]int, len(runes))
	for i, r := range runes {
		codes[r] = i
	}
	return &Vocab{runes: runes, codes: codes}
}

// DeserializeVocab deserializes a Vocab.
func DeserializeVocab(d []byte) (*Vocab, error) {
	var runes serializer.String
	if err := serializer.DeserializeAny(d, &runes); err != nil {
		return nil, essentials.AddCtx("deserialize Vocab", err)
	}
	return newVocab([]rune(string(runes))), nil
}

// Len returns the number of distinct characters.
func (v *Vocab) Len() int {
	return len(v.runes)
}

// Code looks up the code for a character.
func (v *Vocab) Code(r rune) (int, bool) {
	code, ok := v.codes[r]
	return code, ok
}

// Rune returns the character for a code.
// It panics if the code is out of range.
func (v *Vocab) Rune(code int) rune {
	return v.runes[code]
}

// Encode maps each character of s to its code.
// It fails if s contains a character outside of the
// vocabulary.
func (v *Vocab) Encode(s string) ([]int, error) {
	res := make([]int, 0, len(s))
	for _, r := range s {
		code, ok := v.codes[r]
		if !ok {
			return nil, fmt.Errorf("encode: character %q not in vocabulary", r)
		}
		res = append(res, code)
	}
	return res, nil
}

// Decode maps codes back to the string they encode.
// It panics if a code is out of range.
func (v *Vocab) Decode(codes []int) string {
	res := make([]rune, len(codes))
	for i, c := range codes {
		res[i] = v.runes[c]
	}
	return string(res)
}

// SerializerType returns the unique ID used to serialize
// a Vocab with the serializer package.
func (v *Vocab) SerializerType() string {
	return "github.com/unixpickle/charnet.Vocab"
}

// Serialize serializes the Vocab.
func (v *Vocab) Serialize() ([]byte, error) {
	return serializer.SerializeAny(serializer.String(string(v.runes)))
}
