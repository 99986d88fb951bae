package charnet

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/unixpickle/essentials"
)

// DefaultTopN is the default sampling width.
const DefaultTopN = 5

// A Sampler generates text from a Predictor by repeatedly
// sampling the next character and feeding it back in.
type Sampler struct {
	Predictor Predictor
	Vocab     *Vocab

	// TopN restricts sampling to the TopN most probable
	// characters. If it is 0, DefaultTopN is used. If it
	// is negative or at least the vocabulary size, the
	// full distribution is sampled.
	TopN int

	// Rand is the source of randomness.
	// If nil, the global math/rand source is used.
	Rand *rand.Rand
}

// Sample feeds the priming string through the predictor
// and then generates n characters, returning the prime
// with the generated text appended.
//
// When n > 0, the prime must be non-empty and every prime
// character must be in the vocabulary.
func (s *Sampler) Sample(prime string, n int) (string, error) {
	if n == 0 {
		return prime, nil
	}
	if prime == "" {
		return "", errors.New("sample: empty priming string")
	}
	codes, err := s.Vocab.Encode(prime)
	if err != nil {
		return "", essentials.AddCtx("sample", err)
	}

	state := s.Predictor.Start()
	var probs []float64
	for _, c := range codes {
		probs, state = s.Predictor.Predict(state, c)
	}

	res := []rune(prime)
	for i := 0; i < n; i++ {
		if len(probs) != s.Vocab.Len() {
			return "", fmt.Errorf("sample: distribution size %d does not match "+
				"vocabulary size %d", len(probs), s.Vocab.Len())
		}
		c := s.pickTopN(probs)
		res = append(res, s.Vocab.Rune(c))
		if i+1 < n {
			probs, state = s.Predictor.Predict(state, c)
		}
	}
	return string(res), nil
}

// pickTopN samples an index from the TopN most probable
// entries of probs after renormalizing them.
//
// Candidates are ordered by descending probability with
// ties broken toward the lower index, so the cutoff at the
// N-th rank is deterministic.
func (s *Sampler) pickTopN(probs []float64) int {
	n := s.TopN
	if n == 0 {
		n = DefaultTopN
	}
	if n < 0 || n > len(probs) {
		n = len(probs)
	}

	idxs := make([]int, len(probs))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		return probs[idxs[i]] > probs[idxs[j]]
	})
	idxs = idxs[:n]

	var total float64
	for _, i := range idxs {
		total += probs[i]
	}
	r := total * s.float64()
	for _, i := range idxs {
		r -= probs[i]
		if r < 0 {
			return i
		}
	}
	return idxs[len(idxs)-1]
}

func (s *Sampler) float64() float64 {
	if s.Rand != nil {
		return s.Rand.Float64()
	}
	return rand.Float64()
}
