package charnet

import (
	"math/rand"
	"strings"
	"testing"
)

// stubPredictor returns a fixed distribution and counts
// its steps, so sampling logic can be tested without a
// numerical backend.
type stubPredictor struct {
	dist  []float64
	steps int
}

func (s *stubPredictor) Start() State {
	return 0
}

func (s *stubPredictor) Predict(st State, char int) ([]float64, State) {
	s.steps++
	return s.dist, st.(int) + 1
}

func TestSampleNoGeneration(t *testing.T) {
	s := &Sampler{Predictor: &stubPredictor{}, Vocab: NewVocab("ab")}
	res, err := s.Sample("unseen characters", 0)
	if err != nil {
		t.Fatal(err)
	}
	if res != "unseen characters" {
		t.Errorf("got %q", res)
	}
}

func TestSamplePrimeErrors(t *testing.T) {
	stub := &stubPredictor{dist: []float64{0.5, 0.5}}
	s := &Sampler{Predictor: stub, Vocab: NewVocab("ab")}
	if _, err := s.Sample("z", 3); err == nil {
		t.Error("expected error for out-of-vocabulary prime")
	}
	if _, err := s.Sample("", 3); err == nil {
		t.Error("expected error for empty prime")
	}
}

func TestSampleTopN(t *testing.T) {
	vocab := NewVocab("abcde")
	stub := &stubPredictor{dist: []float64{0.05, 0.5, 0.05, 0.3, 0.1}}
	s := &Sampler{
		Predictor: stub,
		Vocab:     vocab,
		TopN:      2,
		Rand:      rand.New(rand.NewSource(1)),
	}
	res, err := s.Sample("a", 200)
	if err != nil {
		t.Fatal(err)
	}
	generated := res[1:]
	if strings.Trim(generated, "bd") != "" {
		t.Errorf("sampled outside the top 2: %q", generated)
	}
	if !strings.Contains(generated, "b") || !strings.Contains(generated, "d") {
		t.Error("expected both top-2 characters to appear")
	}
	// One step per prime character, then one per generated
	// character except the last.
	if stub.steps != 1+199 {
		t.Errorf("predictor stepped %d times", stub.steps)
	}
}

func TestSampleFullDistribution(t *testing.T) {
	vocab := NewVocab("abcde")
	stub := &stubPredictor{dist: []float64{0.25, 0, 0.25, 0.25, 0.25}}
	s := &Sampler{
		Predictor: stub,
		Vocab:     vocab,
		TopN:      vocab.Len() + 3,
		Rand:      rand.New(rand.NewSource(2)),
	}
	res, err := s.Sample("a", 400)
	if err != nil {
		t.Fatal(err)
	}
	if strings.ContainsRune(res[1:], 'b') {
		t.Error("sampled a zero-probability character")
	}
	for _, r := range "acde" {
		if !strings.ContainsRune(res[1:], r) {
			t.Errorf("character %q never sampled", r)
		}
	}
}

func TestPickTopNTieBreak(t *testing.T) {
	// Three entries tie at the second rank; the lowest
	// index wins the cutoff.
	s := &Sampler{TopN: 2, Rand: rand.New(rand.NewSource(3))}
	probs := []float64{0.4, 0.3, 0.3, 0.3}
	for i := 0; i < 100; i++ {
		if c := s.pickTopN(probs); c > 1 {
			t.Fatalf("sampled index %d beyond the tie-broken cutoff", c)
		}
	}
}
