package charnet

import (
	"reflect"
	"testing"
)

func TestSplitExample(t *testing.T) {
	// "ABABABAB" with A=0, B=1.
	corpus := []int{0, 1, 0, 1, 0, 1, 0, 1}
	b, err := Split(corpus, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	wantIn := [][]int{{0, 1, 0, 1}, {0, 1, 0, 1}}
	wantOut := [][]int{{1, 0, 1, 0}, {1, 0, 1, 0}}
	if !reflect.DeepEqual(b.TrainIn, wantIn) {
		t.Errorf("inputs: got %v, want %v", b.TrainIn, wantIn)
	}
	if !reflect.DeepEqual(b.TrainOut, wantOut) {
		t.Errorf("targets: got %v, want %v", b.TrainOut, wantOut)
	}
	for i, row := range b.ValIn {
		if len(row) != 0 {
			t.Errorf("validation row %d not empty", i)
		}
	}
}

func TestSplitShapes(t *testing.T) {
	corpus := make([]int, 1003)
	for i := range corpus {
		corpus[i] = i
	}
	b, err := Split(corpus, 4, 10, 0.9)
	if err != nil {
		t.Fatal(err)
	}
	// sliceSize=40, nBatches=25, usable=1000, shard=250,
	// splitCol=floor(25*0.9)*10=220.
	if len(b.TrainIn) != 4 || len(b.ValIn) != 4 {
		t.Fatalf("got %d/%d rows", len(b.TrainIn), len(b.ValIn))
	}
	for i := 0; i < 4; i++ {
		if len(b.TrainIn[i]) != 220 || len(b.ValIn[i]) != 30 {
			t.Fatalf("row %d: train %d, val %d", i, len(b.TrainIn[i]), len(b.ValIn[i]))
		}
		if len(b.TrainIn[i])%10 != 0 || len(b.ValIn[i])%10 != 0 {
			t.Errorf("row %d not aligned to the step count", i)
		}
		if len(b.TrainIn[i])+len(b.ValIn[i]) != 250 {
			t.Errorf("row %d does not cover its shard", i)
		}
	}

	// Concatenating the rows reproduces the truncated corpus.
	var flat []int
	for i := 0; i < 4; i++ {
		flat = append(flat, b.TrainIn[i]...)
		flat = append(flat, b.ValIn[i]...)
	}
	if !reflect.DeepEqual(flat, corpus[:1000]) {
		t.Error("row concatenation does not reproduce the corpus")
	}
}

func TestSplitTargets(t *testing.T) {
	// One character beyond the usable region: the final
	// target is that character.
	corpus := []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
	b, err := Split(corpus, 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.TrainOut[1], []int{5, 6, 7, 8}) {
		t.Errorf("got %v", b.TrainOut[1])
	}
	// Row 0's final target crosses into row 1's shard.
	if !reflect.DeepEqual(b.TrainOut[0], []int{1, 2, 3, 4}) {
		t.Errorf("got %v", b.TrainOut[0])
	}

	// No character beyond the usable region: the final
	// target wraps to the start of the corpus.
	b, err = Split(corpus[:8], 2, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b.TrainOut[1], []int{5, 6, 7, 0}) {
		t.Errorf("got %v", b.TrainOut[1])
	}
}

func TestSplitErrors(t *testing.T) {
	if _, err := Split([]int{0, 1, 2}, 2, 2, 0.9); err == nil {
		t.Error("expected error for a corpus shorter than one slice")
	}
	if _, err := Split([]int{0, 1, 2, 3}, 0, 2, 0.9); err == nil {
		t.Error("expected error for zero batch size")
	}
	if _, err := Split([]int{0, 1, 2, 3}, 2, 2, 1.5); err == nil {
		t.Error("expected error for fraction above 1")
	}
}
