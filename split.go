package charnet

import "fmt"

// Batches holds an encoded corpus reshaped for truncated
// back-propagation through time.
//
// Each of the batchSize rows is a contiguous shard of the
// corpus, and each target cell is the corpus character one
// position after its input cell. The columns of every row
// are partitioned into a training prefix and a validation
// suffix, both aligned to numSteps.
type Batches struct {
	TrainIn  [][]int
	TrainOut [][]int
	ValIn    [][]int
	ValOut   [][]int

	BatchSize int
	NumSteps  int
}

// Split reshapes an encoded corpus into batchSize parallel
// shards and partitions them into training and validation
// matrices.
//
// The corpus is truncated to a multiple of
// batchSize*numSteps. The target for the final usable
// input wraps around to the first corpus character when no
// later character exists.
//
// A corpus shorter than a single batchSize*numSteps slice
// is a configuration error.
func Split(corpus []int, batchSize, numSteps int, trainFrac float64) (*Batches, error) {
	if batchSize < 1 || numSteps < 1 {
		return nil, fmt.Errorf("split: invalid batch size %d or step count %d",
			batchSize, numSteps)
	}
	if trainFrac < 0 || trainFrac > 1 {
		return nil, fmt.Errorf("split: invalid training fraction %v", trainFrac)
	}

	sliceSize := batchSize * numSteps
	nBatches := len(corpus) / sliceSize
	if nBatches == 0 {
		return nil, fmt.Errorf("split: corpus of %d characters is shorter than one "+
			"%dx%d slice", len(corpus), batchSize, numSteps)
	}
	usable := nBatches * sliceSize

	ins := corpus[:usable]
	outs := make([]int, usable)
	if len(corpus) > usable {
		copy(outs, corpus[1:usable+1])
	} else {
		copy(outs, corpus[1:])
		outs[usable-1] = corpus[0]
	}

	shard := nBatches * numSteps
	splitCol := int(float64(nBatches)*trainFrac) * numSteps

	res := &Batches{BatchSize: batchSize, NumSteps: numSteps}
	for i := 0; i < batchSize; i++ {
		inRow := ins[i*shard : (i+1)*shard]
		outRow := outs[i*shard : (i+1)*shard]
		res.TrainIn = append(res.TrainIn, inRow[:splitCol])
		res.TrainOut = append(res.TrainOut, outRow[:splitCol])
		res.ValIn = append(res.ValIn, inRow[splitCol:])
		res.ValOut = append(res.ValOut, outRow[splitCol:])
	}
	return res, nil
}

// Training returns a fresh iterator over the training
// windows.
func (b *Batches) Training() *Windows {
	return NewWindows(b.TrainIn, b.TrainOut, b.NumSteps)
}

// Validation returns a fresh iterator over the validation
// windows.
func (b *Batches) Validation() *Windows {
	return NewWindows(b.ValIn, b.ValOut, b.NumSteps)
}
