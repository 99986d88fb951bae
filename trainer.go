package charnet

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anydiff/anyseq"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anynet/anysgd"
	"github.com/unixpickle/anyvec"
)

// A Trainer runs truncated back-propagation through time
// over the windows of a Batches.
//
// Within a pass, the recurrent state is carried from one
// window to the next as a constant; gradients reach the
// model's trainable start state through the first window
// of each pass only.
type Trainer struct {
	Model *Model

	// Cost measures the per-timestep prediction error.
	// It is averaged over every prediction in a window.
	Cost anynet.Cost

	// Transformer, if non-nil, transforms each gradient
	// before the step (e.g. a Clipper piped into Adam).
	Transformer anysgd.Transformer

	// Rater determines the learning rate for each epoch.
	Rater anysgd.Rater

	// SaveEvery is the number of iterations between
	// validation passes. If it is 0, no validation passes
	// are run.
	SaveEvery int

	// StatusFunc, if non-nil, is called after every
	// training window.
	StatusFunc func(epoch, iter int, cost float64, elapsed time.Duration)

	// CheckpointFunc, if non-nil, is called after every
	// validation pass with the validation cost.
	// A non-nil error stops training.
	CheckpointFunc func(iter int, valCost float64) error

	// NumIters counts the windows trained so far.
	// Initialize it from a previous run to resume.
	NumIters int
}

// Train runs passes over b's training windows until stop
// is closed.
//
// A diverged cost (NaN) stops training with an error; it
// is never recovered from.
func (t *Trainer) Train(b *Batches, stop <-chan struct{}) error {
	if b.Training().Count() == 0 {
		return errors.New("train: no training windows")
	}
	params := t.Model.Parameters()
	for epoch := 1; ; epoch++ {
		state := t.Model.StartBatch(b.BatchSize)
		first := true
		windows := b.Training()
		for {
			select {
			case <-stop:
				return nil
			default:
			}
			w, ok := windows.Next()
			if !ok {
				break
			}
			start := time.Now()
			t.Model.SetDropout(true)
			cost, next := t.step(params, state, w, first, float64(epoch-1))
			t.Model.SetDropout(false)
			state, first = next, false
			t.NumIters++
			if t.StatusFunc != nil {
				t.StatusFunc(epoch, t.NumIters, cost, time.Since(start))
			}
			if math.IsNaN(cost) {
				return fmt.Errorf("train: cost diverged at iteration %d", t.NumIters)
			}
			if t.SaveEvery > 0 && t.NumIters%t.SaveEvery == 0 {
				valCost, err := t.Validate(b)
				if err != nil {
					return err
				}
				if t.CheckpointFunc != nil {
					if err := t.CheckpointFunc(t.NumIters, valCost); err != nil {
						return err
					}
				}
			}
		}
	}
}

// Validate computes the average window cost over the
// validation windows, using a fresh start state and no
// dropout.
func (t *Trainer) Validate(b *Batches) (float64, error) {
	windows := b.Validation()
	if windows.Count() == 0 {
		return 0, errors.New("validate: no validation windows")
	}
	t.Model.SetDropout(false)
	state := t.Model.StartBatch(b.BatchSize)
	var total float64
	var count int
	for {
		w, ok := windows.Next()
		if !ok {
			break
		}
		seq, next := runWindow(t.Model.Block, state, t.inputs(w), false)
		total += numericFloat(anyvec.Sum(t.avgCost(seq, w).Output()))
		count++
		state = next
	}
	return total / float64(count), nil
}

// step trains on a single window, returning the average
// cost and the carried state.
func (t *Trainer) step(params []*anydiff.Var, state anyrnn.State, w *Window,
	first bool, epoch float64) (float64, anyrnn.State) {
	seq, next := runWindow(t.Model.Block, state, t.inputs(w), first)
	cost := t.avgCost(seq, w)

	grad := anydiff.NewGrad(params...)
	c := cost.Output().Creator()
	upstream := c.MakeVectorData(c.MakeNumericList([]float64{1}))
	cost.Propagate(upstream, grad)

	if t.Transformer != nil {
		grad = t.Transformer.Transform(grad)
	}
	grad.Scale(c.MakeNumeric(-t.Rater.Rate(epoch)))
	grad.AddToVars()

	return numericFloat(anyvec.Sum(cost.Output())), next
}

// inputs packs each window column into a one-hot batch
// vector, one per timestep.
func (t *Trainer) inputs(w *Window) []anyvec.Vector {
	steps := len(w.In[0])
	codes := make([]int, len(w.In))
	res := make([]anyvec.Vector, steps)
	for j := 0; j < steps; j++ {
		for i, row := range w.In {
			codes[i] = row[j]
		}
		res[j] = t.Model.oneHot(codes)
	}
	return res
}

// avgCost computes the window's cost, averaged over every
// prediction in the window.
func (t *Trainer) avgCost(seq anyseq.Seq, w *Window) anydiff.Res {
	codes := make([]int, len(w.Out))
	var idx, count int
	allCosts := anyseq.Map(seq, func(a anydiff.Res, n int) anydiff.Res {
		for i, row := range w.Out {
			codes[i] = row[idx]
		}
		idx++
		count += n
		desired := anydiff.NewConst(t.Model.oneHot(codes))
		return t.Cost.Cost(desired, a, n)
	})
	sum := anydiff.Sum(anyseq.Sum(allCosts))
	scaler := sum.Output().Creator().MakeNumeric(1 / float64(count))
	return anydiff.Scale(sum, scaler)
}

// runWindow steps a block across one window's timesteps,
// returning the outputs as a sequence and the state after
// the final timestep.
//
// The start state is treated as a constant unless
// propStart is set, in which case gradients are propagated
// into the block's start state.
func runWindow(block anyrnn.Block, state anyrnn.State, ins []anyvec.Vector,
	propStart bool) (anyseq.Seq, anyrnn.State) {
	res := &windowSeq{propStart: propStart, block: block, v: anydiff.VarSet{}}
	for _, in := range ins {
		step := block.Step(state, in)
		state = step.State()
		res.reses = append(res.reses, step)
		res.v = anydiff.MergeVarSets(res.v, step.Vars())
		res.out = append(res.out, &anyseq.Batch{
			Packed:  step.Output(),
			Present: state.Present(),
		})
	}
	return res, state
}

// windowSeq is a block unrolled across one window.
// Its back-propagation walk mirrors anyrnn.Map, except
// that the start state is only propagated on request.
type windowSeq struct {
	propStart bool
	block     anyrnn.Block
	reses     []anyrnn.Res
	out       []*anyseq.Batch
	v         anydiff.VarSet
}

func (w *windowSeq) Creator() anyvec.Creator {
	return w.out[0].Packed.Creator()
}

func (w *windowSeq) Output() []*anyseq.Batch {
	return w.out
}

func (w *windowSeq) Vars() anydiff.VarSet {
	return w.v
}

func (w *windowSeq) Propagate(u []*anyseq.Batch, g anydiff.Grad) {
	var upState anyrnn.StateGrad
	for i := len(w.reses) - 1; i >= 0; i-- {
		_, downState := w.reses[i].Propagate(u[i].Packed, upState, g)
		upState = downState
	}
	if w.propStart && upState != nil {
		w.block.PropagateStart(upState, g)
	}
}

func numericFloat(n anyvec.Numeric) float64 {
	switch n := n.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
