package charnet

import (
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet/anysgd"
)

// A Clipper is an anysgd.Transformer that re-scales any
// gradient whose global L2 norm exceeds Norm to have a
// norm of exactly Norm. Smaller gradients pass through
// untouched.
type Clipper struct {
	Norm float64
}

// Transform clips g in place and returns it.
func (c *Clipper) Transform(g anydiff.Grad) anydiff.Grad {
	var squared float64
	for _, v := range g {
		squared += numericFloat(v.Dot(v))
	}
	norm := math.Sqrt(squared)
	if norm > c.Norm {
		for _, v := range g {
			g.Scale(v.Creator().MakeNumeric(c.Norm / norm))
			break
		}
	}
	return g
}

// A Pipeline is an anysgd.Transformer that applies a list
// of Transformers in order, feeding each one's output to
// the next.
type Pipeline []anysgd.Transformer

// Transform applies every transformer in the pipeline.
func (p Pipeline) Transform(g anydiff.Grad) anydiff.Grad {
	for _, t := range p {
		g = t.Transform(g)
	}
	return g
}

var _ anysgd.Transformer = &Clipper{}
var _ anysgd.Transformer = Pipeline{}
