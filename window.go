package charnet

// A Window is one (batchSize, numSteps) slice of aligned
// input and target matrices.
//
// The rows alias the underlying matrices; callers must not
// modify them.
type Window struct {
	In  [][]int
	Out [][]int
}

// Windows iterates over the consecutive windows of a pair
// of equal-shape matrices in increasing column order.
//
// The order is load-bearing: window k of a row immediately
// precedes window k+1 of the same row in the corpus, so a
// recurrent state carried across Next calls stays aligned
// with the text.
type Windows struct {
	in       [][]int
	out      [][]int
	numSteps int
	cols     int
	offset   int
}

// NewWindows creates an iterator over in and out, which
// must share their shape. Columns beyond the last full
// window are dropped.
func NewWindows(in, out [][]int, numSteps int) *Windows {
	var cols int
	if len(in) > 0 {
		cols = len(in[0])
	}
	return &Windows{in: in, out: out, numSteps: numSteps, cols: cols}
}

// Count returns the total number of windows the iterator
// yields.
func (w *Windows) Count() int {
	return w.cols / w.numSteps
}

// Next returns the next window, or false once every full
// window has been yielded.
func (w *Windows) Next() (*Window, bool) {
	if w.offset+w.numSteps > w.cols {
		return nil, false
	}
	res := &Window{
		In:  make([][]int, len(w.in)),
		Out: make([][]int, len(w.out)),
	}
	for i, row := range w.in {
		res.In[i] = row[w.offset : w.offset+w.numSteps]
	}
	for i, row := range w.out {
		res.Out[i] = row[w.offset : w.offset+w.numSteps]
	}
	w.offset += w.numSteps
	return res, true
}
