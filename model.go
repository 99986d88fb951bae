package charnet

import (
	"fmt"
	"math"

	"github.com/unixpickle/anydiff"
	"github.com/unixpickle/anynet"
	"github.com/unixpickle/anynet/anyrnn"
	"github.com/unixpickle/anyvec"
	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

func init() {
	var m Model
	serializer.RegisterTypedDeserializer(m.SerializerType(), DeserializeModel)
}

// State is an opaque recurrent state threaded between
// consecutive Predict calls.
type State interface{}

// A Predictor produces next-character distributions one
// character at a time, carrying recurrent state forward.
type Predictor interface {
	// Start returns the state before any input has been
	// seen.
	Start() State

	// Predict feeds one character code and returns the
	// probability distribution over the next character
	// along with the updated state.
	Predict(s State, char int) ([]float64, State)
}

// A Model is a stacked-LSTM language model over the
// characters of a Vocab.
//
// The block is a stack of LSTM layers, each followed by
// dropout, with a fully-connected log-softmax output
// layer. Inputs are one-hot character codes.
type Model struct {
	Vocab *Vocab
	Block anyrnn.Stack
}

// NewModel creates a randomized model with numLayers LSTM
// layers of lstmSize units each and the given dropout keep
// probability. Dropout starts out disabled.
func NewModel(c anyvec.Creator, vocab *Vocab, lstmSize, numLayers int,
	dropoutKeep float64) *Model {
	var stack anyrnn.Stack
	inSize := vocab.Len()
	for i := 0; i < numLayers; i++ {
		stack = append(stack, anyrnn.NewLSTM(c, inSize, lstmSize))
		stack = append(stack, &anyrnn.LayerBlock{
			Layer: &anynet.Dropout{KeepProb: dropoutKeep},
		})
		inSize = lstmSize
	}
	stack = append(stack, &anyrnn.LayerBlock{
		Layer: anynet.Net{
			anynet.NewFC(c, lstmSize, vocab.Len()),
			anynet.LogSoftmax,
		},
	})
	return &Model{Vocab: vocab, Block: stack}
}

// DeserializeModel deserializes a Model.
func DeserializeModel(d []byte) (*Model, error) {
	var vocab *Vocab
	var stack anyrnn.Stack
	if err := serializer.DeserializeAny(d, &vocab, &stack); err != nil {
		return nil, essentials.AddCtx("deserialize Model", err)
	}
	return &Model{Vocab: vocab, Block: stack}, nil
}

// Parameters returns the model's trainable parameters.
func (m *Model) Parameters() []*anydiff.Var {
	var res []*anydiff.Var
	for _, b := range m.Block {
		if p, ok := b.(anynet.Parameterizer); ok {
			res = append(res, p.Parameters()...)
		}
	}
	return res
}

// SetDropout enables or disables the dropout layers.
// Dropout should be enabled for training and disabled for
// validation and sampling.
func (m *Model) SetDropout(enabled bool) {
	for _, b := range m.Block {
		lb, ok := b.(*anyrnn.LayerBlock)
		if !ok {
			continue
		}
		if d, ok := lb.Layer.(*anynet.Dropout); ok {
			d.Enabled = enabled
		}
	}
}

// LSTMSize returns the state size of the LSTM layers.
func (m *Model) LSTMSize() int {
	for _, b := range m.Block {
		if l, ok := b.(*anyrnn.LSTM); ok {
			return l.InitInternal.Vector.Len()
		}
	}
	return 0
}

// StartBatch returns a start state for n parallel
// sequences.
func (m *Model) StartBatch(n int) anyrnn.State {
	return m.Block.Start(n)
}

// Start returns the start state for a single sequence.
func (m *Model) Start() State {
	return m.Block.Start(1)
}

// Predict feeds one character code through the model and
// returns the distribution over the next character and the
// updated state.
func (m *Model) Predict(s State, char int) ([]float64, State) {
	res := m.Block.Step(s.(anyrnn.State), m.oneHot([]int{char}))
	return probabilities(res.Output()), res.State()
}

// SerializerType returns the unique ID used to serialize
// a Model with the serializer package.
func (m *Model) SerializerType() string {
	return "github.com/unixpickle/charnet.Model"
}

// Serialize serializes the Model.
func (m *Model) Serialize() ([]byte, error) {
	return serializer.SerializeAny(m.Vocab, m.Block)
}

func (m *Model) creator() anyvec.Creator {
	return m.Parameters()[0].Vector.Creator()
}

// oneHot packs a batch of character codes into a single
// one-hot batch vector.
func (m *Model) oneHot(codes []int) anyvec.Vector {
	c := m.creator()
	data := make([]float64, len(codes)*m.Vocab.Len())
	for i, code := range codes {
		data[i*m.Vocab.Len()+code] = 1
	}
	return c.MakeVectorData(c.MakeNumericList(data))
}

// probabilities converts a log-softmax output into a
// probability slice.
func probabilities(v anyvec.Vector) []float64 {
	switch data := v.Data().(type) {
	case []float32:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = math.Exp(float64(x))
		}
		return res
	case []float64:
		res := make([]float64, len(data))
		for i, x := range data {
			res[i] = math.Exp(x)
		}
		return res
	default:
		panic(fmt.Sprintf("unsupported numeric list: %T", data))
	}
}
