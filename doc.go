// Package charnet implements a character-level LSTM
// language model: vocabulary construction, corpus
// batching, truncated back-propagation through time,
// checkpointing, and autoregressive top-N sampling.
package charnet
