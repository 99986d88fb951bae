package charnet

import (
	"fmt"
	"path/filepath"

	"github.com/unixpickle/essentials"
	"github.com/unixpickle/serializer"
)

// CheckpointName returns the conventional file name for a
// checkpoint: i<iteration>_l<lstmSize>_<valCost>.net.
func CheckpointName(iter, lstmSize int, valCost float64) string {
	return fmt.Sprintf("i%d_l%d_%.3f.net", iter, lstmSize, valCost)
}

// SaveCheckpoint writes the model to dir/name.
func SaveCheckpoint(dir, name string, m *Model) error {
	if err := serializer.SaveAny(filepath.Join(dir, name), m); err != nil {
		return essentials.AddCtx("save checkpoint", err)
	}
	return nil
}

// LoadCheckpoint reads a model back from a checkpoint
// file.
//
// A missing or corrupt file is reported as an error; a
// fresh model is never substituted.
func LoadCheckpoint(path string) (*Model, error) {
	var m *Model
	if err := serializer.LoadAny(path, &m); err != nil {
		return nil, essentials.AddCtx("load checkpoint", err)
	}
	return m, nil
}
