package checkpoint

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"

	"gorgonia.org/tensor"
)

// Snapshot is a serializable copy of every trainable parameter of the
// adversarial model, keyed by name in a stable order.
type Snapshot struct {
	Names  []string
	Shapes [][]int
	Data   [][]float64
}

// Capture copies the given parameters, in the order of names, into a
// Snapshot. The copies are detached from the live tensors.
func Capture(names []string, params map[string]*tensor.Dense) (*Snapshot, error) {
	snap := &Snapshot{
		Names:  append([]string(nil), names...),
		Shapes: make([][]int, 0, len(names)),
		Data:   make([][]float64, 0, len(names)),
	}
	for _, name := range names {
		p, ok := params[name]
		if !ok {
			return nil, fmt.Errorf("checkpoint: unknown parameter %q", name)
		}
		backing, ok := p.Data().([]float64)
		if !ok {
			return nil, fmt.Errorf("checkpoint: parameter %q is not float64", name)
		}
		data := make([]float64, len(backing))
		copy(data, backing)
		snap.Shapes = append(snap.Shapes, append([]int(nil), p.Shape()...))
		snap.Data = append(snap.Data, data)
	}
	return snap, nil
}

// Apply writes the snapshot's values back into the live parameter tensors.
func (s *Snapshot) Apply(params map[string]*tensor.Dense) error {
	for i, name := range s.Names {
		p, ok := params[name]
		if !ok {
			return fmt.Errorf("checkpoint: unknown parameter %q", name)
		}
		if !p.Shape().Eq(tensor.Shape(s.Shapes[i])) {
			return fmt.Errorf("checkpoint: parameter %q has shape %v, snapshot has %v",
				name, p.Shape(), tensor.Shape(s.Shapes[i]))
		}
		backing, ok := p.Data().([]float64)
		if !ok {
			return fmt.Errorf("checkpoint: parameter %q is not float64", name)
		}
		copy(backing, s.Data[i])
	}
	return nil
}

// Save writes the snapshot to path, overwriting any previous checkpoint.
// The write goes through a temp file and rename so a crash mid-write never
// corrupts the artifact.
func Save(path string, s *Snapshot) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("checkpoint: create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := gob.NewEncoder(tmp).Encode(s); err != nil {
		tmp.Close()
		return fmt.Errorf("checkpoint: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("checkpoint: close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("checkpoint: replace %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot previously written by Save.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open %s: %w", path, err)
	}
	defer f.Close()

	var s Snapshot
	if err := gob.NewDecoder(f).Decode(&s); err != nil {
		return nil, fmt.Errorf("checkpoint: decode %s: %w", path, err)
	}
	return &s, nil
}
