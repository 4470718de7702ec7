package gan

import "gorgonia.org/tensor"

// Phase is the lifecycle tag of a network within a session. A network moves
// Unbuilt -> Built when its builder runs and Built -> Compiled when an
// optimizer and loss are bound to it.
type Phase int

const (
	PhaseUnbuilt Phase = iota
	PhaseBuilt
	PhaseCompiled
)

func (p Phase) String() string {
	switch p {
	case PhaseUnbuilt:
		return "unbuilt"
	case PhaseBuilt:
		return "built"
	case PhaseCompiled:
		return "compiled"
	}
	return "unknown"
}

// Network is a directed acyclic topology from a fixed input shape to a fixed
// output shape. It is a pure description; execution belongs to the engine
// that consumes it.
type Network struct {
	Name        string
	InputShape  tensor.Shape
	OutputShape tensor.Shape
	Layers      []Layer
}
