package neat

import (
	"fmt"
	"math/rand"
)

// NodeType is the role a node plays in the network.
type NodeType int

const (
	InputNode NodeType = iota
	HiddenNode
	OutputNode
)

// String returns the lowercase name of the node type.
func (t NodeType) String() string {
	switch t {
	case InputNode:
		return "input"
	case HiddenNode:
		return "hidden"
	case OutputNode:
		return "output"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// ParseNodeType converts a name produced by NodeType.String back into a NodeType.
func ParseNodeType(s string) (NodeType, error) {
	switch s {
	case "input":
		return InputNode, nil
	case "hidden":
		return HiddenNode, nil
	case "output":
		return OutputNode, nil
	}
	return 0, fmt.Errorf("unknown node type: %q", s)
}

// --------------------------- NodeGene ---------------------------

// NodeGene represents a node (neuron) in the neural network genome.
type NodeGene struct {
	ID    int
	Type  NodeType
	Depth int // topological layer, inputs sit at 0
	Bias  float64
}

// String returns a string representation of the NodeGene.
func (ng *NodeGene) String() string {
	return fmt.Sprintf("NodeGene(ID: %d, Type: %s, Depth: %d, Bias: %.3f)",
		ng.ID, ng.Type, ng.Depth, ng.Bias)
}

// Copy creates a deep copy of the NodeGene.
func (ng *NodeGene) Copy() *NodeGene {
	c := *ng
	return &c
}

// perturbBias adds a bounded uniform offset to the bias.
func (ng *NodeGene) perturbBias(rng *rand.Rand, config *GenomeConfig) {
	ng.Bias = perturbValue(ng.Bias, config.BiasPerturbPower, config, rng)
}

// --------------------------- ConnectionGene ---------------------------

// ConnectionGene represents a connection between two nodes in the genome.
type ConnectionGene struct {
	InNodeID   int
	OutNodeID  int
	Weight     float64
	Enabled    bool
	Innovation int // historical marker, fixed at creation
}

// Key returns the endpoint pair of the connection.
func (cg *ConnectionGene) Key() ConnectionKey {
	return ConnectionKey{InNodeID: cg.InNodeID, OutNodeID: cg.OutNodeID}
}

// IsSelfLoop reports whether the connection starts and ends at the same node.
func (cg *ConnectionGene) IsSelfLoop() bool {
	return cg.InNodeID == cg.OutNodeID
}

// String returns a string representation of the ConnectionGene.
func (cg *ConnectionGene) String() string {
	return fmt.Sprintf("ConnectionGene(%d -> %d, Innovation: %d, Weight: %.3f, Enabled: %t)",
		cg.InNodeID, cg.OutNodeID, cg.Innovation, cg.Weight, cg.Enabled)
}

// Copy creates a deep copy of the ConnectionGene.
func (cg *ConnectionGene) Copy() *ConnectionGene {
	c := *cg
	return &c
}

// perturbWeight adds a bounded uniform offset to the weight.
func (cg *ConnectionGene) perturbWeight(rng *rand.Rand, config *GenomeConfig) {
	cg.Weight = perturbValue(cg.Weight, config.WeightPerturbPower, config, rng)
}

// --- Attribute Helpers ---

// perturbValue offsets v by a uniform value in [-power, power], then clamps and rounds it.
func perturbValue(v, power float64, config *GenomeConfig, rng *rand.Rand) float64 {
	v += (rng.Float64()*2 - 1) * power
	return roundTo(clamp(v, config.MinValue, config.MaxValue), valuePrecision)
}
