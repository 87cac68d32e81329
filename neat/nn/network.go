package nn

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/baldhumanity/coevo-neat/neat"
)

// link is one enabled incoming connection of a neuron.
type link struct {
	source int // slot of the source neuron
	weight float64
}

// neuron is a non-input node with its pre-resolved incoming links.
type neuron struct {
	slot     int
	bias     float64
	incoming []link
}

// Network is a compiled phenotype of a genome. It produces the same outputs as
// Genome.Activate without re-deriving evaluation order on every call, and is
// safe for concurrent use.
type Network struct {
	numSlots    int
	inputSlots  []int    // slots fed by the inputs, in node-id order
	outputSlots []int    // slots read as outputs, in node-id order
	neurons     []neuron // non-input nodes in evaluation order
	activation  neat.ActivationFunc
	biasInput   bool
}

// CreateNetwork compiles a genome. Nodes are evaluated by ascending depth with
// ties broken by id, exactly like Genome.Activate.
func CreateNetwork(g *neat.Genome) (*Network, error) {
	activation, err := neat.GetActivation(g.Config.Activation)
	if err != nil {
		return nil, fmt.Errorf("failed to compile network: %w", err)
	}

	nodes := g.Nodes()
	slots := make(map[int]int, len(nodes))
	for i, n := range nodes {
		slots[n.ID] = i
	}

	net := &Network{
		numSlots:   len(nodes),
		activation: activation,
		biasInput:  g.Config.BiasInActivation,
	}
	incoming := make(map[int][]link)
	for _, c := range g.Connections() {
		if c.Enabled {
			incoming[c.OutNodeID] = append(incoming[c.OutNodeID], link{source: slots[c.InNodeID], weight: c.Weight})
		}
	}

	order := make([]*neat.NodeGene, len(nodes))
	copy(order, nodes)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Depth != order[j].Depth {
			return order[i].Depth < order[j].Depth
		}
		return order[i].ID < order[j].ID
	})
	for _, n := range order {
		if n.Type == neat.InputNode {
			continue
		}
		net.neurons = append(net.neurons, neuron{slot: slots[n.ID], bias: n.Bias, incoming: incoming[n.ID]})
	}
	for i, n := range nodes {
		switch n.Type {
		case neat.InputNode:
			net.inputSlots = append(net.inputSlots, i)
		case neat.OutputNode:
			net.outputSlots = append(net.outputSlots, i)
		}
	}
	return net, nil
}

// Activate runs the network for the given number of passes (at least one).
func (n *Network) Activate(inputs []float64, timesteps int) ([]float64, error) {
	if len(inputs) != len(n.inputSlots) {
		return nil, fmt.Errorf("%w: got %d inputs, network has %d input nodes", neat.ErrInputShape, len(inputs), len(n.inputSlots))
	}
	if timesteps < 1 {
		timesteps = 1
	}
	values := make([]float64, n.numSlots)
	for i, slot := range n.inputSlots {
		values[slot] = inputs[i]
	}
	for t := 0; t < timesteps; t++ {
		for _, nr := range n.neurons {
			values[nr.slot] = 0
			sum := 0.0
			for _, l := range nr.incoming {
				sum += l.weight * values[l.source]
			}
			if n.biasInput {
				sum += nr.bias
			}
			values[nr.slot] = n.activation(sum)
		}
	}
	outputs := make([]float64, len(n.outputSlots))
	for i, slot := range n.outputSlots {
		outputs[i] = values[slot]
	}
	return outputs, nil
}

// Analysis describes the topology of a genome's enabled connections.
type Analysis struct {
	FeedForward bool    // no cycles, self-loops included
	SelfLoops   int     // enabled connections from a node to itself
	Cycles      [][]int // elementary cycles of length > 1, as node ids
	Order       []int   // a topological order of node ids, nil when cyclic
}

// Analyze inspects the enabled connections of a genome. A feed-forward genome
// settles in a single activation pass; any other genome needs extra timesteps
// for its loops to take effect.
func Analyze(g *neat.Genome) (*Analysis, error) {
	dg := simple.NewDirectedGraph()
	for _, n := range g.Nodes() {
		dg.AddNode(simple.Node(n.ID))
	}
	a := &Analysis{}
	for _, c := range g.Connections() {
		if !c.Enabled {
			continue
		}
		// simple.DirectedGraph rejects self edges.
		if c.IsSelfLoop() {
			a.SelfLoops++
			continue
		}
		dg.SetEdge(dg.NewEdge(simple.Node(c.InNodeID), simple.Node(c.OutNodeID)))
	}

	sorted, err := topo.SortStabilized(dg, nil)
	if err != nil {
		if _, ok := err.(topo.Unorderable); !ok {
			return nil, fmt.Errorf("failed to sort network graph: %w", err)
		}
		for _, cycle := range topo.DirectedCyclesIn(dg) {
			// DirectedCyclesIn repeats the first node at the end.
			ids := make([]int, 0, len(cycle)-1)
			for _, node := range cycle[:len(cycle)-1] {
				ids = append(ids, int(node.ID()))
			}
			a.Cycles = append(a.Cycles, ids)
		}
	} else {
		for _, node := range sorted {
			a.Order = append(a.Order, int(node.ID()))
		}
	}
	a.FeedForward = a.SelfLoops == 0 && len(a.Cycles) == 0
	return a, nil
}
