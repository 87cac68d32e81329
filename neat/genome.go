package neat

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
)

// ErrInputShape is returned by Activate when the number of inputs does not
// match the genome's input nodes.
var ErrInputShape = errors.New("input shape mismatch")

// Genome is the node/connection graph of one network.
// Nodes live in a flat arena ordered by id; connections reference nodes by id only.
type Genome struct {
	Config *GenomeConfig

	ledger *InnovationLedger
	nodes  []*NodeGene // sorted by ID
	index  map[int]int // node ID -> position in nodes
	conns  []*ConnectionGene
}

// NewEmptyGenome creates a genome without nodes or connections.
func NewEmptyGenome(config *GenomeConfig, ledger *InnovationLedger) *Genome {
	return &Genome{
		Config: config,
		ledger: ledger,
		index:  make(map[int]int),
	}
}

// NewGenome builds the initial skeleton: every input wired to every output.
// Inputs take ids 0..NumInputs-1 at depth 0, outputs follow at depth 1.
func NewGenome(config *GenomeConfig, ledger *InnovationLedger, rng *rand.Rand) *Genome {
	g := NewEmptyGenome(config, ledger)
	for i := 0; i < config.NumInputs; i++ {
		g.mustAddNode(InputNode, 0, 0)
	}
	for i := 0; i < config.NumOutputs; i++ {
		g.mustAddNode(OutputNode, 1, clamp(randomUnit(rng), config.MinValue, config.MaxValue))
	}
	for in := 0; in < config.NumInputs; in++ {
		for out := config.NumInputs; out < config.NumInputs+config.NumOutputs; out++ {
			weight := clamp(randomUnit(rng), config.MinValue, config.MaxValue)
			if _, err := g.AddConnection(in, out, weight, true); err != nil {
				panic(fmt.Sprintf("building initial genome: %v", err))
			}
		}
	}
	return g
}

func (g *Genome) mustAddNode(typ NodeType, depth int, bias float64) {
	if _, err := g.AddNode(typ, depth, bias, nil); err != nil {
		panic(fmt.Sprintf("building initial genome: %v", err))
	}
}

// Ledger returns the innovation ledger the genome draws identifiers from.
func (g *Genome) Ledger() *InnovationLedger {
	return g.ledger
}

// AddNode adds a node. When split is non-nil the id comes from the ledger for
// that connection; otherwise the next sequential id (the node count) is used.
func (g *Genome) AddNode(typ NodeType, depth int, bias float64, split *ConnectionGene) (*NodeGene, error) {
	id := len(g.nodes)
	if split != nil {
		id = g.ledger.AssignNodeID(split.Key())
	}
	return g.AddNodeWithID(id, typ, depth, bias)
}

// AddNodeWithID adds a node with an explicit id.
func (g *Genome) AddNodeWithID(id int, typ NodeType, depth int, bias float64) (*NodeGene, error) {
	if _, exists := g.index[id]; exists {
		return nil, fmt.Errorf("node %d already exists", id)
	}
	node := &NodeGene{ID: id, Type: typ, Depth: depth, Bias: bias}

	pos := sort.Search(len(g.nodes), func(i int) bool { return g.nodes[i].ID > id })
	g.nodes = append(g.nodes, nil)
	copy(g.nodes[pos+1:], g.nodes[pos:])
	g.nodes[pos] = node
	for i := pos; i < len(g.nodes); i++ {
		g.index[g.nodes[i].ID] = i
	}
	return node, nil
}

// AddConnection adds a connection whose innovation number comes from the ledger.
func (g *Genome) AddConnection(in, out int, weight float64, enabled bool) (*ConnectionGene, error) {
	if err := g.checkEndpoints(in, out); err != nil {
		return nil, err
	}
	innovation := g.ledger.AssignConnectionID(ConnectionKey{InNodeID: in, OutNodeID: out})
	return g.AddConnectionWithInnovation(in, out, weight, enabled, innovation)
}

// AddConnectionWithInnovation adds a connection keeping an existing innovation number.
func (g *Genome) AddConnectionWithInnovation(in, out int, weight float64, enabled bool, innovation int) (*ConnectionGene, error) {
	if err := g.checkEndpoints(in, out); err != nil {
		return nil, err
	}
	if g.connectionIndex(in, out) != -1 {
		return nil, fmt.Errorf("connection %d -> %d already exists", in, out)
	}
	cg := &ConnectionGene{
		InNodeID:   in,
		OutNodeID:  out,
		Weight:     weight,
		Enabled:    enabled,
		Innovation: innovation,
	}
	g.conns = append(g.conns, cg)
	return cg, nil
}

func (g *Genome) checkEndpoints(in, out int) error {
	if _, ok := g.index[in]; !ok {
		return fmt.Errorf("connection source node %d not found", in)
	}
	if _, ok := g.index[out]; !ok {
		return fmt.Errorf("connection target node %d not found", out)
	}
	return nil
}

// connectionIndex returns the position of the in->out connection, or -1.
func (g *Genome) connectionIndex(in, out int) int {
	for i, c := range g.conns {
		if c.InNodeID == in && c.OutNodeID == out {
			return i
		}
	}
	return -1
}

func (g *Genome) removeConnectionAt(i int) {
	copy(g.conns[i:], g.conns[i+1:])
	g.conns[len(g.conns)-1] = nil
	g.conns = g.conns[:len(g.conns)-1]
}

// Clone returns an independent deep copy. Ids and innovation numbers are kept;
// only the config and ledger are shared.
func (g *Genome) Clone() *Genome {
	c := &Genome{
		Config: g.Config,
		ledger: g.ledger,
		nodes:  make([]*NodeGene, len(g.nodes)),
		index:  make(map[int]int, len(g.index)),
		conns:  make([]*ConnectionGene, len(g.conns)),
	}
	for i, n := range g.nodes {
		c.nodes[i] = n.Copy()
		c.index[n.ID] = i
	}
	for i, cg := range g.conns {
		c.conns[i] = cg.Copy()
	}
	return c
}

// --- Accessors ---

// Nodes returns the nodes ordered by id. The genes must not be modified.
func (g *Genome) Nodes() []*NodeGene {
	out := make([]*NodeGene, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Connections returns the connections in insertion order. The genes must not be modified.
func (g *Genome) Connections() []*ConnectionGene {
	out := make([]*ConnectionGene, len(g.conns))
	copy(out, g.conns)
	return out
}

// Node looks up a node by id.
func (g *Genome) Node(id int) (*NodeGene, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// Inputs returns the input nodes ordered by id.
func (g *Genome) Inputs() []*NodeGene {
	return g.nodesOfType(InputNode)
}

// Outputs returns the output nodes ordered by id.
func (g *Genome) Outputs() []*NodeGene {
	return g.nodesOfType(OutputNode)
}

func (g *Genome) nodesOfType(typ NodeType) []*NodeGene {
	var out []*NodeGene
	for _, n := range g.nodes {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

// NumNodes returns the number of nodes.
func (g *Genome) NumNodes() int { return len(g.nodes) }

// NumConnections returns the number of connections, enabled or not.
func (g *Genome) NumConnections() int { return len(g.conns) }

// NumEnabled returns the number of enabled connections.
func (g *Genome) NumEnabled() int {
	n := 0
	for _, c := range g.conns {
		if c.Enabled {
			n++
		}
	}
	return n
}

// String returns a multi-line description of the genome.
func (g *Genome) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Genome(nodes: %d, connections: %d, enabled: %d)\n", len(g.nodes), len(g.conns), g.NumEnabled())
	for _, n := range g.nodes {
		sb.WriteString("  " + n.String() + "\n")
	}
	for _, c := range g.conns {
		sb.WriteString("  " + c.String() + "\n")
	}
	return sb.String()
}

// --- Activation ---

// evaluationOrder returns node arena positions sorted by depth, ties by id.
func (g *Genome) evaluationOrder() []int {
	order := make([]int, len(g.nodes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		na, nb := g.nodes[order[a]], g.nodes[order[b]]
		if na.Depth != nb.Depth {
			return na.Depth < nb.Depth
		}
		return na.ID < nb.ID
	})
	return order
}

// Activate feeds inputs through the network and returns the output values in
// node-id order. Nodes are processed by ascending depth; a node reads the value
// its sources hold at that moment, so connections from deeper nodes carry the
// previous pass's value. Extra timesteps let such recurrent loops settle.
// Activation state lives only for the duration of the call.
func (g *Genome) Activate(inputs []float64, timesteps int) ([]float64, error) {
	var numInputs int
	for _, n := range g.nodes {
		if n.Type == InputNode {
			numInputs++
		}
	}
	if len(inputs) != numInputs {
		return nil, fmt.Errorf("%w: got %d inputs, genome has %d input nodes", ErrInputShape, len(inputs), numInputs)
	}
	activation, err := GetActivation(g.Config.Activation)
	if err != nil {
		return nil, err
	}
	if timesteps < 1 {
		timesteps = 1
	}

	incoming := make([][]*ConnectionGene, len(g.nodes))
	for _, c := range g.conns {
		if c.Enabled {
			out := g.index[c.OutNodeID]
			incoming[out] = append(incoming[out], c)
		}
	}

	values := make([]float64, len(g.nodes))
	k := 0
	for i, n := range g.nodes {
		if n.Type == InputNode {
			values[i] = inputs[k]
			k++
		}
	}

	order := g.evaluationOrder()
	for t := 0; t < timesteps; t++ {
		for _, i := range order {
			n := g.nodes[i]
			if n.Type == InputNode {
				continue
			}
			// The node starts each pass at 0, so a self-loop contributes nothing.
			values[i] = 0
			sum := 0.0
			for _, c := range incoming[i] {
				sum += c.Weight * values[g.index[c.InNodeID]]
			}
			if g.Config.BiasInActivation {
				sum += n.Bias
			}
			values[i] = activation(sum)
		}
	}

	var outputs []float64
	for i, n := range g.nodes {
		if n.Type == OutputNode {
			outputs = append(outputs, values[i])
		}
	}
	return outputs, nil
}

// --- Compatibility ---

// GeneticDifference returns the compatibility distance between two genomes.
// Connections are aligned by innovation number: genes missing from one side are
// disjoint when they fall within the other genome's innovation range and excess
// beyond it. If either genome has no connections, every gene of the other is excess.
func (g *Genome) GeneticDifference(other *Genome) float64 {
	cfg := g.Config

	mine := make(map[int]*ConnectionGene, len(g.conns))
	maxMine := -1
	for _, c := range g.conns {
		mine[c.Innovation] = c
		if c.Innovation > maxMine {
			maxMine = c.Innovation
		}
	}
	theirs := make(map[int]*ConnectionGene, len(other.conns))
	maxTheirs := -1
	for _, c := range other.conns {
		theirs[c.Innovation] = c
		if c.Innovation > maxTheirs {
			maxTheirs = c.Innovation
		}
	}

	excess, disjoint, matching := 0, 0, 0
	weightDiff := 0.0
	if len(mine) == 0 || len(theirs) == 0 {
		excess = len(mine) + len(theirs)
	} else {
		for _, c := range g.conns {
			if o, ok := theirs[c.Innovation]; ok {
				matching++
				weightDiff += math.Abs(c.Weight - o.Weight)
			} else if c.Innovation > maxTheirs {
				excess++
			} else {
				disjoint++
			}
		}
		for _, c := range other.conns {
			if _, ok := mine[c.Innovation]; ok {
				continue
			}
			if c.Innovation > maxMine {
				excess++
			} else {
				disjoint++
			}
		}
	}

	n := float64(max(len(mine), len(theirs), 1))
	d := cfg.CompatibilityExcessCoefficient*float64(excess)/n +
		cfg.CompatibilityDisjointCoefficient*float64(disjoint)/n
	if matching > 0 {
		d += cfg.CompatibilityWeightCoefficient * weightDiff / float64(matching)
	}
	return d
}
