package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func testConfig(popSize int) *Config {
	cfg := DefaultConfig()
	cfg.Neat.PopSize = popSize
	return cfg
}

func newTestGenome(cfg *Config, seed int64) (*Genome, *rand.Rand) {
	rng := rand.New(rand.NewSource(seed))
	ledger := NewInnovationLedger(cfg.Genome.NumInputs, cfg.Genome.NumOutputs)
	return NewGenome(&cfg.Genome, ledger, rng), rng
}

// xorGenome wires the canonical two-hidden-node XOR solution. Input 2 is a constant 1.
func xorGenome(t *testing.T, cfg *GenomeConfig) *Genome {
	t.Helper()
	ledger := NewInnovationLedger(3, 1)
	g := NewEmptyGenome(cfg, ledger)
	nodes := []struct {
		id    int
		typ   NodeType
		depth int
	}{
		{0, InputNode, 0}, {1, InputNode, 0}, {2, InputNode, 0},
		{3, OutputNode, 2},
		{4, HiddenNode, 1}, {5, HiddenNode, 1},
	}
	for _, n := range nodes {
		_, err := g.AddNodeWithID(n.id, n.typ, n.depth, 0)
		require.NoError(t, err)
	}
	conns := []struct {
		in, out int
		w       float64
	}{
		{0, 4, 20}, {1, 4, 20}, {2, 4, -10},
		{0, 5, -20}, {1, 5, -20}, {2, 5, 30},
		{4, 3, 20}, {5, 3, 20}, {2, 3, -30},
	}
	for _, c := range conns {
		_, err := g.AddConnection(c.in, c.out, c.w, true)
		require.NoError(t, err)
	}
	return g
}

// mutateMany applies n rounds of Mutate.
func mutateMany(g *Genome, rng *rand.Rand, n int) {
	for i := 0; i < n; i++ {
		g.Mutate(rng)
	}
}
