package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneSelectors(t *testing.T) {
	assert.Equal(t, 1.5, AverageGenes(1, 2, nil))
	assert.Equal(t, 0.162, AverageGenes(0.1234, 0.2, nil))

	rng := rand.New(rand.NewSource(1))
	seenA, seenB := false, false
	for i := 0; i < 100; i++ {
		switch PickGene(1, 2, rng) {
		case 1:
			seenA = true
		case 2:
			seenB = true
		default:
			t.Fatal("PickGene must return one of its inputs")
		}
	}
	assert.True(t, seenA && seenB)
}

func TestMateMultipointKeepsFitterStructure(t *testing.T) {
	cfg := testConfig(10)
	ledger := NewInnovationLedger(cfg.Genome.NumInputs, cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(17))
	fitter := NewGenome(&cfg.Genome, ledger, rng)
	other := NewGenome(&cfg.Genome, ledger, rng)
	for i := 0; i < 5; i++ {
		fitter.MutateAddNode(rng)
		other.MutateAddConnection(rng)
	}
	other.MutateAddNode(rng)

	child := MateMultipoint(fitter, other, PickGene, cfg.Reproduction.InheritDisableChance, rng)

	require.Equal(t, fitter.NumNodes(), child.NumNodes())
	require.Equal(t, fitter.NumConnections(), child.NumConnections())
	for i, n := range fitter.Nodes() {
		cn := child.Nodes()[i]
		assert.Equal(t, n.ID, cn.ID)
		assert.Equal(t, n.Type, cn.Type)
		assert.Equal(t, n.Depth, cn.Depth)
	}
	for i, c := range fitter.Connections() {
		cc := child.Connections()[i]
		assert.Equal(t, c.Innovation, cc.Innovation)
		assert.Equal(t, c.Key(), cc.Key())
	}

	// Recombination never aliases parent genes.
	child.Connections()[0].Weight = 77
	assert.NotEqual(t, 77.0, fitter.Connections()[0].Weight)
	assert.NotEqual(t, 77.0, other.Connections()[0].Weight)
}

func TestMateMultipointMatchingGenes(t *testing.T) {
	cfg := testConfig(10)
	ledger := NewInnovationLedger(cfg.Genome.NumInputs, cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(2))
	a := NewGenome(&cfg.Genome, ledger, rng)
	b := a.Clone()
	for i, c := range a.conns {
		c.Weight = 1
		b.conns[i].Weight = 0.5
	}
	a.Outputs()[0].Bias = 0.2
	b.Outputs()[0].Bias = 0.4
	b.conns[0].Enabled = false

	// With the chance at 1, a connection disabled in either parent stays disabled.
	child := MateMultipoint(a, b, AverageGenes, 1.0, rng)
	for i, c := range child.Connections() {
		assert.Equal(t, 0.75, c.Weight)
		assert.Equal(t, i != 0, c.Enabled)
	}
	assert.InDelta(t, 0.3, child.Outputs()[0].Bias, 1e-12)
	for _, n := range child.Inputs() {
		assert.Equal(t, 0.0, n.Bias)
	}
}

func TestReproduceTieGoesToReceiver(t *testing.T) {
	cfg := testConfig(10)
	ledger := NewInnovationLedger(cfg.Genome.NumInputs, cfg.Genome.NumOutputs)
	rng := rand.New(rand.NewSource(5))
	big := NewOrganism(NewGenome(&cfg.Genome, ledger, rng))
	small := NewOrganism(NewGenome(&cfg.Genome, ledger, rng))
	require.True(t, big.Genome.MutateAddNode(rng))
	big.Fitness, small.Fitness = 1.5, 1.5

	child := big.Reproduce(small, PickGene, 0.75, rng)
	assert.Equal(t, big.Genome.NumNodes(), child.Genome.NumNodes())
	child = small.Reproduce(big, PickGene, 0.75, rng)
	assert.Equal(t, small.Genome.NumNodes(), child.Genome.NumNodes())

	small.Fitness = 3
	small.SpeciesID = 4
	child = big.Reproduce(small, PickGene, 0.75, rng)
	assert.Equal(t, small.Genome.NumNodes(), child.Genome.NumNodes())
	assert.Equal(t, 3.0, child.Fitness, "offspring inherit the fitter parent's fitness")
	assert.Equal(t, 4, child.SpeciesID)
	assert.NotEqual(t, big.ID, child.ID)
	assert.NotEqual(t, small.ID, child.ID)
}
