package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/baldhumanity/coevo-neat/neat"
)

func evolvedGenome(t *testing.T, cfg *neat.Config, seed int64, rounds int) *neat.Genome {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	ledger := neat.NewInnovationLedger(cfg.Genome.NumInputs, cfg.Genome.NumOutputs)
	g := neat.NewGenome(&cfg.Genome, ledger, rng)
	for i := 0; i < rounds; i++ {
		g.Mutate(rng)
	}
	return g
}

func TestNetworkMatchesGenome(t *testing.T) {
	cfg := neat.DefaultConfig()
	cfg.Genome.NodeAddProb = 0.4
	cfg.Genome.ConnAddProb = 0.5
	inputs := [][]float64{{0, 0, 1}, {1, 0.5, -1}, {-0.3, 2, 1}}

	for seed := int64(1); seed <= 10; seed++ {
		g := evolvedGenome(t, cfg, seed, 80)
		net, err := CreateNetwork(g)
		require.NoError(t, err)
		for _, timesteps := range []int{1, 3} {
			for _, in := range inputs {
				want, err := g.Activate(in, timesteps)
				require.NoError(t, err)
				got, err := net.Activate(in, timesteps)
				require.NoError(t, err)
				assert.InDeltaSlice(t, want, got, 1e-12, "seed %d timesteps %d", seed, timesteps)
			}
		}
	}
}

func TestNetworkBiasInActivation(t *testing.T) {
	cfg := neat.DefaultConfig()
	cfg.Genome.BiasInActivation = true
	g := evolvedGenome(t, cfg, 3, 30)
	net, err := CreateNetwork(g)
	require.NoError(t, err)
	want, err := g.Activate([]float64{1, 1, 1}, 2)
	require.NoError(t, err)
	got, err := net.Activate([]float64{1, 1, 1}, 2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, want, got, 1e-12)
}

func TestNetworkInputShape(t *testing.T) {
	g := evolvedGenome(t, neat.DefaultConfig(), 1, 0)
	net, err := CreateNetwork(g)
	require.NoError(t, err)
	_, err = net.Activate([]float64{1}, 1)
	assert.ErrorIs(t, err, neat.ErrInputShape)
}

func TestCreateNetworkUnknownActivation(t *testing.T) {
	cfg := neat.DefaultConfig()
	g := evolvedGenome(t, cfg, 1, 0)
	cfg.Genome.Activation = "softmax"
	_, err := CreateNetwork(g)
	assert.Error(t, err)
}

// chain builds input 0 -> hidden 2 -> output 1 and returns the genome.
func chain(t *testing.T) *neat.Genome {
	t.Helper()
	cfg := neat.DefaultConfig()
	cfg.Genome.NumInputs = 1
	g := neat.NewEmptyGenome(&cfg.Genome, neat.NewInnovationLedger(1, 1))
	for _, n := range []struct {
		id, depth int
		typ       neat.NodeType
	}{{0, 0, neat.InputNode}, {1, 2, neat.OutputNode}, {2, 1, neat.HiddenNode}} {
		_, err := g.AddNodeWithID(n.id, n.typ, n.depth, 0)
		require.NoError(t, err)
	}
	_, err := g.AddConnection(0, 2, 1, true)
	require.NoError(t, err)
	_, err = g.AddConnection(2, 1, 1, true)
	require.NoError(t, err)
	return g
}

func TestAnalyzeFeedForward(t *testing.T) {
	a, err := Analyze(chain(t))
	require.NoError(t, err)
	assert.True(t, a.FeedForward)
	assert.Zero(t, a.SelfLoops)
	assert.Empty(t, a.Cycles)
	assert.Equal(t, []int{0, 2, 1}, a.Order)
}

func TestAnalyzeCycles(t *testing.T) {
	g := chain(t)
	_, err := g.AddConnection(1, 2, 0.5, true)
	require.NoError(t, err)
	a, err := Analyze(g)
	require.NoError(t, err)
	assert.False(t, a.FeedForward)
	assert.Nil(t, a.Order)
	require.Len(t, a.Cycles, 1)
	assert.ElementsMatch(t, []int{1, 2}, a.Cycles[0])

	// A disabled back edge does not count.
	g = chain(t)
	_, err = g.AddConnection(1, 2, 0.5, false)
	require.NoError(t, err)
	a, err = Analyze(g)
	require.NoError(t, err)
	assert.True(t, a.FeedForward)
}

func TestNetworkSelfLoopStartsFromZero(t *testing.T) {
	g := chain(t)
	_, err := g.AddConnection(2, 2, 5, true)
	require.NoError(t, err)
	net, err := CreateNetwork(g)
	require.NoError(t, err)

	for _, timesteps := range []int{1, 2, 4} {
		want, err := g.Activate([]float64{0}, timesteps)
		require.NoError(t, err)
		got, err := net.Activate([]float64{0}, timesteps)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		// hidden = sigmoid(0) whatever the loop weight, output = sigmoid(0.5).
		assert.InDelta(t, neat.Sigmoid(0.5), got[0], 1e-12, "timesteps %d", timesteps)
	}
}

func TestAnalyzeSelfLoop(t *testing.T) {
	g := chain(t)
	_, err := g.AddConnection(2, 2, 0.5, true)
	require.NoError(t, err)
	a, err := Analyze(g)
	require.NoError(t, err)
	assert.Equal(t, 1, a.SelfLoops)
	assert.False(t, a.FeedForward)
	assert.Empty(t, a.Cycles)
	assert.NotNil(t, a.Order)
}
