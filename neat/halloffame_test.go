package neat

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHallOfFameEvictsOldest(t *testing.T) {
	p := newTestPopulation(t, testConfig(3), 1)
	org := p.Organisms()
	hof := NewHallOfFame(2)
	for _, o := range org {
		hof.Add(o)
	}
	require.Equal(t, 2, hof.Len())
	members := hof.Members()
	assert.Equal(t, org[1].ID, members[0].ID)
	assert.Equal(t, org[2].ID, members[1].ID)

	// Archived copies do not follow later changes.
	before := members[1].Genome.String()
	org[2].Genome.MutateAddNode(rand.New(rand.NewSource(1)))
	assert.Equal(t, before, hof.Members()[1].Genome.String())
}

func TestHallOfFameSample(t *testing.T) {
	p := newTestPopulation(t, testConfig(5), 1)
	hof := NewHallOfFame(0)
	rng := rand.New(rand.NewSource(3))
	assert.Empty(t, hof.Sample(3, rng))

	for _, o := range p.Organisms() {
		hof.Add(o)
	}
	assert.Equal(t, 5, hof.Len())
	assert.Empty(t, hof.Sample(0, rng))

	sample := hof.Sample(3, rng)
	assert.Len(t, sample, 3)
	assertDistinct(t, sample)
	assert.Len(t, hof.Sample(10, rng), 5)
}
