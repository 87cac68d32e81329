package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeSpawnAmounts(t *testing.T) {
	species := []*Species{
		{ID: 0, AdjustedFitness: 10},
		{ID: 1, AdjustedFitness: 9},
	}
	assert.Equal(t, []int{16, 14}, computeSpawnAmounts(species, 30))

	species = append(species, &Species{ID: 2, AdjustedFitness: 0.01})
	assert.Equal(t, []int{16, 14, 1}, computeSpawnAmounts(species, 30), "every species keeps one slot")

	for _, sp := range species {
		sp.AdjustedFitness = 0
	}
	assert.Equal(t, []int{3, 3, 3}, computeSpawnAmounts(species, 10))
	assert.Equal(t, []int{1, 1, 1}, computeSpawnAmounts(species, 1))
}

// twoSpecies splits a population of 20 into species 0 and 1 with the given fitness.
func twoSpecies(t *testing.T, fitness0, fitness1 float64) *Population {
	t.Helper()
	p := newTestPopulation(t, testConfig(20), 1)
	p.Speciate()
	for i, o := range p.organisms {
		o.SpeciesID = i % 2
		o.Fitness = fitness0
		if o.SpeciesID == 1 {
			o.Fitness = fitness1
		}
	}
	p.speciesIDs = []int{0, 1}
	return p
}

func TestSpawnSharesFollowSpeciesFitness(t *testing.T) {
	species := twoSpecies(t, 10, 9).cullSpecies()
	require.Len(t, species, 2)
	assert.Equal(t, 10.0, species[0].AdjustedFitness)
	assert.Equal(t, 9.0, species[1].AdjustedFitness)
	assert.Equal(t, []int{16, 14}, computeSpawnAmounts(species, 30))

	// Non-positive fitness shifts every species so the weakest sits at the offset.
	species = twoSpecies(t, -1, 1).cullSpecies()
	assert.Equal(t, spawnFitnessOffset, species[0].AdjustedFitness)
	assert.Equal(t, spawnFitnessOffset+2, species[1].AdjustedFitness)
	assert.Equal(t, []int{5, 15}, computeSpawnAmounts(species, 20))

	species = twoSpecies(t, -1, -1).cullSpecies()
	assert.Equal(t, []int{10, 10}, computeSpawnAmounts(species, 20))
}

func TestFillShortfallUsesSurvivorsOnly(t *testing.T) {
	p := twoSpecies(t, 0, 0)
	for i, o := range p.organisms {
		o.Fitness = float64(i)
	}
	species := p.cullSpecies()
	survivors := make(map[float64]bool)
	for _, sp := range species {
		for _, o := range sp.Survivors {
			survivors[o.Fitness] = true
		}
	}
	require.Len(t, survivors, 4)

	next := p.fillShortfall(nil, species, 9)
	require.Len(t, next, 9)
	for _, o := range next {
		assert.True(t, survivors[o.Fitness], "clone of culled organism with fitness %v", o.Fitness)
	}
	// Fittest survivor first: organism 19 leads species 1.
	assert.Equal(t, 19.0, next[0].Fitness)
	assert.Equal(t, 18.0, next[1].Fitness)

	assert.Len(t, p.fillShortfall(next, species, 9), 9, "nothing to fill")
}

func TestCullSpeciesEliteCounts(t *testing.T) {
	cases := []struct {
		popSize  int
		fraction float64
		want     int
	}{
		{10, 0.2, 2},
		{10, 0.5, 5},
		{10, 0.05, 2},
		{2, 0.1, 2},
		{1, 0.2, 1},
	}
	for _, c := range cases {
		cfg := testConfig(c.popSize)
		cfg.Reproduction.SpeciesEliteFraction = c.fraction
		p := newTestPopulation(t, cfg, 1)
		p.Speciate()
		for i, o := range p.Organisms() {
			o.Fitness = float64(i)
		}

		species := p.cullSpecies()
		require.Len(t, species, 1)
		sp := species[0]
		assert.Len(t, sp.Survivors, c.want, "pop %d fraction %v", c.popSize, c.fraction)
		assert.Equal(t, float64(c.popSize-1), sp.Champion.Fitness)
		assert.Equal(t, Mean(sp.GetFitnesses()), sp.Fitness)
		if sp.Fitness > 0 {
			assert.Equal(t, sp.Fitness, sp.AdjustedFitness)
		} else {
			assert.Equal(t, spawnFitnessOffset, sp.AdjustedFitness)
		}
	}
}

func TestCullSpeciesAdjustedFitness(t *testing.T) {
	cfg := testConfig(6)
	p := newTestPopulation(t, cfg, 1)
	p.Speciate()
	// Split the population into three hand-made species.
	for i, o := range p.organisms {
		o.SpeciesID = i / 2
		o.Fitness = float64(i / 2 * 4)
	}
	p.speciesIDs = []int{0, 1, 2}

	species := p.cullSpecies()
	require.Len(t, species, 3)
	// Species fitness 0, 4 and 8 is shifted by the offset because the weakest is 0.
	assert.Equal(t, 1.0, species[0].AdjustedFitness)
	assert.Equal(t, 5.0, species[1].AdjustedFitness)
	assert.Equal(t, 9.0, species[2].AdjustedFitness)
	assert.Equal(t, []int{1, 5, 9}, computeSpawnAmounts(species, 15))
}

func TestSelectAndReproduce(t *testing.T) {
	cfg := testConfig(30)
	p := newTestPopulation(t, cfg, 9)
	p.Speciate()
	for i, o := range p.Organisms() {
		o.Fitness = float64(i)
	}
	champ := p.Superchampion()
	old := make(map[int]bool)
	for _, o := range p.Organisms() {
		old[o.ID] = true
	}

	p.SelectAndReproduce()

	organisms := p.Organisms()
	require.Len(t, organisms, cfg.Neat.PopSize)
	assert.Equal(t, 1, p.Generation)
	assertDistinct(t, organisms)
	assertPartition(t, p)
	for _, o := range organisms {
		assert.False(t, old[o.ID], "organism ids are never reused")
	}

	// Superchampion offspring keep its structure; the champion clone follows unchanged.
	for _, o := range organisms[:cfg.Reproduction.SuperchampOffspring] {
		assert.Equal(t, champ.Genome.NumNodes(), o.Genome.NumNodes())
		assert.Equal(t, champ.Genome.NumConnections(), o.Genome.NumConnections())
	}
	clone := organisms[cfg.Reproduction.SuperchampOffspring]
	assert.Equal(t, champ.Genome.String(), clone.Genome.String())
	assert.NotEqual(t, champ.ID, clone.ID)
}

func TestSelectAndReproduceDeterministic(t *testing.T) {
	run := func() []string {
		cfg := testConfig(25)
		p := newTestPopulation(t, cfg, 77)
		p.Speciate()
		for gen := 0; gen < 5; gen++ {
			for _, o := range p.Organisms() {
				o.Fitness = float64(o.Genome.NumConnections()) + float64(o.ID%7)
			}
			p.SelectAndReproduce()
		}
		var out []string
		for _, o := range p.Organisms() {
			out = append(out, o.Genome.String())
		}
		return out
	}
	assert.Equal(t, run(), run())
}
