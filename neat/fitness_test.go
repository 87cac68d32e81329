package neat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReward(t *testing.T) {
	cfg := DefaultConfig().CoEvolution
	assert.Equal(t, 2.0, cfg.Reward(Win))
	assert.Equal(t, -1.0, cfg.Reward(Draw))
	assert.Equal(t, 0.0, cfg.Reward(Loss))
}

func TestAssignFitnessesCompetitiveSharing(t *testing.T) {
	cfg := testConfig(3)
	cfg.CoEvolution.PenalizeSize = false
	p := newTestPopulation(t, cfg, 1)
	org := p.Organisms()
	a, b, c := org[0], org[1], org[2]
	a.SpeciesID, b.SpeciesID, c.SpeciesID = 0, 1, 1
	const x, y = 1000, 1001

	results := GameResults{
		// x was beaten by two hosts, so each win is worth half.
		{HostID: a.ID, ChallengerID: x, HostFirst: true}: Win,
		{HostID: b.ID, ChallengerID: x, HostFirst: true}: Win,
		// y was never beaten, so its rewards count double.
		{HostID: b.ID, ChallengerID: y, HostFirst: true}: Draw,
		{HostID: c.ID, ChallengerID: y, HostFirst: false}: Loss,
	}
	AssignFitnesses(p, results)

	assert.InDelta(t, 1.0, a.Fitness, 1e-12)
	assert.InDelta(t, -0.5, b.Fitness, 1e-12)
	assert.InDelta(t, 0.0, c.Fitness, 1e-12)
}

func TestAssignFitnessesSizePenalty(t *testing.T) {
	cfg := testConfig(1)
	p := newTestPopulation(t, cfg, 1)
	p.Speciate()
	AssignFitnesses(p, GameResults{})
	// The only organism is both the largest and the densest.
	assert.InDelta(t, -cfg.CoEvolution.FitnessPenaltyFactor, p.Organisms()[0].Fitness, 1e-12)
}

func TestAssignFitnessesPenaltyFavoursSmallGenomes(t *testing.T) {
	cfg := testConfig(2)
	p := newTestPopulation(t, cfg, 1)
	p.Speciate()
	big := p.Organisms()[1]
	require.True(t, big.Genome.MutateAddNode(p.rng))

	AssignFitnesses(p, GameResults{})
	assert.Greater(t, p.Organisms()[0].Fitness, big.Fitness)
}
