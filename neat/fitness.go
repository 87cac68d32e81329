package neat

import (
	"log/slog"
	"sort"
)

// Reward maps a game result to its fitness reward.
func (c *CoEvolutionConfig) Reward(r GameResult) float64 {
	switch r {
	case Win:
		return c.FitnessRewardWin
	case Loss:
		return c.FitnessRewardLoss
	default:
		return c.FitnessRewardDraw
	}
}

// AssignFitnesses scores every organism of pop from the games it hosted.
//
// Each reward is shared among the hosts that beat the same challenger
// (1/defeats, or doubled when no host beat it), the sum is divided by the
// organism's species size, and an optional size penalty is subtracted.
// Organisms without recorded games score zero before the penalty.
func AssignFitnesses(pop *Population, results GameResults) {
	cfg := &pop.Config.CoEvolution

	defeatedBy := make(map[int]map[int]bool)
	byHost := make(map[int][]GameKey)
	for key, r := range results {
		byHost[key.HostID] = append(byHost[key.HostID], key)
		if r == Win {
			if defeatedBy[key.ChallengerID] == nil {
				defeatedBy[key.ChallengerID] = make(map[int]bool)
			}
			defeatedBy[key.ChallengerID][key.HostID] = true
		}
	}

	speciesSize := make(map[int]int)
	for _, o := range pop.organisms {
		speciesSize[o.SpeciesID]++
	}

	var maxNodes, worstRatio float64
	if cfg.PenalizeSize {
		for _, o := range pop.organisms {
			nodes := float64(o.Genome.NumNodes())
			maxNodes = max(maxNodes, nodes)
			worstRatio = max(worstRatio, connectionDensity(o.Genome))
		}
	}

	for _, o := range pop.organisms {
		keys := byHost[o.ID]
		// Fixed summation order keeps fitness bit-identical across runs.
		sort.Slice(keys, func(i, j int) bool {
			if keys[i].ChallengerID != keys[j].ChallengerID {
				return keys[i].ChallengerID < keys[j].ChallengerID
			}
			return keys[i].HostFirst && !keys[j].HostFirst
		})

		score := 0.0
		for _, key := range keys {
			share := 2.0
			if n := len(defeatedBy[key.ChallengerID]); n > 0 {
				share = 1.0 / float64(n)
			}
			score += cfg.Reward(results[key]) * share
		}
		score /= float64(max(speciesSize[o.SpeciesID], 1))

		if cfg.PenalizeSize && maxNodes > 0 {
			ratio := 0.0
			if worstRatio > 0 {
				ratio = connectionDensity(o.Genome) / worstRatio
			}
			score -= (float64(o.Genome.NumNodes())/maxNodes + ratio) / 2 * cfg.FitnessPenaltyFactor
		}
		o.Fitness = score
	}

	if best := pop.Superchampion(); best != nil {
		pop.Logger.Debug("fitness assigned",
			slog.String("population", pop.Name),
			slog.Int("games", len(results)),
			slog.Int("best_id", best.ID),
			slog.Float64("best_fitness", best.Fitness))
	}
}

// connectionDensity is the connection count over the squared node count.
func connectionDensity(g *Genome) float64 {
	n := float64(g.NumNodes())
	if n == 0 {
		return 0
	}
	return float64(g.NumConnections()) / (n * n)
}
