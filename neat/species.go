package neat

import (
	"context"
	"log/slog"
	"math"
	"sort"
)

// Representative is the organism new members of a species are compared against.
type Representative struct {
	SpeciesID int
	Organism  *Organism
}

// Species summarizes one species during reproduction.
type Species struct {
	ID              int
	Members         []*Organism // fittest first
	Survivors       []*Organism // elite kept for breeding, fittest first
	Champion        *Organism
	Fitness         float64 // species fitness of the survivors
	AdjustedFitness float64
}

// GetFitnesses returns the fitness values of the survivors.
func (s *Species) GetFitnesses() []float64 {
	fitnesses := make([]float64, 0, len(s.Survivors))
	for _, o := range s.Survivors {
		fitnesses = append(fitnesses, o.Fitness)
	}
	return fitnesses
}

// Speciate assigns every organism to the first representative within the
// compatibility threshold, creating a new species when none matches. Stale
// representatives are dropped and the threshold is nudged one step toward the
// target species count.
func (p *Population) Speciate() {
	for _, o := range p.organisms {
		o.SpeciesID = NoSpecies
		for _, rep := range p.representatives {
			if o.Genome.GeneticDifference(rep.Organism.Genome) <= p.threshold {
				o.SpeciesID = rep.SpeciesID
				break
			}
		}
		if o.SpeciesID == NoSpecies {
			o.SpeciesID = p.nextSpeciesID
			p.nextSpeciesID++
			p.representatives = append(p.representatives, Representative{SpeciesID: o.SpeciesID, Organism: o})
		}
	}

	live := make(map[int]bool)
	for _, o := range p.organisms {
		live[o.SpeciesID] = true
	}
	p.speciesIDs = p.speciesIDs[:0]
	for id := range live {
		p.speciesIDs = append(p.speciesIDs, id)
	}
	sort.Ints(p.speciesIDs)

	kept := p.representatives[:0]
	for _, rep := range p.representatives {
		if live[rep.SpeciesID] {
			kept = append(kept, rep)
		}
	}
	p.representatives = kept

	p.adjustThreshold()

	p.Logger.Info("speciated",
		slog.String("population", p.Name),
		slog.Int("generation", p.Generation),
		slog.Int("species", len(p.speciesIDs)),
		slog.Float64("threshold", p.threshold))
	if p.Logger.Enabled(context.Background(), slog.LevelDebug) {
		for _, id := range p.speciesIDs {
			p.Logger.Debug("species",
				slog.String("population", p.Name),
				slog.Int("id", id),
				slog.Int("size", len(p.Members(id))))
		}
	}
}

// adjustThreshold moves the threshold one step toward the target species count,
// never below one step.
func (p *Population) adjustThreshold() {
	cfg := p.Config.SpeciesSet
	switch n := len(p.speciesIDs); {
	case n < cfg.SpeciesCountTarget:
		p.threshold -= cfg.CompatibilityThresholdStep
	case n > cfg.SpeciesCountTarget:
		p.threshold += cfg.CompatibilityThresholdStep
	}
	p.threshold = math.Max(p.threshold, cfg.CompatibilityThresholdStep)
}
