package neat

import (
	"log/slog"
	"math"
	"strings"
)

// SelectAndReproduce replaces the organisms with the next generation.
//
// Each species is culled to its elite, the superchampion is cloned with
// weight-only mutation, every species champion is carried over unchanged, and
// the remaining slots are bred per species in proportion to adjusted species
// fitness. The new organisms are then speciated against one random survivor
// per old species.
func (p *Population) SelectAndReproduce() {
	cfg := p.Config
	popSize := cfg.Neat.PopSize

	// --- Step 1: Fresh bookkeeping ---
	p.representatives = nil
	if cfg.Neat.ResetInnovationsEachGeneration {
		p.ledger.Reset()
	}

	// --- Step 2: Cull species and record representatives ---
	species := p.cullSpecies()
	for _, sp := range species {
		rep := sp.Survivors[p.rng.Intn(len(sp.Survivors))]
		p.representatives = append(p.representatives, Representative{SpeciesID: sp.ID, Organism: rep})
	}

	next := make([]*Organism, 0, popSize)

	// --- Step 3: Superchampion clones explore weight space ---
	superchamp := p.Superchampion()
	for i := 0; i < cfg.Reproduction.SuperchampOffspring; i++ {
		c := superchamp.Clone()
		c.Genome.MutateWeights(p.rng)
		next = append(next, c)
	}

	// --- Step 4: Species champions survive unchanged ---
	for _, sp := range species {
		next = append(next, sp.Champion.Clone())
	}

	// --- Step 5: Breed the remaining slots ---
	remaining := popSize - len(next)
	if remaining > 0 {
		spawn := computeSpawnAmounts(species, remaining)
		for i, sp := range species {
			for j := 0; j < spawn[i]; j++ {
				next = append(next, p.breed(sp, species))
			}
		}
	}

	// --- Step 6: Fill any shortfall from the fittest survivors ---
	next = p.fillShortfall(next, species, popSize)

	// --- Step 7: Replace and re-speciate ---
	if len(next) > popSize {
		next = next[:popSize]
	}
	p.organisms = next
	p.Generation++

	p.Logger.Info("reproduced",
		slog.String("population", p.Name),
		slog.Int("generation", p.Generation),
		slog.Int("species_bred", len(species)),
		slog.Float64("superchampion_fitness", superchamp.Fitness))

	p.Speciate()
}

// cullSpecies groups organisms by species, keeps the elite fraction of each
// (at least two when the species has two or more members) and computes the
// species fitness and adjusted fitness.
func (p *Population) cullSpecies() []*Species {
	fitnessFunc := StatFunctions[strings.ToLower(p.Config.Reproduction.SpeciesFitnessFunc)]
	if fitnessFunc == nil {
		fitnessFunc = Mean
	}

	species := make([]*Species, 0, len(p.speciesIDs))
	for _, id := range p.speciesIDs {
		members := p.Members(id)
		if len(members) == 0 {
			continue
		}
		keep := 1
		if len(members) >= 2 {
			keep = max(int(float64(len(members))*p.Config.Reproduction.SpeciesEliteFraction), 2)
		}
		sp := &Species{
			ID:        id,
			Members:   members,
			Survivors: members[:keep],
			Champion:  members[0],
		}
		sp.Fitness = fitnessFunc(sp.GetFitnesses())
		species = append(species, sp)
	}

	// Adjusted fitness is the species fitness, shifted up when any species
	// fitness is not positive so that every share stays positive.
	if len(species) > 0 {
		fitnesses := make([]float64, len(species))
		for i, sp := range species {
			fitnesses[i] = sp.Fitness
		}
		shift := 0.0
		if minFitness := MinFloat(fitnesses); minFitness <= 0 {
			shift = spawnFitnessOffset - minFitness
		}
		for _, sp := range species {
			sp.AdjustedFitness = sp.Fitness + shift
		}
	}
	return species
}

// spawnFitnessOffset is the adjusted fitness of the weakest species once
// species fitness has been shifted.
const spawnFitnessOffset = 1.0

// computeSpawnAmounts shares slots among species in proportion to adjusted
// fitness, with equal shares when the adjusted fitness sums to zero. Every species
// gets at least one slot; the total may over- or undershoot slots.
func computeSpawnAmounts(species []*Species, slots int) []int {
	spawn := make([]int, len(species))
	sum := 0.0
	for _, sp := range species {
		sum += sp.AdjustedFitness
	}
	for i, sp := range species {
		share := 1.0 / float64(len(species))
		if sum > 0 {
			share = sp.AdjustedFitness / sum
		}
		spawn[i] = max(1, int(math.Round(share*float64(slots))))
	}
	return spawn
}

// fillShortfall tops next up to size with mutated clones of the survivors,
// fittest first across all species. Culled organisms are never used.
func (p *Population) fillShortfall(next []*Organism, species []*Species, size int) []*Organism {
	var ranked []*Organism
	for _, sp := range species {
		ranked = append(ranked, sp.Survivors...)
	}
	if len(ranked) == 0 {
		return next
	}
	sortByFitness(ranked)
	for i := 0; len(next) < size; i++ {
		c := ranked[i%len(ranked)].Clone()
		c.Genome.Mutate(p.rng)
		next = append(next, c)
	}
	return next
}

// breed produces one offspring for species sp.
func (p *Population) breed(sp *Species, all []*Species) *Organism {
	cfg := p.Config.Reproduction
	rng := p.rng

	parent := sp.Survivors[rng.Intn(len(sp.Survivors))]
	if rng.Float64() < cfg.MutateOnlyProb {
		child := parent.Clone()
		child.Genome.Mutate(rng)
		return child
	}

	var mate *Organism
	if rng.Float64() < cfg.CrossSpeciesMatingProb && len(all) > 1 {
		other := all[rng.Intn(len(all))]
		for other.ID == sp.ID {
			other = all[rng.Intn(len(all))]
		}
		mate = other.Champion
	} else if len(sp.Survivors) >= 2 {
		mate = sp.Survivors[rng.Intn(len(sp.Survivors))]
		for mate == parent {
			mate = sp.Survivors[rng.Intn(len(sp.Survivors))]
		}
	}
	if mate == nil {
		child := parent.Clone()
		child.Genome.Mutate(rng)
		return child
	}

	selector := PickGene
	if rng.Float64() < cfg.MateAvgGenesProb {
		selector = AverageGenes
	}
	child := parent.Reproduce(mate, selector, cfg.InheritDisableChance, rng)
	if rng.Float64() >= cfg.MateOnlyProb {
		child.Genome.Mutate(rng)
	}
	return child
}
