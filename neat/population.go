package neat

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
)

// Population holds one co-evolving population and its species bookkeeping.
type Population struct {
	Config     *Config
	Logger     *slog.Logger
	Name       string // used in log records, e.g. "host" or "parasite"
	Generation int

	ledger          *InnovationLedger
	rng             *rand.Rand
	organisms       []*Organism
	representatives []Representative
	speciesIDs      []int // sorted
	threshold       float64
	nextSpeciesID   int
}

// NewPopulation creates PopSize organisms with fresh skeleton genomes.
// The population is not speciated until Speciate is called.
func NewPopulation(name string, config *Config, ledger *InnovationLedger, rng *rand.Rand) *Population {
	p := &Population{
		Config:    config,
		Logger:    slog.Default(),
		Name:      name,
		ledger:    ledger,
		rng:       rng,
		threshold: config.SpeciesSet.CompatibilityThreshold,
	}
	p.organisms = make([]*Organism, 0, config.Neat.PopSize)
	for i := 0; i < config.Neat.PopSize; i++ {
		p.organisms = append(p.organisms, NewOrganism(NewGenome(&config.Genome, ledger, rng)))
	}
	return p
}

// Organisms returns the current organisms in population order.
func (p *Population) Organisms() []*Organism {
	out := make([]*Organism, len(p.organisms))
	copy(out, p.organisms)
	return out
}

// SpeciesIDs returns the live species ids in ascending order.
func (p *Population) SpeciesIDs() []int {
	out := make([]int, len(p.speciesIDs))
	copy(out, p.speciesIDs)
	return out
}

// Representatives returns the stored species representatives.
func (p *Population) Representatives() []Representative {
	out := make([]Representative, len(p.representatives))
	copy(out, p.representatives)
	return out
}

// CompatibilityThreshold returns the current speciation threshold.
func (p *Population) CompatibilityThreshold() float64 {
	return p.threshold
}

// Ledger returns the innovation ledger shared by the population's genomes.
func (p *Population) Ledger() *InnovationLedger {
	return p.ledger
}

// Superchampion returns the fittest organism. Ties go to the earlier organism.
func (p *Population) Superchampion() *Organism {
	var best *Organism
	for _, o := range p.organisms {
		if best == nil || o.Fitness > best.Fitness {
			best = o
		}
	}
	return best
}

// Members returns the organisms of one species, fittest first.
func (p *Population) Members(speciesID int) []*Organism {
	var members []*Organism
	for _, o := range p.organisms {
		if o.SpeciesID == speciesID {
			members = append(members, o)
		}
	}
	sortByFitness(members)
	return members
}

// SpeciesTopN returns the n fittest members of a live species.
// It panics if the species has no members.
func (p *Population) SpeciesTopN(speciesID, n int) []*Organism {
	members := p.Members(speciesID)
	if len(members) == 0 {
		panic(fmt.Sprintf("neat: species %d has no living members", speciesID))
	}
	if n < len(members) {
		members = members[:n]
	}
	return members
}

// SpeciesChampions returns the champions of the n fittest species, fittest first.
func (p *Population) SpeciesChampions(n int) []*Organism {
	champions := make([]*Organism, 0, len(p.speciesIDs))
	for _, id := range p.speciesIDs {
		champions = append(champions, p.SpeciesTopN(id, 1)[0])
	}
	sortByFitness(champions)
	if n < len(champions) {
		champions = champions[:n]
	}
	return champions
}

// SelectChallengers picks the organisms this population sends against the
// opponent: the top species champions, a Hall of Fame sample, then random
// distinct members until the configured total is reached.
func (p *Population) SelectChallengers(hof *HallOfFame) []*Organism {
	cfg := p.Config.CoEvolution
	total := cfg.NumChampionParasites + cfg.NumHallOfFameParasites

	chosen := make(map[int]bool, total)
	challengers := make([]*Organism, 0, total)
	add := func(o *Organism) {
		if !chosen[o.ID] {
			chosen[o.ID] = true
			challengers = append(challengers, o)
		}
	}

	for _, o := range p.SpeciesChampions(cfg.NumChampionParasites) {
		add(o)
	}
	if hof != nil {
		for _, o := range hof.Sample(cfg.NumHallOfFameParasites, p.rng) {
			add(o)
		}
	}

	var pool []*Organism
	for _, o := range p.organisms {
		if !chosen[o.ID] {
			pool = append(pool, o)
		}
	}
	p.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	for _, o := range pool {
		if len(challengers) >= total {
			break
		}
		add(o)
	}
	return challengers
}

// sortByFitness orders organisms fittest first, keeping the input order among ties.
func sortByFitness(organisms []*Organism) {
	sort.SliceStable(organisms, func(i, j int) bool {
		return organisms[i].Fitness > organisms[j].Fitness
	})
}
