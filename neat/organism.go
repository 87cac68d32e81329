package neat

import (
	"fmt"
	"math/rand"
)

const (
	// UnsetFitness marks an organism that has not been evaluated yet.
	UnsetFitness = -1.0
	// NoSpecies marks an organism that has not been speciated yet.
	NoSpecies = -1
)

// Organism is a genome plus its evolutionary bookkeeping.
type Organism struct {
	ID        int
	Genome    *Genome
	Fitness   float64
	SpeciesID int
}

// NewOrganism wraps a genome and assigns a fresh id from the genome's ledger.
func NewOrganism(g *Genome) *Organism {
	return &Organism{
		ID:        g.ledger.NextOrganismID(),
		Genome:    g,
		Fitness:   UnsetFitness,
		SpeciesID: NoSpecies,
	}
}

// Clone returns a new organism with a fresh id and a deep copy of the genome.
// Fitness and species id are carried over.
func (o *Organism) Clone() *Organism {
	c := NewOrganism(o.Genome.Clone())
	c.Fitness = o.Fitness
	c.SpeciesID = o.SpeciesID
	return c
}

// snapshot copies the organism keeping its id.
func (o *Organism) snapshot() *Organism {
	return &Organism{
		ID:        o.ID,
		Genome:    o.Genome.Clone(),
		Fitness:   o.Fitness,
		SpeciesID: o.SpeciesID,
	}
}

// Reproduce mates the organism with coParent. The fitter parent supplies the
// structure; on equal fitness the receiver counts as fitter. The offspring
// inherits the fitter parent's fitness and species until re-evaluated.
func (o *Organism) Reproduce(coParent *Organism, selector GeneSelector, inheritDisableChance float64, rng *rand.Rand) *Organism {
	fitter, other := o, coParent
	if coParent.Fitness > o.Fitness {
		fitter, other = coParent, o
	}
	child := NewOrganism(MateMultipoint(fitter.Genome, other.Genome, selector, inheritDisableChance, rng))
	child.Fitness = fitter.Fitness
	child.SpeciesID = fitter.SpeciesID
	return child
}

// String returns a short description of the organism.
func (o *Organism) String() string {
	return fmt.Sprintf("Organism(ID: %d, Species: %d, Fitness: %.4f, Nodes: %d, Connections: %d)",
		o.ID, o.SpeciesID, o.Fitness, o.Genome.NumNodes(), o.Genome.NumConnections())
}
