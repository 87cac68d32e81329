package neat

import (
	"fmt"
	"math/rand"
)

// GeneSelector combines the values a matching gene carries in both parents.
type GeneSelector func(a, b float64, rng *rand.Rand) float64

// AverageGenes takes the mean of both values, rounded to gene precision.
func AverageGenes(a, b float64, _ *rand.Rand) float64 {
	return roundTo((a+b)/2, valuePrecision)
}

// PickGene takes either value with equal probability.
func PickGene(a, b float64, rng *rand.Rand) float64 {
	if rng.Float64() < 0.5 {
		return a
	}
	return b
}

// MateMultipoint recombines two genomes aligned by node id and innovation number.
// The child carries exactly the fitter parent's structure. Genes present in both
// parents take their value from selector; a matching connection is enabled when
// both copies are, or otherwise with probability 1-inheritDisableChance.
// No mutation is applied.
func MateMultipoint(fitter, other *Genome, selector GeneSelector, inheritDisableChance float64, rng *rand.Rand) *Genome {
	child := NewEmptyGenome(fitter.Config, fitter.ledger)

	for _, n := range fitter.nodes {
		bias := n.Bias
		if o, ok := other.Node(n.ID); ok {
			bias = selector(n.Bias, o.Bias, rng)
		}
		if _, err := child.AddNodeWithID(n.ID, n.Type, n.Depth, bias); err != nil {
			panic(fmt.Sprintf("crossover: %v", err))
		}
	}

	otherConns := make(map[int]*ConnectionGene, len(other.conns))
	for _, c := range other.conns {
		otherConns[c.Innovation] = c
	}
	for _, c := range fitter.conns {
		weight, enabled := c.Weight, c.Enabled
		if o, ok := otherConns[c.Innovation]; ok {
			weight = selector(c.Weight, o.Weight, rng)
			enabled = (c.Enabled && o.Enabled) || rng.Float64() > inheritDisableChance
		}
		if _, err := child.AddConnectionWithInnovation(c.InNodeID, c.OutNodeID, weight, enabled, c.Innovation); err != nil {
			panic(fmt.Sprintf("crossover: %v", err))
		}
	}
	return child
}
