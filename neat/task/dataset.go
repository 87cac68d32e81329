// Package task provides a labeled-dataset game for co-evolution runs.
package task

import (
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/baldhumanity/coevo-neat/neat"
	"github.com/baldhumanity/coevo-neat/neat/nn"
)

// DefaultDrawTolerance is the loss difference under which a game is a draw.
const DefaultDrawTolerance = 1e-4

// Sample is one labeled example.
type Sample struct {
	Inputs  []float64
	Targets []float64
}

// Scorer rates a genome on a single sample. Lower is better.
type Scorer interface {
	Score(g *neat.Genome, sample Sample) float64
}

// Dataset is a fixed set of labeled samples.
type Dataset struct {
	Samples   []Sample
	Timesteps int
}

// XOR returns the XOR truth table. The third input is a constant bias of 1.
// Networks are activated for config.ActivationTimesteps passes.
func XOR(config *neat.GenomeConfig) *Dataset {
	return &Dataset{
		Timesteps: max(config.ActivationTimesteps, 1),
		Samples: []Sample{
			{Inputs: []float64{0, 0, 1}, Targets: []float64{0}},
			{Inputs: []float64{1, 0, 1}, Targets: []float64{1}},
			{Inputs: []float64{0, 1, 1}, Targets: []float64{1}},
			{Inputs: []float64{1, 1, 1}, Targets: []float64{0}},
		},
	}
}

// Score returns the summed absolute error of g on one sample, or +Inf when
// the genome cannot be activated on it.
func (d *Dataset) Score(g *neat.Genome, sample Sample) float64 {
	out, err := g.Activate(sample.Inputs, d.Timesteps)
	if err != nil {
		return math.Inf(1)
	}
	return absError(out, sample.Targets)
}

// Loss returns the summed absolute error of g over every sample.
func (d *Dataset) Loss(g *neat.Genome) (float64, error) {
	net, err := nn.CreateNetwork(g)
	if err != nil {
		return 0, err
	}
	loss := 0.0
	for i, s := range d.Samples {
		out, err := net.Activate(s.Inputs, d.Timesteps)
		if err != nil {
			return 0, fmt.Errorf("sample %d: %w", i, err)
		}
		loss += absError(out, s.Targets)
	}
	return loss, nil
}

func absError(out, targets []float64) float64 {
	e := 0.0
	for i, t := range targets {
		if i < len(out) {
			e += math.Abs(out[i] - t)
		} else {
			e += math.Abs(t)
		}
	}
	return e
}

// Game pits two organisms on a dataset: the lower loss wins, losses within
// DrawTolerance draw. Losses are cached per organism id, so a Game must not
// outlive the generation whose organisms it scores. Safe for concurrent use.
type Game struct {
	Dataset       *Dataset
	DrawTolerance float64

	losses sync.Map // organism ID -> float64
}

// NewGame creates a game over d with the default draw tolerance.
func NewGame(d *Dataset) *Game {
	return &Game{Dataset: d, DrawTolerance: DefaultDrawTolerance}
}

// EvaluateGame implements neat.Evaluator. Move order does not matter for a dataset.
func (g *Game) EvaluateGame(a, b *neat.Organism, _ bool, _ *rand.Rand) neat.GameResult {
	la, lb := g.loss(a), g.loss(b)
	switch {
	case math.IsInf(la, 1) && math.IsInf(lb, 1), math.Abs(la-lb) < g.DrawTolerance:
		return neat.Draw
	case la < lb:
		return neat.Win
	default:
		return neat.Loss
	}
}

func (g *Game) loss(o *neat.Organism) float64 {
	if v, ok := g.losses.Load(o.ID); ok {
		return v.(float64)
	}
	l, err := g.Dataset.Loss(o.Genome)
	if err != nil {
		l = math.Inf(1)
	}
	g.losses.Store(o.ID, l)
	return l
}
