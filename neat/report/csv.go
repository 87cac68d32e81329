// Package report writes per-generation statistics as CSV.
package report

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"

	"github.com/baldhumanity/coevo-neat/neat"
)

// GenerationStats is one CSV row describing a population after a generation.
type GenerationStats struct {
	RunID           string  `csv:"run_id"`
	Population      string  `csv:"population"`
	Generation      int     `csv:"generation"`
	Species         int     `csv:"species"`
	Threshold       float64 `csv:"threshold"`
	BestID          int     `csv:"best_id"`
	BestFitness     float64 `csv:"best_fitness"`
	MeanFitness     float64 `csv:"mean_fitness"`
	MeanNodes       float64 `csv:"mean_nodes"`
	MeanConnections float64 `csv:"mean_connections"`
	BestScore       float64 `csv:"best_score"` // task score of the best organism, lower is better
}

// Collect summarizes a population. BestScore is left for the caller.
func Collect(runID uuid.UUID, p *neat.Population) GenerationStats {
	organisms := p.Organisms()
	stats := GenerationStats{
		RunID:      runID.String(),
		Population: p.Name,
		Generation: p.Generation,
		Species:    len(p.SpeciesIDs()),
		Threshold:  p.CompatibilityThreshold(),
	}
	if len(organisms) == 0 {
		return stats
	}

	fitnesses := make([]float64, 0, len(organisms))
	nodes := make([]float64, 0, len(organisms))
	conns := make([]float64, 0, len(organisms))
	for _, o := range organisms {
		fitnesses = append(fitnesses, o.Fitness)
		nodes = append(nodes, float64(o.Genome.NumNodes()))
		conns = append(conns, float64(o.Genome.NumConnections()))
	}
	best := p.Superchampion()
	stats.BestID = best.ID
	stats.BestFitness = best.Fitness
	stats.MeanFitness = neat.Mean(fitnesses)
	stats.MeanNodes = neat.Mean(nodes)
	stats.MeanConnections = neat.Mean(conns)
	return stats
}

// CSVReporter appends GenerationStats rows to a CSV stream.
type CSVReporter struct {
	w             io.Writer
	closer        io.Closer
	headerWritten bool
}

// NewCSVReporter writes to w. The header is emitted with the first row.
func NewCSVReporter(w io.Writer) *CSVReporter {
	return &CSVReporter{w: w}
}

// CreateCSVReporter creates (or truncates) the file at path.
func CreateCSVReporter(path string) (*CSVReporter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &CSVReporter{w: f, closer: f}, nil
}

// Write appends one row per stats value.
func (r *CSVReporter) Write(stats ...GenerationStats) error {
	if len(stats) == 0 {
		return nil
	}
	if !r.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(stats, r.w); err != nil {
			return fmt.Errorf("writing generation stats: %w", err)
		}
		r.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(stats, r.w); err != nil {
		return fmt.Errorf("writing generation stats: %w", err)
	}
	return nil
}

// Close closes the underlying file, if the reporter owns one.
func (r *CSVReporter) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

// ReadStats parses rows written by a CSVReporter.
func ReadStats(rd io.Reader) ([]GenerationStats, error) {
	var rows []GenerationStats
	if err := gocsv.Unmarshal(rd, &rows); err != nil {
		return nil, fmt.Errorf("reading generation stats: %w", err)
	}
	return rows, nil
}
