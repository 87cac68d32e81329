package neat

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/google/uuid"
)

// Checkpoint is a resumable snapshot of a co-evolution run. Every population
// must share one innovation ledger.
type Checkpoint struct {
	RunID       uuid.UUID
	Populations []*Population
	HallsOfFame []*HallOfFame
}

// The gob payload mirrors the runtime types with exported fields only.
type checkpointData struct {
	RunID       uuid.UUID
	Ledger      ledgerState
	Populations []populationData
	HallsOfFame []hallOfFameData
}

type populationData struct {
	Name            string
	Generation      int
	Threshold       float64
	NextSpeciesID   int
	SpeciesIDs      []int
	Organisms       []organismData
	Representatives []representativeData
}

type representativeData struct {
	SpeciesID int
	Organism  organismData
}

type hallOfFameData struct {
	Capacity int
	Members  []organismData
}

type organismData struct {
	ID        int
	Fitness   float64
	SpeciesID int
	Nodes     []NodeGene
	Conns     []ConnectionGene
}

// SaveCheckpoint writes the run state to a gzip-compressed gob file.
func SaveCheckpoint(filePath string, cp *Checkpoint) error {
	data, err := cp.encode()
	if err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode checkpoint data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint file '%s': %w", filePath, err)
	}

	slog.Info("checkpoint saved", slog.String("path", filePath), slog.String("run_id", cp.RunID.String()))
	return nil
}

// LoadCheckpoint restores a run saved by SaveCheckpoint. Configuration is not
// part of the file and is supplied by the caller. Random streams cannot be
// persisted, so each population is reseeded from config.Neat.Seed, its
// generation and its position.
func LoadCheckpoint(filePath string, config *Config) (*Checkpoint, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	var data checkpointData
	if err := gob.NewDecoder(gzReader).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode checkpoint data: %w", err)
	}

	cp, err := data.decode(config)
	if err != nil {
		return nil, fmt.Errorf("failed to restore checkpoint '%s': %w", filePath, err)
	}
	slog.Info("checkpoint loaded", slog.String("path", filePath), slog.String("run_id", cp.RunID.String()))
	return cp, nil
}

func (cp *Checkpoint) encode() (*checkpointData, error) {
	if len(cp.Populations) == 0 {
		return nil, fmt.Errorf("checkpoint has no populations")
	}
	ledger := cp.Populations[0].ledger
	data := &checkpointData{RunID: cp.RunID, Ledger: ledger.state()}
	for _, p := range cp.Populations {
		if p.ledger != ledger {
			return nil, fmt.Errorf("population %q uses a different innovation ledger", p.Name)
		}
		pd := populationData{
			Name:          p.Name,
			Generation:    p.Generation,
			Threshold:     p.threshold,
			NextSpeciesID: p.nextSpeciesID,
			SpeciesIDs:    p.SpeciesIDs(),
		}
		for _, o := range p.organisms {
			pd.Organisms = append(pd.Organisms, encodeOrganism(o))
		}
		for _, rep := range p.representatives {
			pd.Representatives = append(pd.Representatives, representativeData{SpeciesID: rep.SpeciesID, Organism: encodeOrganism(rep.Organism)})
		}
		data.Populations = append(data.Populations, pd)
	}
	for _, h := range cp.HallsOfFame {
		hd := hallOfFameData{Capacity: h.capacity}
		for _, o := range h.members {
			hd.Members = append(hd.Members, encodeOrganism(o))
		}
		data.HallsOfFame = append(data.HallsOfFame, hd)
	}
	return data, nil
}

func (data *checkpointData) decode(config *Config) (*Checkpoint, error) {
	ledger := ledgerFromState(data.Ledger)
	cp := &Checkpoint{RunID: data.RunID}
	for i, pd := range data.Populations {
		p := &Population{
			Config:        config,
			Logger:        slog.Default(),
			Name:          pd.Name,
			Generation:    pd.Generation,
			ledger:        ledger,
			rng:           rand.New(rand.NewSource(config.Neat.Seed + int64(pd.Generation)*1000 + int64(i))),
			speciesIDs:    pd.SpeciesIDs,
			threshold:     pd.Threshold,
			nextSpeciesID: pd.NextSpeciesID,
		}
		for _, od := range pd.Organisms {
			o, err := decodeOrganism(od, &config.Genome, ledger)
			if err != nil {
				return nil, err
			}
			p.organisms = append(p.organisms, o)
		}
		for _, rd := range pd.Representatives {
			o, err := decodeOrganism(rd.Organism, &config.Genome, ledger)
			if err != nil {
				return nil, err
			}
			p.representatives = append(p.representatives, Representative{SpeciesID: rd.SpeciesID, Organism: o})
		}
		cp.Populations = append(cp.Populations, p)
	}
	for _, hd := range data.HallsOfFame {
		h := NewHallOfFame(hd.Capacity)
		for _, od := range hd.Members {
			o, err := decodeOrganism(od, &config.Genome, ledger)
			if err != nil {
				return nil, err
			}
			h.members = append(h.members, o)
		}
		cp.HallsOfFame = append(cp.HallsOfFame, h)
	}
	return cp, nil
}

func encodeOrganism(o *Organism) organismData {
	od := organismData{ID: o.ID, Fitness: o.Fitness, SpeciesID: o.SpeciesID}
	for _, n := range o.Genome.nodes {
		od.Nodes = append(od.Nodes, *n)
	}
	for _, c := range o.Genome.conns {
		od.Conns = append(od.Conns, *c)
	}
	return od
}

func decodeOrganism(od organismData, config *GenomeConfig, ledger *InnovationLedger) (*Organism, error) {
	g := NewEmptyGenome(config, ledger)
	for _, n := range od.Nodes {
		if _, err := g.AddNodeWithID(n.ID, n.Type, n.Depth, n.Bias); err != nil {
			return nil, fmt.Errorf("organism %d: %w", od.ID, err)
		}
	}
	for _, c := range od.Conns {
		if _, err := g.AddConnectionWithInnovation(c.InNodeID, c.OutNodeID, c.Weight, c.Enabled, c.Innovation); err != nil {
			return nil, fmt.Errorf("organism %d: %w", od.ID, err)
		}
	}
	return &Organism{ID: od.ID, Genome: g, Fitness: od.Fitness, SpeciesID: od.SpeciesID}, nil
}
