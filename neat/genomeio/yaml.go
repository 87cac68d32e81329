// Package genomeio exports genomes to YAML and imports them back.
package genomeio

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/baldhumanity/coevo-neat/neat"
)

// Document is the YAML form of one organism's genome.
type Document struct {
	Organism    *OrganismInfo   `yaml:"organism,omitempty"`
	Nodes       []NodeDoc       `yaml:"nodes"`
	Connections []ConnectionDoc `yaml:"connections"`
}

// OrganismInfo carries the bookkeeping of the exported organism.
type OrganismInfo struct {
	ID        int     `yaml:"id"`
	Fitness   float64 `yaml:"fitness"`
	SpeciesID int     `yaml:"species_id"`
}

// NodeDoc is the YAML form of a node gene.
type NodeDoc struct {
	ID    int     `yaml:"id"`
	Type  string  `yaml:"type"`
	Depth int     `yaml:"depth"`
	Bias  float64 `yaml:"bias"`
}

// ConnectionDoc is the YAML form of a connection gene.
type ConnectionDoc struct {
	In         int     `yaml:"in"`
	Out        int     `yaml:"out"`
	Weight     float64 `yaml:"weight"`
	Enabled    bool    `yaml:"enabled"`
	Innovation int     `yaml:"innovation"`
}

// FromGenome builds a document from a genome.
func FromGenome(g *neat.Genome) *Document {
	doc := &Document{}
	for _, n := range g.Nodes() {
		doc.Nodes = append(doc.Nodes, NodeDoc{ID: n.ID, Type: n.Type.String(), Depth: n.Depth, Bias: n.Bias})
	}
	for _, c := range g.Connections() {
		doc.Connections = append(doc.Connections, ConnectionDoc{
			In:         c.InNodeID,
			Out:        c.OutNodeID,
			Weight:     c.Weight,
			Enabled:    c.Enabled,
			Innovation: c.Innovation,
		})
	}
	return doc
}

// FromOrganism builds a document from an organism, including its bookkeeping.
func FromOrganism(o *neat.Organism) *Document {
	doc := FromGenome(o.Genome)
	doc.Organism = &OrganismInfo{ID: o.ID, Fitness: o.Fitness, SpeciesID: o.SpeciesID}
	return doc
}

// ToGenome rebuilds the genome. Node ids and innovation numbers are kept and
// the ledger's counters are advanced past them.
func (d *Document) ToGenome(config *neat.GenomeConfig, ledger *neat.InnovationLedger) (*neat.Genome, error) {
	g := neat.NewEmptyGenome(config, ledger)
	maxNode, maxInnovation := -1, -1
	for _, n := range d.Nodes {
		typ, err := neat.ParseNodeType(n.Type)
		if err != nil {
			return nil, fmt.Errorf("node %d: %w", n.ID, err)
		}
		if _, err := g.AddNodeWithID(n.ID, typ, n.Depth, n.Bias); err != nil {
			return nil, err
		}
		maxNode = max(maxNode, n.ID)
	}
	for _, c := range d.Connections {
		if _, err := g.AddConnectionWithInnovation(c.In, c.Out, c.Weight, c.Enabled, c.Innovation); err != nil {
			return nil, err
		}
		maxInnovation = max(maxInnovation, c.Innovation)
	}
	if len(g.Inputs()) != config.NumInputs || len(g.Outputs()) != config.NumOutputs {
		return nil, fmt.Errorf("genome has %d inputs and %d outputs, config expects %d and %d",
			len(g.Inputs()), len(g.Outputs()), config.NumInputs, config.NumOutputs)
	}
	ledger.Reserve(maxNode, maxInnovation)
	return g, nil
}

// Write encodes the genome as YAML.
func Write(w io.Writer, doc *Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding genome: %w", err)
	}
	return enc.Close()
}

// Read decodes a YAML document.
func Read(r io.Reader) (*Document, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding genome: %w", err)
	}
	return &doc, nil
}

// WriteFile saves an organism's genome to a YAML file.
func WriteFile(path string, o *neat.Organism) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, FromOrganism(o))
}

// ReadFile loads a genome saved by WriteFile.
func ReadFile(path string, config *neat.GenomeConfig, ledger *neat.InnovationLedger) (*neat.Genome, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	doc, err := Read(f)
	if err != nil {
		return nil, err
	}
	return doc.ToGenome(config, ledger)
}
