package neat

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores the configuration parameters for the co-evolutionary NEAT engine.
type Config struct {
	Neat         NeatConfig
	Genome       GenomeConfig
	Reproduction ReproductionConfig
	SpeciesSet   SpeciesSetConfig
	CoEvolution  CoEvolutionConfig
}

// NeatConfig holds run-wide parameters.
type NeatConfig struct {
	PopSize int   `ini:"pop_size"`
	Seed    int64 `ini:"seed"`
	// When true the innovation ledger maps are cleared at the start of every
	// reproduction cycle, giving each generation a fresh historical-marker namespace.
	ResetInnovationsEachGeneration bool `ini:"reset_innovations_each_generation"`
}

// GenomeConfig holds parameters for the structure, activation and mutation of genomes.
type GenomeConfig struct {
	NumInputs  int     `ini:"num_inputs"`
	NumOutputs int     `ini:"num_outputs"`
	MinValue   float64 `ini:"min_value"` // lower bound for weights and biases
	MaxValue   float64 `ini:"max_value"` // upper bound for weights and biases

	Activation          string `ini:"activation"`
	BiasInActivation    bool   `ini:"bias_in_activation"`
	ActivationTimesteps int    `ini:"activation_timesteps"`

	CompatibilityExcessCoefficient   float64 `ini:"compatibility_excess_coefficient"`
	CompatibilityDisjointCoefficient float64 `ini:"compatibility_disjoint_coefficient"`
	CompatibilityWeightCoefficient   float64 `ini:"compatibility_weight_coefficient"`

	// --- Structural mutations (mutually exclusive per Mutate call) ---
	NodeAddProb float64 `ini:"node_add_prob"`
	ConnAddProb float64 `ini:"conn_add_prob"`

	// --- Non-structural mutations (independently gated) ---
	MutateWeightsProb          float64 `ini:"mutate_weights_prob"`
	MutateBiasesProb           float64 `ini:"mutate_biases_prob"`
	MutateToggleEnableProb     float64 `ini:"mutate_toggle_enable_prob"`
	MutateReenableProb         float64 `ini:"mutate_reenable_prob"`
	MutateRemoveConnectionProb float64 `ini:"mutate_remove_connection_prob"`

	WeightPerturbChance float64 `ini:"weight_perturb_chance"`
	WeightPerturbPower  float64 `ini:"weight_perturb_power"`
	BiasPerturbChance   float64 `ini:"bias_perturb_chance"`
	BiasPerturbPower    float64 `ini:"bias_perturb_power"`

	MaxMutationAttempts int `ini:"max_mutation_attempts"`
}

// ReproductionConfig holds parameters related to the reproduction cycle.
type ReproductionConfig struct {
	SpeciesEliteFraction   float64 `ini:"species_elite_fraction"`
	SuperchampOffspring    int     `ini:"superchamp_offspring"`
	MutateOnlyProb         float64 `ini:"mutate_only_prob"`
	MateOnlyProb           float64 `ini:"mate_only_prob"`
	CrossSpeciesMatingProb float64 `ini:"cross_species_mating_prob"`
	InheritDisableChance   float64 `ini:"inherit_disable_chance"`
	MateAvgGenesProb       float64 `ini:"mate_avg_genes_prob"`
	SpeciesFitnessFunc     string  `ini:"species_fitness_func"` // e.g., "mean", "max", "median"
}

// SpeciesSetConfig holds parameters related to speciation.
type SpeciesSetConfig struct {
	CompatibilityThreshold     float64 `ini:"compatibility_threshold"`
	CompatibilityThresholdStep float64 `ini:"compatibility_threshold_step"`
	SpeciesCountTarget         int     `ini:"species_count_target"`
}

// CoEvolutionConfig holds parameters for challenger selection and fitness assignment.
type CoEvolutionConfig struct {
	NumChampionParasites   int     `ini:"num_champion_parasites"`
	NumHallOfFameParasites int     `ini:"num_hall_of_fame_parasites"`
	HallOfFameSize         int     `ini:"hall_of_fame_size"` // 0 means unbounded
	FitnessRewardWin       float64 `ini:"fitness_reward_win"`
	FitnessRewardDraw      float64 `ini:"fitness_reward_draw"`
	FitnessRewardLoss      float64 `ini:"fitness_reward_loss"`
	PenalizeSize           bool    `ini:"penalize_size"`
	FitnessPenaltyFactor   float64 `ini:"fitness_penalty_factor"`
	MaxWorkers             int     `ini:"max_workers"` // 0 means GOMAXPROCS
}

// DefaultConfig returns a configuration populated with the engine's default parameters.
func DefaultConfig() *Config {
	return &Config{
		Neat: NeatConfig{
			PopSize:                        200,
			Seed:                           1,
			ResetInnovationsEachGeneration: true,
		},
		Genome: GenomeConfig{
			NumInputs:                        3,
			NumOutputs:                       1,
			MinValue:                         -99.999,
			MaxValue:                         99.999,
			Activation:                       "sigmoid",
			ActivationTimesteps:              1,
			CompatibilityExcessCoefficient:   2.0,
			CompatibilityDisjointCoefficient: 2.0,
			CompatibilityWeightCoefficient:   1.0,
			NodeAddProb:                      0.2,
			ConnAddProb:                      0.3,
			MutateWeightsProb:                0.6,
			MutateBiasesProb:                 0.6,
			MutateToggleEnableProb:           0.1,
			MutateReenableProb:               0.05,
			MutateRemoveConnectionProb:       0.1,
			WeightPerturbChance:              0.6,
			WeightPerturbPower:               2.5,
			BiasPerturbChance:                0.6,
			BiasPerturbPower:                 2.5,
			MaxMutationAttempts:              1000,
		},
		Reproduction: ReproductionConfig{
			SpeciesEliteFraction:   0.2,
			SuperchampOffspring:    3,
			MutateOnlyProb:         0.25,
			MateOnlyProb:           0.2,
			CrossSpeciesMatingProb: 0.05,
			InheritDisableChance:   0.75,
			MateAvgGenesProb:       0.4,
			SpeciesFitnessFunc:     "mean",
		},
		SpeciesSet: SpeciesSetConfig{
			CompatibilityThreshold:     4.5,
			CompatibilityThresholdStep: 0.3,
			SpeciesCountTarget:         10,
		},
		CoEvolution: CoEvolutionConfig{
			NumChampionParasites:   4,
			NumHallOfFameParasites: 8,
			FitnessRewardWin:       2.0,
			FitnessRewardDraw:      -1.0,
			FitnessRewardLoss:      0.0,
			PenalizeSize:           true,
			FitnessPenaltyFactor:   0.005,
		},
	}
}

// LoadConfig loads configuration parameters from an INI file on top of DefaultConfig.
func LoadConfig(filePath string) (*Config, error) {
	config, err := loadConfigSource(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return config, nil
}

// ParseConfig parses INI data on top of DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	return loadConfigSource(data)
}

func loadConfigSource(source interface{}) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, source)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()

	// Keys missing from the file keep their default value.
	sections := []struct {
		name   string
		target interface{}
	}{
		{"NEAT", &config.Neat},
		{"DefaultGenome", &config.Genome},
		{"DefaultReproduction", &config.Reproduction},
		{"DefaultSpeciesSet", &config.SpeciesSet},
		{"CoEvolution", &config.CoEvolution},
	}
	for _, s := range sections {
		if err := cfg.Section(s.name).MapTo(s.target); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	config.Genome.Activation = cleanIniString(config.Genome.Activation)
	config.Reproduction.SpeciesFitnessFunc = cleanIniString(config.Reproduction.SpeciesFitnessFunc)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks parameter ranges and named options.
func (c *Config) Validate() error {
	if c.Neat.PopSize <= 0 {
		return fmt.Errorf("config error: pop_size must be positive")
	}
	if c.Genome.NumInputs <= 0 {
		return fmt.Errorf("config error: num_inputs must be positive")
	}
	if c.Genome.NumOutputs <= 0 {
		return fmt.Errorf("config error: num_outputs must be positive")
	}
	if c.Genome.MaxValue < c.Genome.MinValue {
		return fmt.Errorf("config error: max_value cannot be less than min_value")
	}
	if _, err := GetActivation(c.Genome.Activation); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Genome.ActivationTimesteps < 1 {
		return fmt.Errorf("config error: activation_timesteps must be at least 1")
	}
	if c.Genome.MaxMutationAttempts <= 0 {
		return fmt.Errorf("config error: max_mutation_attempts must be positive")
	}
	coefficients := map[string]float64{
		"compatibility_excess_coefficient":   c.Genome.CompatibilityExcessCoefficient,
		"compatibility_disjoint_coefficient": c.Genome.CompatibilityDisjointCoefficient,
		"compatibility_weight_coefficient":   c.Genome.CompatibilityWeightCoefficient,
	}
	for name, v := range coefficients {
		if v < 0 {
			return fmt.Errorf("config error: %s cannot be negative", name)
		}
	}
	probabilities := map[string]float64{
		"node_add_prob":                 c.Genome.NodeAddProb,
		"conn_add_prob":                 c.Genome.ConnAddProb,
		"mutate_weights_prob":           c.Genome.MutateWeightsProb,
		"mutate_biases_prob":            c.Genome.MutateBiasesProb,
		"mutate_toggle_enable_prob":     c.Genome.MutateToggleEnableProb,
		"mutate_reenable_prob":          c.Genome.MutateReenableProb,
		"mutate_remove_connection_prob": c.Genome.MutateRemoveConnectionProb,
		"weight_perturb_chance":         c.Genome.WeightPerturbChance,
		"bias_perturb_chance":           c.Genome.BiasPerturbChance,
		"species_elite_fraction":        c.Reproduction.SpeciesEliteFraction,
		"mutate_only_prob":              c.Reproduction.MutateOnlyProb,
		"mate_only_prob":                c.Reproduction.MateOnlyProb,
		"cross_species_mating_prob":     c.Reproduction.CrossSpeciesMatingProb,
		"inherit_disable_chance":        c.Reproduction.InheritDisableChance,
		"mate_avg_genes_prob":           c.Reproduction.MateAvgGenesProb,
	}
	for name, p := range probabilities {
		if p < 0 || p > 1 {
			return fmt.Errorf("config error: %s must be between 0 and 1", name)
		}
	}
	if c.Reproduction.SuperchampOffspring < 0 {
		return fmt.Errorf("config error: superchamp_offspring cannot be negative")
	}
	if _, ok := StatFunctions[strings.ToLower(c.Reproduction.SpeciesFitnessFunc)]; !ok {
		return fmt.Errorf("config error: invalid species_fitness_func '%s'", c.Reproduction.SpeciesFitnessFunc)
	}
	if c.SpeciesSet.CompatibilityThreshold < 0 {
		return fmt.Errorf("config error: compatibility_threshold cannot be negative")
	}
	if c.SpeciesSet.CompatibilityThresholdStep <= 0 {
		return fmt.Errorf("config error: compatibility_threshold_step must be positive")
	}
	if c.SpeciesSet.SpeciesCountTarget <= 0 {
		return fmt.Errorf("config error: species_count_target must be positive")
	}
	if c.CoEvolution.NumChampionParasites < 0 || c.CoEvolution.NumHallOfFameParasites < 0 {
		return fmt.Errorf("config error: challenger counts cannot be negative")
	}
	if c.CoEvolution.NumChampionParasites+c.CoEvolution.NumHallOfFameParasites == 0 {
		return fmt.Errorf("config error: at least one challenger is required")
	}
	if c.CoEvolution.HallOfFameSize < 0 {
		return fmt.Errorf("config error: hall_of_fame_size cannot be negative")
	}
	if c.CoEvolution.MaxWorkers < 0 {
		return fmt.Errorf("config error: max_workers cannot be negative")
	}
	return nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
