// Package neat provides a Go implementation of NeuroEvolution of Augmenting Topologies (NEAT)
// driven by competitive co-evolution.
//
// Two populations, hosts and parasites, evolve against each other: each generation every
// host plays a bounded set of challengers (the opponent's species champions, samples from a
// Hall of Fame and random members), and fitness is derived from the outcomes with
// competitive and explicit fitness sharing. Genomes grow through node and connection
// mutations whose structural identity is tracked by a shared innovation ledger.
//
// The engine lives in the neat subpackage; nn compiles genomes into reusable networks,
// genomeio exports genomes as YAML, report writes per-generation CSV and task provides a
// labeled-dataset game such as XOR.
//
// Basic usage:
//
//	config, err := neat.LoadConfig("path/to/config.ini")
//	if err != nil {
//		log.Fatalf("Error loading config: %v", err)
//	}
//
//	root := rand.New(rand.NewSource(config.Neat.Seed))
//	ledger := neat.NewInnovationLedger(config.Genome.NumInputs, config.Genome.NumOutputs)
//	hosts := neat.NewPopulation("host", config, ledger, rand.New(rand.NewSource(root.Int63())))
//	parasites := neat.NewPopulation("parasite", config, ledger, rand.New(rand.NewSource(root.Int63())))
//	hosts.Speciate()
//	parasites.Speciate()
//
//	game := task.NewGame(task.XOR(&config.Genome))
//	for i := 0; i < 100; i++ {
//		hostResults, mirrored, _ := neat.EvaluateGames(ctx, hosts.Organisms(),
//			parasites.SelectChallengers(nil), nil, game, nil, root, 0)
//		parasiteResults, _, _ := neat.EvaluateGames(ctx, parasites.Organisms(),
//			hosts.SelectChallengers(nil), nil, game, mirrored, root, 0)
//		neat.AssignFitnesses(hosts, hostResults)
//		neat.AssignFitnesses(parasites, parasiteResults)
//
//		hosts.SelectAndReproduce()
//		parasites.SelectAndReproduce()
//	}
package neat
