package neat

import "math/rand"

// Mutate applies one round of mutation. At most one structural edit is made:
// a node insertion, else a new connection. When neither fires, each
// non-structural edit is tried under its own probability.
// Reports whether the genome changed.
func (g *Genome) Mutate(rng *rand.Rand) bool {
	cfg := g.Config
	if rng.Float64() < cfg.NodeAddProb {
		return g.MutateAddNode(rng)
	}
	if rng.Float64() < cfg.ConnAddProb {
		return g.MutateAddConnection(rng)
	}

	changed := false
	if rng.Float64() < cfg.MutateWeightsProb {
		changed = g.MutateWeights(rng) || changed
	}
	if rng.Float64() < cfg.MutateBiasesProb {
		changed = g.MutateBiases(rng) || changed
	}
	if rng.Float64() < cfg.MutateToggleEnableProb {
		changed = g.MutateToggleEnable(rng) || changed
	}
	if rng.Float64() < cfg.MutateReenableProb {
		changed = g.MutateGeneReenable(rng) || changed
	}
	if rng.Float64() < cfg.MutateRemoveConnectionProb {
		changed = g.MutateRemoveConnection(rng) || changed
	}
	return changed
}

// MutateWeights perturbs each connection weight with probability WeightPerturbChance.
func (g *Genome) MutateWeights(rng *rand.Rand) bool {
	changed := false
	for _, c := range g.conns {
		if rng.Float64() < g.Config.WeightPerturbChance {
			c.perturbWeight(rng, g.Config)
			changed = true
		}
	}
	return changed
}

// MutateBiases perturbs each non-input node bias with probability BiasPerturbChance.
func (g *Genome) MutateBiases(rng *rand.Rand) bool {
	changed := false
	for _, n := range g.nodes {
		if n.Type == InputNode {
			continue
		}
		if rng.Float64() < g.Config.BiasPerturbChance {
			n.perturbBias(rng, g.Config)
			changed = true
		}
	}
	return changed
}

// MutateAddConnection connects two distinct, unconnected nodes. The target is
// never an input node and no edge may already exist in either direction.
// Gives up silently after MaxMutationAttempts samples.
func (g *Genome) MutateAddConnection(rng *rand.Rand) bool {
	if len(g.nodes) < 2 {
		return false
	}
	for attempt := 0; attempt < g.Config.MaxMutationAttempts; attempt++ {
		src := g.nodes[rng.Intn(len(g.nodes))]
		dst := g.nodes[rng.Intn(len(g.nodes))]
		if src.ID == dst.ID || dst.Type == InputNode {
			continue
		}
		if g.connectionIndex(src.ID, dst.ID) != -1 || g.connectionIndex(dst.ID, src.ID) != -1 {
			continue
		}
		weight := clamp(randomUnit(rng), g.Config.MinValue, g.Config.MaxValue)
		if _, err := g.AddConnection(src.ID, dst.ID, weight, true); err != nil {
			continue
		}
		return true
	}
	return false
}

// MutateAddNode splits an enabled connection with a new hidden node.
// Self-loops and connections whose target id does not exceed the source id
// are never split. The split connection is disabled and replaced by
// source->new (weight 1) and new->target (the original weight).
// Gives up silently after MaxMutationAttempts samples.
func (g *Genome) MutateAddNode(rng *rand.Rand) bool {
	if len(g.conns) == 0 {
		return false
	}
	for attempt := 0; attempt < g.Config.MaxMutationAttempts; attempt++ {
		split := g.conns[rng.Intn(len(g.conns))]
		if !split.Enabled || split.IsSelfLoop() || split.OutNodeID <= split.InNodeID {
			continue
		}
		// The same split elsewhere may already have placed this node here.
		if _, exists := g.index[g.ledger.AssignNodeID(split.Key())]; exists {
			continue
		}

		src, _ := g.Node(split.InNodeID)
		dst, _ := g.Node(split.OutNodeID)
		forward := g.forwardEdges()
		wasForward := src.Depth < dst.Depth

		split.Enabled = false
		bias := clamp(randomUnit(rng), g.Config.MinValue, g.Config.MaxValue)
		node, err := g.AddNode(HiddenNode, src.Depth+1, bias, split)
		if err != nil {
			split.Enabled = true
			continue
		}
		if _, err := g.AddConnection(src.ID, node.ID, 1.0, true); err != nil {
			panic(err)
		}
		if _, err := g.AddConnection(node.ID, dst.ID, split.Weight, true); err != nil {
			panic(err)
		}

		forward[src.ID] = append(forward[src.ID], node.ID)
		if wasForward {
			forward[node.ID] = append(forward[node.ID], dst.ID)
		}
		g.relaxDepths(forward, node.ID)
		return true
	}
	return false
}

// forwardEdges returns the adjacency of connections whose source is shallower
// than their target. These edges form a DAG.
func (g *Genome) forwardEdges() map[int][]int {
	forward := make(map[int][]int)
	for _, c := range g.conns {
		in, out := g.nodes[g.index[c.InNodeID]], g.nodes[g.index[c.OutNodeID]]
		if in.Depth < out.Depth {
			forward[c.InNodeID] = append(forward[c.InNodeID], c.OutNodeID)
		}
	}
	return forward
}

// relaxDepths pushes depths down the forward DAG from start until every
// forward edge strictly increases depth again. Uses an explicit worklist.
func (g *Genome) relaxDepths(forward map[int][]int, start int) {
	queue := []int{start}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		n := g.nodes[g.index[id]]
		for _, next := range forward[id] {
			m := g.nodes[g.index[next]]
			if m.Depth <= n.Depth {
				m.Depth = n.Depth + 1
				queue = append(queue, next)
			}
		}
	}
}

// isolationSafe returns the positions of connections whose source has more than
// one outgoing and whose target has more than one incoming enabled, non-self edge.
func (g *Genome) isolationSafe() []int {
	outDegree := make(map[int]int)
	inDegree := make(map[int]int)
	for _, c := range g.conns {
		if c.Enabled && !c.IsSelfLoop() {
			outDegree[c.InNodeID]++
			inDegree[c.OutNodeID]++
		}
	}
	var candidates []int
	for i, c := range g.conns {
		if outDegree[c.InNodeID] > 1 && inDegree[c.OutNodeID] > 1 {
			candidates = append(candidates, i)
		}
	}
	return candidates
}

// MutateToggleEnable flips the enabled flag of a connection that cannot isolate a node.
func (g *Genome) MutateToggleEnable(rng *rand.Rand) bool {
	candidates := g.isolationSafe()
	if len(candidates) == 0 {
		return false
	}
	c := g.conns[candidates[rng.Intn(len(candidates))]]
	c.Enabled = !c.Enabled
	return true
}

// MutateRemoveConnection deletes a connection that cannot isolate a node.
func (g *Genome) MutateRemoveConnection(rng *rand.Rand) bool {
	candidates := g.isolationSafe()
	if len(candidates) == 0 {
		return false
	}
	g.removeConnectionAt(candidates[rng.Intn(len(candidates))])
	return true
}

// MutateGeneReenable enables a random disabled connection.
func (g *Genome) MutateGeneReenable(rng *rand.Rand) bool {
	var disabled []*ConnectionGene
	for _, c := range g.conns {
		if !c.Enabled {
			disabled = append(disabled, c)
		}
	}
	if len(disabled) == 0 {
		return false
	}
	disabled[rng.Intn(len(disabled))].Enabled = true
	return true
}
