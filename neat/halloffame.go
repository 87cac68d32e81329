package neat

import "math/rand"

// HallOfFame archives past strong organisms as fixed opponents.
type HallOfFame struct {
	capacity int // 0 means unbounded
	members  []*Organism
}

// NewHallOfFame creates an archive that keeps at most capacity members.
func NewHallOfFame(capacity int) *HallOfFame {
	return &HallOfFame{capacity: capacity}
}

// Add stores a copy of o that keeps its id. The oldest member is evicted when full.
func (h *HallOfFame) Add(o *Organism) {
	h.members = append(h.members, o.snapshot())
	if h.capacity > 0 && len(h.members) > h.capacity {
		h.members = h.members[len(h.members)-h.capacity:]
	}
}

// Len returns the number of archived organisms.
func (h *HallOfFame) Len() int {
	return len(h.members)
}

// Members returns the archived organisms, oldest first.
func (h *HallOfFame) Members() []*Organism {
	out := make([]*Organism, len(h.members))
	copy(out, h.members)
	return out
}

// Sample returns up to n distinct members chosen uniformly.
func (h *HallOfFame) Sample(n int, rng *rand.Rand) []*Organism {
	if n <= 0 || len(h.members) == 0 {
		return nil
	}
	if n > len(h.members) {
		n = len(h.members)
	}
	out := make([]*Organism, n)
	for i, j := range rng.Perm(len(h.members))[:n] {
		out[i] = h.members[j]
	}
	return out
}
