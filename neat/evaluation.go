package neat

import (
	"context"
	"fmt"
	"math/rand"
	"runtime"
	"sync"

	"github.com/sourcegraph/conc/pool"
)

// GameResult is the outcome of one game from the host's point of view.
type GameResult int

const (
	Loss GameResult = -1
	Draw GameResult = 0
	Win  GameResult = 1
)

// String returns "win", "draw" or "loss".
func (r GameResult) String() string {
	switch r {
	case Win:
		return "win"
	case Draw:
		return "draw"
	case Loss:
		return "loss"
	default:
		return fmt.Sprintf("GameResult(%d)", int(r))
	}
}

// GameKey identifies one game: a host against a challenger, with the host
// moving first or second.
type GameKey struct {
	HostID       int
	ChallengerID int
	HostFirst    bool
}

// GameResults maps games to their outcome for the host.
type GameResults map[GameKey]GameResult

// Evaluator plays one game between two organisms and reports the result for a.
// Implementations must be safe for concurrent use.
type Evaluator interface {
	EvaluateGame(a, b *Organism, aFirst bool, rng *rand.Rand) GameResult
}

// EvaluatorFunc adapts a function to the Evaluator interface.
type EvaluatorFunc func(a, b *Organism, aFirst bool, rng *rand.Rand) GameResult

// EvaluateGame calls f(a, b, aFirst, rng).
func (f EvaluatorFunc) EvaluateGame(a, b *Organism, aFirst bool, rng *rand.Rand) GameResult {
	return f(a, b, aFirst, rng)
}

type gameTask struct {
	key        GameKey
	host       *Organism
	challenger *Organism
	seed       int64
}

// EvaluateGames plays every host against every challenger twice, once moving
// first and once second, on a bounded worker pool.
//
// Games found in precalc are not replayed. Each remaining game gets its own
// random stream seeded from rng before any game starts, so results do not
// depend on scheduling. When a host also appears in opponentChallengers, its
// results are returned a second time in mirrored form (sign and orientation
// flipped) for the opponent population's precalculated cache.
// A cancelled context stops games that have not started yet.
func EvaluateGames(ctx context.Context, hosts, challengers, opponentChallengers []*Organism, evaluator Evaluator, precalc GameResults, rng *rand.Rand, workers int) (GameResults, GameResults, error) {
	results := make(GameResults, len(hosts)*len(challengers)*2)
	var tasks []gameTask
	for _, h := range hosts {
		for _, c := range challengers {
			for _, hostFirst := range []bool{true, false} {
				key := GameKey{HostID: h.ID, ChallengerID: c.ID, HostFirst: hostFirst}
				if r, ok := precalc[key]; ok {
					results[key] = r
					continue
				}
				tasks = append(tasks, gameTask{key: key, host: h, challenger: c, seed: rng.Int63()})
			}
		}
	}

	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	var (
		mu       sync.Mutex
		firstErr error
	)
	p := pool.New().WithMaxGoroutines(workers)
	for _, t := range tasks {
		t := t
		p.Go(func() {
			if err := ctx.Err(); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			r := evaluator.EvaluateGame(t.host, t.challenger, t.key.HostFirst, rand.New(rand.NewSource(t.seed)))
			mu.Lock()
			results[t.key] = r
			mu.Unlock()
		})
	}
	p.Wait()
	if firstErr != nil {
		return nil, nil, fmt.Errorf("evaluating games: %w", firstErr)
	}

	mirrored := make(GameResults)
	opponents := make(map[int]bool, len(opponentChallengers))
	for _, o := range opponentChallengers {
		opponents[o.ID] = true
	}
	for key, r := range results {
		if opponents[key.HostID] {
			mirrored[GameKey{HostID: key.ChallengerID, ChallengerID: key.HostID, HostFirst: !key.HostFirst}] = -r
		}
	}
	return results, mirrored, nil
}
