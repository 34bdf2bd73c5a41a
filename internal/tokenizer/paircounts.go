package tokenizer

import "sync"

// pairCounts shards the corpus-wide pair frequency table so worker
// goroutines applying per-chunk deltas rarely contend. The shard for a
// pair is chosen by hashing the pair, so every update to one pair lands in
// the same shard and totals match a sequential count exactly.
type pairCounts struct {
	shards []pairShard
}

type pairShard struct {
	mu     sync.Mutex
	counts map[Pair]int64
}

func newPairCounts(shards int) *pairCounts {
	if shards < 1 {
		shards = 1
	}
	pc := &pairCounts{shards: make([]pairShard, shards)}
	for i := range pc.shards {
		pc.shards[i].counts = make(map[Pair]int64)
	}
	return pc
}

func (pc *pairCounts) shardFor(p Pair) *pairShard {
	return &pc.shards[p.hash()%uint64(len(pc.shards))]
}

// add adjusts a single pair's count, dropping the entry when it reaches zero.
func (pc *pairCounts) add(p Pair, delta int64) {
	s := pc.shardFor(p)
	s.mu.Lock()
	updateCount(s.counts, p, delta)
	s.mu.Unlock()
}

// applyDelta folds a worker's local delta map into the shared shards.
func (pc *pairCounts) applyDelta(delta map[Pair]int64) {
	for p, d := range delta {
		pc.add(p, d)
	}
}

func updateCount(m map[Pair]int64, p Pair, delta int64) {
	next := m[p] + delta
	if next == 0 {
		delete(m, p)
		return
	}
	m[p] = next
}

// best returns the most frequent pair. Ties break on the lexicographically
// smallest left token string, then the smallest right token string, which
// keeps training deterministic regardless of shard iteration order.
func (pc *pairCounts) best(tm *TokenMap) (Pair, int64, bool) {
	var (
		found     bool
		bestPair  Pair
		bestCount int64
		bestLeft  string
		bestRight string
	)
	for i := range pc.shards {
		s := &pc.shards[i]
		s.mu.Lock()
		for p, c := range s.counts {
			if !found || betterCandidate(c, p, bestCount, bestLeft, bestRight, tm) {
				found = true
				bestPair = p
				bestCount = c
				bestLeft = tm.String(p.A)
				bestRight = tm.String(p.B)
			}
		}
		s.mu.Unlock()
	}
	return bestPair, bestCount, found
}

func betterCandidate(count int64, p Pair, bestCount int64, bestLeft, bestRight string, tm *TokenMap) bool {
	if count != bestCount {
		return count > bestCount
	}
	left := tm.String(p.A)
	if left != bestLeft {
		return left < bestLeft
	}
	return tm.String(p.B) < bestRight
}
