package classify

import (
	"math"
	"sync"

	"classicine/internal/ngram"
)

// Classifier scores one entry from the session's global statistics. Higher
// raw scores mean more positive-like; scales differ per classifier and are
// reconciled by the Ranker's normalization pass.
type Classifier interface {
	Name() string
	Score(e *Entry) float64
}

type labelCounts struct {
	pos uint64
	neg uint64
}

// LogOdds is the online feature classifier: per-feature positive/negative
// occurrence counts with add-one smoothing, scored as a summed
// log-likelihood ratio. Reads take the shared lock so parallel scoring
// passes can overlap; Observe is the only writer.
type LogOdds struct {
	mu       sync.RWMutex
	counts   map[ngram.Feature]*labelCounts
	posTotal uint64
	negTotal uint64
	vocab    float64
}

// NewLogOdds builds the model with vocab distinct retained features, the
// smoothing denominator. Zero decisions score every entry neutral 0.
func NewLogOdds(vocab int) *LogOdds {
	if vocab < 1 {
		vocab = 1
	}
	return &LogOdds{
		counts: make(map[ngram.Feature]*labelCounts),
		vocab:  float64(vocab),
	}
}

func (c *LogOdds) Name() string { return "ngram" }

// Score sums, over the entry's features,
// log((pos+1)/(posTotal+V)) - log((neg+1)/(negTotal+V)).
// Smoothing keeps every term finite, including before any decision.
func (c *LogOdds) Score(e *Entry) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var sum float64
	for _, f := range e.Features {
		sum += c.featureScoreLocked(f)
	}
	return sum
}

// FeatureScore exposes one feature's log-likelihood ratio for report and
// diagnostic output.
func (c *LogOdds) FeatureScore(f ngram.Feature) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.featureScoreLocked(f)
}

func (c *LogOdds) featureScoreLocked(f ngram.Feature) float64 {
	var pos, neg uint64
	if lc, ok := c.counts[f]; ok {
		pos, neg = lc.pos, lc.neg
	}
	posP := (float64(pos) + 1) / (float64(c.posTotal) + c.vocab)
	negP := (float64(neg) + 1) / (float64(c.negTotal) + c.vocab)
	return math.Log(posP) - math.Log(negP)
}

// Observe applies one decision to the feature table: every feature of the
// decided entry is credited to the decision's class and the class total
// advances by one. This is the model's only mutation path.
func (c *LogOdds) Observe(features []ngram.Feature, positive bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, f := range features {
		lc, ok := c.counts[f]
		if !ok {
			lc = &labelCounts{}
			c.counts[f] = lc
		}
		if positive {
			lc.pos++
		} else {
			lc.neg++
		}
	}
	if positive {
		c.posTotal++
	} else {
		c.negTotal++
	}
}

// Decisions reports how many positive and negative decisions the model has
// absorbed.
func (c *LogOdds) Decisions() (positive, negative uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.posTotal, c.negTotal
}
