package decisions

import "time"

// Label is the decision class.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNegative Label = "negative"
)

// Valid reports whether the label is one of the two known classes.
func (l Label) Valid() bool {
	return l == LabelPositive || l == LabelNegative
}

// Record is one persisted decision.
type Record struct {
	ID        int64
	Path      string
	Label     Label
	SessionID string
	CreatedAt time.Time
}
