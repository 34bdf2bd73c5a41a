package report

import (
	"encoding/json"
	"io"
	"path/filepath"
	"sort"
	"time"

	"classicine/internal/classify"
)

// Score pairs one classifier's raw output with its normalized value.
type Score struct {
	Raw        float64 `json:"raw"`
	Normalized float64 `json:"normalized"`
}

// Row is one entry's scoring breakdown.
type Row struct {
	Path     string           `json:"path"`
	Scores   map[string]Score `json:"scores"`
	Combined float64          `json:"combined"`
	State    string           `json:"state"`
}

// Report holds ranked rows plus the classifier names in scoring order.
type Report struct {
	Classifiers []string
	Rows        []Row
}

// Build converts ranked entries into a report. Entries are kept in the
// order given, so callers pass them already ranked.
func Build(entries []*classify.Entry, classifiers []classify.Classifier) *Report {
	names := make([]string, len(classifiers))
	for i, c := range classifiers {
		names[i] = c.Name()
	}
	r := &Report{Classifiers: names, Rows: make([]Row, 0, len(entries))}
	for _, e := range entries {
		row := Row{
			Path:     e.Path,
			Scores:   make(map[string]Score, len(names)),
			Combined: e.Combined,
			State:    e.State.String(),
		}
		for i, name := range names {
			if i < len(e.Raw) && i < len(e.Norms) {
				row.Scores[name] = Score{Raw: e.Raw[i], Normalized: e.Norms[i]}
			}
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

// RenderTable writes the report as a rounded table.
func (r *Report) RenderTable(w io.Writer) error {
	_, err := io.WriteString(w, scoreTable(r)+"\n")
	return err
}

// RenderJSON writes one JSON object per row.
func (r *Report) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, row := range r.Rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}

// NamedScore pairs a classifier name with one entry's raw and normalized
// score under it.
type NamedScore struct {
	Name       string
	Raw        float64
	Normalized float64
}

// EntryDetail is the data behind one candidate's pre-playback card.
type EntryDetail struct {
	Path     string
	Norm     string
	Size     int64
	DirCount int
	Age      time.Duration
	Features int
	Scores   []NamedScore
	Combined float64
}

// Detail renders one ranked entry's card for the interactive loop: file
// facts plus each enabled classifier's scores from the latest ranking pass.
func Detail(e *classify.Entry, classifiers []classify.Classifier) string {
	d := &EntryDetail{
		Path:     e.Path,
		Norm:     e.Norm,
		Size:     e.Size,
		DirCount: e.DirCount,
		Age:      e.Age,
		Features: len(e.Features),
		Combined: e.Combined,
	}
	for i, c := range classifiers {
		if i < len(e.Raw) && i < len(e.Norms) {
			d.Scores = append(d.Scores, NamedScore{
				Name:       c.Name(),
				Raw:        e.Raw[i],
				Normalized: e.Norms[i],
			})
		}
	}
	return detailTable(d)
}

// DirRow is one directory's aggregate.
type DirRow struct {
	Dir          string  `json:"dir"`
	Files        int     `json:"files"`
	MeanCombined float64 `json:"mean_combined"`
}

// DirReport aggregates rows per containing directory, ordered by mean
// combined score descending with the path as tie-break.
type DirReport struct {
	Rows []DirRow
}

// Aggregate folds the report into per-directory rows.
func (r *Report) Aggregate() *DirReport {
	type acc struct {
		files int
		sum   float64
	}
	byDir := make(map[string]*acc)
	for _, row := range r.Rows {
		dir := filepath.Dir(row.Path)
		a, ok := byDir[dir]
		if !ok {
			a = &acc{}
			byDir[dir] = a
		}
		a.files++
		a.sum += row.Combined
	}

	out := &DirReport{Rows: make([]DirRow, 0, len(byDir))}
	for dir, a := range byDir {
		out.Rows = append(out.Rows, DirRow{
			Dir:          dir,
			Files:        a.files,
			MeanCombined: a.sum / float64(a.files),
		})
	}
	sort.Slice(out.Rows, func(i, j int) bool {
		if out.Rows[i].MeanCombined != out.Rows[j].MeanCombined {
			return out.Rows[i].MeanCombined > out.Rows[j].MeanCombined
		}
		return out.Rows[i].Dir < out.Rows[j].Dir
	})
	return out
}

// RenderTable writes the directory aggregate as a rounded table.
func (d *DirReport) RenderTable(w io.Writer) error {
	_, err := io.WriteString(w, dirTable(d)+"\n")
	return err
}

// RenderJSON writes one JSON object per directory.
func (d *DirReport) RenderJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, row := range d.Rows {
		if err := enc.Encode(row); err != nil {
			return err
		}
	}
	return nil
}
