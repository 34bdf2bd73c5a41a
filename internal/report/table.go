package report

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func newWriter() table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	return tw
}

func numericColumn(number int) table.ColumnConfig {
	return table.ColumnConfig{Number: number, Align: text.AlignRight, AlignHeader: text.AlignLeft}
}

func textColumn(number int) table.ColumnConfig {
	return table.ColumnConfig{Number: number, Align: text.AlignLeft, AlignHeader: text.AlignLeft}
}

// scoreTable lays the ranking out one row per entry, a raw and a
// normalized column per classifier, numeric columns right-aligned.
func scoreTable(r *Report) string {
	tw := newWriter()

	header := table.Row{"path"}
	configs := []table.ColumnConfig{textColumn(1)}
	for _, name := range r.Classifiers {
		header = append(header, name+" raw", name+" norm")
		configs = append(configs, numericColumn(len(header)-1), numericColumn(len(header)))
	}
	header = append(header, "combined", "state")
	configs = append(configs, numericColumn(len(header)-1), textColumn(len(header)))
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range r.Rows {
		cells := table.Row{row.Path}
		for _, name := range r.Classifiers {
			score := row.Scores[name]
			cells = append(cells,
				fmt.Sprintf("%.4f", score.Raw),
				fmt.Sprintf("%.4f", score.Normalized),
			)
		}
		cells = append(cells, fmt.Sprintf("%.4f", row.Combined), row.State)
		tw.AppendRow(cells)
	}
	return tw.Render()
}

// dirTable lays the per-directory aggregate out one row per directory.
func dirTable(d *DirReport) string {
	tw := newWriter()
	tw.AppendHeader(table.Row{"directory", "files", "mean combined"})
	tw.SetColumnConfigs([]table.ColumnConfig{textColumn(1), numericColumn(2), numericColumn(3)})
	for _, row := range d.Rows {
		tw.AppendRow(table.Row{
			row.Dir,
			fmt.Sprintf("%d", row.Files),
			fmt.Sprintf("%.4f", row.MeanCombined),
		})
	}
	return tw.Render()
}

// detailTable is the pre-playback card for one ranked entry: file facts
// first, then each classifier's scores from the latest ranking pass.
func detailTable(d *EntryDetail) string {
	now := time.Now()
	tw := newWriter()
	tw.SetColumnConfigs([]table.ColumnConfig{textColumn(1), textColumn(2)})
	tw.AppendRow(table.Row{"file", d.Path})
	tw.AppendRow(table.Row{"normalized", d.Norm})
	tw.AppendRow(table.Row{"size", humanize.IBytes(uint64(d.Size))})
	tw.AppendRow(table.Row{"directory files", fmt.Sprintf("%d", d.DirCount)})
	tw.AppendRow(table.Row{"age", humanize.RelTime(now.Add(-d.Age), now, "old", "from now")})
	tw.AppendRow(table.Row{"features", fmt.Sprintf("%d", d.Features)})
	tw.AppendSeparator()
	for _, score := range d.Scores {
		tw.AppendRow(table.Row{
			score.Name,
			fmt.Sprintf("%.4f raw, %.4f normalized", score.Raw, score.Normalized),
		})
	}
	tw.AppendRow(table.Row{"combined", fmt.Sprintf("%.4f", d.Combined)})
	return tw.Render()
}
