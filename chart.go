package regionvar

import (
	"fmt"
	"strings"

	"github.com/carbocation/pfx"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// Draw renders the per-region summary as a stacked bar chart: one bar group
// per region, one stacked series per breadth category, with the dataset-wide
// variant-event and individual counts noted in the legend. The image format
// follows the file extension (svg, png, pdf, ...).
func Draw(store *Store, imagePath string) error {
	rows, err := store.SummarizeByRegion()
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return pfx.Err(fmt.Errorf("store %s holds no individuals to draw", store.Path))
	}

	individuals, events, err := store.Counts()
	if err != nil {
		return err
	}

	p := plot.New()
	p.Title.Text = "Variant counts in average individual from a given region\nby worldwide distribution of genetic variant"
	p.Y.Label.Text = "Variant count"
	p.Y.Tick.Marker = abbreviatedTicks{}

	width := vg.Points(20)
	var below *plotter.BarChart
	for i, c := range Categories {
		values := make(plotter.Values, len(rows))
		for j, row := range rows {
			values[j] = row.Mean(c)
		}

		bars, err := plotter.NewBarChart(values, width)
		if err != nil {
			return pfx.Err(err)
		}
		bars.Color = plotutil.Color(i)
		bars.LineStyle.Width = 0
		if below != nil {
			bars.StackOn(below)
		}

		p.Add(bars)
		p.Legend.Add(c.Label(), bars)
		below = bars
	}

	labels := make([]string, len(rows))
	for i, row := range rows {
		labels[i] = strings.ReplaceAll(row.Region, " ", "\n")
	}
	p.NominalX(labels...)

	p.Legend.Add(fmt.Sprintf("Based on %s genetic variants", comma(events)))
	p.Legend.Add(fmt.Sprintf("from %s fully sequenced individuals", comma(individuals)))
	p.Legend.Top = true

	log.Infof("drawing %s", imagePath)
	return pfx.Err(p.Save(7*vg.Inch, 5*vg.Inch, imagePath))
}

// abbreviatedTicks relabels the default ticks in short scientific notation
// (1e6 rather than 1.0e+06); large raw counts would otherwise crowd the axis.
type abbreviatedTicks struct{}

func (abbreviatedTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ticks {
		if t.Label == "" {
			continue
		}
		label := fmt.Sprintf("%.0e", t.Value)
		label = strings.Replace(label, "e+0", "e", 1)
		label = strings.Replace(label, "e+", "e", 1)
		ticks[i].Label = label
	}
	return ticks
}

// comma formats n with thousands separators.
func comma(n int64) string {
	s := fmt.Sprintf("%d", n)
	if n < 0 {
		return "-" + comma(-n)
	}
	if len(s) <= 3 {
		return s
	}
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	return s + "," + strings.Join(groups, ",")
}
