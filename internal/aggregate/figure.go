package aggregate

import (
	"github.com/roach88/simdb/internal/present"
)

// Figure is the plot-ready outcome of a query: everything a plot emitter
// needs and nothing else.
type Figure struct {
	Chain    string  `json:"chain"`
	Function string  `json:"function"`
	Title    string  `json:"title"`
	XLabel   string  `json:"x_label"`
	YLabel   string  `json:"y_label"`
	LogScale bool    `json:"log_scale"`
	Series   []Curve `json:"series"`
}

// Curve is one plotted line, in group-major order.
type Curve struct {
	Group   int     `json:"group"`
	Address int     `json:"address"`
	Legend  string  `json:"legend"`
	Points  []Point `json:"points"`
}

// Legends returns the legend of every curve, index-aligned to Series.
func (f *Figure) Legends() []string {
	out := make([]string, len(f.Series))
	for i, c := range f.Series {
		out[i] = c.Legend
	}
	return out
}

// figure labels res. The labeler is built only after grouping is final.
func (e *Engine) figure(chain string, fn resolved, xLabel string, res *Result) *Figure {
	l := present.NewLabeler(res.Params, res.Columns, len(res.Groups))
	e.adjusters.Apply(chain, l)
	l.Finish()

	half := e.cfg.IsHalfIteration(chain)
	fig := &Figure{
		Chain:    chain,
		Function: fn.Name,
		Title:    l.Title(e.cfg.TitleOf(chain)),
		XLabel:   xLabel,
		YLabel:   fn.Label,
		LogScale: fn.LogScale,
		Series:   []Curve{},
	}
	for _, g := range res.Groups {
		for _, s := range g.Series {
			fig.Series = append(fig.Series, Curve{
				Group:   g.ID,
				Address: s.Address,
				Legend:  l.Legend(g.ID, present.IterationSeed(s.Address, half)),
				Points:  append([]Point(nil), s.Points...),
			})
		}
	}
	return fig
}
