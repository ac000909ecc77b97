package aggregate

import (
	"context"
	"fmt"

	"github.com/roach88/simdb/internal/queryir"
	"github.com/roach88/simdb/internal/querysql"
	"github.com/roach88/simdb/internal/store"
	"github.com/roach88/simdb/internal/value"
)

// Reader is the part of the store aggregation reads from.
// *store.Store implements it.
type Reader interface {
	SearchConfigurations(ctx context.Context, query string, args []any) ([]store.ConfigRef, error)
	ReadParameters(ctx context.Context, ref store.ConfigRef, excludeModule, excludeName string) ([]store.Param, error)
	ReadSNR(ctx context.Context, ref store.ConfigRef, module, name string) (float64, error)
	ReadResults(ctx context.Context, ref store.ConfigRef, module, port string, addrs []int) ([]store.ResultPoint, error)
}

// Fetch says which values to read for every matching configuration block.
type Fetch struct {
	Kind Kind

	// Module and Port report the y values.
	Module string
	Port   string

	// SNRModule and SNRPort name the x-axis parameter. It is left out of
	// the parameter columns.
	SNRModule string
	SNRPort   string

	// Addresses restricts OverIterations fetches to these inner dimension
	// addresses. Empty means all. Ignored for Single.
	Addresses []int
}

// Point is one (x, y) observation.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Series is an x-ascending list of points sharing one inner dimension
// address (store.NoAddress when the values have none).
type Series struct {
	Address int     `json:"address"`
	Points  []Point `json:"points"`
}

// Group is one parameter-equivalence group: configuration blocks whose
// parameters, apart from the SNR, are identical.
type Group struct {
	ID      int               `json:"id"`
	Members []store.ConfigRef `json:"members"`
	Series  []Series          `json:"series"`
}

// Result is the outcome of one aggregation. Every column in Columns has
// exactly one value per group, indexed by group id.
type Result struct {
	// Params lists the parameter keys ("module.name") in discovery order.
	Params []string `json:"params"`

	// Columns holds the value of every parameter per group. Groups that
	// never declared a parameter hold value.Default.
	Columns map[string][]value.Value `json:"-"`

	Groups []Group `json:"groups"`

	// Configurations counts the configuration blocks inserted.
	Configurations int `json:"configurations"`

	// Warnings collects non-fatal diagnostics, in order.
	Warnings []string `json:"warnings,omitempty"`
}

// NewResult returns an empty result.
func NewResult() *Result {
	return &Result{
		Params:  []string{},
		Columns: make(map[string][]value.Value),
		Groups:  []Group{},
	}
}

// Aggregate runs search against r and groups every matching configuration
// block. Blocks are processed in the order the search returns them.
func Aggregate(ctx context.Context, r Reader, search queryir.Search, fetch Fetch) (*Result, error) {
	query, args, err := querysql.NewSQLCompiler().Compile(search)
	if err != nil {
		return nil, fmt.Errorf("compile search: %w", err)
	}

	refs, err := r.SearchConfigurations(ctx, query, args)
	if err != nil {
		return nil, err
	}

	res := NewResult()
	res.Warnings = append(res.Warnings, queryir.Validate(search)...)

	for _, ref := range refs {
		params, err := r.ReadParameters(ctx, ref, fetch.SNRModule, fetch.SNRPort)
		if err != nil {
			return nil, err
		}
		snr, err := r.ReadSNR(ctx, ref, fetch.SNRModule, fetch.SNRPort)
		if err != nil {
			return nil, err
		}
		points, err := readPoints(ctx, r, ref, fetch)
		if err != nil {
			return nil, err
		}
		res.Insert(ref, params, snr, points)
	}
	return res, nil
}

func readPoints(ctx context.Context, r Reader, ref store.ConfigRef, fetch Fetch) ([]store.ResultPoint, error) {
	if fetch.Kind == Single {
		points, err := r.ReadResults(ctx, ref, fetch.Module, fetch.Port, nil)
		if err != nil {
			return nil, err
		}
		for i := range points {
			points[i].Address = store.NoAddress
		}
		return points, nil
	}
	return r.ReadResults(ctx, ref, fetch.Module, fetch.Port, fetch.Addresses)
}

// Insert adds one configuration block to the result.
//
// The block joins the lowest-numbered group whose recorded value equals
// the block's value for every one of its parameters. It starts a new group
// when no group matches or when it declares a parameter no earlier block
// declared. A new group seeds one series per point; a matching group
// receives its r-th point in its r-th series, keeping x ascending with
// ties after existing points.
func (res *Result) Insert(ref store.ConfigRef, params []store.Param, snr float64, points []store.ResultPoint) {
	res.Configurations++

	fresh := false
	for _, p := range params {
		key := p.Key()
		if _, ok := res.Columns[key]; ok {
			continue
		}
		fresh = true
		res.Params = append(res.Params, key)
		res.Columns[key] = defaults(len(res.Groups))
	}

	gid := -1
	if !fresh {
		gid = res.match(params)
	}

	if gid < 0 {
		gid = len(res.Groups)
		g := Group{ID: gid, Members: []store.ConfigRef{}, Series: []Series{}}
		for _, p := range params {
			key := p.Key()
			if len(res.Columns[key]) > gid {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"configuration %d/%d declares %s twice; keeping the first value",
					ref.SimulationID, ref.ConfigurationNumber, key))
				continue
			}
			res.Columns[key] = append(res.Columns[key], p.Value)
		}
		for _, pt := range points {
			g.Series = append(g.Series, Series{
				Address: pt.Address,
				Points:  []Point{{X: snr, Y: pt.Value}},
			})
		}
		res.Groups = append(res.Groups, g)
	} else {
		g := &res.Groups[gid]
		for i, pt := range points {
			if i >= len(g.Series) {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"configuration %d/%d reports more values than group %d; starting a new series",
					ref.SimulationID, ref.ConfigurationNumber, gid))
				g.Series = append(g.Series, Series{Address: pt.Address, Points: []Point{{X: snr, Y: pt.Value}}})
				continue
			}
			if g.Series[i].Address != pt.Address {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"configuration %d/%d: value %d has address %d, series has %d",
					ref.SimulationID, ref.ConfigurationNumber, i, pt.Address, g.Series[i].Address))
			}
			g.Series[i].insert(Point{X: snr, Y: pt.Value})
		}
	}
	res.Groups[gid].Members = append(res.Groups[gid].Members, ref)

	for _, key := range res.Params {
		for len(res.Columns[key]) < len(res.Groups) {
			res.Columns[key] = append(res.Columns[key], value.Default{})
		}
	}
}

// match returns the lowest group id whose values equal every parameter in
// params, or -1.
func (res *Result) match(params []store.Param) int {
	candidates := make([]bool, len(res.Groups))
	for i := range candidates {
		candidates[i] = true
	}
	for _, p := range params {
		col := res.Columns[p.Key()]
		for i := range candidates {
			if candidates[i] && (i >= len(col) || !value.Equal(col[i], p.Value)) {
				candidates[i] = false
			}
		}
	}
	for i, ok := range candidates {
		if ok {
			return i
		}
	}
	return -1
}

// insert places p before the first point with a strictly greater x.
func (s *Series) insert(p Point) {
	at := len(s.Points)
	for i, q := range s.Points {
		if q.X > p.X {
			at = i
			break
		}
	}
	s.Points = append(s.Points, Point{})
	copy(s.Points[at+1:], s.Points[at:])
	s.Points[at] = p
}

func defaults(n int) []value.Value {
	col := make([]value.Value, n)
	for i := range col {
		col[i] = value.Default{}
	}
	return col
}
