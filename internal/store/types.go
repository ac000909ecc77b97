package store

import "github.com/roach88/simdb/internal/value"

// Simulation is one ingested result document.
type Simulation struct {
	ID             int64  `json:"id"`
	FileName       string `json:"file_name"`
	FileContent    string `json:"file_content,omitempty"`
	InsertDate     string `json:"insert_date"`
	SimulationDate string `json:"simulation_date"`
	User           string `json:"user"`
	Chain          string `json:"chain"`
	Standard       string `json:"standard"`
	FreeComment    string `json:"free_comment"`
}

// ConfigEntry is one (module, name) -> value binding in one configuration
// block of one simulation. Exactly one of the float or string columns is
// written, chosen by the value's variant.
type ConfigEntry struct {
	SimulationID        int64
	ConfigurationNumber int
	Module              string
	Name                string
	Value               value.Value // Number or Symbol
}

// ResultRow is one reported value.
type ResultRow struct {
	SimulationID        int64
	ConfigurationNumber int
	Module              string
	Port                string
	DimName             string // empty when the value has no inner dimension
	DimAddr             int
	Value               float64
}

// HasDim reports whether the row carries an inner dimension.
func (r ResultRow) HasDim() bool {
	return r.DimName != ""
}

// ConfigRef identifies one configuration block of one simulation.
type ConfigRef struct {
	SimulationID        int64 `json:"simulation_id"`
	ConfigurationNumber int   `json:"configuration_number"`
}

// Param is a configuration binding read back for aggregation.
type Param struct {
	Module string
	Name   string
	Value  value.Value
}

// Key returns the "module.name" form used throughout queries and labels.
func (p Param) Key() string {
	return p.Module + "." + p.Name
}

// ResultPoint is a reported value with its inner dimension address.
// Address is NoAddress when the value has no inner dimension.
type ResultPoint struct {
	Address int
	Value   float64
}

// NoAddress is the inner dimension address of values reported without one.
const NoAddress = -1
