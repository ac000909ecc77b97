// Package harness runs end-to-end scenarios against a fresh store.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: lte_window_sweep
//	description: "Two runs at different SNR form one curve"
//	config: chains.cue            # optional CUE chain configuration
//	documents:
//	  - path: documents/run_a.xml
//	  - name: inline.xml
//	    content: |
//	      <simulation>...</simulation>
//	delete: [1]                   # optional, document indices
//	query:
//	  chain: emssim_lte_turbo
//	  function: FER (single)
//	  params: ["TCDec.decoding_algo=LOG_MAP"]
//	assertions:
//	  - type: legends
//	    values: ["Max-Log-MAP", "Log-MAP"]
//	  - type: points
//	    series: 0
//	    points: [[0, 0.5], [5, 0.01]]
//	  - type: row_count
//	    table: simulation
//	    count: 1
//
// # Assertion Types
//
//   - title, y_label: compare a figure string with value
//   - legends: compare the curve legends with values, in order
//   - series_count: number of curves
//   - points: exact points of one curve
//   - row_count: rows in a store table
//   - chains, params: the store's chain and parameter listings
//
// # Deterministic Testing
//
// Every scenario runs in an in-memory database with a fixed insertion
// clock (testutil.NewFixedClock) and a fixed batch id, so the snapshot
// written by Snapshot is identical across runs and can be compared against
// golden files with RunWithGolden.
package harness
