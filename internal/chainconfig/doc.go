// Package chainconfig holds the per-deployment chain tables: standard labels,
// figure titles, parameter blacklists, half-iteration chains, and the
// modules and ports that carry error rates, SNR and iteration counts.
//
// Default returns the tables for the chains shipped with the simulator.
// Load overlays a CUE file, checked against the embedded schema.cue:
//
//	titles: my_chain: "My decoder"
//	blacklist: my_chain: ["global.seed"]
//	iteration: my_chain: {module: "Dec", port: "iterations"}
//	functions: [{
//		name:      "sphere nodes"
//		kind:      "over_iterations"
//		module:    "Mimo_Detection_Sphere"
//		port:      "mean_num_nodes"
//		label:     "average number of visited nodes"
//	}]
//	adjust: my_chain: [
//		{op: "append", param: "global.mapping", label: "", replace: {MAP_BPSK: "BPSK"}},
//		{op: "erase", param: "global.seed"},
//	]
package chainconfig
