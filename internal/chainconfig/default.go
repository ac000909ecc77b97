package chainconfig

// Turbo-decoder chains of the in-house simulator.
const (
	ChainLTETurbo  = "emssim_lte_turbo"
	ChainHSPATurbo = "emssim_hspa_turbo"
	ChainUMTSTurbo = "emssim_umts_turbo"
)

var turboBlacklist = []string{
	"global.rec_poly",
	"global.parity_poly",
	"global.termination1",
	"global.termination2",
	"global.num_hi",
	"global.il",
	"global.bw_llrapp_out",
	"global.noise_variance",
	"Statistics_Error_Rates.print_status_permanent",
	"Statistics_Error_Rates.out_port_inner_dim_name",
	"Statistics_Error_Rates.out_port_inner_dim_addr_offset",
	"Statistics_Error_Rates.max_num_diff_blocks",
	"Statistics_Error_Rates.max_num_total_blocks",
	"Depunct_LTE.num_bits_after_depuncturing",
	"Punct_LTE.num_bits_after_depuncturing",
}

// Default returns the base configuration for the chains shipped with the
// simulator. Each call returns a fresh copy.
func Default() *Config {
	turbo := ModulePort{Module: "TCDec", Port: "hi_needed"}

	return &Config{
		Standards: map[string]string{
			ChainLTETurbo:  "LTE",
			ChainHSPATurbo: "HSPA",
			ChainUMTSTurbo: "UMTS",
		},
		Titles: map[string]string{
			ChainLTETurbo:   "LTE turbo decoder",
			ChainHSPATurbo:  "HSPA turbo decoder",
			ChainUMTSTurbo:  "UMTS turbo decoder",
			"rs_hard_kette": "Reed Solomon Hard Decoder",
		},
		Blacklist: map[string][]string{
			ChainLTETurbo:  append([]string(nil), turboBlacklist...),
			ChainHSPATurbo: append([]string(nil), turboBlacklist...),
			ChainUMTSTurbo: append([]string(nil), turboBlacklist...),
			"WPAN":         {"global.noise_variance", "global.es_n0"},
		},
		HalfIteration: []string{ChainLTETurbo, ChainHSPATurbo, ChainUMTSTurbo},
		ErrorModule: map[string]string{
			"WPAN": "error_rates_decoding",
		},
		SNR: map[string]SNRSpec{
			"WPAN": {Module: DefaultSNRModule, Port: DefaultSNRPort, Label: DefaultSNRLabel},
		},
		Iteration: map[string]ModulePort{
			ChainLTETurbo:  turbo,
			ChainHSPATurbo: turbo,
			ChainUMTSTurbo: turbo,
			"WPAN":         {Module: "Decoder_LDPC_IEEE_802_15_3c", Port: "mean_iterations"},
		},
		Adjust: map[string][]AdjustStep{
			"mimo_scenario_convolutional": {
				{Op: OpErase, Param: "global.es_n0"},
			},
		},
	}
}
