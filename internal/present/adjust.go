package present

import (
	"github.com/roach88/simdb/internal/chainconfig"
	"github.com/roach88/simdb/internal/value"
)

// Adjuster is one chain-specific title/legend step. It reads parameters
// from the labeler, combines them and appends or erases them.
type Adjuster func(l *Labeler)

// Adjusters holds the ordered steps per chain.
type Adjusters struct {
	byChain map[string][]Adjuster
}

// NewAdjusters returns the built-in adjusters followed by the declarative
// steps of cfg, in registration order.
func NewAdjusters(cfg *chainconfig.Config) *Adjusters {
	a := &Adjusters{byChain: make(map[string][]Adjuster)}

	for _, chain := range []string{
		chainconfig.ChainLTETurbo,
		chainconfig.ChainHSPATurbo,
		chainconfig.ChainUMTSTurbo,
	} {
		a.Register(chain, TurboDecoder)
	}

	if cfg != nil {
		for chain, steps := range cfg.Adjust {
			for _, step := range steps {
				a.Register(chain, FromStep(step))
			}
		}
	}
	return a
}

// Register appends an adjuster for chain.
func (a *Adjusters) Register(chain string, fn Adjuster) {
	a.byChain[chain] = append(a.byChain[chain], fn)
}

// Apply runs the adjusters of chain in registration order.
func (a *Adjusters) Apply(chain string, l *Labeler) {
	for _, fn := range a.byChain[chain] {
		fn(l)
	}
}

// Len returns the number of adjusters registered for chain.
func (a *Adjusters) Len(chain string) int {
	return len(a.byChain[chain])
}

// FromStep turns a declarative configuration step into an adjuster.
func FromStep(step chainconfig.AdjustStep) Adjuster {
	switch step.Op {
	case chainconfig.OpErase:
		return func(l *Labeler) { l.Erase(step.Param) }
	default:
		return func(l *Labeler) {
			col := l.Par(step.Param)
			if len(step.Replace) > 0 {
				col = Replace(col, step.Replace)
			}
			if step.Format != "" {
				col = FormatFloat(col, step.Format)
			}
			l.Append(step.Label, col)
		}
	}
}

var decodingAlgorithms = map[string]string{
	"MAX_LOG_MAP_ESF":                 "Max-Log-MAP",
	"LOG_MAP":                         "Log-MAP",
	"MAX_LOG_MAP_ESF_BERROU_MM":       "Max-Log-MAP, x+z saturation with one additional bit",
	"MAX_LOG_MAP_ESF_BERROU_TI":       "Max-Log-MAP-ESF, x+z saturation",
	"MAX_LOG_MAP_ESF_BERROU_ASIP_OLD": "Max-Log-MAP-ESF, old ASIP, x+z saturation",
}

var lastBetaCalc = map[string]string{
	"BC_ACQ":  "last beta from ACQ",
	"BC_REC":  "Last beta from recursion",
	"BC_AUTO": string(value.SymbolFalse),
}

var mappings = map[string]string{
	"MAP_BPSK":    "BPSK",
	"MAP_QPSK":    "QPSK",
	"MAP_16_QAM":  "16-QAM",
	"MAP_64_QAM":  "64-QAM",
	"MAP_256_QAM": "256-QAM",
}

// TurboDecoder labels the LTE, HSPA and UMTS turbo-decoder chains: block
// length, code rate, quantization, decoding algorithm and windowing.
func TurboDecoder(l *Labeler) {
	other := l.ParNumber("global.other_bits")
	info := l.ParNumber("global.info_bits")

	l.Append("N", Add(other, info))
	l.Append("K", l.Par("global.info_bits"))
	l.Append("R", FormatFloat(Div(info, Add(other, info)), "%1.2f"))

	floating := l.Par("global.floating_point")
	l.Append("Floating-point", floating)
	fixed := Not(Truth(floating))

	bwIn := l.Par("global.bw_in")
	l.Append(`Q_{\lambda}`, MaskColumn(bwIn, fixed))
	l.Append("Prec", MaskColumn(l.Par("global.prec_in"), fixed))
	l.Append(`Q_{\Lambda^e}`, MaskColumn(Add(l.ParNumber("global.bw_in"), l.ParNumber("global.bw_llrextr_plus")), And(fixed, Truth(bwIn))))

	gammaSat := l.Par("global.bw_gamma_sat")
	l.Append(`Q_{\gamma}`, MaskColumn(MaskColumn(gammaSat, fixed), Not(EqualOrDefault(gammaSat, "0"))))

	algo := l.Par("global.decoding_algo")
	l.Append("", Replace(algo, decodingAlgorithms))
	l.Append("ESF", MaskColumn(l.Par("global.esf"), Not(EqualTo(algo, "LOG_MAP"))))

	winLen := l.Par("global.win_len")
	windowing := Not(AnyOf(
		EqualColumns(l.Par("global.info_bits"), winLen),
		EqualOrDefault(winLen, "0"),
	))
	arch := l.Par("global.map_architecture")
	psmap := EqualTo(arch, "PSMAP")
	xmap := EqualTo(arch, "XMAP")

	l.Append("", MaskColumn(arch, windowing))
	l.Append("L_W", MaskColumn(winLen, windowing))
	l.Append("L_{ACQ}", MaskColumn(l.Par("global.win_acq_len"), windowing))
	l.Append("L_{sub-block ACQ}", MaskColumn(l.Par("global.border_acq_len"), windowing))
	l.Append("NII", MaskColumn(l.Par("global.use_nii"), windowing))

	parallel := l.Par("global.parallel")
	l.Append("P_S", MaskColumn(parallel, And(Not(EqualOrDefault(parallel, "1")), psmap)))
	l.Append("", MaskColumn(Replace(l.Par("global.last_beta_calc"), lastBetaCalc), psmap))
	l.Append("alternating ACQ", MaskColumn(l.Par("global.alternating_win_acq"), windowing))

	patterns := l.Par("global.rec_patterns")
	l.Append("recursion patterns", MaskColumn(patterns, And(Not(EqualOrDefault(patterns, "2")), xmap)))
	l.Append(`\Delta_k`, MaskColumn(l.Par("global.k_axis_shift"), xmap))

	hardIC := l.Par("global.hard_ic_num_hi")
	l.Append("hard output iteration control #_{HI}", MaskColumn(hardIC, Not(EqualOrDefault(hardIC, "0"))))

	l.Append("", Replace(l.Par("global.mapping"), mappings))

	for _, name := range []string{
		"Source_Bits.start_seed",
		"Source_Bits.mode",
		"Channel_AWGN.start_seed",
		"Demapper.channel_reliability",
		"global.crc_poly",
		"global.sm_init_val",
	} {
		l.Erase(name)
	}
}
