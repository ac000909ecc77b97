package chainconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Lookups(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "LTE", cfg.StandardOf(ChainLTETurbo))
	assert.Equal(t, DefaultStandard, cfg.StandardOf("unknown"))

	assert.Equal(t, "Reed Solomon Hard Decoder", cfg.TitleOf("rs_hard_kette"))
	assert.Equal(t, "unknown", cfg.TitleOf("unknown"))

	assert.True(t, cfg.IsBlacklisted(ChainHSPATurbo, "global.il"))
	assert.True(t, cfg.IsBlacklisted("WPAN", "global.es_n0"))
	assert.False(t, cfg.IsBlacklisted("WPAN", "global.il"))
	assert.False(t, cfg.IsBlacklisted("unknown", "global.il"))

	assert.True(t, cfg.IsHalfIteration(ChainUMTSTurbo))
	assert.False(t, cfg.IsHalfIteration("WPAN"))

	assert.Equal(t, DefaultErrorModule, cfg.ErrorModuleOf(ChainLTETurbo))
	assert.Equal(t, "error_rates_decoding", cfg.ErrorModuleOf("WPAN"))

	assert.Equal(t, SNRSpec{Module: "global", Port: "eb_n0", Label: "E_b/N_0 / dB"}, cfg.SNROf("anything"))

	mp, ok := cfg.IterationOf(ChainLTETurbo)
	require.True(t, ok)
	assert.Equal(t, ModulePort{Module: "TCDec", Port: "hi_needed"}, mp)
	_, ok = cfg.IterationOf("rs_hard_kette")
	assert.False(t, ok)

	require.NoError(t, cfg.Validate())
}

func TestDefault_ReturnsFreshCopy(t *testing.T) {
	a := Default()
	a.Blacklist[ChainLTETurbo][0] = "changed"
	a.Titles["new"] = "x"

	b := Default()
	assert.Equal(t, "global.rec_poly", b.Blacklist[ChainLTETurbo][0])
	assert.NotContains(t, b.Titles, "new")
}

func TestSNROf_PartialOverride(t *testing.T) {
	cfg := &Config{SNR: map[string]SNRSpec{"c": {Module: "Channel", Port: "es_n0"}}}

	assert.Equal(t, SNRSpec{Module: "Channel", Port: "es_n0", Label: DefaultSNRLabel}, cfg.SNROf("c"))
}

func TestMerge(t *testing.T) {
	cfg := Default()
	cfg.Merge(&Config{
		Titles:        map[string]string{ChainLTETurbo: "LTE", "mine": "Mine"},
		HalfIteration: []string{ChainLTETurbo, "mine"},
		Functions:     []FunctionSpec{{Name: "f", Kind: KindSingle, Module: "m", Port: "p", Label: "y"}},
		Adjust: map[string][]AdjustStep{
			"mimo_scenario_convolutional": {{Op: OpErase, Param: "global.seed"}},
		},
	})

	assert.Equal(t, "LTE", cfg.TitleOf(ChainLTETurbo))
	assert.Equal(t, "Mine", cfg.TitleOf("mine"))
	assert.Equal(t, "HSPA turbo decoder", cfg.TitleOf(ChainHSPATurbo))
	assert.Equal(t, []string{ChainLTETurbo, ChainHSPATurbo, ChainUMTSTurbo, "mine"}, cfg.HalfIteration)
	assert.Len(t, cfg.Functions, 1)
	assert.Equal(t, []AdjustStep{
		{Op: OpErase, Param: "global.es_n0"},
		{Op: OpErase, Param: "global.seed"},
	}, cfg.Adjust["mimo_scenario_convolutional"])
}

func TestLoad_EmptyPathReturnsDefault(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_OverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.cue")
	src := `
titles: my_chain: "My decoder"
standards: my_chain: "DVB"
blacklist: my_chain: ["global.seed"]
iteration: my_chain: {module: "Dec", port: "iterations"}
snr: my_chain: {module: "global", port: "es_n0", label: "E_s/N_0 / dB"}
functions: [{
	name:      "sphere nodes"
	kind:      "over_iterations"
	module:    "Mimo_Detection_Sphere"
	port:      "mean_num_nodes"
	label:     "average number of visited nodes"
}, {
	name:        "iterations (decoder)"
	kind:        "single"
	module_role: "iteration"
	port_role:   "iteration"
	label:       "iterations"
}]
adjust: my_chain: [
	{op: "append", param: "global.mapping", label: "", replace: {MAP_BPSK: "BPSK"}},
	{op: "erase", param: "global.seed"},
]
`
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "My decoder", cfg.TitleOf("my_chain"))
	assert.Equal(t, "DVB", cfg.StandardOf("my_chain"))
	assert.Equal(t, "LTE", cfg.StandardOf(ChainLTETurbo), "defaults survive")
	assert.True(t, cfg.IsBlacklisted("my_chain", "global.seed"))
	assert.Equal(t, SNRSpec{Module: "global", Port: "es_n0", Label: "E_s/N_0 / dB"}, cfg.SNROf("my_chain"))

	mp, ok := cfg.IterationOf("my_chain")
	require.True(t, ok)
	assert.Equal(t, ModulePort{Module: "Dec", Port: "iterations"}, mp)

	require.Len(t, cfg.Functions, 2)
	assert.Equal(t, FunctionSpec{
		Name:   "sphere nodes",
		Kind:   KindOverIterations,
		Module: "Mimo_Detection_Sphere",
		Port:   "mean_num_nodes",
		Label:  "average number of visited nodes",
	}, cfg.Functions[0])
	assert.Equal(t, RoleIteration, cfg.Functions[1].ModuleRole)

	assert.Equal(t, []AdjustStep{
		{Op: OpAppend, Param: "global.mapping", Replace: map[string]string{"MAP_BPSK": "BPSK"}},
		{Op: OpErase, Param: "global.seed"},
	}, cfg.Adjust["my_chain"])
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `titles: {`},
		{"unknown field", `colors: my_chain: "red"`},
		{"wrong type", `half_iteration: "my_chain"`},
		{"unknown kind", `functions: [{name: "f", kind: "histogram", module: "m", port: "p", label: "y"}]`},
		{"unknown op", `adjust: c: [{op: "rename", param: "global.x"}]`},
		{"missing port", `functions: [{name: "f", kind: "single", module: "m", label: "y"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("test.cue", []byte(tt.src))
			require.Error(t, err)

			var le *LoadError
			assert.ErrorAs(t, err, &le)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.cue"))
	require.Error(t, err)

	var le *LoadError
	assert.ErrorAs(t, err, &le)
}
