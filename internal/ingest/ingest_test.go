package ingest_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/simdb/internal/chainconfig"
	"github.com/roach88/simdb/internal/ingest"
	"github.com/roach88/simdb/internal/store"
	"github.com/roach88/simdb/internal/testutil"
	"github.com/roach88/simdb/internal/value"
)

func newPipeline(t *testing.T, s *store.Store, opts ...ingest.Option) *ingest.Pipeline {
	t.Helper()
	base := []ingest.Option{
		ingest.WithUser("tester"),
		ingest.WithClock(testutil.NewFixedClock()),
		ingest.WithBatchIDs(testutil.NewFixedBatchGenerator("batch-1")),
	}
	return ingest.New(s, chainconfig.Default(), append(base, opts...)...)
}

func turboDoc() *testutil.DocumentBuilder {
	return testutil.NewDocument("/opt/emssim/bin/emssim_lte_turbo.exe").
		Date("2009-04-01 10:00:00").
		Comment("window sweep").
		Initial("TCDec", testutil.Forwarded("num_iter"), testutil.Local("decoding_algo")).
		Config(
			testutil.Globals("eb_n0", "0.5", "info_bits", "40", "noise_variance", "1.0", "crc_poly", "0x1864CFB"),
			testutil.Module("TCDec", "num_iter", "8", "decoding_algo", "max_log_map_esf"),
		).
		Config(testutil.Globals("eb_n0", "1.0", "info_bits", "40")).
		Result(
			testutil.Port("Statistics_Error_Rates", "error_rate_blocks", testutil.At(0, 0.5), testutil.At(1, 0.25)),
			testutil.Port("Statistics_Error_Rates", "num_blocks", testutil.Plain(100)),
		).
		Result(testutil.Port("Statistics_Error_Rates", "error_rate_blocks", testutil.At(0, 0.125)))
}

func TestIngestBytes_RoundTrip(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	res, err := newPipeline(t, s).IngestBytes(ctx, "lte.xml", turboDoc().Bytes())
	require.NoError(t, err)

	assert.Equal(t, "emssim_lte_turbo", res.Chain)
	assert.Equal(t, 6, res.Configurations)
	assert.Equal(t, 4, res.Results)
	assert.Equal(t, 2, res.Suppressed, "noise_variance is blacklisted, TCDec.num_iter is forwarded")
	assert.Empty(t, res.Warnings)

	block0, err := s.ReadParameters(ctx, store.ConfigRef{SimulationID: res.SimulationID}, "", "")
	require.NoError(t, err)
	assert.Equal(t, []store.Param{
		{Module: "global", Name: "eb_n0", Value: value.Number(0.5)},
		{Module: "global", Name: "info_bits", Value: value.Number(40)},
		{Module: "global", Name: "crc_poly", Value: value.Symbol("0X1864CFB")},
		{Module: "TCDec", Name: "decoding_algo", Value: value.Symbol("MAX_LOG_MAP_ESF")},
	}, block0)

	block1, err := s.ReadParameters(ctx, store.ConfigRef{SimulationID: res.SimulationID, ConfigurationNumber: 1}, "", "")
	require.NoError(t, err)
	assert.Equal(t, []store.Param{
		{Module: "global", Name: "eb_n0", Value: value.Number(1)},
		{Module: "global", Name: "info_bits", Value: value.Number(40)},
	}, block1)

	points, err := s.ReadResults(ctx, store.ConfigRef{SimulationID: res.SimulationID}, "Statistics_Error_Rates", "error_rate_blocks", nil)
	require.NoError(t, err)
	assert.Equal(t, []store.ResultPoint{{Address: 0, Value: 0.5}, {Address: 1, Value: 0.25}}, points)

	points, err = s.ReadResults(ctx, store.ConfigRef{SimulationID: res.SimulationID}, "Statistics_Error_Rates", "num_blocks", nil)
	require.NoError(t, err)
	assert.Equal(t, []store.ResultPoint{{Address: store.NoAddress, Value: 100}}, points)
}

func TestIngestBytes_SimulationRow(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	data := turboDoc().Bytes()
	res, err := newPipeline(t, s).IngestBytes(ctx, "lte.xml", data)
	require.NoError(t, err)

	sim, err := s.ReadSimulation(ctx, res.SimulationID)
	require.NoError(t, err)
	assert.Equal(t, store.Simulation{
		ID:             res.SimulationID,
		FileName:       "lte.xml",
		FileContent:    string(data),
		InsertDate:     testutil.DefaultTime.Format(ingest.InsertDateLayout),
		SimulationDate: "2009-04-01 10:00:00",
		User:           "tester",
		Chain:          "emssim_lte_turbo",
		Standard:       "LTE",
		FreeComment:    "window sweep",
	}, sim)
}

func TestIngestBytes_UnknownChainStandard(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	data := testutil.NewDocument("bin/my_chain").Date("d").Config(testutil.Globals("eb_n0", "1")).Bytes()
	res, err := newPipeline(t, s).IngestBytes(ctx, "x.xml", data)
	require.NoError(t, err)

	sim, err := s.ReadSimulation(ctx, res.SimulationID)
	require.NoError(t, err)
	assert.Equal(t, "my_chain", sim.Chain)
	assert.Equal(t, chainconfig.DefaultStandard, sim.Standard)
}

func TestIngestBytes_DuplicateParameterKeepsFirst(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx := context.Background()

	data := testutil.NewDocument("chain").Date("d").
		Config(testutil.Globals("K", "10", "K", "20")).
		Bytes()
	res, err := newPipeline(t, s).IngestBytes(ctx, "x.xml", data)
	require.NoError(t, err)

	params, err := s.ReadParameters(ctx, store.ConfigRef{SimulationID: res.SimulationID}, "", "")
	require.NoError(t, err)
	assert.Equal(t, []store.Param{{Module: "global", Name: "K", Value: value.Number(10)}}, params)
	assert.Equal(t, 1, res.Suppressed)
}

func TestIngestBytes_MissingMetadataIsNotFatal(t *testing.T) {
	s := testutil.OpenStore(t)
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	data := testutil.NewDocument("").WithoutExecutable().Config(testutil.Globals("K", "1")).Bytes()
	res, err := newPipeline(t, s, ingest.WithLogger(logger)).IngestBytes(context.Background(), "x.xml", data)
	require.NoError(t, err)

	assert.NotZero(t, res.SimulationID)
	assert.Equal(t, "", res.Chain)
	assert.Equal(t, []string{"simulation_date not found", "executable_name not found"}, res.Warnings)
	assert.Contains(t, logs.String(), "simulation_date not found")
}

func TestIngestBytes_BadDocument(t *testing.T) {
	s := testutil.OpenStore(t)

	_, err := newPipeline(t, s).IngestBytes(context.Background(), "bad.xml", []byte("<simulation><unclosed>"))
	require.Error(t, err)

	counts, err := s.Counts(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), counts["simulation"])
}

func TestIngestBytes_BadValueLeavesNoRows(t *testing.T) {
	s := testutil.OpenStore(t)

	// Well-formed XML, but the reported value is not a number.
	data := []byte(`<simulation>
  <executable_name>chain</executable_name>
  <initial_configuration/>
  <result><module name="m"><status_out name="p"><value>abc</value></status_out></module></result>
</simulation>`)
	_, err := newPipeline(t, s).IngestBytes(context.Background(), "bad.xml", data)
	require.Error(t, err)

	counts, err := s.Counts(context.Background(), 0)
	require.NoError(t, err)
	for _, table := range store.Tables {
		assert.Equal(t, int64(0), counts[table], table)
	}
}

func TestIngestFiles_SkipsAndContinues(t *testing.T) {
	s := testutil.OpenStore(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "good.xml")
	require.NoError(t, os.WriteFile(good, turboDoc().Bytes(), 0o644))
	bad := filepath.Join(dir, "bad.xml")
	require.NoError(t, os.WriteFile(bad, []byte("not xml"), 0o644))
	missing := filepath.Join(dir, "missing.xml")

	rep, err := newPipeline(t, s).IngestFiles(context.Background(), []string{bad, good, missing})
	require.NoError(t, err)

	assert.Equal(t, "batch-1", rep.BatchID)
	assert.Equal(t, 1, rep.Ingested)
	assert.Equal(t, 2, rep.Skipped)
	require.Len(t, rep.Files, 3)
	assert.NotEmpty(t, rep.Files[0].Error)
	assert.Empty(t, rep.Files[1].Error)
	assert.NotEmpty(t, rep.Files[2].Error)

	chains, err := s.Chains(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"emssim_lte_turbo"}, chains)
}

func TestIngestFiles_CancelledContext(t *testing.T) {
	s := testutil.OpenStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := newPipeline(t, s).IngestFiles(ctx, []string{"a.xml"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rep.Files)
}

func TestChainName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/opt/emssim/bin/emssim_lte_turbo.exe", "emssim_lte_turbo"},
		{"emssim_hspa_turbo", "emssim_hspa_turbo"},
		{`C:\sim\WPAN.exe`, "WPAN"},
		{"rs_hard_kette.v2.bin", "rs_hard_kette"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ingest.ChainName(tt.in))
		})
	}
}

func TestAutoBlacklist(t *testing.T) {
	doc := turboDoc()
	data := doc.Initial("Source", testutil.Forwarded("seed")).Bytes()

	s := testutil.OpenStore(t)
	_, err := newPipeline(t, s).IngestBytes(context.Background(), "x.xml", data)
	require.NoError(t, err)

	params, err := s.Parameters(context.Background(), "emssim_lte_turbo")
	require.NoError(t, err)
	assert.NotContains(t, params, "TCDec.num_iter")
	assert.Contains(t, params, "TCDec.decoding_algo")
	assert.NotContains(t, params, "global.noise_variance")
}
