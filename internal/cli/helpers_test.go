package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/simdb/internal/chainconfig"
	"github.com/roach88/simdb/internal/testutil"
)

// execute runs the root command with args and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out, _, err := executeStreams(t, args...)
	return out, err
}

// executeStreams runs the root command with args and returns stdout and
// stderr.
func executeStreams(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv(EnvDatabase, "")
	t.Setenv(EnvUser, "")
	t.Setenv(EnvConfig, "")

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

// wpanDoc renders a single-block wpan_sim document.
func wpanDoc(date, ebN0, k string, fer float64) []byte {
	return testutil.NewDocument("/opt/emssim/bin/wpan_sim.exe").
		Date(date).
		Config(testutil.Globals("eb_n0", ebN0, "K", k)).
		Result(testutil.Port(chainconfig.DefaultErrorModule, "error_rate_blocks", testutil.Plain(fer))).
		Bytes()
}

// writeFile writes data under dir and returns its path.
func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// seededDB ingests two wpan_sim runs at 0 and 5 dB into a new database.
func seededDB(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	db := filepath.Join(dir, "results.db")
	a := writeFile(t, dir, "snr5.xml", wpanDoc("2009-01-01 10:00:00", "5", "10", 0.01))
	b := writeFile(t, dir, "snr0.xml", wpanDoc("2009-01-02 10:00:00", "0", "10", 0.5))

	_, err := execute(t, "ingest", "--db", db, "--user", "alice", a, b)
	require.NoError(t, err)
	return db
}
