package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Success(map[string]string{"chain": "wpan_sim"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]any{"chain": "wpan_sim"}, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	err := formatter.Error(CodeQuery, "unknown function", map[string]string{"function": "x"})
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeQuery, resp.Error.Code)
	assert.Equal(t, "unknown function", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	require.NoError(t, formatter.Success("Database ready"))
	assert.Equal(t, "Database ready\n", buf.String())
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			err := formatter.Error(CodeIngest, "parse failed", map[string]string{"file": "a.xml"})
			require.NoError(t, err)
			assert.Contains(t, buf.String(), "Error [E_INGEST]: parse failed")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details:")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_Render(t *testing.T) {
	text := func(w io.Writer) { fmt.Fprintln(w, "two chains") }

	buf := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "text", Writer: buf}).Render([]string{"a", "b"}, text))
	assert.Equal(t, "two chains\n", buf.String())

	buf.Reset()
	require.NoError(t, (&OutputFormatter{Format: "json", Writer: buf}).Render([]string{"a", "b"}, text))
	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, []any{"a", "b"}, resp.Data)
}

func TestOutputFormatter_Table(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := formatter.Table([]string{"ID", "CHAIN"}, [][]string{{"1", "wpan_sim"}, {"12", "emssim_lte_turbo"}})
	require.NoError(t, err)
	assert.Equal(t, "ID  CHAIN\n1   wpan_sim\n12  emssim_lte_turbo\n", buf.String())
}

func TestOutputFormatter_VerboseLogUsesErrWriter(t *testing.T) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("ingesting %d files", 3)

	assert.Empty(t, out.String())
	assert.Equal(t, "ingesting 3 files\n", errOut.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "skipped", errors.New("inner")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: skipped: inner", wrapped.Error())
}
