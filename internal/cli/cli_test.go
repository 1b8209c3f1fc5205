package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func emptyConfig(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "none.yaml")
}

func TestDemo(t *testing.T) {
	out, err := execute(t, "", "demo", "--config", emptyConfig(t))
	require.NoError(t, err)

	for _, want := range []string{
		"5% discount for customers with 1000 or more fidelity points",
		"<Order total: 42.00 due: 42.00>",
		"<Order total: 42.00 due: 39.90>",
		"<Order total: 30.00 due: 28.50>",
		"<Order total: 10.00 due: 9.30>",
		"<Order total: 10.00 due: 9.30> via large_order",
		"<Order total: 42.00 due: 39.90> via fidelity",
	} {
		assert.Contains(t, out, want)
	}
}

func TestDemo_DisabledPromotion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("promotions:\n  bulk_item:\n    disabled: true\n"), 0o600))

	out, err := execute(t, "", "demo", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped: bulk_item disabled")
	assert.NotContains(t, out, "<Order total: 30.00 due: 28.50>")
}

func TestBatch_Stdio(t *testing.T) {
	in := `{"customer":{"name":"Ann Smith","fidelity":1100},"items":[{"product":"banana","quantity":4,"unit_price":0.5},{"product":"apple","quantity":10,"unit_price":1.5},{"product":"watermelon","quantity":5,"unit_price":5}],"promotion":"best"}` + "\n"

	out, err := execute(t, in, "batch", "--config", emptyConfig(t))
	require.NoError(t, err)
	assert.Contains(t, out, `"due":"39.90"`)
	assert.Contains(t, out, `"applied":"fidelity"`)
}

func TestBatch_GzipFiles(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.ndjson")
	require.NoError(t, os.WriteFile(in, []byte(`{"customer":{"name":"x"},"items":[],"promotion":"fidelity"}`+"\n"), 0o600))
	out := filepath.Join(dir, "out.ndjson.gz")

	_, err := execute(t, "", "batch", "--config", emptyConfig(t), "--in", in, "--out", out, "--workers", "2")
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(data), 2)
	assert.Equal(t, []byte{0x1f, 0x8b}, data[:2])
}

func TestBatch_MissingInput(t *testing.T) {
	_, err := execute(t, "", "batch", "--config", emptyConfig(t), "--in", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
