package batch

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/pgzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/xenking/kart-pricing/internal/domain/promotion"
	"github.com/xenking/kart-pricing/internal/quote"
)

const input = `{"customer":{"name":"John Doe","fidelity":0},"items":[{"product":"banana","quantity":4,"unit_price":0.5},{"product":"apple","quantity":10,"unit_price":1.5},{"product":"watermelon","quantity":5,"unit_price":5}],"promotion":"fidelity"}
{"customer":{"name":"Ann Smith","fidelity":1100},"items":[{"product":"banana","quantity":4,"unit_price":0.5},{"product":"apple","quantity":10,"unit_price":1.5},{"product":"watermelon","quantity":5,"unit_price":5}],"promotion":"fidelity"}

not json
{"customer":{"name":"John Doe"},"items":[{"product":"banana","quantity":30,"unit_price":0.5},{"product":"apple","quantity":10,"unit_price":1.5}],"promotion":"bulk_item"}
{"customer":{"name":"John Doe"},"items":[],"promotion":"black_friday"}
`

func newTestService(t *testing.T) *quote.Service {
	t.Helper()
	r, err := promotion.Build(promotion.DefaultSettings())
	require.NoError(t, err)
	svc, err := quote.NewService(r, tracenoop.NewTracerProvider(), metricnoop.NewMeterProvider())
	require.NoError(t, err)
	return svc
}

func outputLines(t *testing.T, out string) []string {
	t.Helper()
	return strings.Split(strings.TrimSuffix(out, "\n"), "\n")
}

func checkOutput(t *testing.T, lines []string) {
	t.Helper()
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], `"summary":"<Order total: 42.00 due: 42.00>"`)
	assert.Contains(t, lines[1], `"summary":"<Order total: 42.00 due: 39.90>"`)
	assert.Contains(t, lines[2], `"line":4`)
	assert.Contains(t, lines[2], `"error":`)
	assert.Contains(t, lines[3], `"summary":"<Order total: 30.00 due: 28.50>"`)
	assert.Contains(t, lines[4], `"line":6`)
	assert.Contains(t, lines[4], "unknown promotion")
}

func TestRun(t *testing.T) {
	for _, workers := range []int{0, 1, 4} {
		var out bytes.Buffer
		stats, err := Run(context.Background(), newTestService(t), Options{Workers: workers},
			strings.NewReader(input), &out)
		require.NoError(t, err)

		assert.Equal(t, Stats{Quoted: 3, Failed: 2}, stats)
		checkOutput(t, outputLines(t, out.String()))
	}
}

func TestRun_Gzip(t *testing.T) {
	var compressed bytes.Buffer
	gw := pgzip.NewWriter(&compressed)
	_, err := gw.Write([]byte(input))
	require.NoError(t, err)
	require.NoError(t, gw.Close())

	var out bytes.Buffer
	stats, err := Run(context.Background(), newTestService(t),
		Options{Workers: 2, GzipInput: true, GzipOutput: true}, &compressed, &out)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Quoted)

	gr, err := pgzip.NewReader(&out)
	require.NoError(t, err)
	plain, err := io.ReadAll(gr)
	require.NoError(t, err)
	require.NoError(t, gr.Close())

	checkOutput(t, outputLines(t, string(plain)))
}

func TestRun_InvalidGzip(t *testing.T) {
	_, err := Run(context.Background(), newTestService(t), Options{GzipInput: true},
		strings.NewReader("plain text"), io.Discard)
	require.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, newTestService(t), Options{}, strings.NewReader(input), io.Discard)
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_Empty(t *testing.T) {
	var out bytes.Buffer
	stats, err := Run(context.Background(), newTestService(t), Options{}, strings.NewReader(""), &out)
	require.NoError(t, err)
	assert.Zero(t, stats)
	assert.Empty(t, out.String())
}
