// Package batch prices NDJSON files of quote requests.
package batch

import (
	"bufio"
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"github.com/klauspost/pgzip"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/kart-pricing/internal/quote"
)

// maxLineSize bounds a single NDJSON request line.
const maxLineSize = 1 << 20

// Options control a batch run.
type Options struct {
	// Workers is the number of concurrent quotes; values below 1 mean 1.
	Workers int
	// GzipInput and GzipOutput toggle pgzip on either side.
	GzipInput  bool
	GzipOutput bool
}

// Stats summarize a batch run.
type Stats struct {
	Quoted int
	Failed int
}

// line is one input line and its outcome.
type line struct {
	no     int
	raw    []byte
	result *quote.Result
	err    error
}

// Run reads one quote request per line from src and writes one result per
// line to dst, in input order. Lines that fail to decode or price produce
// {"line": n, "error": "..."}, n being the 1-based input line, and are
// counted as failed; only I/O errors and cancellation abort the run. Blank
// lines are skipped.
func Run(ctx context.Context, svc *quote.Service, opts Options, src io.Reader, dst io.Writer) (Stats, error) {
	if opts.GzipInput {
		gz, err := pgzip.NewReader(src)
		if err != nil {
			return Stats{}, errors.Wrap(err, "create gzip reader")
		}
		defer func() { _ = gz.Close() }()
		src = gz
	}

	lines, err := readLines(ctx, src)
	if err != nil {
		return Stats{}, err
	}

	workers := max(opts.Workers, 1)
	lg := zctx.From(ctx)
	lg.Info("Pricing batch", zap.Int("lines", len(lines)), zap.Int("workers", workers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range lines {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			l := &lines[i]
			req, err := quote.DecodeRequest(jx.DecodeBytes(l.raw))
			if err != nil {
				l.err = err
				return nil
			}
			l.result, l.err = svc.Quote(gctx, req)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, errors.Wrap(err, "price lines")
	}

	stats, err := writeResults(dst, opts.GzipOutput, lines)
	if err != nil {
		return stats, err
	}
	lg.Info("Batch priced", zap.Int("quoted", stats.Quoted), zap.Int("failed", stats.Failed))
	return stats, nil
}

func readLines(ctx context.Context, src io.Reader) ([]line, error) {
	scanner := bufio.NewScanner(src)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		lines []line
		no    int
	)
	for scanner.Scan() {
		no++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		lines = append(lines, line{no: no, raw: append([]byte(nil), raw...)})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scan input")
	}
	return lines, nil
}

func writeResults(dst io.Writer, gzipOutput bool, lines []line) (Stats, error) {
	var gz *pgzip.Writer
	if gzipOutput {
		gz = pgzip.NewWriter(dst)
		dst = gz
	}
	w := bufio.NewWriter(dst)

	var (
		stats Stats
		e     jx.Encoder
	)
	for _, l := range lines {
		e.Reset()
		if l.err != nil {
			stats.Failed++
			e.Obj(func(e *jx.Encoder) {
				e.Field("line", func(e *jx.Encoder) { e.Int(l.no) })
				e.Field("error", func(e *jx.Encoder) { e.Str(l.err.Error()) })
			})
		} else {
			stats.Quoted++
			quote.EncodeResult(&e, l.result)
		}
		if _, err := w.Write(append(e.Bytes(), '\n')); err != nil {
			return stats, errors.Wrap(err, "write result")
		}
	}

	if err := w.Flush(); err != nil {
		return stats, errors.Wrap(err, "flush results")
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return stats, errors.Wrap(err, "close gzip writer")
		}
	}
	return stats, nil
}
