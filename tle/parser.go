package tle

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/orbit-frames/internal/logging"
)

const tracerName = "github.com/signalsfoundry/orbit-frames/tle"

// Recorder receives per-batch parse statistics. dropped is keyed by
// FailureKind.String().
type Recorder interface {
	RecordParse(records int, dropped map[string]int, elapsed time.Duration)
}

// Parser decodes TLE batches. It holds no per-batch state and is safe for
// concurrent use.
type Parser struct {
	log     logging.Logger
	metrics Recorder
	tracer  trace.Tracer
}

// Option configures a Parser.
type Option func(*Parser)

// WithLogger routes per-record failures to log at warn level.
func WithLogger(l logging.Logger) Option {
	return func(p *Parser) {
		if l != nil {
			p.log = l
		}
	}
}

// WithMetrics attaches an optional metrics recorder.
func WithMetrics(m Recorder) Option {
	return func(p *Parser) {
		p.metrics = m
	}
}

// WithTracer overrides the tracer taken from the global provider.
func WithTracer(t trace.Tracer) Option {
	return func(p *Parser) {
		if t != nil {
			p.tracer = t
		}
	}
}

// NewParser builds a Parser. Without options it logs nothing and records
// no metrics.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		log:    logging.Noop(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse decodes text with a default Parser.
func Parse(text string) Result {
	return defaultParser.Parse(context.Background(), text)
}

// Parse decodes every record in text, in input order.
func (p *Parser) Parse(ctx context.Context, text string) Result {
	return p.run(ctx, text, 1)
}

// ParseConcurrent decodes records on up to workers goroutines. The result
// is identical to Parse.
func (p *Parser) ParseConcurrent(ctx context.Context, text string, workers int) Result {
	return p.run(ctx, text, workers)
}

// ParseReader reads r to EOF and decodes it. It fails only when r fails
// or its contents are not valid UTF-8.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (Result, error) {
	return p.ParseReaderConcurrent(ctx, r, 1)
}

// ParseReaderConcurrent is ParseReader with decoding spread over up to
// workers goroutines.
func (p *Parser) ParseReaderConcurrent(ctx context.Context, r io.Reader, workers int) (Result, error) {
	text, err := readText(r)
	if err != nil {
		return Result{}, err
	}
	return p.run(ctx, text, workers), nil
}

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("tle: read input: %w", err)
	}
	if !utf8.Valid(data) {
		return "", ErrUndecodableInput
	}
	return string(data), nil
}

func (p *Parser) run(ctx context.Context, text string, workers int) Result {
	start := time.Now()
	ctx, log := logging.WithBatchLogger(ctx, p.log)
	ctx, span := p.tracer.Start(ctx, "tle.Parse", trace.WithAttributes(
		attribute.Int("tle.input_bytes", len(text)),
		attribute.Int("tle.workers", max(workers, 1)),
	))
	defer span.End()

	cands, failures := segment(normalize(text))
	outcomes := decodeAll(cands, workers)

	res := Result{Records: make([]OrbitalElementSet, 0, len(cands))}
	for i, c := range cands {
		o := outcomes[i]
		if o.err != nil {
			failures = append(failures, Failure{Kind: kindOf(o.err), Line: c.line, Name: c.name, Err: o.err})
			continue
		}
		rec := o.rec
		rec.Name = c.name
		if rec.Name == "" {
			rec.Name = fmt.Sprintf("TLE-%d", len(res.Records))
		}
		res.Records = append(res.Records, rec)
	}
	slices.SortStableFunc(failures, func(a, b Failure) int { return a.Line - b.Line })
	res.Failures = failures

	dropped := make(map[string]int)
	for _, f := range res.Failures {
		dropped[f.Kind.String()]++
		log.Warn(ctx, "skipping TLE input",
			logging.String("kind", f.Kind.String()),
			logging.Int("line", f.Line),
			logging.String("name", f.Name),
			logging.Err(f.Err),
		)
	}

	elapsed := time.Since(start)
	span.SetAttributes(
		attribute.Int("tle.records", len(res.Records)),
		attribute.Int("tle.failures", len(res.Failures)),
	)
	if len(res.Records) == 0 && len(res.Failures) > 0 {
		span.SetStatus(codes.Error, "no records decoded")
	}
	if p.metrics != nil {
		p.metrics.RecordParse(len(res.Records), dropped, elapsed)
	}
	log.Debug(ctx, "parsed TLE batch",
		logging.Int("records", len(res.Records)),
		logging.Int("failures", len(res.Failures)),
		logging.String("elapsed", elapsed.String()),
	)
	return res
}

type inputLine struct {
	num  int // 1-based, counted before blank lines are dropped
	text string
}

// normalize splits on line breaks, strips surrounding whitespace (including
// the \r of CRLF input) and drops blank lines. Indented data lines keep
// their columns once the indent is gone.
func normalize(text string) []inputLine {
	text = strings.TrimPrefix(text, "\ufeff")
	raw := strings.Split(text, "\n")
	lines := make([]inputLine, 0, len(raw))
	for i, l := range raw {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		lines = append(lines, inputLine{num: i + 1, text: l})
	}
	return lines
}

func isLine1(s string) bool { return strings.HasPrefix(s, "1 ") }
func isLine2(s string) bool { return strings.HasPrefix(s, "2 ") }

// candidate is a name/line1/line2 group awaiting decoding. name is empty
// for two-line records.
type candidate struct {
	line         int
	name         string
	line1, line2 string
}

// segment groups lines into candidates. A line that fits neither record
// shape becomes a MalformedLine failure and the scan moves on by one line.
func segment(lines []inputLine) ([]candidate, []Failure) {
	var (
		cands    []candidate
		failures []Failure
	)
	for i := 0; i < len(lines); {
		cur := lines[i].text
		switch {
		case !isLine1(cur) && !isLine2(cur) &&
			i+2 < len(lines) && isLine1(lines[i+1].text) && isLine2(lines[i+2].text):
			cands = append(cands, candidate{
				line:  lines[i].num,
				name:  strings.TrimSpace(cur),
				line1: lines[i+1].text,
				line2: lines[i+2].text,
			})
			i += 3
		case isLine1(cur) && i+1 < len(lines) && isLine2(lines[i+1].text):
			cands = append(cands, candidate{
				line:  lines[i].num,
				line1: cur,
				line2: lines[i+1].text,
			})
			i += 2
		default:
			failures = append(failures, Failure{
				Kind: MalformedLine,
				Line: lines[i].num,
				Err:  fmt.Errorf("%w: %q", ErrMalformedLine, truncate(cur, 32)),
			})
			i++
		}
	}
	return cands, failures
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

type outcome struct {
	rec OrbitalElementSet
	err error
}

// decodeAll decodes candidates, fanning out to workers goroutines when
// asked. outcomes[i] always belongs to cands[i].
func decodeAll(cands []candidate, workers int) []outcome {
	out := make([]outcome, len(cands))
	if workers > len(cands) {
		workers = len(cands)
	}
	if workers <= 1 {
		for i, c := range cands {
			out[i].rec, out[i].err = decode(c.line1, c.line2)
		}
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				out[i].rec, out[i].err = decode(cands[i].line1, cands[i].line2)
			}
		}()
	}
	for i := range cands {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return out
}
