package inventory

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"poolsim/internal/fault"
	"poolsim/internal/fixedtext"
	"poolsim/internal/record"
)

// Builder decodes chunks and assembles the inventory.
type Builder struct {
	Decoder    *record.Decoder
	RecordSize int
	Workers    int // 0 or 1 decodes sequentially
	Log        *zap.Logger
}

// NewBuilder creates a builder. A nil logger is replaced by a no-op one.
func NewBuilder(cp fixedtext.CodePage, recordSize, workers int, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{
		Decoder:    record.NewDecoder(cp),
		RecordSize: recordSize,
		Workers:    workers,
		Log:        log,
	}
}

type decoded struct {
	rec *record.Record
	err error
}

// Build decodes every chunk and inserts the results in file order. The first occurrence of an id wins;
// later duplicates and chunks that fail to decode are logged and reported, and loading continues.
// Only a record size that does not match the layout, or ctx's cancellation, fails the build.
func (b *Builder) Build(ctx context.Context, chunks []record.Chunk) (*Inventory, *Report, error) {
	if b.RecordSize != record.Size {
		return nil, nil, fault.New(fault.KindConfig, "record size", "layout is %d bytes, configured %d", record.Size, b.RecordSize)
	}
	results, err := b.decodeAll(ctx, chunks)
	if err != nil {
		return nil, nil, err
	}

	inv := newInventory(chunks)
	report := &Report{Outcomes: make([]Outcome, 0, len(chunks))}

	for i, res := range results {
		if res.err != nil {
			b.Log.Warn("Record decode failed", zap.Int("record", i), zap.Error(res.err))
			report.Outcomes = append(report.Outcomes, Outcome{Index: i, Status: OutcomeFailed, Err: res.err})
			continue
		}

		a := newAssembly(res.rec, b.Log)
		if first, dup := inv.index[a.ID]; dup {
			b.Log.Warn("Duplicate assembly id dropped",
				zap.Int("record", i),
				zap.String("assembly", a.ID),
				zap.Int("first_record", first))
			report.Outcomes = append(report.Outcomes, Outcome{
				Index:      i,
				Status:     OutcomeDuplicate,
				AssemblyID: a.ID,
				Err:        fmt.Errorf("assembly %s already loaded from record %d", a.ID, first),
			})
			continue
		}

		inv.insert(i, a)
		report.Outcomes = append(report.Outcomes, Outcome{Index: i, Status: OutcomeLoaded, AssemblyID: a.ID})
	}

	b.Log.Info("Inventory built",
		zap.Int("records", len(chunks)),
		zap.Int("loaded", report.Count(OutcomeLoaded)),
		zap.Int("failed", report.Count(OutcomeFailed)),
		zap.Int("duplicates", report.Count(OutcomeDuplicate)))
	return inv, report, nil
}

// decodeAll runs pass 1 and pass 2 over every chunk. Results are stored by index so the outcome does not
// depend on the worker count.
func (b *Builder) decodeAll(ctx context.Context, chunks []record.Chunk) ([]decoded, error) {
	results := make([]decoded, len(chunks))
	decodeOne := func(i int) {
		rec, err := b.Decoder.DecodeChunk(chunks[i], b.RecordSize)
		results[i] = decoded{rec: rec, err: err}
	}

	if b.Workers <= 1 {
		for i := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			decodeOne(i)
		}
		return results, nil
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(b.Workers)
	for i := range chunks {
		i := i
		eg.Go(func() error {
			if err := egCtx.Err(); err != nil {
				return err
			}
			decodeOne(i)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
