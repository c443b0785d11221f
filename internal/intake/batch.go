package intake

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/academy-desk/internal/types"
)

// ExtractAll extracts every text concurrently with at most workers
// goroutines (GOMAXPROCS when workers <= 0). Results keep the input order.
// The only error is the context's.
func (a *Assembler) ExtractAll(ctx context.Context, texts []string, workers int) ([]types.PartialRecord, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	records := make([]types.PartialRecord, len(texts))
	for i, text := range texts {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			records[i] = a.ExtractRecord(text)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}
