package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/armakit/armakit/pkg/preproc"
	"github.com/armakit/armakit/pkg/workspace"
)

// Runner orchestrates preprocessing of many entry files against one shared
// workspace. The workspace cache is safe for concurrent reads, so workers
// share resolved file snapshots while keeping per-run macro state isolated.
type Runner struct {
	Workspace *workspace.Workspace
}

// New creates a new Runner over the given workspace.
func New(ws *workspace.Workspace) *Runner {
	return &Runner{Workspace: ws}
}

// Run discovers entry files and preprocesses them concurrently.
// It returns a deterministic collection of EntryOutcome values and
// aggregate stats.
//
// The runner:
//   - Discovers entries matching the options criteria in the top layer
//   - Processes entries concurrently using a worker pool
//   - Aggregates results into a single Result with statistics
//   - Respects context cancellation
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	entries, err := Discover(ctx, r.Workspace, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Entries: make([]EntryOutcome, 0, len(entries)),
		Stats:   newStats(),
	}
	result.Stats.EntriesDiscovered = len(entries)

	if len(entries) == 0 {
		return result, nil
	}

	// Determine job count.
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	// Don't use more workers than entries.
	if jobs > len(entries) {
		jobs = len(entries)
	}

	pp := preproc.New(r.Workspace, preproc.Options{
		MaxDepth: opts.maxDepth(),
		Defines:  opts.defines(),
	})

	workCh := make(chan string)
	outCh := make(chan EntryOutcome)

	var wg sync.WaitGroup

	// Start workers.
	for range jobs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.worker(ctx, workCh, outCh, pp)
		}()
	}

	// Feed work in a separate goroutine.
	go func() {
		defer close(workCh)
		for _, path := range entries {
			select {
			case <-ctx.Done():
				return
			case workCh <- path:
			}
		}
	}()

	// Close outCh when all workers are done.
	go func() {
		wg.Wait()
		close(outCh)
	}()

	// Collect results.
	// Use a map to restore order since workers may complete out of order.
	outcomes := make(map[string]EntryOutcome, len(entries))

	for outcome := range outCh {
		outcomes[outcome.Path] = outcome
	}

	// Build result in deterministic order.
	for _, path := range entries {
		if outcome, ok := outcomes[path]; ok {
			result.accumulate(outcome)
		}
	}

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

// worker preprocesses entries from workCh and sends outcomes to outCh.
func (r *Runner) worker(
	ctx context.Context,
	workCh <-chan string,
	outCh chan<- EntryOutcome,
	pp *preproc.Preprocessor,
) {
	for path := range workCh {
		select {
		case <-ctx.Done():
			return
		default:
		}

		outcome := EntryOutcome{Path: path}

		pr, err := pp.Run(ctx, path)
		if err != nil {
			outcome.Error = err
		} else {
			outcome.Result = pr
		}

		select {
		case <-ctx.Done():
			return
		case outCh <- outcome:
		}
	}
}
