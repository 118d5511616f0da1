package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/ideaforge/internal/generate"
	"github.com/dusk-indust/ideaforge/internal/plan"
)

// Levels groups the sections by dependency depth. Sections in the same
// level never depend on one another, so they can be generated concurrently
// once every earlier level has finished. Keys within a level keep fixed
// order.
func Levels() [][]plan.SectionKey {
	depth := make(map[plan.SectionKey]int, plan.SectionCount)
	var levels [][]plan.SectionKey
	for _, d := range plan.Definitions() {
		n := 0
		for _, dep := range d.Requires {
			if depth[dep]+1 > n {
				n = depth[dep] + 1
			}
		}
		depth[d.Key] = n
		for len(levels) <= n {
			levels = append(levels, nil)
		}
		levels[n] = append(levels[n], d.Key)
	}
	return levels
}

type attemptResult struct {
	res *generate.Result
	err error
}

// runLevels fans each level's attempts out in parallel. A failed attempt
// does not cancel its siblings; every result is collected and folded into
// the run after the level completes, in fixed order.
func (e *executor) runLevels(ctx context.Context) error {
	levels := Levels()
	for i, level := range levels {
		if err := ctx.Err(); err != nil {
			var rest []plan.SectionKey
			for _, l := range levels[i:] {
				rest = append(rest, l...)
			}
			e.cancelRemaining(rest)
			return err
		}

		var attempts []plan.SectionKey
		for _, k := range level {
			if e.plan(k) {
				attempts = append(attempts, k)
			}
		}

		results := make([]attemptResult, len(attempts))
		var g errgroup.Group
		if e.o.parallelism > 0 {
			g.SetLimit(e.o.parallelism)
		}
		for j, k := range attempts {
			g.Go(func() error {
				res, err := e.attempt(ctx, k)
				results[j] = attemptResult{res: res, err: err}
				return nil
			})
		}
		_ = g.Wait()

		for j, k := range attempts {
			e.record(k, results[j].res, results[j].err)
		}
	}
	return nil
}
