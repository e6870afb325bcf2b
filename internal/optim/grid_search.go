// Package optim searches parameter grids for the configuration that
// minimises a run metric.
package optim

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/experiment"
)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	log        *slog.Logger
}

// NewGridSearch searches the cartesian product of ranges; ranges[i] lists
// the values tried for params[i].
func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, dynamo.Invalid("params", "need one range per parameter, got %d params and %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, dynamo.Invalid(params[i], "empty range")
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges, log: slog.New(slog.DiscardHandler)}, nil
}

func (g *GridSearch) SetLogger(log *slog.Logger) {
	g.log = log
}

// Best is the winning point of a search.
type Best struct {
	Params map[string]float64
	Value  float64
	Result *experiment.Result
}

// Search runs base once per grid point and returns the point with the
// smallest value of metric. Runs whose metric is NaN never win.
func (g *GridSearch) Search(ctx context.Context, reg *experiment.Registry, base experiment.Config, metric string) (*Best, error) {
	best := &Best{Value: math.Inf(1)}
	current := make(map[string]float64, len(g.paramNames))

	if err := g.searchRecursive(ctx, 0, current, reg, base, metric, best); err != nil {
		return nil, err
	}
	if best.Params == nil {
		return nil, fmt.Errorf("optim: no run produced a finite %q", metric)
	}
	return best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	reg *experiment.Registry,
	base experiment.Config,
	metric string,
	best *Best,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		cfg := base
		for k, v := range current {
			if err := experiment.SetParam(&cfg, k, v); err != nil {
				return err
			}
		}

		exp := experiment.New(cfg)
		if err := exp.Setup(reg, g.log); err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}

		val, ok := result.Metrics[metric]
		if !ok {
			return dynamo.Invalid("metric", "unknown metric %q", metric)
		}
		g.log.Debug("grid point", "params", current, metric, val)

		if val < best.Value {
			best.Value = val
			best.Result = result
			best.Params = make(map[string]float64, len(current))
			for k, v := range current {
				best.Params[k] = v
			}
		}
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, current, reg, base, metric, best); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}
