package network

import (
	"context"
	"runtime"

	"git.fiblab.net/sim/connectivity/network/algo"
	"golang.org/x/sync/errgroup"
)

// 单次请求内所有起点共享的只读计算参数
type job struct {
	graph      *algo.Graph
	table      algo.DecayTable
	lookup     *algo.PurposeLookup
	targets    []bool
	allTargets bool
	tripStart  int32
	limit      algo.Cost
}

func (j *job) run(o Origin) algo.Score {
	reached := j.graph.Floodfill(o.Start, o.InitCost, j.tripStart, j.limit)
	return j.graph.Score(reached, j.table, j.lookup, j.targets, j.allTargets)
}

// dispatch 在至多workers个goroutine上并行计算每个起点，结果顺序与origins一致
// ctx取消后尚未开始的起点不再计算
func (j *job) dispatch(ctx context.Context, origins []Origin, workers int) ([]algo.Score, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	results := make([]algo.Score, len(origins))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := range origins {
		i := i
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = j.run(origins[i])
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
