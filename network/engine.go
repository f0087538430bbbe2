package network

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"git.fiblab.net/sim/connectivity/network/algo"
	"git.fiblab.net/sim/connectivity/store"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

// Engine 进程内唯一的可达性计算上下文
// 持有当前年份的可修改网络，以及按需加载的只读历史年份网络
type Engine struct {
	year    int
	live    *Network
	store   store.Store
	workers int

	history *xsync.MapOf[int, *Network]
	loading singleflight.Group
}

// NewEngine 从store加载year年份的网络作为当前网络，workers<=0时使用GOMAXPROCS
func NewEngine(ctx context.Context, st store.Store, year int, workers int) (*Engine, error) {
	start := time.Now()
	s, err := st.Load(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("load network of year %d: %w", year, err)
	}
	live, err := New(s, false)
	if err != nil {
		return nil, err
	}
	if !live.HasDecay() {
		return nil, fmt.Errorf("network of year %d has no decay tables or subpurpose lookup", year)
	}
	log.Infof("network of year %d loaded: %d nodes, padding offset %d, took %v",
		year, live.graph.NodeCount(), live.PaddingOffset(), time.Since(start))
	return &Engine{
		year:    year,
		live:    live,
		store:   st,
		workers: workers,
		history: xsync.NewMapOf[int, *Network](),
	}, nil
}

func (e *Engine) Year() int {
	return e.year
}

func (e *Engine) Live() *Network {
	return e.live
}

// NodeCount 当前网络的节点数
func (e *Engine) NodeCount() int {
	return e.live.NodeCount()
}

// Network 返回year年份的网络，0表示当前年份；历史年份首次使用时加载
func (e *Engine) Network(ctx context.Context, year int) (*Network, error) {
	if year == 0 || year == e.year {
		return e.live, nil
	}
	if n, ok := e.history.Load(year); ok {
		return n, nil
	}
	v, err, _ := e.loading.Do(strconv.Itoa(year), func() (any, error) {
		if n, ok := e.history.Load(year); ok {
			return n, nil
		}
		start := time.Now()
		// 加载结果会被其他请求共享，不随单个请求取消
		s, err := e.store.Load(context.WithoutCancel(ctx), year)
		if err != nil {
			return nil, fmt.Errorf("%w: year %d: %w", ErrYearUnavailable, year, err)
		}
		n, err := New(s, true)
		if err != nil {
			return nil, fmt.Errorf("%w: year %d: %w", ErrYearUnavailable, year, err)
		}
		n, _ = e.history.LoadOrStore(year, n)
		log.Infof("historical network of year %d loaded: %d nodes, took %v", year, n.graph.NodeCount(), time.Since(start))
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Network), nil
}

// Run 计算请求中每个起点的可达性得分，结果顺序与req.Origins一致
// 带场景修改的请求在修改、计算、撤销期间独占网络
func (e *Engine) Run(ctx context.Context, req *Request) ([]algo.Score, error) {
	n, err := e.Network(ctx, req.Year)
	if err != nil {
		return nil, err
	}
	if n.historical && !req.Scenario.Empty() {
		return nil, fmt.Errorf("%w: year %d", ErrHistoricalEdit, req.Year)
	}
	if req.MaxTravelTime < 0 {
		return nil, fmt.Errorf("%w: negative max travel time %d", ErrInvalidRequest, req.MaxTravelTime)
	}
	limit := algo.TIME_LIMIT
	if req.MaxTravelTime > 0 {
		limit = lo.Clamp(req.MaxTravelTime, 1, algo.TIME_LIMIT)
	}
	// 历史快照不带衰减表时沿用当前网络的
	decay, lookup := n.decay, n.lookup
	if !n.HasDecay() {
		decay, lookup = e.live.decay, e.live.lookup
	}
	bucket := algo.TimeOfDayIndex(req.TripStartSeconds)
	j := &job{
		graph:      n.graph,
		table:      decay[bucket],
		lookup:     lookup,
		allTargets: req.AllTargets,
		tripStart:  req.TripStartSeconds,
		limit:      limit,
	}

	start := time.Now()
	var results []algo.Score
	if req.Scenario.Empty() {
		results, err = e.runReadOnly(ctx, n, j, req)
	} else {
		results, err = e.runScenario(ctx, n, j, req)
	}
	if err != nil {
		return nil, err
	}
	log.Infof("year %d: %d origins, bucket %d, limit %d, %d new nodes, %d walk updates, %d new buildings, took %v",
		n.year, len(req.Origins), bucket, limit,
		len(req.Scenario.NewNodes), len(req.Scenario.WalkUpdates), len(req.Scenario.ValueDeltas),
		time.Since(start))
	return results, nil
}

func (e *Engine) runReadOnly(ctx context.Context, n *Network, j *job, req *Request) ([]algo.Score, error) {
	t := n.mu.RLock()
	defer n.mu.RUnlock(t)
	if err := j.prepare(req, n.graph.NodeCount(), n.graph.NodeCount()); err != nil {
		return nil, err
	}
	return j.dispatch(ctx, req.Origins, e.workers)
}

func (e *Engine) runScenario(ctx context.Context, n *Network, j *job, req *Request) ([]algo.Score, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	s := &req.Scenario
	if err := s.validate(n.graph); err != nil {
		return nil, err
	}
	existing := n.graph.NodeCount()
	if err := j.prepare(req, existing, existing+len(s.NewNodes)); err != nil {
		return nil, err
	}
	r := s.apply(n.graph)
	results, err := j.dispatch(ctx, req.Origins, e.workers)
	r.rollback(n.graph)
	return results, err
}

// prepare 检查起点并建立目标节点表
// 起点可以是新增节点，目标节点只能是已有节点
func (j *job) prepare(req *Request, existing, total int) error {
	for i, o := range req.Origins {
		if o.Start < 0 || int(o.Start) >= total {
			return fmt.Errorf("%w: origin %d: start node %d out of range [0, %d)", ErrInvalidRequest, i, o.Start, total)
		}
		if o.InitCost < 0 {
			return fmt.Errorf("%w: origin %d: negative initial travel time %d", ErrInvalidRequest, i, o.InitCost)
		}
	}
	if len(req.Targets) == 0 {
		return nil
	}
	targets, err := algo.NewTargetLookup(existing, req.Targets)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	j.targets = targets
	return nil
}
