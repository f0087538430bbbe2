package network

import (
	"fmt"

	"git.fiblab.net/sim/connectivity/network/algo"
	"git.fiblab.net/sim/connectivity/store"
	"github.com/puzpuzpuz/xsync/v3"
)

// Network 某一年份的共享网络
// 只读请求持有读锁；修改网络的请求在修改-计算-撤销全过程持有写锁
type Network struct {
	year       int
	historical bool
	graph      *algo.Graph
	// 按出发时段的衰减表，历史年份可能为nil
	decay  []algo.DecayTable
	lookup *algo.PurposeLookup

	mu *xsync.RBMutex
}

// New 由快照建立网络，快照的切片被网络直接持有
func New(s *store.Snapshot, historical bool) (*Network, error) {
	unsorted := 0
	for _, pt := range s.PT {
		if !algo.DeparturesSorted(pt) {
			unsorted++
		}
	}
	if unsorted > 0 {
		log.Warnf("year %d: %d nodes have unsorted departures, sorted by leave time", s.Year, unsorted)
	}
	g, err := algo.NewGraph(s.Walk, s.Meta, s.PT, s.Values, s.PaddingOffset)
	if err != nil {
		return nil, fmt.Errorf("year %d: %w", s.Year, err)
	}
	if s.Lookup != nil {
		for bucket, table := range s.Decay {
			if err := algo.ValidateDecay(table, s.Lookup); err != nil {
				return nil, fmt.Errorf("year %d decay table %d: %w", s.Year, bucket, err)
			}
		}
	}
	return &Network{
		year:       s.Year,
		historical: historical,
		graph:      g,
		decay:      s.Decay,
		lookup:     s.Lookup,
		mu:         xsync.NewRBMutex(),
	}, nil
}

func (n *Network) Year() int {
	return n.year
}

func (n *Network) Historical() bool {
	return n.historical
}

func (n *Network) HasDecay() bool {
	return len(n.decay) == algo.TIME_OF_DAY_BUCKETS && n.lookup != nil
}

// NodeCount 当前节点数（含未撤销的新增节点）
func (n *Network) NodeCount() int {
	t := n.mu.RLock()
	defer n.mu.RUnlock(t)
	return n.graph.NodeCount()
}

func (n *Network) PaddingOffset() algo.NodeID {
	return n.graph.PaddingOffset()
}

// Graph 返回底层网络，调用方须自行保证没有并发修改
func (n *Network) Graph() *algo.Graph {
	return n.graph
}
