package algo_test

import (
	"math"
	"math/rand"
	"testing"

	"git.fiblab.net/sim/connectivity/network/algo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEdge struct {
	from, to algo.NodeID
	cost     algo.Cost
}

// 构造只有步行边、没有公交的网络
func newWalkGraph(t testing.TB, n int, edges []testEdge) *algo.Graph {
	walk := make([][]algo.WalkEdge, n)
	meta := make([]algo.NodeMeta, n)
	pt := make([][]algo.PTEdge, n)
	for i := range meta {
		meta[i].PTDestination = -1
	}
	for _, e := range edges {
		walk[e.from] = append(walk[e.from], algo.WalkEdge{To: e.to, Cost: e.cost})
	}
	g, err := algo.NewGraph(walk, meta, pt, make([]int32, n*algo.SUBPURPOSES), 0)
	require.NoError(t, err)
	return g
}

func TestFloodfillWalkOnly(t *testing.T) {
	g := newWalkGraph(t, 4, []testEdge{
		{0, 1, 100},
		{0, 2, 50},
		{2, 3, 200},
	})
	reached := g.Floodfill(0, 0, 8*3600, algo.TIME_LIMIT)
	assert.Equal(t, algo.NodeID(0), reached.Start)
	assert.Equal(t, []algo.NodeID{0, 2, 1, 3}, reached.Nodes)
	assert.Equal(t, []algo.Cost{0, 50, 100, 250}, reached.Costs)
}

func TestFloodfillInitCostOverLimit(t *testing.T) {
	g := newWalkGraph(t, 2, []testEdge{{0, 1, 10}})
	reached := g.Floodfill(0, algo.TIME_LIMIT, 0, algo.TIME_LIMIT)
	assert.Empty(t, reached.Nodes)
	assert.Empty(t, reached.Costs)
	assert.Equal(t, algo.NodeID(0), reached.Start)

	reached = g.Floodfill(0, algo.TIME_LIMIT+1, 0, algo.TIME_LIMIT)
	assert.Empty(t, reached.Nodes)
}

func TestFloodfillRespectsLimit(t *testing.T) {
	g := newWalkGraph(t, 3, []testEdge{
		{0, 1, 3000},
		{1, 2, 600},
	})
	reached := g.Floodfill(0, 0, 0, algo.TIME_LIMIT)
	// 0->1->2 恰好3600，不可达
	assert.Equal(t, []algo.NodeID{0, 1}, reached.Nodes)

	reached = g.Floodfill(0, 700, 0, algo.TIME_LIMIT)
	assert.Equal(t, []algo.NodeID{0}, reached.Nodes)
	assert.Equal(t, []algo.Cost{700}, reached.Costs)
}

func TestFloodfillHugeEdgeCost(t *testing.T) {
	g := newWalkGraph(t, 3, []testEdge{
		{0, 1, 10},
		{1, 2, math.MaxInt32},
	})
	reached := g.Floodfill(0, 0, 0, algo.TIME_LIMIT)
	assert.Equal(t, []algo.NodeID{0, 1}, reached.Nodes)
	assert.Equal(t, []algo.Cost{0, 10}, reached.Costs)
}

func TestFloodfillDuplicateEntriesDiscarded(t *testing.T) {
	// 1可由0直接到达(500)，也可经2到达(10+20)
	g := newWalkGraph(t, 3, []testEdge{
		{0, 1, 500},
		{0, 2, 10},
		{2, 1, 20},
		{1, 0, 1},
	})
	reached := g.Floodfill(0, 0, 0, algo.TIME_LIMIT)
	assert.Equal(t, []algo.NodeID{0, 2, 1}, reached.Nodes)
	assert.Equal(t, []algo.Cost{0, 10, 30}, reached.Costs)
}

// 节点0有时刻表：驶向7，班次(28810,120)、(29000,90)
func newPTGraph(t testing.TB, departures []algo.PTEdge) *algo.Graph {
	n := 8
	walk := make([][]algo.WalkEdge, n)
	meta := make([]algo.NodeMeta, n)
	pt := make([][]algo.PTEdge, n)
	for i := range meta {
		meta[i].PTDestination = -1
	}
	meta[0] = algo.NodeMeta{HasPT: true, PTDestination: 7}
	pt[0] = departures
	g, err := algo.NewGraph(walk, meta, pt, make([]int32, n*algo.SUBPURPOSES), 0)
	require.NoError(t, err)
	return g
}

func TestNextPTArrivalEarliestDeparture(t *testing.T) {
	g := newPTGraph(t, []algo.PTEdge{{LeaveTime: 28810, Cost: 120}, {LeaveTime: 29000, Cost: 90}})
	arrival, ok := g.NextPTArrival(0, 0, 28800, algo.TIME_LIMIT)
	require.True(t, ok)
	assert.Equal(t, algo.Cost(130), arrival)

	reached := g.Floodfill(0, 0, 28800, algo.TIME_LIMIT)
	assert.Equal(t, []algo.NodeID{0, 7}, reached.Nodes)
	assert.Equal(t, []algo.Cost{0, 130}, reached.Costs)
}

func TestNextPTArrivalSkipsMissedDepartures(t *testing.T) {
	g := newPTGraph(t, []algo.PTEdge{{LeaveTime: 28810, Cost: 120}, {LeaveTime: 29000, Cost: 90}})
	// 28820到达，已错过28810
	arrival, ok := g.NextPTArrival(0, 20, 28800, algo.TIME_LIMIT)
	require.True(t, ok)
	assert.Equal(t, algo.Cost(20+180+90), arrival)

	// 恰好在发车时刻到达
	arrival, ok = g.NextPTArrival(0, 200, 28800, algo.TIME_LIMIT)
	require.True(t, ok)
	assert.Equal(t, algo.Cost(290), arrival)

	// 末班车已走
	_, ok = g.NextPTArrival(0, 201, 28800, algo.TIME_LIMIT)
	assert.False(t, ok)
}

func TestNextPTArrivalOverLimit(t *testing.T) {
	g := newPTGraph(t, []algo.PTEdge{{LeaveTime: 3500, Cost: 100}, {LeaveTime: 3550, Cost: 10}})
	// 最早一班到达恰为3600，不再尝试更晚的班次
	_, ok := g.NextPTArrival(0, 0, 0, algo.TIME_LIMIT)
	assert.False(t, ok)
	reached := g.Floodfill(0, 0, 0, algo.TIME_LIMIT)
	assert.Equal(t, []algo.NodeID{0}, reached.Nodes)
}

func TestNextPTArrivalClockOverflow(t *testing.T) {
	g := newPTGraph(t, []algo.PTEdge{{LeaveTime: 28810, Cost: 120}})
	_, ok := g.NextPTArrival(0, 100, math.MaxInt32-10, algo.TIME_LIMIT)
	assert.False(t, ok)

	// 出发时刻为负时等待时间不能溢出
	_, ok = g.NextPTArrival(0, 0, math.MinInt32, algo.TIME_LIMIT)
	assert.False(t, ok)
}

func TestNewGraphSortsDepartures(t *testing.T) {
	g := newPTGraph(t, []algo.PTEdge{{LeaveTime: 29000, Cost: 90}, {LeaveTime: 28810, Cost: 120}})
	assert.True(t, algo.DeparturesSorted(g.Departures(0)))
	arrival, ok := g.NextPTArrival(0, 0, 28800, algo.TIME_LIMIT)
	require.True(t, ok)
	assert.Equal(t, algo.Cost(130), arrival)
}

func TestNewGraphShapeErrors(t *testing.T) {
	_, err := algo.NewGraph(make([][]algo.WalkEdge, 2), make([]algo.NodeMeta, 1), make([][]algo.PTEdge, 2), make([]int32, 64), 0)
	assert.ErrorIs(t, err, algo.ErrShapeMismatch)

	_, err = algo.NewGraph(make([][]algo.WalkEdge, 2), make([]algo.NodeMeta, 2), make([][]algo.PTEdge, 2), make([]int32, 63), 0)
	assert.ErrorIs(t, err, algo.ErrShapeMismatch)

	walk := [][]algo.WalkEdge{{{To: 5, Cost: 1}}, nil}
	_, err = algo.NewGraph(walk, make([]algo.NodeMeta, 2), make([][]algo.PTEdge, 2), make([]int32, 64), 0)
	assert.ErrorIs(t, err, algo.ErrNodeOutOfRange)

	walk = [][]algo.WalkEdge{{{To: 1, Cost: -1}}, nil}
	_, err = algo.NewGraph(walk, make([]algo.NodeMeta, 2), make([][]algo.PTEdge, 2), make([]int32, 64), 0)
	assert.ErrorIs(t, err, algo.ErrNegativeCost)

	meta := []algo.NodeMeta{{HasPT: true, PTDestination: 9}, {}}
	_, err = algo.NewGraph(make([][]algo.WalkEdge, 2), meta, make([][]algo.PTEdge, 2), make([]int32, 64), 0)
	assert.ErrorIs(t, err, algo.ErrNodeOutOfRange)
}

func TestFloodfillMonotonic(t *testing.T) {
	e := rand.New(rand.NewSource(7))
	n := 300
	edges := make([]testEdge, 0, n*4)
	for i := 0; i < n*4; i++ {
		edges = append(edges, testEdge{
			from: algo.NodeID(e.Intn(n)),
			to:   algo.NodeID(e.Intn(n)),
			cost: algo.Cost(e.Intn(400)),
		})
	}
	g := newWalkGraph(t, n, edges)
	for start := 0; start < 20; start++ {
		init := algo.Cost(e.Intn(200))
		reached := g.Floodfill(algo.NodeID(start), init, 0, algo.TIME_LIMIT)
		require.NotEmpty(t, reached.Nodes)
		assert.Equal(t, algo.NodeID(start), reached.Nodes[0])
		assert.Equal(t, init, reached.Costs[0])
		seen := make(map[algo.NodeID]bool)
		for i, c := range reached.Costs {
			assert.Less(t, c, algo.TIME_LIMIT)
			if i > 0 {
				assert.GreaterOrEqual(t, c, reached.Costs[i-1])
			}
			assert.False(t, seen[reached.Nodes[i]])
			seen[reached.Nodes[i]] = true
		}
	}
}
