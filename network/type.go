package network

import (
	"errors"

	"git.fiblab.net/sim/connectivity/network/algo"
)

var (
	// 错误：请求参数不合法，网络未被修改
	ErrInvalidRequest = errors.New("invalid request")
	// 错误：历史年份的网络不允许修改
	ErrHistoricalEdit = errors.New("scenario edits are not allowed on historical networks")
	// 错误：该年份的网络无法加载
	ErrYearUnavailable = errors.New("network of the year is unavailable")
)

// 一个起点及其距接入点的初始耗时
type Origin struct {
	Start    algo.NodeID
	InitCost algo.Cost
}

// 新增节点，编号按顺序接在现有节点之后
type NewNode struct {
	Walk []algo.WalkEdge
	Meta algo.NodeMeta
	PT   []algo.PTEdge
}

// 在已有节点的步行表末尾追加边
type WalkUpdate struct {
	Node  algo.NodeID
	Edges []algo.WalkEdge
}

// 单个价值格的增量（新建建筑）
type ValueDelta struct {
	Node       algo.NodeID
	Subpurpose int
	Delta      int32
}

// Scenario 单次请求内的临时修改，请求结束前全部撤销
type Scenario struct {
	NewNodes []NewNode
	// 调用方声明的新增节点数，须与NewNodes一致
	NewNodesCount int
	WalkUpdates   []WalkUpdate
	ValueDeltas   []ValueDelta
}

func (s *Scenario) Empty() bool {
	return len(s.NewNodes) == 0 && s.NewNodesCount == 0 && len(s.WalkUpdates) == 0 && len(s.ValueDeltas) == 0
}

// Request 一次可达性计算请求
type Request struct {
	Origins          []Origin
	TripStartSeconds int32
	Year             int
	Scenario         Scenario
	// 需要返回到达耗时的目标节点
	Targets []algo.NodeID
	// 为true时返回全部可达节点
	AllTargets bool
	// 出行时间上限，0表示algo.TIME_LIMIT
	MaxTravelTime algo.Cost
}
