package algo

import (
	"fmt"
	"slices"
	"sort"
)

// 步行+公交网络，以稠密节点编号为下标的若干平行数组
// 除Scenario修改期间外只读，调用方负责加锁
type Graph struct {
	// 步行邻接表，不含首项标记
	walk [][]WalkEdge
	// 节点的公交标记与目的地
	meta []NodeMeta
	// 公交班次表，按LeaveTime升序，不含首项目的地
	pt [][]PTEdge
	// 节点价值，node-major，每个节点SUBPURPOSES项
	values []int32
	// 编号小于该值的节点没有价值行
	paddingOffset NodeID
}

// NewGraph 校验各数组形状并建立网络，未排序的班次表会被排序
func NewGraph(walk [][]WalkEdge, meta []NodeMeta, pt [][]PTEdge, values []int32, paddingOffset NodeID) (*Graph, error) {
	n := len(walk)
	if len(meta) != n || len(pt) != n {
		return nil, fmt.Errorf("%w: walk=%d meta=%d pt=%d", ErrShapeMismatch, n, len(meta), len(pt))
	}
	if len(values) != n*SUBPURPOSES {
		return nil, fmt.Errorf("%w: values=%d, want %d", ErrShapeMismatch, len(values), n*SUBPURPOSES)
	}
	if paddingOffset < 0 || int(paddingOffset) > n {
		return nil, fmt.Errorf("%w: padding offset %d with %d nodes", ErrNodeOutOfRange, paddingOffset, n)
	}
	for i := 0; i < n; i++ {
		if err := checkNode(n, walk[i], meta[i], pt[i]); err != nil {
			return nil, fmt.Errorf("node %d: %w", i, err)
		}
		SortDepartures(pt[i])
	}
	return &Graph{walk: walk, meta: meta, pt: pt, values: values, paddingOffset: paddingOffset}, nil
}

func checkNode(nodeCount int, walk []WalkEdge, meta NodeMeta, pt []PTEdge) error {
	for _, e := range walk {
		if e.To < 0 || int(e.To) >= nodeCount {
			return fmt.Errorf("%w: walk edge to %d", ErrNodeOutOfRange, e.To)
		}
		if e.Cost < 0 {
			return fmt.Errorf("%w: walk edge to %d costs %d", ErrNegativeCost, e.To, e.Cost)
		}
	}
	if !meta.HasPT {
		return nil
	}
	if meta.PTDestination < 0 || int(meta.PTDestination) >= nodeCount {
		return fmt.Errorf("%w: pt destination %d", ErrNodeOutOfRange, meta.PTDestination)
	}
	for _, e := range pt {
		if e.Cost < 0 {
			return fmt.Errorf("%w: departure at %d costs %d", ErrNegativeCost, e.LeaveTime, e.Cost)
		}
	}
	return nil
}

// DeparturesSorted 班次表是否按LeaveTime升序
func DeparturesSorted(pt []PTEdge) bool {
	return sort.SliceIsSorted(pt, func(i, j int) bool { return pt[i].LeaveTime < pt[j].LeaveTime })
}

// SortDepartures 原地按LeaveTime稳定排序
func SortDepartures(pt []PTEdge) {
	if DeparturesSorted(pt) {
		return
	}
	sort.SliceStable(pt, func(i, j int) bool { return pt[i].LeaveTime < pt[j].LeaveTime })
}

// getter

func (g *Graph) NodeCount() int {
	return len(g.walk)
}

func (g *Graph) PaddingOffset() NodeID {
	return g.paddingOffset
}

func (g *Graph) HasNode(id NodeID) bool {
	return id >= 0 && int(id) < len(g.walk)
}

// Lengths 返回步行表、公交表长度与价值数组长度，用于检查形状
func (g *Graph) Lengths() (walk, pt, values int) {
	return len(g.walk), len(g.pt), len(g.values)
}

func (g *Graph) Walk(id NodeID) []WalkEdge {
	return g.walk[id]
}

func (g *Graph) Meta(id NodeID) NodeMeta {
	return g.meta[id]
}

func (g *Graph) Departures(id NodeID) []PTEdge {
	return g.pt[id]
}

func (g *Graph) Value(id NodeID, subpurpose int) int32 {
	return g.values[int(id)*SUBPURPOSES+subpurpose]
}

// setter，仅供Scenario使用

// AppendNode 追加新节点的步行表与公交表，不扩展价值数组
func (g *Graph) AppendNode(walk []WalkEdge, meta NodeMeta, pt []PTEdge) NodeID {
	pt = slices.Clone(pt)
	SortDepartures(pt)
	g.walk = append(g.walk, walk)
	g.meta = append(g.meta, meta)
	g.pt = append(g.pt, pt)
	return NodeID(len(g.walk) - 1)
}

// SetWalk 替换节点的步行表
func (g *Graph) SetWalk(id NodeID, edges []WalkEdge) {
	g.walk[id] = edges
}

// ExtendValues 为nodes个新节点追加全零价值行
func (g *Graph) ExtendValues(nodes int) {
	g.values = append(g.values, make([]int32, nodes*SUBPURPOSES)...)
}

// AddValue 对单个价值格加上delta
func (g *Graph) AddValue(id NodeID, subpurpose int, delta int32) {
	g.values[int(id)*SUBPURPOSES+subpurpose] += delta
}

// TruncateNodes 删除编号>=nodeCount的节点邻接表
func (g *Graph) TruncateNodes(nodeCount int) {
	clear(g.walk[nodeCount:])
	clear(g.pt[nodeCount:])
	g.walk = g.walk[:nodeCount]
	g.meta = g.meta[:nodeCount]
	g.pt = g.pt[:nodeCount]
}

// TruncateValues 价值数组截断为length
func (g *Graph) TruncateValues(length int) {
	g.values = g.values[:length]
}

// Clone 深拷贝，保留nil切片
func (g *Graph) Clone() *Graph {
	c := &Graph{
		walk:          make([][]WalkEdge, len(g.walk)),
		meta:          slices.Clone(g.meta),
		pt:            make([][]PTEdge, len(g.pt)),
		values:        slices.Clone(g.values),
		paddingOffset: g.paddingOffset,
	}
	for i := range g.walk {
		c.walk[i] = slices.Clone(g.walk[i])
		c.pt[i] = slices.Clone(g.pt[i])
	}
	return c
}

// Equal 按内容比较两个网络（不比较容量）
func (g *Graph) Equal(o *Graph) bool {
	if g.paddingOffset != o.paddingOffset || len(g.walk) != len(o.walk) || len(g.pt) != len(o.pt) {
		return false
	}
	if !slices.Equal(g.meta, o.meta) || !slices.Equal(g.values, o.values) {
		return false
	}
	for i := range g.walk {
		if !slices.Equal(g.walk[i], o.walk[i]) || !slices.Equal(g.pt[i], o.pt[i]) {
			return false
		}
	}
	return true
}
