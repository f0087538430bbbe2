package network

import (
	"fmt"
	"slices"

	"git.fiblab.net/sim/connectivity/network/algo"
)

// 修改前的状态，用于撤销
type revert struct {
	nodeCount int
	valuesLen int
	// 被覆盖前的步行表，按覆盖顺序
	saved  []WalkUpdate
	deltas []ValueDelta
}

// validate 在修改前检查请求，返回错误时网络保持不变
func (s *Scenario) validate(g *algo.Graph) error {
	if len(s.NewNodes) != s.NewNodesCount {
		return fmt.Errorf("%w: new_nodes_count is %d but %d new nodes supplied", ErrInvalidRequest, s.NewNodesCount, len(s.NewNodes))
	}
	existing := g.NodeCount()
	total := existing + len(s.NewNodes)
	checkEdges := func(edges []algo.WalkEdge) error {
		for _, e := range edges {
			if e.To < 0 || int(e.To) >= total {
				return fmt.Errorf("%w: walk edge to %d with %d nodes", algo.ErrNodeOutOfRange, e.To, total)
			}
			if e.Cost < 0 {
				return fmt.Errorf("%w: walk edge to %d costs %d", algo.ErrNegativeCost, e.To, e.Cost)
			}
		}
		return nil
	}
	for i, node := range s.NewNodes {
		if err := checkEdges(node.Walk); err != nil {
			return fmt.Errorf("%w: new node %d: %w", ErrInvalidRequest, existing+i, err)
		}
		if !node.Meta.HasPT {
			continue
		}
		if dest := node.Meta.PTDestination; dest < 0 || int(dest) >= total {
			return fmt.Errorf("%w: new node %d: pt destination %d out of range", ErrInvalidRequest, existing+i, dest)
		}
		for _, e := range node.PT {
			if e.Cost < 0 {
				return fmt.Errorf("%w: new node %d: departure at %d costs %d", ErrInvalidRequest, existing+i, e.LeaveTime, e.Cost)
			}
		}
	}
	for _, u := range s.WalkUpdates {
		if u.Node < 0 || int(u.Node) >= existing {
			return fmt.Errorf("%w: walk update of unknown node %d", ErrInvalidRequest, u.Node)
		}
		if err := checkEdges(u.Edges); err != nil {
			return fmt.Errorf("%w: walk update of node %d: %w", ErrInvalidRequest, u.Node, err)
		}
	}
	for _, d := range s.ValueDeltas {
		if d.Node < 0 || int(d.Node) >= total {
			return fmt.Errorf("%w: new building on unknown node %d", ErrInvalidRequest, d.Node)
		}
		if d.Subpurpose < 0 || d.Subpurpose >= algo.SUBPURPOSES {
			return fmt.Errorf("%w: new building with subpurpose %d", ErrInvalidRequest, d.Subpurpose)
		}
	}
	return nil
}

// 检查三个数组长度一致，不一致说明共享网络已不可信
func checkShape(g *algo.Graph, wantNodes int, step string) {
	walk, pt, values := g.Lengths()
	if walk != wantNodes || pt != wantNodes {
		log.Panicf("%s: node count mismatch, walk=%d pt=%d want=%d", step, walk, pt, wantNodes)
	}
	if values != wantNodes*algo.SUBPURPOSES {
		log.Panicf("%s: values length %d mismatch with %d nodes", step, values, wantNodes)
	}
}

// apply 依次追加新节点、扩展已有节点步行表、扩展价值数组、叠加价值增量
// 须持有写锁且s已通过validate
func (s *Scenario) apply(g *algo.Graph) *revert {
	walk, _, values := g.Lengths()
	r := &revert{nodeCount: walk, valuesLen: values}
	for _, node := range s.NewNodes {
		g.AppendNode(node.Walk, node.Meta, node.PT)
	}
	if walk, pt, _ := g.Lengths(); walk != r.nodeCount+s.NewNodesCount || pt != walk {
		log.Panicf("append new nodes: walk=%d pt=%d, want %d", walk, pt, r.nodeCount+s.NewNodesCount)
	}
	for _, u := range s.WalkUpdates {
		old := g.Walk(u.Node)
		r.saved = append(r.saved, WalkUpdate{Node: u.Node, Edges: old})
		// Clip保证追加时不写入旧表的底层数组
		g.SetWalk(u.Node, append(slices.Clip(old), u.Edges...))
	}
	g.ExtendValues(len(s.NewNodes))
	checkShape(g, r.nodeCount+len(s.NewNodes), "extend values")
	for _, d := range s.ValueDeltas {
		g.AddValue(d.Node, d.Subpurpose, d.Delta)
	}
	r.deltas = s.ValueDeltas
	return r
}

// rollback 按相反顺序撤销apply
func (r *revert) rollback(g *algo.Graph) {
	for i := len(r.deltas) - 1; i >= 0; i-- {
		d := r.deltas[i]
		g.AddValue(d.Node, d.Subpurpose, -d.Delta)
	}
	g.TruncateValues(r.valuesLen)
	// 同一节点可能被更新多次，倒序恢复才能回到最初的步行表
	for i := len(r.saved) - 1; i >= 0; i-- {
		g.SetWalk(r.saved[i].Node, r.saved[i].Edges)
	}
	g.TruncateNodes(r.nodeCount)
	checkShape(g, r.nodeCount, "rollback")
}
