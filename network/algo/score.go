package algo

import "fmt"

// NewTargetLookup 把目标节点列表转换为以节点编号为下标的布尔表
func NewTargetLookup(nodeCount int, targets []NodeID) ([]bool, error) {
	lookup := make([]bool, nodeCount)
	for _, id := range targets {
		if id < 0 || int(id) >= nodeCount {
			return nil, fmt.Errorf("%w: target destination %d with %d nodes", ErrNodeOutOfRange, id, nodeCount)
		}
		lookup[id] = true
	}
	return lookup, nil
}

// ValidateDecay 检查衰减表覆盖0..TIME_LIMIT秒且lookup中的purpose都存在
func ValidateDecay(table DecayTable, lookup *PurposeLookup) error {
	for p, curve := range table {
		if len(curve) < DECAY_TABLE_LENGTH {
			return fmt.Errorf("decay curve of purpose %d has %d entries, want %d", p, len(curve), DECAY_TABLE_LENGTH)
		}
	}
	for sub, p := range lookup {
		if p < 0 || p >= len(table) {
			return fmt.Errorf("subpurpose %d maps to unknown purpose %d", sub, p)
		}
	}
	return nil
}

// Score 汇总一次floodfill的可达性得分
// targets为nil时不收集目标节点；allTargets为true时收集全部可达节点
func (g *Graph) Score(reached Reached, table DecayTable, lookup *PurposeLookup, targets []bool, allTargets bool) Score {
	score := Score{
		ReachedCount: int32(len(reached.Nodes)),
		Origin:       reached.Start,
		TargetNodes:  []NodeID{},
		TargetCosts:  []Cost{},
	}
	for i, node := range reached.Nodes {
		cost := reached.Costs[i]
		// padding节点没有价值行
		if node >= g.paddingOffset {
			row := g.values[int(node)*SUBPURPOSES : int(node+1)*SUBPURPOSES]
			for sub, value := range row {
				multiplier := table[lookup[sub]][cost]
				score.Scores[sub] += int64(value) * int64(multiplier)
			}
		}
		if allTargets || (int(node) < len(targets) && targets[node]) {
			score.TargetNodes = append(score.TargetNodes, node)
			score.TargetCosts = append(score.TargetCosts, cost)
		}
	}
	return score
}
