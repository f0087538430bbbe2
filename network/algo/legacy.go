package algo

import (
	"fmt"
	"math"

	"github.com/samber/lo"
)

// 旧格式邻接表：
//   步行表每项为[cost, to]，首项的cost为时刻表标记（1有0无），真正的边从第二项开始
//   公交表每项为[leavetime, cost]，首项的leavetime为下游站点编号，真正的班次从第二项开始

// Int32Of 将旧格式中的数值收窄为int32，越界时返回ErrValueOverflow
func Int32Of(v int64) (int32, error) {
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %d", ErrValueOverflow, v)
	}
	return int32(v), nil
}

func checkPairs(pairs [][2]int64) error {
	p, found := lo.Find(pairs, func(p [2]int64) bool {
		_, err0 := Int32Of(p[0])
		_, err1 := Int32Of(p[1])
		return err0 != nil || err1 != nil
	})
	if found {
		return fmt.Errorf("%w: pair %v", ErrValueOverflow, p)
	}
	return nil
}

// DecodeWalkList 拆分旧格式步行表为公交标记与步行边
func DecodeWalkList(pairs [][2]int64) (hasPT bool, edges []WalkEdge, err error) {
	if len(pairs) == 0 {
		return false, nil, ErrMissingFlagSlot
	}
	hasPT = pairs[0][0] == HAS_TIMETABLE_FLAG
	edges, err = DecodeWalkEdges(pairs[1:])
	if err != nil {
		return false, nil, err
	}
	return hasPT, edges, nil
}

// DecodeWalkEdges 解析不带首项标记的[cost, to]边列表
func DecodeWalkEdges(pairs [][2]int64) ([]WalkEdge, error) {
	if err := checkPairs(pairs); err != nil {
		return nil, err
	}
	return lo.Map(pairs, func(p [2]int64, _ int) WalkEdge {
		return WalkEdge{To: NodeID(p[1]), Cost: Cost(p[0])}
	}), nil
}

// DecodePTList 拆分旧格式公交表为目的地与班次
func DecodePTList(pairs [][2]int64, hasPT bool) (NodeMeta, []PTEdge, error) {
	if len(pairs) == 0 {
		if hasPT {
			return NodeMeta{}, nil, ErrMissingSentinel
		}
		return NodeMeta{PTDestination: -1}, []PTEdge{}, nil
	}
	dest, err := Int32Of(pairs[0][0])
	if err != nil {
		return NodeMeta{}, nil, fmt.Errorf("pt destination: %w", err)
	}
	if err := checkPairs(pairs[1:]); err != nil {
		return NodeMeta{}, nil, err
	}
	meta := NodeMeta{HasPT: hasPT, PTDestination: NodeID(dest)}
	departures := lo.Map(pairs[1:], func(p [2]int64, _ int) PTEdge {
		return PTEdge{LeaveTime: int32(p[0]), Cost: Cost(p[1])}
	})
	return meta, departures, nil
}

// DecodeNode 解析一个新节点的旧格式步行表与公交表
func DecodeNode(walkPairs, ptPairs [][2]int64) ([]WalkEdge, NodeMeta, []PTEdge, error) {
	hasPT, walk, err := DecodeWalkList(walkPairs)
	if err != nil {
		return nil, NodeMeta{}, nil, err
	}
	meta, pt, err := DecodePTList(ptPairs, hasPT)
	if err != nil {
		return nil, NodeMeta{}, nil, err
	}
	return walk, meta, pt, nil
}
