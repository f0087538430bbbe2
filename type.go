package main

import (
	"encoding/json"
	"fmt"

	"git.fiblab.net/sim/connectivity/network"
	"git.fiblab.net/sim/connectivity/network/algo"
)

// POST /floodfill_pt/ 的请求体
type FloodfillRequest struct {
	StartNodes       []int32 `json:"start_nodes_user_input"`
	InitTravelTimes  []int32 `json:"init_travel_times_user_input"`
	TripStartSeconds int32   `json:"trip_start_seconds"`
	Year             int     `json:"year"`
	// 新节点的旧格式步行表[cost, to]，首项为时刻表标记
	GraphWalkAdditions [][][2]int64 `json:"graph_walk_additions"`
	// 新节点的旧格式公交表[leavetime, cost]，首项的leavetime为目的地
	GraphPTAdditions [][][2]int64 `json:"graph_pt_additions"`
	NewNodesCount    int          `json:"new_nodes_count"`
	// 已有节点追加的步行边[cost, to]
	GraphWalkUpdatesKeys      []int32      `json:"graph_walk_updates_keys"`
	GraphWalkUpdatesAdditions [][][2]int64 `json:"graph_walk_updates_additions"`
	// [value, node, subpurpose]
	NewBuildAdditions     [][]int64 `json:"new_build_additions"`
	TargetDestinations    []int32   `json:"target_destinations"`
	MaxTravelTime         int32     `json:"max_travel_time"`
	ReturnAllDestinations bool      `json:"return_all_destinations"`
}

// ToNetworkRequest 解析旧格式邻接表，检查各列表长度是否一致
func (in *FloodfillRequest) ToNetworkRequest() (*network.Request, error) {
	if len(in.StartNodes) != len(in.InitTravelTimes) {
		return nil, fmt.Errorf("%d start nodes but %d init travel times", len(in.StartNodes), len(in.InitTravelTimes))
	}
	if len(in.GraphWalkAdditions) != len(in.GraphPTAdditions) {
		return nil, fmt.Errorf("%d walk additions but %d pt additions", len(in.GraphWalkAdditions), len(in.GraphPTAdditions))
	}
	if len(in.GraphWalkUpdatesKeys) != len(in.GraphWalkUpdatesAdditions) {
		return nil, fmt.Errorf("%d walk update keys but %d walk update additions", len(in.GraphWalkUpdatesKeys), len(in.GraphWalkUpdatesAdditions))
	}
	req := &network.Request{
		Origins:          make([]network.Origin, len(in.StartNodes)),
		TripStartSeconds: in.TripStartSeconds,
		Year:             in.Year,
		Targets:          make([]algo.NodeID, len(in.TargetDestinations)),
		AllTargets:       in.ReturnAllDestinations,
		MaxTravelTime:    algo.Cost(in.MaxTravelTime),
	}
	for i, start := range in.StartNodes {
		req.Origins[i] = network.Origin{Start: algo.NodeID(start), InitCost: algo.Cost(in.InitTravelTimes[i])}
	}
	for i, id := range in.TargetDestinations {
		req.Targets[i] = algo.NodeID(id)
	}
	s := &req.Scenario
	s.NewNodesCount = in.NewNodesCount
	for i := range in.GraphWalkAdditions {
		walk, meta, pt, err := algo.DecodeNode(in.GraphWalkAdditions[i], in.GraphPTAdditions[i])
		if err != nil {
			return nil, fmt.Errorf("new node %d: %w", i, err)
		}
		s.NewNodes = append(s.NewNodes, network.NewNode{Walk: walk, Meta: meta, PT: pt})
	}
	for i, key := range in.GraphWalkUpdatesKeys {
		edges, err := algo.DecodeWalkEdges(in.GraphWalkUpdatesAdditions[i])
		if err != nil {
			return nil, fmt.Errorf("walk update of node %d: %w", key, err)
		}
		s.WalkUpdates = append(s.WalkUpdates, network.WalkUpdate{Node: algo.NodeID(key), Edges: edges})
	}
	for i, b := range in.NewBuildAdditions {
		if len(b) != 3 {
			return nil, fmt.Errorf("new build addition %d has %d fields, want [value, node, subpurpose]", i, len(b))
		}
		var fields [3]int32
		for j, v := range b {
			f, err := algo.Int32Of(v)
			if err != nil {
				return nil, fmt.Errorf("new build addition %d: %w", i, err)
			}
			fields[j] = f
		}
		s.ValueDeltas = append(s.ValueDeltas, network.ValueDelta{
			Node:       algo.NodeID(fields[1]),
			Subpurpose: int(fields[2]),
			Delta:      fields[0],
		})
	}
	return req, nil
}

// 单个起点的结果，编码为[reached_count, origin_id, [32]scores, target_ids, target_costs]
type FloodfillResult algo.Score

func (r FloodfillResult) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.ReachedCount, r.Origin, r.Scores, r.TargetNodes, r.TargetCosts})
}

func (r *FloodfillResult) UnmarshalJSON(data []byte) error {
	var fields []json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if len(fields) != 5 {
		return fmt.Errorf("floodfill result has %d fields, want 5", len(fields))
	}
	for i, v := range []any{&r.ReachedCount, &r.Origin, &r.Scores, &r.TargetNodes, &r.TargetCosts} {
		if err := json.Unmarshal(fields[i], v); err != nil {
			return fmt.Errorf("floodfill result field %d: %w", i, err)
		}
	}
	return nil
}

// 结果顺序与请求中的起点顺序一致
type FloodfillResponse []FloodfillResult
