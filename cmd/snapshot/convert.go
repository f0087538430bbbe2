package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"git.fiblab.net/sim/connectivity/network/algo"
	"git.fiblab.net/sim/connectivity/store"
	"github.com/samber/lo"
)

// 原始数据文件名
const (
	WALK_FILE    = "p1_main_nodes.json"
	PT_FILE      = "p2_main_nodes.json"
	VALUES_FILE  = "node_values.json"
	LOOKUP_FILE  = "subpurpose_purpose_lookup.json"
	PADDING_FILE = "padding.json"
)

// 四个出发时段衰减表文件的小时后缀
var DECAY_FILE_HOURS = [algo.TIME_OF_DAY_BUCKETS]int{7, 10, 16, 19}

func readJSON(dir, name string, v any) error {
	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// {"node": [[a, b], ...]} 转换为按节点编号的列表，编号须为0..n-1
func denseLists(m map[string][][2]int64, name string) ([][][2]int64, error) {
	lists := make([][][2]int64, len(m))
	seen := make([]bool, len(m))
	for key, pairs := range m {
		id, err := strconv.Atoi(key)
		if err != nil || id < 0 || id >= len(m) {
			return nil, fmt.Errorf("%s: invalid node id %q with %d nodes", name, key, len(m))
		}
		lists[id] = pairs
		seen[id] = true
	}
	for id, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("%s: missing node %d", name, id)
		}
	}
	return lists, nil
}

// Convert 读取dir下的原始JSON文件生成快照，withDecay为false时不读取衰减表与lookup
func Convert(dir string, year int, withDecay bool) (*store.Snapshot, error) {
	var walkMap, ptMap map[string][][2]int64
	if err := readJSON(dir, WALK_FILE, &walkMap); err != nil {
		return nil, err
	}
	if err := readJSON(dir, PT_FILE, &ptMap); err != nil {
		return nil, err
	}
	walkLists, err := denseLists(walkMap, WALK_FILE)
	if err != nil {
		return nil, err
	}
	n := len(walkLists)
	s := &store.Snapshot{
		Year: year,
		Walk: make([][]algo.WalkEdge, n),
		Meta: make([]algo.NodeMeta, n),
		PT:   make([][]algo.PTEdge, n),
	}
	for id, pairs := range walkLists {
		hasPT, edges, err := algo.DecodeWalkList(pairs)
		if err != nil {
			return nil, fmt.Errorf("%s node %d: %w", WALK_FILE, id, err)
		}
		// 文件中的公交表为[cost, leavetime]
		var ptPairs [][2]int64
		if raw, ok := ptMap[strconv.Itoa(id)]; ok {
			ptPairs = lo.Map(raw, func(p [2]int64, _ int) [2]int64 { return [2]int64{p[1], p[0]} })
		}
		meta, departures, err := algo.DecodePTList(ptPairs, hasPT)
		if err != nil {
			return nil, fmt.Errorf("%s node %d: %w", PT_FILE, id, err)
		}
		s.Walk[id], s.Meta[id], s.PT[id] = edges, meta, departures
	}
	if len(ptMap) > n {
		return nil, fmt.Errorf("%s has %d nodes but %s has %d", PT_FILE, len(ptMap), WALK_FILE, n)
	}

	var rows [][]int32
	if err := readJSON(dir, VALUES_FILE, &rows); err != nil {
		return nil, err
	}
	if len(rows) != n {
		return nil, fmt.Errorf("%s has %d rows, want %d", VALUES_FILE, len(rows), n)
	}
	s.Values = make([]int32, 0, n*algo.SUBPURPOSES)
	for id, row := range rows {
		if len(row) != algo.SUBPURPOSES {
			return nil, fmt.Errorf("%s row %d has %d values, want %d", VALUES_FILE, id, len(row), algo.SUBPURPOSES)
		}
		s.Values = append(s.Values, row...)
	}

	// 文件中记录的是无价值节点占用的价值格数
	var padding int
	if err := readJSON(dir, PADDING_FILE, &padding); err != nil {
		return nil, err
	}
	if padding < 0 || padding%algo.SUBPURPOSES != 0 {
		return nil, fmt.Errorf("%s: padding %d is not a multiple of %d", PADDING_FILE, padding, algo.SUBPURPOSES)
	}
	s.PaddingOffset = algo.NodeID(padding / algo.SUBPURPOSES)

	if !withDecay {
		return s, nil
	}
	lookup := &algo.PurposeLookup{}
	if err := readJSON(dir, LOOKUP_FILE, lookup); err != nil {
		return nil, err
	}
	s.Lookup = lookup
	for _, hour := range DECAY_FILE_HOURS {
		name := fmt.Sprintf("travel_time_relationships_%d.json", hour)
		var flat []int32
		if err := readJSON(dir, name, &flat); err != nil {
			return nil, err
		}
		if len(flat) == 0 || len(flat)%algo.DECAY_TABLE_LENGTH != 0 {
			return nil, fmt.Errorf("%s has %d entries, not a multiple of %d", name, len(flat), algo.DECAY_TABLE_LENGTH)
		}
		table := lo.Map(lo.Chunk(flat, algo.DECAY_TABLE_LENGTH), func(c []int32, _ int) algo.DecayCurve {
			return algo.DecayCurve(c)
		})
		s.Decay = append(s.Decay, table)
	}
	return s, nil
}
