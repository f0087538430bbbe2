package store

import (
	"errors"
	"fmt"

	"git.fiblab.net/sim/connectivity/network/algo"
	"github.com/samber/lo"
)

var (
	// 错误：快照缺少meta文档
	ErrNoMeta = errors.New("snapshot has no meta record")
	// 错误：快照节点不连续或数量不符
	ErrIncomplete = errors.New("snapshot node records are incomplete")
)

// Snapshot 某一年份的网络数据
type Snapshot struct {
	Year          int
	Walk          [][]algo.WalkEdge
	Meta          []algo.NodeMeta
	PT            [][]algo.PTEdge
	Values        []int32
	PaddingOffset algo.NodeID
	// 历史年份可以没有衰减表，此时为nil
	Decay  []algo.DecayTable
	Lookup *algo.PurposeLookup
}

func (s *Snapshot) NodeCount() int {
	return len(s.Walk)
}

// Records 转换为存储文档，meta在前
func (s *Snapshot) Records() []Record {
	records := make([]Record, 0, s.NodeCount()+1)
	meta := Record{
		Year:          s.Year,
		Kind:          KIND_META,
		NodeCount:     int32(s.NodeCount()),
		PaddingOffset: int32(s.PaddingOffset),
	}
	if s.Lookup != nil {
		meta.Lookup = lo.Map(s.Lookup[:], func(p int, _ int) int32 { return int32(p) })
	}
	for _, table := range s.Decay {
		flat := make([]int32, 0, len(table)*algo.DECAY_TABLE_LENGTH)
		for _, curve := range table {
			flat = append(flat, curve...)
		}
		meta.Decay = append(meta.Decay, flat)
	}
	records = append(records, meta)
	for i := range s.Walk {
		records = append(records, Record{
			Year:   s.Year,
			Kind:   KIND_NODE,
			Node:   int32(i),
			Walk:   lo.Map(s.Walk[i], func(e algo.WalkEdge, _ int) [2]int32 { return [2]int32{int32(e.To), int32(e.Cost)} }),
			HasPT:  s.Meta[i].HasPT,
			PTDest: int32(s.Meta[i].PTDestination),
			PT:     lo.Map(s.PT[i], func(e algo.PTEdge, _ int) [2]int32 { return [2]int32{e.LeaveTime, int32(e.Cost)} }),
			Values: s.Values[i*algo.SUBPURPOSES : (i+1)*algo.SUBPURPOSES],
		})
	}
	return records
}

// 按任意顺序接收文档并拼装快照
type assembler struct {
	year  int
	meta  *Record
	nodes []*Record
}

func newAssembler(year int) *assembler {
	return &assembler{year: year}
}

func (a *assembler) add(r Record) error {
	if r.Year != a.year {
		return fmt.Errorf("record of year %d in snapshot of year %d", r.Year, a.year)
	}
	switch r.Kind {
	case KIND_META:
		if a.meta != nil {
			return fmt.Errorf("duplicated meta record for year %d", a.year)
		}
		a.meta = &r
	case KIND_NODE:
		if r.Node < 0 {
			return fmt.Errorf("%w: negative node id %d", ErrIncomplete, r.Node)
		}
		for int(r.Node) >= len(a.nodes) {
			a.nodes = append(a.nodes, nil)
		}
		if a.nodes[r.Node] != nil {
			return fmt.Errorf("duplicated record for node %d", r.Node)
		}
		if len(r.Values) != algo.SUBPURPOSES {
			return fmt.Errorf("node %d has %d values, want %d", r.Node, len(r.Values), algo.SUBPURPOSES)
		}
		a.nodes[r.Node] = &r
	default:
		return fmt.Errorf("unknown record kind %q", r.Kind)
	}
	return nil
}

func (a *assembler) finish() (*Snapshot, error) {
	if a.meta == nil {
		return nil, ErrNoMeta
	}
	n := int(a.meta.NodeCount)
	if len(a.nodes) != n {
		return nil, fmt.Errorf("%w: %d node records, meta declares %d", ErrIncomplete, len(a.nodes), n)
	}
	s := &Snapshot{
		Year:          a.year,
		Walk:          make([][]algo.WalkEdge, n),
		Meta:          make([]algo.NodeMeta, n),
		PT:            make([][]algo.PTEdge, n),
		Values:        make([]int32, 0, n*algo.SUBPURPOSES),
		PaddingOffset: algo.NodeID(a.meta.PaddingOffset),
	}
	for i, r := range a.nodes {
		if r == nil {
			return nil, fmt.Errorf("%w: missing node %d", ErrIncomplete, i)
		}
		s.Walk[i] = lo.Map(r.Walk, func(p [2]int32, _ int) algo.WalkEdge {
			return algo.WalkEdge{To: algo.NodeID(p[0]), Cost: algo.Cost(p[1])}
		})
		s.Meta[i] = algo.NodeMeta{HasPT: r.HasPT, PTDestination: algo.NodeID(r.PTDest)}
		s.PT[i] = lo.Map(r.PT, func(p [2]int32, _ int) algo.PTEdge {
			return algo.PTEdge{LeaveTime: p[0], Cost: algo.Cost(p[1])}
		})
		s.Values = append(s.Values, r.Values...)
	}
	if len(a.meta.Lookup) > 0 {
		if len(a.meta.Lookup) != algo.SUBPURPOSES {
			return nil, fmt.Errorf("subpurpose lookup has %d entries, want %d", len(a.meta.Lookup), algo.SUBPURPOSES)
		}
		lookup := &algo.PurposeLookup{}
		for i, p := range a.meta.Lookup {
			lookup[i] = int(p)
		}
		s.Lookup = lookup
	}
	if len(a.meta.Decay) > 0 {
		if len(a.meta.Decay) != algo.TIME_OF_DAY_BUCKETS {
			return nil, fmt.Errorf("snapshot has %d decay tables, want %d", len(a.meta.Decay), algo.TIME_OF_DAY_BUCKETS)
		}
		for bucket, flat := range a.meta.Decay {
			if len(flat) == 0 || len(flat)%algo.DECAY_TABLE_LENGTH != 0 {
				return nil, fmt.Errorf("decay table %d has %d entries, not a multiple of %d", bucket, len(flat), algo.DECAY_TABLE_LENGTH)
			}
			table := lo.Map(lo.Chunk(flat, algo.DECAY_TABLE_LENGTH), func(c []int32, _ int) algo.DecayCurve {
				return algo.DecayCurve(c)
			})
			s.Decay = append(s.Decay, table)
		}
	}
	return s, nil
}

// FromRecords 由存储文档拼装快照
func FromRecords(year int, records []Record) (*Snapshot, error) {
	a := newAssembler(year)
	for _, r := range records {
		if err := a.add(r); err != nil {
			return nil, err
		}
	}
	return a.finish()
}
