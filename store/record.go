package store

const (
	KIND_META = "meta"
	KIND_NODE = "node"
)

// Record 快照在MongoDB集合或bson文件中的一条文档
// 每个年份一条meta文档，以及每个节点一条node文档
type Record struct {
	Year int    `bson:"year"`
	Kind string `bson:"kind"`

	// node
	Node   int32      `bson:"node,omitempty"`
	Walk   [][2]int32 `bson:"walk,omitempty"` // [to, cost]
	HasPT  bool       `bson:"has_pt,omitempty"`
	PTDest int32      `bson:"pt_dest,omitempty"`
	PT     [][2]int32 `bson:"pt,omitempty"` // [leavetime, cost]
	Values []int32    `bson:"values,omitempty"`

	// meta
	NodeCount     int32     `bson:"node_count,omitempty"`
	PaddingOffset int32     `bson:"padding_offset,omitempty"`
	Decay         [][]int32 `bson:"decay,omitempty"` // 每个出发时段一项，purpose-major展平
	Lookup        []int32   `bson:"lookup,omitempty"`
}
