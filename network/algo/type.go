package algo

// 稠密节点编号，直接作为邻接表和节点价值数组的下标
type NodeID int32

// 自出发起经过的时间/s
type Cost int32

// 步行边
type WalkEdge struct {
	To   NodeID
	Cost Cost
}

// 一班公交的出发时刻（当日秒数）与车内时长
type PTEdge struct {
	LeaveTime int32
	Cost      Cost
}

// 节点的公交信息，与边表分开存放
type NodeMeta struct {
	HasPT         bool
	PTDestination NodeID // 所有班次统一驶向的下游站点
}

// 单个衰减曲线：下标为出行秒数，值为乘子
type DecayCurve []int32

// 某一出发时段的全部衰减曲线，按purpose下标
type DecayTable []DecayCurve

// subpurpose -> purpose
type PurposeLookup [SUBPURPOSES]int

// 一次floodfill的结果，按出队顺序
type Reached struct {
	Start NodeID
	Nodes []NodeID
	Costs []Cost
}

// 单个起点的可达性得分
type Score struct {
	ReachedCount int32
	Origin       NodeID
	Scores       [SUBPURPOSES]int64
	TargetNodes  []NodeID
	TargetCosts  []Cost
}
