package algo

import "errors"

const (
	// 土地利用细分类数量
	SUBPURPOSES = 32

	// 单次floodfill的出行时间上限/s
	TIME_LIMIT Cost = 3600
	// 衰减表长度，覆盖0..TIME_LIMIT秒
	DECAY_TABLE_LENGTH = int(TIME_LIMIT) + 1

	// 出发时刻分段数
	TIME_OF_DAY_BUCKETS = 4
	// 出发时刻分段点（当日秒数）
	TIME_OF_DAY_10H = 3600 * 10
	TIME_OF_DAY_16H = 3600 * 16
	TIME_OF_DAY_19H = 3600 * 19

	// 步行邻接表首项的标记值：该点同时有公交时刻表
	HAS_TIMETABLE_FLAG = 1
)

var (
	// 错误：邻接表为空（缺少首项标记）
	ErrMissingFlagSlot = errors.New("walk adjacency list has no flag slot")
	// 错误：标记有时刻表但公交表缺少首项目的地
	ErrMissingSentinel = errors.New("pt adjacency list has no destination sentinel")
	// 错误：边权为负
	ErrNegativeCost = errors.New("edge cost must be non-negative")
	// 错误：旧格式中的数值超出int32
	ErrValueOverflow = errors.New("value overflows int32")
	// 错误：节点编号越界
	ErrNodeOutOfRange = errors.New("node id out of range")
	// 错误：数组长度不一致
	ErrShapeMismatch = errors.New("network arrays have inconsistent lengths")
)
