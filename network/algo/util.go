package algo

// TimeOfDayIndex 输入出发时刻（当日秒数）返回衰减表时段下标
func TimeOfDayIndex(tripStartSeconds int32) int {
	switch {
	case tripStartSeconds < TIME_OF_DAY_10H:
		return 0
	case tripStartSeconds < TIME_OF_DAY_16H:
		return 1
	case tripStartSeconds < TIME_OF_DAY_19H:
		return 2
	default:
		return 3
	}
}
