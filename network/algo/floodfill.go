package algo

import "sort"

// Floodfill 从start出发、以initCost为初始耗时做限时的步行+公交搜索
// 返回按出队顺序的可达节点与到达耗时，所有耗时均小于limit
// Dijkstra惰性删除：节点首次出队即为最短耗时，之后的重复项直接丢弃
func (g *Graph) Floodfill(start NodeID, initCost Cost, tripStartSeconds int32, limit Cost) Reached {
	reached := Reached{Start: start}
	// 起点距接入点已超过时限
	if initCost >= limit {
		return reached
	}
	visited := make([]bool, len(g.walk))
	queue := make(PriorityQueue, 0, 64)
	queue.Enqueue(initCost, start)
	for {
		cost, cur, ok := queue.Dequeue()
		if !ok {
			break
		}
		if visited[cur] {
			continue
		}
		visited[cur] = true
		reached.Nodes = append(reached.Nodes, cur)
		reached.Costs = append(reached.Costs, cost)

		for _, edge := range g.walk[cur] {
			if visited[edge.To] {
				continue
			}
			// 用int64求和，超大的边耗时不会回绕成负数
			if newCost := int64(cost) + int64(edge.Cost); newCost < int64(limit) {
				queue.Enqueue(Cost(newCost), edge.To)
			}
		}
		// 有时刻表的节点最多再加入一个公交到达
		if meta := g.meta[cur]; meta.HasPT && !visited[meta.PTDestination] {
			if arrival, ok := g.NextPTArrival(cur, cost, tripStartSeconds, limit); ok {
				queue.Enqueue(arrival, meta.PTDestination)
			}
		}
	}
	return reached
}

// NextPTArrival 在node于timeSoFar时刻到达后，乘坐最早一班可赶上的车到达下游站点的耗时
// 找不到班次或到达耗时不小于limit时ok为false
func (g *Graph) NextPTArrival(node NodeID, timeSoFar Cost, tripStartSeconds int32, limit Cost) (arrival Cost, ok bool) {
	departures := g.pt[node]
	// 到达该站的当日时刻，用int64避免溢出
	arrivalClock := int64(tripStartSeconds) + int64(timeSoFar)
	i := sort.Search(len(departures), func(i int) bool {
		return int64(departures[i].LeaveTime) >= arrivalClock
	})
	if i == len(departures) {
		return 0, false
	}
	next := departures[i]
	wait := int64(next.LeaveTime) - arrivalClock
	total := int64(timeSoFar) + wait + int64(next.Cost)
	if total >= int64(limit) {
		return 0, false
	}
	return Cost(total), true
}
