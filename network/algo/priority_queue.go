package algo

import "container/heap"

// 优先队列元素
type Item struct {
	Value    NodeID
	Priority Cost
	Index    int // 在堆中的位置，由heap.Interface维护
}

// 最小堆，按Priority升序；Priority相同时按节点编号升序，保证出队顺序确定
type PriorityQueue []*Item

func (pq PriorityQueue) Len() int { return len(pq) }

func (pq PriorityQueue) Less(i, j int) bool {
	if pq[i].Priority == pq[j].Priority {
		return pq[i].Value < pq[j].Value
	}
	return pq[i].Priority < pq[j].Priority
}

func (pq PriorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *PriorityQueue) Push(x any) {
	item := x.(*Item)
	item.Index = len(*pq)
	*pq = append(*pq, item)
}

func (pq *PriorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.Index = -1
	*pq = old[:n-1]
	return item
}

// Enqueue 压入(cost, node)
func (pq *PriorityQueue) Enqueue(cost Cost, node NodeID) {
	heap.Push(pq, &Item{Value: node, Priority: cost})
}

// Dequeue 弹出cost最小的元素，队列为空时ok为false
func (pq *PriorityQueue) Dequeue() (cost Cost, node NodeID, ok bool) {
	if pq.Len() == 0 {
		return 0, 0, false
	}
	item := heap.Pop(pq).(*Item)
	return item.Priority, item.Value, true
}
