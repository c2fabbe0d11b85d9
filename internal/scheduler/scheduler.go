package scheduler

import "container/heap"

// Scheduler performs Kahn-style topological scheduling over nodes identified
// by their insertion index.
//
// A node becomes ready once every node it depends on has been completed.
// When several nodes are ready at once, Next returns the one with the lowest
// index, so two schedulers built from the same graph always agree.
//
// A Scheduler is not safe for concurrent use; the parallel runner drives it
// from a single coordinating goroutine.
type Scheduler struct {
	indeg      []int
	dependents [][]int
	ready      indexHeap
	issued     int
}

// New creates a scheduler. dependents[i] lists the nodes that depend on node
// i; duplicate entries count as separate dependencies and must be completed
// as such, so callers should de-duplicate first.
func New(dependents [][]int) *Scheduler {
	s := &Scheduler{
		indeg:      make([]int, len(dependents)),
		dependents: dependents,
	}
	for _, ds := range dependents {
		for _, d := range ds {
			s.indeg[d]++
		}
	}
	for i, n := range s.indeg {
		if n == 0 {
			s.ready = append(s.ready, i)
		}
	}
	heap.Init(&s.ready)
	return s
}

// Len returns the total number of nodes under management.
func (s *Scheduler) Len() int {
	return len(s.indeg)
}

// Next pops the lowest-indexed ready node. It returns false when nothing is
// ready right now; that does not mean the schedule is finished.
func (s *Scheduler) Next() (int, bool) {
	if s.ready.Len() == 0 {
		return 0, false
	}
	s.issued++
	return heap.Pop(&s.ready).(int), true
}

// Complete marks node i as finished and releases any dependents whose last
// dependency it was.
func (s *Scheduler) Complete(i int) {
	for _, d := range s.dependents[i] {
		s.indeg[d]--
		if s.indeg[d] == 0 {
			heap.Push(&s.ready, d)
		}
	}
}

// Issued returns how many nodes Next has handed out so far.
func (s *Scheduler) Issued() int {
	return s.issued
}

// Order runs a full sequential schedule and returns the resulting order. If
// the graph has a cycle the order is shorter than Len.
func Order(dependents [][]int) []int {
	s := New(dependents)
	out := make([]int, 0, s.Len())
	for {
		i, ok := s.Next()
		if !ok {
			break
		}
		out = append(out, i)
		s.Complete(i)
	}
	return out
}

type indexHeap []int

func (h indexHeap) Len() int           { return len(h) }
func (h indexHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h indexHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *indexHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *indexHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
