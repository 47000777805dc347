package optimizer

import (
	"fmt"

	"github.com/twitter/ditto/planner/domain"
)

// PathEdge is one hop of a critical path with its current weight.
type PathEdge struct {
	From   int
	To     int
	Weight float64
}

func (e PathEdge) Key() domain.EdgeKey {
	return domain.EdgeKey{From: e.From, To: e.To}
}

func (e PathEdge) String() string {
	return fmt.Sprintf("%d-(%g)->%d", e.From, e.Weight, e.To)
}

// CriticalPath is the heaviest source-to-node path of the DAG, counting node costs
// (alpha/nslot + beta) and edge weights.
type CriticalPath struct {
	Stages []int
	Edges  []PathEdge
	Length float64
}

// frame is one level of the explicit traversal stack: the node being expanded and the
// index of its next child.
type frame struct {
	node int
	next int
}

// LongestPath computes the critical path under the current slot assignment.
//
// Every source is expanded in ascending id order. Expanding u relaxes each child v
// (ascending) with dist(u)+w(u,v)+cost(v) and descends into v as soon as all its
// predecessors have relaxed it, so every node is finalized after its predecessors.
// Ties keep the first relaxation, and the lowest id wins among nodes of equal
// distance. A stage with no slots makes the job infeasible.
func LongestPath(stages map[int]*domain.Stage, edges map[domain.EdgeKey]float64) (*CriticalPath, error) {
	ids := (&domain.Job{Stages: stages}).StageIDs()
	if len(ids) == 0 {
		return &CriticalPath{}, nil
	}

	cost := make(map[int]float64, len(ids))
	for _, id := range ids {
		c, err := stageCost(stages, id)
		if err != nil {
			return nil, err
		}
		cost[id] = c
	}

	children := make(map[int][]int, len(ids))
	inDegree := make(map[int]int, len(ids))
	for _, e := range domain.SortedEdgeKeys(edges) {
		children[e.From] = append(children[e.From], e.To)
		inDegree[e.To]++
	}

	dist := make(map[int]float64, len(ids))
	reached := make(map[int]bool, len(ids))
	path := make(map[int][]int, len(ids))

	// sources are fixed before the walk, which drains inDegree as it goes
	sources := []int{}
	for _, id := range ids {
		if inDegree[id] == 0 {
			sources = append(sources, id)
		}
	}

	for _, src := range sources {
		dist[src] = cost[src]
		reached[src] = true
		path[src] = []int{src}

		stack := []frame{{node: src}}
		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			u := top.node
			if top.next >= len(children[u]) {
				stack = stack[:len(stack)-1]
				continue
			}
			v := children[u][top.next]
			top.next++

			inDegree[v]--
			candidate := dist[u] + edges[domain.EdgeKey{From: u, To: v}] + cost[v]
			if !reached[v] || candidate > dist[v] {
				dist[v] = candidate
				reached[v] = true
				p := make([]int, len(path[u]), len(path[u])+1)
				copy(p, path[u])
				path[v] = append(p, v)
			}
			if inDegree[v] == 0 {
				stack = append(stack, frame{node: v})
			}
		}
	}

	best := -1
	for _, id := range ids {
		if !reached[id] {
			continue
		}
		if best < 0 || dist[id] > dist[best] {
			best = id
		}
	}
	if best < 0 {
		return nil, fmt.Errorf("no source stage found among %d stages", len(ids))
	}

	cp := &CriticalPath{Stages: path[best], Length: dist[best]}
	for i := 0; i+1 < len(cp.Stages); i++ {
		from, to := cp.Stages[i], cp.Stages[i+1]
		cp.Edges = append(cp.Edges, PathEdge{From: from, To: to, Weight: edges[domain.EdgeKey{From: from, To: to}]})
	}
	return cp, nil
}

// PathCost sums start_node_cost + Σ(edge_weight + next_node_cost) along the path. It
// is the reported job completion time.
func PathCost(stages map[int]*domain.Stage, cp *CriticalPath) (float64, error) {
	if len(cp.Stages) == 0 {
		return 0, nil
	}
	total, err := stageCost(stages, cp.Stages[0])
	if err != nil {
		return 0, err
	}
	for _, e := range cp.Edges {
		c, err := stageCost(stages, e.To)
		if err != nil {
			return 0, err
		}
		total += e.Weight + c
	}
	return total, nil
}

func stageCost(stages map[int]*domain.Stage, id int) (float64, error) {
	s, ok := stages[id]
	if !ok {
		return 0, fmt.Errorf("unknown stage %d", id)
	}
	c, err := s.Cost()
	if err != nil {
		return 0, infeasiblef("stage %d: %v", id, err)
	}
	return c, nil
}
