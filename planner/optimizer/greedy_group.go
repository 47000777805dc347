package optimizer

import (
	"github.com/twitter/ditto/planner/domain"
)

type pathFunc func(map[int]*domain.Stage, map[domain.EdgeKey]float64) (*CriticalPath, error)

// GreedyGroup returns the order in which edges should be tried for grouping: repeatedly
// take the heaviest edge of the current critical path and pretend it is grouped by
// zeroing its weight. It stops once the critical path carries no weight. The job is not
// modified.
func GreedyGroup(job *domain.Job) ([]domain.EdgeKey, error) {
	return greedyGroup(job, LongestPath)
}

func greedyGroup(job *domain.Job, longestPath pathFunc) ([]domain.EdgeKey, error) {
	edges := make(map[domain.EdgeKey]float64, len(job.Edges))
	remaining := make(map[domain.EdgeKey]bool, len(job.Edges))
	for e, w := range job.Edges {
		edges[e] = w
		remaining[e] = true
	}

	order := []domain.EdgeKey{}
	for len(remaining) > 0 {
		cp, err := longestPath(job.Stages, edges)
		if err != nil {
			return nil, err
		}

		maxWeight := 0.0
		var maxEdge domain.EdgeKey
		for _, e := range cp.Edges {
			if e.Weight > maxWeight {
				maxWeight = e.Weight
				maxEdge = e.Key()
			}
		}
		if maxWeight == 0 {
			break
		}

		order = append(order, maxEdge)
		edges[maxEdge] = 0
		delete(remaining, maxEdge)
	}
	return order, nil
}
