package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/ditto/planner/domain"
)

// makeJob builds a job from per-stage alpha and slot lists, beta for all stages and
// weighted edges.
func makeJob(name string, budget int, alphas []float64, slots []int, beta float64, edges map[domain.EdgeKey]float64) *domain.Job {
	job := domain.NewJob(name, budget)
	for i, a := range alphas {
		s := &domain.Stage{Name: string(rune('A' + i)), Alpha: a, Beta: beta}
		if slots != nil {
			s.Nslot = slots[i]
		}
		job.Stages[i] = s
	}
	for e, w := range edges {
		job.Edges[e] = w
	}
	return job
}

func diamondEdges(ab, ac, bd, cd float64) map[domain.EdgeKey]float64 {
	return map[domain.EdgeKey]float64{{From: 0, To: 1}: ab, {From: 0, To: 2}: ac, {From: 1, To: 3}: bd, {From: 2, To: 3}: cd}
}

func TestLongestPathChain(t *testing.T) {
	edges := map[domain.EdgeKey]float64{{From: 0, To: 1}: 0, {From: 1, To: 2}: 0, {From: 2, To: 3}: 0}
	job := makeJob("chain", 10, []float64{2, 4, 6, 8}, []int{1, 2, 3, 4}, 1, edges)

	cp, err := LongestPath(job.Stages, job.Edges)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, cp.Stages)
	assert.Equal(t, []PathEdge{{0, 1, 0}, {1, 2, 0}, {2, 3, 0}}, cp.Edges)
	assert.InDelta(t, 12.0, cp.Length, 1e-9)

	jct, err := PathCost(job.Stages, cp)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, jct, 1e-9)
}

func TestLongestPathPicksHeaviestBranch(t *testing.T) {
	job := makeJob("diamond", 4, []float64{1, 1, 1, 1}, []int{1, 1, 1, 1}, 0, diamondEdges(1, 3, 1, 1))

	cp, err := LongestPath(job.Stages, job.Edges)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 3}, cp.Stages)
	assert.Equal(t, []PathEdge{{0, 2, 3}, {2, 3, 1}}, cp.Edges)
	assert.InDelta(t, 7.0, cp.Length, 1e-9)
}

func TestLongestPathTieKeepsFirstRelaxation(t *testing.T) {
	job := makeJob("diamond", 4, []float64{1, 1, 1, 1}, []int{1, 1, 1, 1}, 0, diamondEdges(1, 1, 1, 1))

	cp, err := LongestPath(job.Stages, job.Edges)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 3}, cp.Stages)
	assert.InDelta(t, 5.0, cp.Length, 1e-9)
}

func TestLongestPathForest(t *testing.T) {
	edges := map[domain.EdgeKey]float64{{From: 0, To: 1}: 1, {From: 2, To: 3}: 4}
	job := makeJob("forest", 4, []float64{1, 1, 1, 1}, []int{1, 1, 1, 1}, 0, edges)

	cp, err := LongestPath(job.Stages, job.Edges)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, cp.Stages)
	assert.InDelta(t, 6.0, cp.Length, 1e-9)
}

func TestLongestPathSingleStage(t *testing.T) {
	job := makeJob("single", 4, []float64{8}, []int{4}, 0.5, nil)

	cp, err := LongestPath(job.Stages, job.Edges)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, cp.Stages)
	assert.Empty(t, cp.Edges)

	jct, err := PathCost(job.Stages, cp)
	require.NoError(t, err)
	assert.InDelta(t, 2.5, jct, 1e-9)
}

func TestLongestPathZeroSlotsIsInfeasible(t *testing.T) {
	job := makeJob("zero", 4, []float64{1, 1}, []int{1, 0}, 0, map[domain.EdgeKey]float64{{From: 0, To: 1}: 1})

	_, err := LongestPath(job.Stages, job.Edges)
	require.Error(t, err)
	assert.True(t, IsInfeasible(err))
}
