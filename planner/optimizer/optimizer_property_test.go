package optimizer

import (
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/prop"

	"github.com/twitter/ditto/planner/domain"
	"github.com/twitter/ditto/tests/testhelpers"
)

// layeredLongestPath finishes stages in depth order: each stage ends at its own cost plus
// the latest of its predecessors' finish times and edge weights.
func layeredLongestPath(job *domain.Job) (float64, error) {
	layers, err := domain.Layers(job)
	if err != nil {
		return 0, err
	}
	parents := map[int][]domain.EdgeKey{}
	for e := range job.Edges {
		parents[e.To] = append(parents[e.To], e)
	}

	finish := map[int]float64{}
	longest := 0.0
	for _, layer := range layers {
		for _, id := range layer {
			cost, err := job.Stages[id].Cost()
			if err != nil {
				return 0, err
			}
			start := 0.0
			for _, e := range parents[id] {
				start = math.Max(start, finish[e.From]+job.Edges[e])
			}
			finish[id] = start + cost
			longest = math.Max(longest, finish[id])
		}
	}
	return longest, nil
}

func Test_Allocate_PropertyTest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("Allocate spends the whole budget with at least one slot per stage", prop.ForAll(
		func(job *domain.Job) bool {
			if err := Allocate(job); err != nil {
				t.Logf("allocate %s: %v", job.Name, err)
				return false
			}
			total := 0
			for _, s := range job.Stages {
				if s.Nslot < 1 {
					return false
				}
				total += s.Nslot
			}
			return total == job.Nslot
		},
		testhelpers.GopterGenJob(8),
	))

	properties.Property("Allocate is idempotent", prop.ForAll(
		func(job *domain.Job) bool {
			if err := Allocate(job); err != nil {
				return false
			}
			first := map[int]int{}
			for id, s := range job.Stages {
				first[id] = s.Nslot
			}
			if err := Allocate(job); err != nil {
				return false
			}
			for id, s := range job.Stages {
				if first[id] != s.Nslot {
					return false
				}
			}
			return true
		},
		testhelpers.GopterGenJob(8),
	))

	properties.TestingRun(t)
}

func Test_GreedyGroup_PropertyTest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("GreedyGroup yields distinct weighted edges and leaves the job alone", prop.ForAll(
		func(job *domain.Job) bool {
			if err := Allocate(job); err != nil {
				return false
			}
			before := job.Copy()
			order, err := GreedyGroup(job)
			if err != nil {
				return false
			}
			seen := map[domain.EdgeKey]bool{}
			for _, e := range order {
				w, ok := job.Edges[e]
				if !ok || w <= 0 || seen[e] {
					return false
				}
				seen[e] = true
			}
			return reflect.DeepEqual(before, job)
		},
		testhelpers.GopterGenJob(8),
	))

	properties.Property("critical path matches a layer by layer longest path", prop.ForAll(
		func(job *domain.Job) bool {
			if err := Allocate(job); err != nil {
				return false
			}
			cp, err := LongestPath(job.Stages, job.Edges)
			if err != nil {
				return false
			}
			cost, err := PathCost(job.Stages, cp)
			if err != nil {
				return false
			}
			want, err := layeredLongestPath(job)
			if err != nil {
				return false
			}
			if math.Abs(cp.Length-want) > 1e-9 {
				t.Logf("%s: got %g over %v, want %g", job.Name, cp.Length, cp.Stages, want)
				return false
			}
			return math.Abs(cost-cp.Length) < 1e-9
		},
		testhelpers.GopterGenJob(8),
	))

	properties.TestingRun(t)
}

func Test_Optimize_PropertyTest(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every strategy is infeasible or places every stage within capacity", prop.ForAll(
		func(job *domain.Job, servers domain.Servers) bool {
			for _, s := range AllStrategies {
				j, pool := job.Copy(), servers.Copy()
				plan, err := NewJointOptimizer(nil, nil).Optimize(j, pool, s)
				if err != nil {
					if !IsInfeasible(err) {
						t.Logf("%s on %s: unexpected error %v", s, job.Name, err)
						return false
					}
					continue
				}
				if len(plan.Assignment) != len(j.Stages) {
					return false
				}
				for _, server := range pool {
					if server.AvailableSlots < 0 || server.AvailableSlots != server.TotalSlots-server.UsedSlots() {
						return false
					}
				}
				want, err := layeredLongestPath(j)
				if err != nil || math.Abs(plan.JCT-want) > 1e-9 || math.Abs(plan.JCT-plan.CriticalPath.Length) > 1e-9 {
					t.Logf("%s on %s: jct %g, want %g", s, job.Name, plan.JCT, want)
					return false
				}
			}
			return true
		},
		testhelpers.GopterGenJob(8),
		testhelpers.GopterGenServers(4, 40),
	))

	properties.TestingRun(t)
}
