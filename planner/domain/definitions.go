package domain

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Stage is one node of a job DAG. Its execution time is Alpha/Nslot + Beta.
type Stage struct {
	Name  string
	Alpha float64 // parallelizable work
	Beta  float64 // fixed overhead, independent of Nslot
	Nslot int     // degree of parallelism
}

func (s *Stage) String() string {
	return fmt.Sprintf("%s(alpha:%g, beta:%g, nslot:%d)", s.Name, s.Alpha, s.Beta, s.Nslot)
}

// Cost is the stage execution time under its current Nslot.
func (s *Stage) Cost() (float64, error) {
	if s.Nslot <= 0 {
		return 0, fmt.Errorf("stage %s has %d slots", s.Name, s.Nslot)
	}
	return s.Alpha/float64(s.Nslot) + s.Beta, nil
}

// EdgeKey identifies the dependency From -> To.
type EdgeKey struct {
	From int
	To   int
}

func (e EdgeKey) String() string {
	return fmt.Sprintf("(%d,%d)", e.From, e.To)
}

// Job is a DAG of stages. An edge exists iff its key is present in Edges; the value is
// the data-transfer cost between the two stages.
type Job struct {
	Name   string
	Stages map[int]*Stage
	Edges  map[EdgeKey]float64
	Nslot  int // total slot budget for the job
}

func NewJob(name string, nslot int) *Job {
	return &Job{
		Name:   name,
		Stages: map[int]*Stage{},
		Edges:  map[EdgeKey]float64{},
		Nslot:  nslot,
	}
}

// Copy returns a deep copy so a strategy trial cannot see another trial's mutations.
func (j *Job) Copy() *Job {
	c := NewJob(j.Name, j.Nslot)
	for id, s := range j.Stages {
		st := *s
		c.Stages[id] = &st
	}
	for e, w := range j.Edges {
		c.Edges[e] = w
	}
	return c
}

// StageIDs returns the stage ids in ascending order.
func (j *Job) StageIDs() []int {
	ids := make([]int, 0, len(j.Stages))
	for id := range j.Stages {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// EdgeKeys returns the edge keys ordered by (From, To).
func (j *Job) EdgeKeys() []EdgeKey {
	return SortedEdgeKeys(j.Edges)
}

func SortedEdgeKeys(edges map[EdgeKey]float64) []EdgeKey {
	keys := make([]EdgeKey, 0, len(edges))
	for e := range edges {
		keys = append(keys, e)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].From != keys[b].From {
			return keys[a].From < keys[b].From
		}
		return keys[a].To < keys[b].To
	})
	return keys
}

// TotalAlpha sums the work of every stage.
func (j *Job) TotalAlpha() float64 {
	total := 0.0
	for _, s := range j.Stages {
		total += s.Alpha
	}
	return total
}

// Validate checks that edges reference existing stages, that weights and stage
// parameters are non-negative and that the edge set is acyclic.
func (j *Job) Validate() error {
	if len(j.Stages) == 0 {
		return fmt.Errorf("job %s has no stages", j.Name)
	}
	for _, id := range j.StageIDs() {
		s := j.Stages[id]
		if s.Alpha < 0 || s.Beta < 0 {
			return fmt.Errorf("job %s: stage %s has negative alpha or beta", j.Name, s.Name)
		}
	}
	for _, e := range j.EdgeKeys() {
		if _, ok := j.Stages[e.From]; !ok {
			return fmt.Errorf("job %s: edge %s references undefined stage %d", j.Name, e, e.From)
		}
		if _, ok := j.Stages[e.To]; !ok {
			return fmt.Errorf("job %s: edge %s references undefined stage %d", j.Name, e, e.To)
		}
		if e.From == e.To {
			return fmt.Errorf("job %s: edge %s is a self loop", j.Name, e)
		}
		if j.Edges[e] < 0 {
			return fmt.Errorf("job %s: edge %s has negative weight %g", j.Name, e, j.Edges[e])
		}
	}
	if _, err := Layers(j); err != nil {
		return errors.Wrapf(err, "job %s", j.Name)
	}
	return nil
}

// Layers peels zero in-degree stages off the DAG repeatedly (Kahn). Layer 0 holds the
// sources; ids inside a layer are ascending. A cycle is reported as an error.
func Layers(j *Job) ([][]int, error) {
	inDegree := make(map[int]int, len(j.Stages))
	children := make(map[int][]int, len(j.Stages))
	for id := range j.Stages {
		inDegree[id] = 0
	}
	for _, e := range j.EdgeKeys() {
		inDegree[e.To]++
		children[e.From] = append(children[e.From], e.To)
	}

	remaining := j.StageIDs()
	layers := [][]int{}
	for len(remaining) > 0 {
		layer := []int{}
		rest := remaining[:0:0]
		for _, id := range remaining {
			if inDegree[id] == 0 {
				layer = append(layer, id)
			} else {
				rest = append(rest, id)
			}
		}
		if len(layer) == 0 {
			return nil, fmt.Errorf("cycle detected: %d stages never reach in-degree 0", len(rest))
		}
		for _, id := range layer {
			for _, child := range children[id] {
				inDegree[child]--
			}
		}
		layers = append(layers, layer)
		remaining = rest
	}
	return layers, nil
}
