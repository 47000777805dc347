package optimizer

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/twitter/ditto/planner/domain"
)

// groupStages collects the distinct stages joined by the group's edges.
func groupStages(job *domain.Job, group []domain.EdgeKey) map[int]*domain.Stage {
	stages := map[int]*domain.Stage{}
	for _, e := range group {
		stages[e.From] = job.Stages[e.From]
		stages[e.To] = job.Stages[e.To]
	}
	return stages
}

// requirement splits a set of stages into the ones not yet resident anywhere and the
// slots they need. Stages already resident pin the set to their server (home). ok is
// false when resident stages live on different servers, since such a set can never be
// co-located.
func requirement(servers domain.Servers, stages map[int]*domain.Stage) (pending map[int]*domain.Stage, need int, home *domain.Server, ok bool) {
	pending = map[int]*domain.Stage{}
	for id, st := range stages {
		s := servers.Locate(id)
		if s == nil {
			pending[id] = st
			need += st.Nslot
			continue
		}
		if home != nil && home != s {
			return nil, 0, nil, false
		}
		home = s
	}
	return pending, need, home, true
}

// CanPlace reports whether the stages of the group can all end up on one server without
// moving anything already placed. It does not modify the pool.
func CanPlace(servers domain.Servers, job *domain.Job, group []domain.EdgeKey) bool {
	return CanPlaceStages(servers, groupStages(job, group))
}

func CanPlaceStages(servers domain.Servers, stages map[int]*domain.Stage) bool {
	_, need, home, ok := requirement(servers, stages)
	if !ok {
		return false
	}
	if home != nil {
		return home.AvailableSlots >= need
	}
	for _, s := range servers {
		if s.AvailableSlots >= need {
			return true
		}
	}
	return false
}

// Place commits the group to a server and returns it. A group with resident stages goes
// to their server; otherwise the tightest server that fits is chosen (best fit). Place
// must only follow a CanPlace that returned true for the same group and pool.
func Place(servers domain.Servers, job *domain.Job, group []domain.EdgeKey) (*domain.Server, error) {
	s, err := PlaceStages(servers, groupStages(job, group))
	if err != nil {
		return nil, errors.Wrapf(err, "placing group %v", group)
	}
	return s, nil
}

func PlaceStages(servers domain.Servers, stages map[int]*domain.Stage) (*domain.Server, error) {
	pending, need, home, ok := requirement(servers, stages)
	if !ok {
		return nil, errors.New("stages are already resident on different servers")
	}
	if len(pending) == 0 {
		return home, nil
	}

	target := home
	if target == nil {
		target = bestFit(servers, need)
	} else if target.AvailableSlots < need {
		target = nil
	}
	if target == nil {
		return nil, errors.Errorf("no server has %d free slots", need)
	}
	target.Add(pending)
	return target, nil
}

// bestFit walks the servers by descending free slots and keeps the last one that still
// fits, i.e. the one left with the least surplus.
func bestFit(servers domain.Servers, need int) *domain.Server {
	sorted := make(domain.Servers, len(servers))
	copy(sorted, servers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].AvailableSlots > sorted[j].AvailableSlots
	})

	var chosen *domain.Server
	for _, s := range sorted {
		if s.AvailableSlots < need {
			break
		}
		chosen = s
	}
	return chosen
}

// PlaceFirstFit puts one stage on the first server, in pool order, with room for it.
func PlaceFirstFit(servers domain.Servers, id int, stage *domain.Stage) (*domain.Server, error) {
	for _, s := range servers {
		if s.Fits(stage) {
			s.Add(map[int]*domain.Stage{id: stage})
			return s, nil
		}
	}
	return nil, infeasiblef("stage %d (%s) needs %d slots, no server has room", id, stage.Name, stage.Nslot)
}
