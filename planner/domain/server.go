package domain

import (
	"fmt"
	"sort"
)

// Server is a placement target with a fixed number of slots.
// AvailableSlots always equals TotalSlots minus the Nslot of every placed stage.
type Server struct {
	ID             int
	TotalSlots     int
	AvailableSlots int
	Placed         map[int]*Stage
}

func NewServer(id, totalSlots int) *Server {
	return &Server{
		ID:             id,
		TotalSlots:     totalSlots,
		AvailableSlots: totalSlots,
		Placed:         map[int]*Stage{},
	}
}

func (s *Server) String() string {
	return fmt.Sprintf("server%d(total:%d, available:%d, stages:%v)", s.ID, s.TotalSlots, s.AvailableSlots, s.PlacedIDs())
}

// Fits reports whether the server has room for a stage of its current Nslot.
func (s *Server) Fits(stage *Stage) bool {
	return s.AvailableSlots >= stage.Nslot
}

// Add places the stages and charges their slots against the server.
func (s *Server) Add(stages map[int]*Stage) {
	for id, st := range stages {
		s.Placed[id] = st
		s.AvailableSlots -= st.Nslot
	}
}

// UsedSlots sums the Nslot of every resident stage.
func (s *Server) UsedSlots() int {
	used := 0
	for _, st := range s.Placed {
		used += st.Nslot
	}
	return used
}

func (s *Server) PlacedIDs() []int {
	ids := make([]int, 0, len(s.Placed))
	for id := range s.Placed {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Servers is a pool of placement targets.
type Servers []*Server

// NewServers builds an unplaced pool, one server per capacity entry.
func NewServers(capacities ...int) Servers {
	pool := make(Servers, len(capacities))
	for i, c := range capacities {
		pool[i] = NewServer(i, c)
	}
	return pool
}

// Copy returns a fresh pool with the same capacities and no placements.
func (p Servers) Copy() Servers {
	pool := make(Servers, len(p))
	for i, s := range p {
		pool[i] = NewServer(s.ID, s.TotalSlots)
	}
	return pool
}

func (p Servers) TotalSlots() int {
	total := 0
	for _, s := range p {
		total += s.TotalSlots
	}
	return total
}

// Locate returns the server the stage is resident on, or nil.
func (p Servers) Locate(stageID int) *Server {
	for _, s := range p {
		if _, ok := s.Placed[stageID]; ok {
			return s
		}
	}
	return nil
}

// Assignment maps each placed stage id to its server id.
func (p Servers) Assignment() map[int]int {
	assignment := map[int]int{}
	for _, s := range p {
		for id := range s.Placed {
			assignment[id] = s.ID
		}
	}
	return assignment
}
