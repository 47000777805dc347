package optimizer

import (
	"testing"

	"github.com/luci/go-render/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twitter/ditto/planner/domain"
)

// assertPoolConsistent checks every server's free slots against its residents and that no
// stage is resident twice.
func assertPoolConsistent(t *testing.T, servers domain.Servers) {
	seen := map[int]int{}
	for _, s := range servers {
		assert.True(t, s.AvailableSlots >= 0, "negative free slots: %v", render.Render(s))
		assert.Equal(t, s.TotalSlots-s.UsedSlots(), s.AvailableSlots, "inconsistent server: %v", render.Render(s))
		for id := range s.Placed {
			if other, ok := seen[id]; ok {
				t.Errorf("stage %d resident on server %d and %d", id, other, s.ID)
			}
			seen[id] = s.ID
		}
	}
}

func makePlacementJob() *domain.Job {
	edges := map[domain.EdgeKey]float64{{From: 0, To: 1}: 1, {From: 1, To: 2}: 1, {From: 1, To: 3}: 1}
	return makeJob("placement", 10, []float64{1, 1, 1, 1}, []int{2, 2, 3, 1}, 0, edges)
}

func TestPlaceBestFit(t *testing.T) {
	job := makePlacementJob()
	servers := domain.NewServers(10, 4, 6)
	group := []domain.EdgeKey{{From: 0, To: 1}}

	require.True(t, CanPlace(servers, job, group))
	s, err := Place(servers, job, group)
	require.NoError(t, err)
	assert.Equal(t, 1, s.ID)
	assert.Equal(t, 0, s.AvailableSlots)
	assert.Equal(t, []int{0, 1}, s.PlacedIDs())
	assertPoolConsistent(t, servers)
}

func TestPlacePinsToResidentServer(t *testing.T) {
	job := makePlacementJob()
	servers := domain.NewServers(10, 4, 6)
	_, err := Place(servers, job, []domain.EdgeKey{{From: 0, To: 1}})
	require.NoError(t, err)

	// stage 1 lives on the full server, so stage 2 cannot join it
	group := []domain.EdgeKey{{From: 1, To: 2}}
	assert.False(t, CanPlace(servers, job, group))
	_, err = Place(servers, job, group)
	assert.Error(t, err)

	// already co-resident: nothing new to place
	group = []domain.EdgeKey{{From: 0, To: 1}}
	assert.True(t, CanPlace(servers, job, group))
	s, err := Place(servers, job, group)
	require.NoError(t, err)
	assert.Equal(t, 1, s.ID)
	assertPoolConsistent(t, servers)
}

func TestCanPlaceRejectsSplitResidency(t *testing.T) {
	job := makePlacementJob()
	servers := domain.NewServers(10, 4, 6)
	_, err := Place(servers, job, []domain.EdgeKey{{From: 0, To: 1}})
	require.NoError(t, err)
	_, err = PlaceStages(servers, map[int]*domain.Stage{3: job.Stages[3]})
	require.NoError(t, err)
	require.NotEqual(t, servers.Locate(1), servers.Locate(3))

	assert.False(t, CanPlace(servers, job, []domain.EdgeKey{{From: 1, To: 3}}))
	assertPoolConsistent(t, servers)
}

func TestCanPlaceIsReadOnly(t *testing.T) {
	job := makePlacementJob()
	servers := domain.NewServers(3)

	assert.False(t, CanPlace(servers, job, []domain.EdgeKey{{From: 0, To: 1}}))
	assert.True(t, CanPlace(servers, job, []domain.EdgeKey{}))
	assert.Equal(t, 3, servers[0].AvailableSlots)
	assert.Empty(t, servers[0].Placed)
}

func TestPlaceFirstFit(t *testing.T) {
	job := makePlacementJob()
	servers := domain.NewServers(1, 5, 8)

	s, err := PlaceFirstFit(servers, 2, job.Stages[2])
	require.NoError(t, err)
	assert.Equal(t, 1, s.ID)

	big := &domain.Stage{Name: "big", Alpha: 1, Nslot: 9}
	_, err = PlaceFirstFit(servers, 9, big)
	require.Error(t, err)
	assert.True(t, IsInfeasible(err))
	assertPoolConsistent(t, servers)
}
