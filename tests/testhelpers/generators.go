package testhelpers

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/leanovate/gopter"

	"github.com/twitter/ditto/planner/domain"
)

// generates a new random number seeded with the current time
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// Test Helpers that are useful for generating random jobs and server pools
// to exercise the planner.

// Generates a random DAG of 1 to maxStages stages. Edges only run from lower to higher
// ids, so the result is always acyclic. Roughly one edge in five carries no weight.
// The slot budget lies between one and four slots per stage.
func GenRandomJob(rng *rand.Rand, maxStages int) *domain.Job {
	n := rng.Intn(maxStages) + 1
	job := domain.NewJob(fmt.Sprintf("job-%s", GenRandomAlphaNumericString(rng)), n+rng.Intn(3*n+1))
	for i := 0; i < n; i++ {
		job.Stages[i] = &domain.Stage{
			Name:  fmt.Sprintf("s%d", i),
			Alpha: 0.5 + rng.Float64()*9.5,
			Beta:  rng.Float64() * 2,
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if rng.Float64() >= 0.4 {
				continue
			}
			w := 0.0
			if rng.Intn(5) != 0 {
				w = float64(rng.Intn(5) + 1)
			}
			job.Edges[domain.EdgeKey{From: i, To: j}] = w
		}
	}
	return job
}

// Generates a pool of 1 to maxServers servers with 1 to maxSlots slots each.
func GenRandomServers(rng *rand.Rand, maxServers, maxSlots int) domain.Servers {
	n := rng.Intn(maxServers) + 1
	capacities := make([]int, n)
	for i := range capacities {
		capacities[i] = rng.Intn(maxSlots) + 1
	}
	return domain.NewServers(capacities...)
}

// Generates an AlphaNumericString of random length (0, 21]
func GenRandomAlphaNumericString(rng *rand.Rand) string {
	const chars = "abcdefghijklmnopqrstuvwxyz0123456789"
	length := rng.Intn(20) + 1
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		result[i] = chars[rng.Intn(len(chars))]
	}

	return string(result)
}

// Wrapper function that generates a Job for Property Based Tests
func GopterGenJob(maxStages int) gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		job := GenRandomJob(genParams.Rng, maxStages)
		return gopter.NewGenResult(job, gopter.NoShrinker)
	}
}

// Wrapper function that generates a server pool for Property Based Tests
func GopterGenServers(maxServers, maxSlots int) gopter.Gen {
	return func(genParams *gopter.GenParameters) *gopter.GenResult {
		servers := GenRandomServers(genParams.Rng, maxServers, maxSlots)
		return gopter.NewGenResult(servers, gopter.NoShrinker)
	}
}
