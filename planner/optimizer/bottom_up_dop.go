package optimizer

import (
	"math"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ditto/planner/domain"
)

// mergeIndependent folds two stages of the same layer. They run side by side, so the
// slots they share split in proportion to their raw work.
func mergeIndependent(alphaI, alphaJ float64) (alpha, rate float64) {
	return alphaI + alphaJ, alphaI / alphaJ
}

// mergeDependent folds a layer into the one above it. For two stages in sequence the
// completion time alpha_i/n_i + alpha_j/n_j is minimized when n_i/n_j = sqrt(alpha_i/alpha_j),
// and the pair then behaves like a single stage of work (sqrt(alpha_i)+sqrt(alpha_j))^2.
func mergeDependent(alphaI, alphaJ float64) (alpha, rate float64) {
	s := math.Sqrt(alphaI) + math.Sqrt(alphaJ)
	return s * s, math.Sqrt(alphaI / alphaJ)
}

// SplitSlots divides total slots between side a and side b so that a/b follows rate,
// with a >= minA and b >= minB. When the floors do not fit in total the split is
// infeasible.
//
// A rate of +Inf (b has no work) gives b only its floor; NaN (neither side has work)
// splits evenly.
func SplitSlots(total int, rate float64, minA, minB int) (int, int, error) {
	if minA+minB > total {
		return 0, 0, infeasiblef("need at least %d+%d slots, have %d", minA, minB, total)
	}

	var share float64
	switch {
	case math.IsNaN(rate):
		share = 0.5
	case math.IsInf(rate, 1):
		share = 1
	default:
		share = rate / (rate + 1)
	}

	a := int(math.Round(float64(total) * share))
	if a < minA {
		a = minA
	}
	b := total - a
	if b < minB {
		b = minB
	}
	a = total - b
	return a, b, nil
}

// layerPlan holds the merged cost model of a job: the stages of every depth layer, the
// pair rates used to split a layer's quota among its stages, and the rate used to split
// the budget between a layer and everything below it.
type layerPlan struct {
	layers     [][]int
	innerRates [][]float64 // innerRates[i][j]: stages 0..j of layer i vs stage j+1
	crossRates []float64   // crossRates[i]: layer i vs layers i+1..D
}

func buildLayerPlan(job *domain.Job) (*layerPlan, error) {
	layers, err := domain.Layers(job)
	if err != nil {
		return nil, err
	}
	lp := &layerPlan{
		layers:     layers,
		innerRates: make([][]float64, len(layers)),
		crossRates: make([]float64, len(layers)-1),
	}

	layerAlpha := make([]float64, len(layers))
	for i, layer := range layers {
		alpha := job.Stages[layer[0]].Alpha
		for _, id := range layer[1:] {
			var rate float64
			alpha, rate = mergeIndependent(alpha, job.Stages[id].Alpha)
			lp.innerRates[i] = append(lp.innerRates[i], rate)
		}
		layerAlpha[i] = alpha
	}

	for i := len(layers) - 1; i > 0; i-- {
		layerAlpha[i-1], lp.crossRates[i-1] = mergeDependent(layerAlpha[i-1], layerAlpha[i])
	}
	return lp, nil
}

// Allocate assigns every stage of the job its degree of parallelism out of job.Nslot.
//
// Layers are merged bottom-up into a single cost, then the budget is split top-down:
// at every depth boundary between the layer and everything deeper, and inside a layer
// right to left between its stages. Every stage gets at least one slot; a budget smaller
// than the number of stages is infeasible. The result only depends on the graph, the
// alphas and the budget, so repeated calls assign the same slots.
func Allocate(job *domain.Job) error {
	if len(job.Stages) == 0 {
		return nil
	}
	if job.Nslot < len(job.Stages) {
		return infeasiblef("job %s: budget of %d slots is below its %d stages", job.Name, job.Nslot, len(job.Stages))
	}

	lp, err := buildLayerPlan(job)
	if err != nil {
		return errors.Wrapf(err, "job %s", job.Name)
	}

	deepest := len(lp.layers) - 1
	budget := job.Nslot
	below := len(job.Stages)
	for i, layer := range lp.layers {
		below -= len(layer)
		quota := budget
		budget = 0
		if i < deepest {
			quota, budget, err = SplitSlots(quota, lp.crossRates[i], len(layer), below)
			if err != nil {
				return errors.Wrapf(err, "job %s: splitting at depth %d", job.Name, i)
			}
		}
		log.Debugf("job %s: depth %d (%d stages) gets %d slots, %d left below", job.Name, i, len(layer), quota, budget)
		if err := splitLayer(job, layer, lp.innerRates[i], quota); err != nil {
			return errors.Wrapf(err, "job %s: splitting inside depth %d", job.Name, i)
		}
	}
	return nil
}

// splitLayer hands quota to the stages of one layer, peeling the rightmost stage off
// the merged remainder each step.
func splitLayer(job *domain.Job, layer []int, rates []float64, quota int) error {
	left := len(layer)
	for j := len(layer) - 2; j >= 0; j-- {
		left--
		rest, mine, err := SplitSlots(quota, rates[j], left, 1)
		if err != nil {
			return err
		}
		job.Stages[layer[j+1]].Nslot = mine
		quota = rest
	}
	if quota < 1 {
		return infeasiblef("stage %d gets %d slots", layer[0], quota)
	}
	job.Stages[layer[0]].Nslot = quota
	return nil
}
