package optimizer

import (
	"math"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ditto/common/stats"
	"github.com/twitter/ditto/planner/domain"
)

// Group is a set of edges committed together to one server.
type Group struct {
	Server int
	Edges  []domain.EdgeKey
}

// Plan is the outcome of optimizing one job with one strategy.
type Plan struct {
	Job          string
	Strategy     Strategy
	JCT          float64
	CriticalPath *CriticalPath
	Groups       []Group
	Slots        map[int]int // stage id -> nslot
	Assignment   map[int]int // stage id -> server id

	Passes    int // outer grouping passes (DITTO only)
	Attempts  int // tentative groupings
	Rollbacks int // tentative groupings undone
}

// JointOptimizer plans jobs onto server pools. It holds no per-job state and may be
// shared, but each Optimize call mutates the job and pool it is given.
type JointOptimizer struct {
	stat     stats.StatsReceiver
	listener Listener
}

func NewJointOptimizer(stat stats.StatsReceiver, listener Listener) *JointOptimizer {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	if listener == nil {
		listener = &NoopListener{}
	}
	return &JointOptimizer{stat: stat.Scope("optimizer"), listener: listener}
}

// Optimize plans job on servers with the default optimizer and returns the job
// completion time. Both arguments are mutated; pass copies to compare strategies.
func Optimize(job *domain.Job, servers domain.Servers, strategy Strategy) (float64, error) {
	plan, err := NewJointOptimizer(nil, nil).Optimize(job, servers, strategy)
	if err != nil {
		return 0, err
	}
	return plan.JCT, nil
}

// Optimize assigns slots to every stage of job, places the stages on servers following
// strategy and returns the resulting plan. Infeasible outcomes are errors for which
// IsInfeasible is true; no completion time is produced for them.
func (o *JointOptimizer) Optimize(job *domain.Job, servers domain.Servers, strategy Strategy) (*Plan, error) {
	defer o.stat.Precision(time.Millisecond).Latency(stats.OptimizerLatency_ms).Time().Stop()

	plan, err := o.optimize(job, servers, strategy)
	if err != nil {
		if IsInfeasible(err) {
			o.stat.Counter(stats.OptimizerInfeasibleCounter).Inc(1)
		}
		return nil, err
	}
	o.stat.Counter(stats.OptimizerPlannedCounter).Inc(1)
	o.stat.Scope(strategy.String()).GaugeFloat(stats.OptimizerJCTGaugeFloat).Update(plan.JCT)
	o.listener.Finished(plan)
	return plan, nil
}

func (o *JointOptimizer) optimize(job *domain.Job, servers domain.Servers, strategy Strategy) (*Plan, error) {
	if len(job.Stages) == 0 {
		return nil, errors.Errorf("job %s has no stages", job.Name)
	}
	if capacity := servers.TotalSlots(); capacity < job.Nslot {
		return nil, infeasiblef("job %s needs %d slots, server pool has %d", job.Name, job.Nslot, capacity)
	}

	plan := &Plan{Job: job.Name, Strategy: strategy}
	var err error
	switch strategy {
	case Ditto:
		err = o.ditto(job, servers, plan)
	case Average:
		err = o.fixedShare(job, servers, averageShares(job))
	case Ratio:
		err = o.fixedShare(job, servers, ratioShares(job))
	default:
		err = errors.Errorf("unknown strategy %v", strategy)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s", strategy)
	}

	cp, err := o.longestPath(job.Stages, job.Edges)
	if err != nil {
		return nil, err
	}
	jct, err := PathCost(job.Stages, cp)
	if err != nil {
		return nil, err
	}

	plan.JCT = jct
	plan.CriticalPath = cp
	plan.Slots = map[int]int{}
	for id, s := range job.Stages {
		plan.Slots[id] = s.Nslot
	}
	plan.Assignment = servers.Assignment()
	log.Infof("job %s: %s jct %g (%d groups, %d rollbacks)", job.Name, strategy, jct, len(plan.Groups), plan.Rollbacks)
	return plan, nil
}

func (o *JointOptimizer) longestPath(stages map[int]*domain.Stage, edges map[domain.EdgeKey]float64) (*CriticalPath, error) {
	o.stat.Counter(stats.OptimizerCriticalPathCounter).Inc(1)
	return LongestPath(stages, edges)
}

// groupTxn is the group under construction in one DITTO pass. try zeroes an edge in
// the real job and adds it to the group; rollback restores both.
type groupTxn struct {
	job   *domain.Job
	group []domain.EdgeKey
	saved float64
}

func (t *groupTxn) try(e domain.EdgeKey) {
	t.saved = t.job.Edges[e]
	t.job.Edges[e] = 0
	t.group = append(t.group, e)
}

func (t *groupTxn) rollback() {
	last := t.group[len(t.group)-1]
	t.job.Edges[last] = t.saved
	t.group = t.group[:len(t.group)-1]
}

// ditto seeds slots with the bottom-up allocator, then repeatedly walks a fresh greedy
// grouping order, keeping every edge whose growing group still fits on one server, and
// commits the group. It stops after a pass that keeps nothing. Stages that end up in
// no group are placed best fit on their own.
func (o *JointOptimizer) ditto(job *domain.Job, servers domain.Servers, plan *Plan) error {
	if err := Allocate(job); err != nil {
		return err
	}
	o.listener.Allocated(job)

	for {
		plan.Passes++
		o.stat.Counter(stats.OptimizerGroupingPassCounter).Inc(1)
		order, err := greedyGroup(job, o.longestPath)
		if err != nil {
			return err
		}

		txn := &groupTxn{job: job}
		for _, e := range order {
			plan.Attempts++
			o.stat.Counter(stats.OptimizerGroupAttemptCounter).Inc(1)
			txn.try(e)
			kept := CanPlace(servers, job, txn.group)
			if !kept {
				txn.rollback()
				plan.Rollbacks++
				o.stat.Counter(stats.OptimizerGroupRollbackCounter).Inc(1)
			}
			o.listener.GroupTried(job, e, kept)
		}

		if len(txn.group) == 0 {
			break
		}
		server, err := Place(servers, job, txn.group)
		if err != nil {
			return err
		}
		plan.Groups = append(plan.Groups, Group{Server: server.ID, Edges: txn.group})
		o.stat.Counter(stats.OptimizerGroupCommitCounter).Inc(1)
		o.listener.GroupCommitted(job, server, txn.group)
	}

	for _, id := range job.StageIDs() {
		if servers.Locate(id) != nil {
			continue
		}
		stage := job.Stages[id]
		single := map[int]*domain.Stage{id: stage}
		if !CanPlaceStages(servers, single) {
			return infeasiblef("stage %d (%s) needs %d slots, no server has room", id, stage.Name, stage.Nslot)
		}
		if _, err := PlaceStages(servers, single); err != nil {
			return err
		}
	}
	return nil
}

// averageShares gives every stage an equal share of the budget.
func averageShares(job *domain.Job) map[int]int {
	share := roundSlots(float64(job.Nslot) / float64(len(job.Stages)))
	shares := map[int]int{}
	for id := range job.Stages {
		shares[id] = share
	}
	return shares
}

// ratioShares gives every stage a share proportional to its alpha; with no work at all
// every stage gets one slot.
func ratioShares(job *domain.Job) map[int]int {
	total := job.TotalAlpha()
	shares := map[int]int{}
	for id, s := range job.Stages {
		if total == 0 {
			shares[id] = 1
			continue
		}
		shares[id] = roundSlots(float64(job.Nslot) * s.Alpha / total)
	}
	return shares
}

// roundSlots rounds a fractional share; a stage never runs on fewer than one slot.
func roundSlots(share float64) int {
	n := int(math.Round(share))
	if n < 1 {
		return 1
	}
	return n
}

// fixedShare assigns the given slots and places stages first fit in id order.
func (o *JointOptimizer) fixedShare(job *domain.Job, servers domain.Servers, shares map[int]int) error {
	for _, id := range job.StageIDs() {
		stage := job.Stages[id]
		stage.Nslot = shares[id]
		if _, err := PlaceFirstFit(servers, id, stage); err != nil {
			return err
		}
	}
	return nil
}
