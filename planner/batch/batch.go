package batch

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	uuid "github.com/nu7hatch/gouuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/twitter/ditto/common/stats"
	"github.com/twitter/ditto/planner/domain"
	"github.com/twitter/ditto/planner/optimizer"
)

//go:generate mockgen -source=batch.go -package=batch -destination=mock_reporter.go Reporter

// Trial is the outcome of running one strategy on one job. Exactly one of Plan and Err
// is set.
type Trial struct {
	Strategy optimizer.Strategy
	Plan     *optimizer.Plan
	Err      error
}

// JobResult collects the trials of every strategy run on one job, in the order the
// strategies were given.
type JobResult struct {
	RunID  string
	Job    string
	Nslot  int
	Trials []*Trial
}

// Best returns the successful trial with the lowest completion time, or nil when every
// trial failed. Ties go to the earlier strategy.
func (r *JobResult) Best() *Trial {
	var best *Trial
	for _, t := range r.Trials {
		if t.Err != nil {
			continue
		}
		if best == nil || t.Plan.JCT < best.Plan.JCT {
			best = t
		}
	}
	return best
}

// Err aggregates the errors of the failed trials.
func (r *JobResult) Err() error {
	var result *multierror.Error
	for _, t := range r.Trials {
		if t.Err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %v", t.Strategy, t.Err))
		}
	}
	return result.ErrorOrNil()
}

// Reporter receives every JobResult as soon as all its trials are done.
type Reporter interface {
	Report(result *JobResult) error
	Close() error
}

// ServerFactory builds a fresh, empty server pool for one trial.
type ServerFactory func() (domain.Servers, error)

// Runner plans a batch of jobs with a set of strategies. Every trial works on its own
// copy of the job and its own pool so trials never observe each other.
type Runner struct {
	servers   ServerFactory
	optimizer *optimizer.JointOptimizer
	reporter  Reporter
	parallel  bool
	stat      stats.StatsReceiver
}

// NewRunner creates a Runner. A nil reporter discards results; nil stat and listener
// fall back to no-op implementations.
func NewRunner(
	servers ServerFactory,
	reporter Reporter,
	parallel bool,
	stat stats.StatsReceiver,
	listener optimizer.Listener,
) *Runner {
	if stat == nil {
		stat = stats.NilStatsReceiver()
	}
	if reporter == nil {
		reporter = &nopReporter{}
	}
	return &Runner{
		servers:   servers,
		optimizer: optimizer.NewJointOptimizer(stat, listener),
		reporter:  reporter,
		parallel:  parallel,
		stat:      stat.Scope("batch"),
	}
}

// Run plans every job with every strategy and returns one result per job, in input
// order. Failures are recorded on the trial they belong to and never stop the batch.
func (r *Runner) Run(jobs []*domain.Job, strategies []optimizer.Strategy) []*JobResult {
	defer r.stat.Precision(time.Millisecond).Latency(stats.BatchLatency_ms).Time().Stop()

	results := make([]*JobResult, 0, len(jobs))
	for _, job := range jobs {
		result := &JobResult{
			RunID:  newRunID(),
			Job:    job.Name,
			Nslot:  job.Nslot,
			Trials: r.runJob(job, strategies),
		}
		for _, t := range result.Trials {
			if t.Err != nil {
				log.Infof("run %s: job %s with %s failed: %v", result.RunID, job.Name, t.Strategy, t.Err)
			}
		}
		if err := r.reporter.Report(result); err != nil {
			log.Errorf("run %s: couldn't report job %s: %v", result.RunID, job.Name, err)
		}
		results = append(results, result)
	}
	return results
}

// runJob runs the strategies on one job. In parallel mode each strategy gets its own
// goroutine; results are stored by index so the order never depends on scheduling.
func (r *Runner) runJob(job *domain.Job, strategies []optimizer.Strategy) []*Trial {
	trials := make([]*Trial, len(strategies))
	if !r.parallel {
		for i, s := range strategies {
			trials[i] = r.trial(job.Copy(), s)
		}
		return trials
	}

	var g errgroup.Group
	for i, s := range strategies {
		i, s, copied := i, s, job.Copy()
		g.Go(func() error {
			trials[i] = r.trial(copied, s)
			return nil
		})
	}
	g.Wait()
	return trials
}

func (r *Runner) trial(job *domain.Job, strategy optimizer.Strategy) *Trial {
	r.stat.Counter(stats.BatchTrialCounter).Inc(1)
	t := &Trial{Strategy: strategy}

	servers, err := r.servers()
	if err == nil {
		t.Plan, err = r.optimizer.Optimize(job, servers, strategy)
	}
	if err != nil {
		r.stat.Counter(stats.BatchTrialFailureCounter).Inc(1)
		t.Plan, t.Err = nil, err
	}
	return t
}

func newRunID() string {
	id, err := uuid.NewV4()
	for err != nil {
		id, err = uuid.NewV4()
	}
	return id.String()
}

type nopReporter struct{}

func (r *nopReporter) Report(result *JobResult) error { return nil }
func (r *nopReporter) Close() error                   { return nil }
