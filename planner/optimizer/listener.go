package optimizer

import (
	"github.com/davecgh/go-spew/spew"
	"github.com/luci/go-render/render"
	log "github.com/sirupsen/logrus"

	"github.com/twitter/ditto/planner/domain"
)

// Listener observes the decisions the optimizer takes while planning one job.
type Listener interface {
	Allocated(job *domain.Job)
	GroupTried(job *domain.Job, edge domain.EdgeKey, kept bool)
	GroupCommitted(job *domain.Job, server *domain.Server, group []domain.EdgeKey)
	Finished(plan *Plan)
}

type NoopListener struct{}

func (l *NoopListener) Allocated(job *domain.Job)                                  {}
func (l *NoopListener) GroupTried(job *domain.Job, edge domain.EdgeKey, kept bool) {}
func (l *NoopListener) GroupCommitted(job *domain.Job, server *domain.Server, group []domain.EdgeKey) {
}
func (l *NoopListener) Finished(plan *Plan) {}

// LoggingListener traces every decision at debug level and dumps finished plans at
// trace level.
type LoggingListener struct{}

func (l *LoggingListener) Allocated(job *domain.Job) {
	slots := map[string]int{}
	for _, s := range job.Stages {
		slots[s.Name] = s.Nslot
	}
	log.Debugf("job %s: allocated %s", job.Name, render.Render(slots))
}

func (l *LoggingListener) GroupTried(job *domain.Job, edge domain.EdgeKey, kept bool) {
	if kept {
		log.Debugf("job %s: grouped %s", job.Name, edge)
	} else {
		log.Debugf("job %s: rolled back %s, group does not fit", job.Name, edge)
	}
}

func (l *LoggingListener) GroupCommitted(job *domain.Job, server *domain.Server, group []domain.EdgeKey) {
	log.Debugf("job %s: committed group %s to %s", job.Name, render.Render(group), server)
}

func (l *LoggingListener) Finished(plan *Plan) {
	log.Debugf("job %s: %s finished with jct %g over %s", plan.Job, plan.Strategy, plan.JCT, render.Render(plan.CriticalPath.Stages))
	if log.IsLevelEnabled(log.TraceLevel) {
		log.Trace(spew.Sdump(plan))
	}
}
