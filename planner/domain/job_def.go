package domain

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// JobsDefinition is the JSON job description document.
type JobsDefinition struct {
	Jobs []JobDefinition `json:"jobs"`
}

type JobDefinition struct {
	Name   string            `json:"name"`
	Nslot  int               `json:"nslot,omitempty"`
	Stages []StageDefinition `json:"stages"`
}

type StageDefinition struct {
	Name     string            `json:"name"`
	Alpha    float64           `json:"alpha"`
	Beta     float64           `json:"beta"`
	Children []ChildDefinition `json:"children,omitempty"`
}

type ChildDefinition struct {
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
}

// ReadJobsFile loads and validates every job in the file. See LoadJobs.
func ReadJobsFile(path string, defaultSlots int) ([]*Job, error) {
	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading jobs file %s", path)
	}
	return LoadJobs(data, defaultSlots)
}

// LoadJobs parses a job description document. A malformed document is returned as an
// error with no jobs. Otherwise every job that converts and validates is returned;
// jobs that don't are skipped and their errors are aggregated into the returned error.
func LoadJobs(data []byte, defaultSlots int) ([]*Job, error) {
	def := JobsDefinition{}
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, errors.Wrap(err, "couldn't parse job descriptions")
	}

	var result *multierror.Error
	jobs := []*Job{}
	seen := map[string]bool{}
	for i, jd := range def.Jobs {
		if seen[jd.Name] {
			result = multierror.Append(result, fmt.Errorf("job #%d: duplicate job name %q", i, jd.Name))
			continue
		}
		seen[jd.Name] = true

		job, err := jd.ToJob(defaultSlots)
		if err != nil {
			log.Warnf("skipping job %q: %v", jd.Name, err)
			result = multierror.Append(result, err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, result.ErrorOrNil()
}

// ToJob converts the definition into a validated Job. Stage ids follow declaration order.
func (jd *JobDefinition) ToJob(defaultSlots int) (*Job, error) {
	if jd.Name == "" {
		return nil, fmt.Errorf("job has no name")
	}
	nslot := jd.Nslot
	if nslot == 0 {
		nslot = defaultSlots
	}
	if nslot < 0 {
		return nil, fmt.Errorf("job %s: negative slot budget %d", jd.Name, nslot)
	}

	job := NewJob(jd.Name, nslot)
	ids := map[string]int{}
	for i, sd := range jd.Stages {
		if _, ok := ids[sd.Name]; ok {
			return nil, fmt.Errorf("job %s: duplicate stage name %q", jd.Name, sd.Name)
		}
		ids[sd.Name] = i
		job.Stages[i] = &Stage{Name: sd.Name, Alpha: sd.Alpha, Beta: sd.Beta}
	}
	for i, sd := range jd.Stages {
		for _, child := range sd.Children {
			to, ok := ids[child.Name]
			if !ok {
				return nil, fmt.Errorf("job %s: stage %q references undefined child %q", jd.Name, sd.Name, child.Name)
			}
			e := EdgeKey{From: i, To: to}
			if _, ok := job.Edges[e]; ok {
				return nil, fmt.Errorf("job %s: stage %q lists child %q twice", jd.Name, sd.Name, child.Name)
			}
			job.Edges[e] = child.Weight
		}
	}

	if err := job.Validate(); err != nil {
		return nil, err
	}
	return job, nil
}
