package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/twitter/ditto/planner/batch"
	"github.com/twitter/ditto/planner/optimizer"
)

// textReporter prints one block per job: a line per strategy and the winner.
type textReporter struct {
	out io.Writer
}

func newTextReporter(out io.Writer) *textReporter {
	return &textReporter{out: out}
}

func (r *textReporter) Report(result *batch.JobResult) error {
	if _, err := fmt.Fprintf(r.out, "job %s (budget %d, run %s)\n", result.Job, result.Nslot, result.RunID); err != nil {
		return err
	}
	for _, t := range result.Trials {
		var err error
		switch {
		case t.Err == nil:
			_, err = fmt.Fprintf(r.out, "  %-8s jct %.4f  groups %d  rollbacks %d\n",
				t.Strategy, t.Plan.JCT, len(t.Plan.Groups), t.Plan.Rollbacks)
		case optimizer.IsInfeasible(t.Err):
			_, err = fmt.Fprintf(r.out, "  %-8s infeasible: %v\n", t.Strategy, t.Err)
		default:
			_, err = fmt.Fprintf(r.out, "  %-8s failed: %v\n", t.Strategy, t.Err)
		}
		if err != nil {
			return err
		}
	}
	if best := result.Best(); best != nil {
		_, err := fmt.Fprintf(r.out, "  best: %s\n", best.Strategy)
		return err
	}
	return nil
}

func (r *textReporter) Close() error { return nil }

type jsonTrial struct {
	Strategy     string      `json:"strategy"`
	JCT          *float64    `json:"jct,omitempty"`
	Infeasible   bool        `json:"infeasible,omitempty"`
	Error        string      `json:"error,omitempty"`
	CriticalPath []int       `json:"critical_path,omitempty"`
	Slots        map[int]int `json:"slots,omitempty"`
	Assignment   map[int]int `json:"assignment,omitempty"`
	Groups       [][]string  `json:"groups,omitempty"`
}

type jsonResult struct {
	RunID  string       `json:"run_id"`
	Job    string       `json:"job"`
	Nslot  int          `json:"nslot"`
	Best   string       `json:"best,omitempty"`
	Trials []*jsonTrial `json:"trials"`
}

// jsonReporter writes one JSON object per job and line.
type jsonReporter struct {
	encoder *json.Encoder
}

func newJSONReporter(out io.Writer) *jsonReporter {
	return &jsonReporter{encoder: json.NewEncoder(out)}
}

func (r *jsonReporter) Report(result *batch.JobResult) error {
	return r.encoder.Encode(toJSONResult(result))
}

func (r *jsonReporter) Close() error { return nil }

func toJSONResult(result *batch.JobResult) *jsonResult {
	jr := &jsonResult{RunID: result.RunID, Job: result.Job, Nslot: result.Nslot, Trials: []*jsonTrial{}}
	if best := result.Best(); best != nil {
		jr.Best = best.Strategy.String()
	}
	for _, t := range result.Trials {
		jt := &jsonTrial{Strategy: t.Strategy.String()}
		if t.Err != nil {
			jt.Infeasible = optimizer.IsInfeasible(t.Err)
			jt.Error = t.Err.Error()
		} else {
			jct := t.Plan.JCT
			jt.JCT = &jct
			jt.CriticalPath = t.Plan.CriticalPath.Stages
			jt.Slots = t.Plan.Slots
			jt.Assignment = t.Plan.Assignment
			for _, g := range t.Plan.Groups {
				edges := make([]string, len(g.Edges))
				for i, e := range g.Edges {
					edges[i] = e.String()
				}
				jt.Groups = append(jt.Groups, edges)
			}
		}
		jr.Trials = append(jr.Trials, jt)
	}
	return jr
}
