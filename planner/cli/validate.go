package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/twitter/ditto/common/errors"
	"github.com/twitter/ditto/common/stats"
)

type validateCmd struct {
	jobsFile string
}

func (c *validateCmd) registerFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "validate",
		Short: "Check a jobs file without planning it",
	}
	r.Flags().StringVar(&c.jobsFile, "jobs", "", "JSON file describing the jobs to check")
	return r
}

func (c *validateCmd) run(cl *PlannerCLI, cmd *cobra.Command, args []string) error {
	plannerConfig, err := cl.configs.Planner.CreatePlannerConfig()
	if err != nil {
		return errors.NewError(err, errors.ConfigExitCode)
	}

	jobs, err := loadJobs(c.jobsFile, plannerConfig.DefaultJobSlots, stats.NilStatsReceiver())
	for _, job := range jobs {
		fmt.Fprintf(cl.out, "ok %s: %d stages, %d edges, %d slots\n", job.Name, len(job.Stages), len(job.Edges), job.Nslot)
	}
	if err != nil {
		fmt.Fprintln(cl.out, err)
		return errors.NewError(err, errors.InvalidJobsExitCode)
	}
	return nil
}
