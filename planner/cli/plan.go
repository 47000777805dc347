package cli

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/ditto/common/errors"
	"github.com/twitter/ditto/common/stats"
	"github.com/twitter/ditto/planner/batch"
	"github.com/twitter/ditto/planner/domain"
	"github.com/twitter/ditto/planner/optimizer"
)

type planCmd struct {
	jobsFile    string
	strategies  string
	printAsJSON bool
	printStats  bool
}

func (c *planCmd) registerFlags() *cobra.Command {
	r := &cobra.Command{
		Use:   "plan",
		Short: "Plan every job of a jobs file with each strategy and report completion times",
	}
	r.Flags().StringVar(&c.jobsFile, "jobs", "", "JSON file describing the jobs to plan")
	r.Flags().StringVar(&c.strategies, "strategy", "", "Comma separated strategies (DITTO,AVERAGE,RATIO), default from config")
	r.Flags().BoolVar(&c.printAsJSON, "json", false, "Print results as JSON, one job per line")
	r.Flags().BoolVar(&c.printStats, "stats", false, "Print the planner stats after the results")
	return r
}

func (c *planCmd) run(cl *PlannerCLI, cmd *cobra.Command, args []string) error {
	plannerConfig, err := cl.configs.Planner.CreatePlannerConfig()
	if err != nil {
		return errors.NewError(err, errors.ConfigExitCode)
	}
	strategies := plannerConfig.Strategies
	if c.strategies != "" {
		strategies, err = optimizer.ParseStrategies(strings.Split(c.strategies, ","))
		if err != nil {
			return errors.NewError(err, errors.ConfigExitCode)
		}
	}
	// fail on a bad pool before any planning
	if _, err := cl.configs.Servers.CreateServers(); err != nil {
		return errors.NewError(err, errors.ConfigExitCode)
	}

	stat := stats.DefaultStatsReceiver()
	jobs, loadErr := loadJobs(c.jobsFile, plannerConfig.DefaultJobSlots, stat)
	if loadErr != nil && len(jobs) == 0 {
		return errors.NewError(loadErr, errors.InvalidJobsExitCode)
	}

	var reporter batch.Reporter = newTextReporter(cl.out)
	if c.printAsJSON {
		reporter = newJSONReporter(cl.out)
	}
	runner := batch.NewRunner(cl.configs.Servers.CreateServers, reporter, plannerConfig.Parallel, stat, &optimizer.LoggingListener{})
	results := runner.Run(jobs, strategies)
	if err := reporter.Close(); err != nil {
		log.Errorf("couldn't flush results: %v", err)
	}

	if c.printStats {
		fmt.Fprintln(cl.out, string(stat.Render(true)))
	}

	if loadErr != nil {
		return errors.NewError(loadErr, errors.InvalidJobsExitCode)
	}
	failed := 0
	for _, r := range results {
		if r.Err() != nil {
			failed++
		}
	}
	if failed > 0 {
		return errors.NewError(fmt.Errorf("%d of %d jobs had strategies that could not be planned", failed, len(results)), errors.InfeasibleExitCode)
	}
	return nil
}

// loadJobs reads the jobs file and counts loaded and rejected jobs.
func loadJobs(path string, defaultSlots int, stat stats.StatsReceiver) ([]*domain.Job, error) {
	if path == "" {
		return nil, fmt.Errorf("--jobs is required")
	}
	jobs, err := domain.ReadJobsFile(path, defaultSlots)
	stat = stat.Scope("planner")
	stat.Counter(stats.PlannerJobsLoadedCounter).Inc(int64(len(jobs)))
	if merr, ok := err.(*multierror.Error); ok {
		stat.Counter(stats.PlannerJobsRejectedCounter).Inc(int64(len(merr.Errors)))
	}
	return jobs, err
}
