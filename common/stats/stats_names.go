package stats

/*
This file defines all the metrics being collected. As new metrics are added please follow this pattern.
*/

const (
	/************************* Loader metrics **************************/
	/*
		number of jobs that loaded and validated
	*/
	PlannerJobsLoadedCounter = "jobsLoadedCounter"

	/*
		number of jobs rejected at load time (duplicate or undefined stage names, cycles)
	*/
	PlannerJobsRejectedCounter = "jobsRejectedCounter"

	/************************* Optimizer metrics **************************/
	/*
		number of critical path computations
	*/
	OptimizerCriticalPathCounter = "criticalPathCounter"

	/*
		number of tentative groupings tried by DITTO
	*/
	OptimizerGroupAttemptCounter = "groupAttemptCounter"

	/*
		number of tentative groupings undone because the group could not be placed
	*/
	OptimizerGroupRollbackCounter = "groupRollbackCounter"

	/*
		number of groups committed to a server
	*/
	OptimizerGroupCommitCounter = "groupCommitCounter"

	/*
		number of outer grouping passes run by DITTO
	*/
	OptimizerGroupingPassCounter = "groupingPassCounter"

	/*
		number of optimize calls that ended infeasible
	*/
	OptimizerInfeasibleCounter = "infeasibleCounter"

	/*
		number of optimize calls that produced a completion time
	*/
	OptimizerPlannedCounter = "plannedCounter"

	/*
		the most recent job completion time computed (scoped by strategy)
	*/
	OptimizerJCTGaugeFloat = "jctGauge"

	/*
		time spent in one optimize call
	*/
	OptimizerLatency_ms = "optimizeLatency_ms"

	/************************* Batch metrics **************************/
	/*
		number of (job, strategy) trials run
	*/
	BatchTrialCounter = "trialCounter"

	/*
		number of (job, strategy) trials that failed
	*/
	BatchTrialFailureCounter = "trialFailureCounter"

	/*
		time spent running a whole batch
	*/
	BatchLatency_ms = "batchLatency_ms"
)
