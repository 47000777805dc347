package errors

type ExitCode int

const (
	GenericFailureExitCode ExitCode = 1

	// Command line or config selection could not be used
	ConfigExitCode ExitCode = 64

	// Jobs file unreadable, malformed, or some jobs failed validation
	InvalidJobsExitCode ExitCode = 65

	// At least one (job, strategy) trial could not be planned
	InfeasibleExitCode ExitCode = 70
)
