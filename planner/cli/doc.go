/*
Package cli implements the dittoplan command line: it loads job descriptions, plans
them on the server pool of the selected config with each requested strategy and
reports the completion times.

	dittoplan plan --jobs jobs.json --strategy DITTO,AVERAGE --json
	dittoplan validate --jobs jobs.json
	dittoplan show_config --config local.small

Every command accepts --config (a named config or literal JSON text) and --log_level.
Failures are returned as common/errors.ExitCodeError so main can pick the exit code.
*/
package cli
