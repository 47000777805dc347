package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/twitter/ditto/common/errors"
	"github.com/twitter/ditto/common/log/hooks"
	"github.com/twitter/ditto/planner/cli"
)

// CLI binary to plan job DAGs onto a server pool
//	Supported commands: (see "-h" for all options)
//		plan --jobs [file] [--strategy DITTO,AVERAGE,RATIO] [--json] [--stats]
//		validate --jobs [file]
//		show_config
//	Global flags:
//		--config [named config or literal JSON]
//		--log_level [<error|info|debug|trace> level and above should be logged]

func main() {
	log.AddHook(hooks.NewContextHook())

	cl := cli.NewPlannerCLI(os.Stdout)
	if err := cl.Exec(); err != nil {
		log.Error(err)
		os.Exit(int(errors.ExitCodeOf(err)))
	}
}
