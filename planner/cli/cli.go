package cli

import (
	"io"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/twitter/ditto/common/errors"
	"github.com/twitter/ditto/planner/config"
)

// PlannerCLI holds the root command and the values shared by every sub-command.
type PlannerCLI struct {
	RootCmd        *cobra.Command
	LogLevel       string
	ConfigSelector string

	configs *config.JSONConfigs
	out     io.Writer
}

// Command interface used to run planner sub-commands
type subCommand interface {
	registerFlags() *cobra.Command
	run(cl *PlannerCLI, cmd *cobra.Command, args []string) error
}

// NewPlannerCLI builds the command tree. Reports are written to out.
func NewPlannerCLI(out io.Writer) *PlannerCLI {
	c := &PlannerCLI{out: out}

	c.RootCmd = &cobra.Command{
		Use:               "dittoplan",
		Short:             "dittoplan plans job DAGs onto a server pool",
		PersistentPreRunE: c.Init,
		Run:               func(*cobra.Command, []string) {},
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
	c.RootCmd.SetOutput(out)
	c.RootCmd.PersistentFlags().StringVar(&c.LogLevel, "log_level", "info", "Log everything at this level and above (error|info|debug|trace)")
	c.RootCmd.PersistentFlags().StringVar(&c.ConfigSelector, "config", "default", "Planner config name or literal JSON")

	c.addCmd(&planCmd{})
	c.addCmd(&validateCmd{})
	c.addCmd(&showConfigCmd{})
	return c
}

func (c *PlannerCLI) Exec() error {
	return c.RootCmd.Execute()
}

// Can only be called from cobra command run or hook
func (c *PlannerCLI) Init(cmd *cobra.Command, args []string) error {
	level, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		log.Error(err)
		return errors.NewError(err, errors.ConfigExitCode)
	}
	log.SetLevel(level)

	c.configs, err = config.GetPlannerConfigs(c.ConfigSelector)
	if err != nil {
		return errors.NewError(err, errors.ConfigExitCode)
	}
	log.Debugf("planner config: %s", c.configs)
	return nil
}

func (c *PlannerCLI) addCmd(cmd subCommand) {
	cobraCmd := cmd.registerFlags()
	cobraCmd.RunE = func(innerCmd *cobra.Command, args []string) error {
		return cmd.run(c, innerCmd, args)
	}
	c.RootCmd.AddCommand(cobraCmd)
}
