package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

type showConfigCmd struct{}

func (c *showConfigCmd) registerFlags() *cobra.Command {
	return &cobra.Command{
		Use:   "show_config",
		Short: "Print the effective config, defaults merged in",
	}
}

func (c *showConfigCmd) run(cl *PlannerCLI, cmd *cobra.Command, args []string) error {
	asJSON, err := json.MarshalIndent(cl.configs, "", "  ")
	if err != nil {
		return fmt.Errorf("Error converting config to JSON: %v", err)
	}
	fmt.Fprintf(cl.out, "%s\n", asJSON)
	return nil
}
