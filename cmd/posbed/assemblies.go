package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgbaldwinbrown/posbed/pkg/assembly"
)

var assembliesCmd = &cobra.Command{
	Use:   "assemblies",
	Short: "List supported assemblies",
	Long:  "List the assemblies posbed converts between and the names the mapping service uses for them",
	Args:  cobra.NoArgs,
	RunE:  runAssemblies,
}

func runAssemblies(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, id := range assembly.All {
		fmt.Fprintf(out, "%s\t%s\n", id, id.GRC())
	}
	return nil
}
