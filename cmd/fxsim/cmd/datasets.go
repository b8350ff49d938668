package cmd

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/fxsim/feed"
	"github.com/spf13/cobra"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the embedded datasets",
	Args:  cobra.NoArgs,
	RunE:  runDatasets,
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
}

func runDatasets(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, name := range feed.Datasets() {
		ds, err := feed.LoadDataset(name)
		if err != nil {
			return err
		}
		insts, err := ds.Instruments()
		if err != nil {
			return err
		}
		names := make([]string, len(insts))
		for i, inst := range insts {
			names[i] = inst.String()
		}

		fmt.Fprintf(out, "%-12s %d days  %s\n", name, len(ds.Days), strings.Join(names, " "))
		if ds.Description != "" {
			fmt.Fprintf(out, "%-12s %s\n", "", ds.Description)
		}
	}
	return nil
}
