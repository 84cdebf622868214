package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "Print the citation types the tool recognizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := typeMapping()
		if err != nil {
			return &configError{err}
		}
		w := cmd.OutOrStdout()
		for _, e := range table {
			fmt.Fprintf(w, "%s (%s, %s)\n", e.Archetype, e.RequestKind, e.DocumentKind)
			if len(e.RISTypes) > 0 {
				fmt.Fprintf(w, "  RIS:    %s\n", strings.Join(e.RISTypes, ", "))
			}
			if len(e.SourceTypes) > 0 {
				fmt.Fprintf(w, "  export: %s\n", strings.Join(e.SourceTypes, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
}
