package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yungbote/schemastore/internal/app"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "schemastore %s\n", app.Version)
	},
}
