package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of waypoint",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "waypoint version %s\n", strings.TrimSpace(waypoint.Version))
		},
	}
}
