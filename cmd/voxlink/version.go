package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opd-ai/voxlink/connection"
	"github.com/opd-ai/voxlink/control"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client and protocol versions",
		Run: func(cmd *cobra.Command, args []string) {
			ci := connection.DefaultClientInfo()
			fmt.Fprintf(cmd.OutOrStdout(), "voxlink %s (protocol %s, %s/%s)\n", version,
				control.FormatVersion(control.EncodeVersion(ci.Major, ci.Minor, ci.Patch)), ci.OS, ci.OSVersion)
		},
	}
}
