package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via -ldflags.
var Version = "0.3.0-dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the marketprobe version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("marketprobe", Version)
	},
}
