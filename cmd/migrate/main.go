package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

const JobName = "mongo-migration"

func newRootCmd() *cobra.Command {
	var timeout time.Duration

	root := &cobra.Command{
		Use:          "tablebook-migrate",
		Short:        "Prepare the tablebook Mongo database",
		SilenceUsage: true,
	}
	root.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "overall deadline for the job")

	root.AddCommand(newUpCmd(&timeout))
	root.AddCommand(newSeedCmd(&timeout))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
