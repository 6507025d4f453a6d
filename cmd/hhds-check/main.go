// This file is distributed under the BSD 3-Clause License. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/datawire/dlib/dlog"
	"github.com/spf13/cobra"

	"github.com/masc-ucsc/hhds/lib/textui"
)

func main() {
	if err := Main(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "hhds-check: error: %v\n", err)
		os.Exit(1)
	}
}

func Main(args []string) error {
	logLevel := textui.LogLevelFlag{Level: dlog.LogLevelInfo}

	argparser := &cobra.Command{
		Use:   "hhds-check {[flags]|SUBCOMMAND}",
		Short: "Exercise the hhds tree/graph/forest testable properties",

		SilenceErrors: true,
		SilenceUsage:  true,

		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}
	argparser.PersistentFlags().Var(&logLevel, "log-level", "set the log level (error|warn|info|debug|trace)")
	argparser.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		logger := textui.NewLogger(os.Stderr, logLevel.Level)
		ctx := dlog.WithLogger(cmd.Context(), logger)
		cmd.SetContext(ctx)
		return nil
	}

	argparser.AddCommand(newScenariosCommand())
	argparser.AddCommand(newPropertiesCommand())

	argparser.SetArgs(args)
	return argparser.ExecuteContext(context.Background())
}
