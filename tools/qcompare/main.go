// Command qcompare classifies a statement corpus with two grammar backends,
// or with one backend against a recorded baseline, and prints every
// statement whose classification differs.
package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	_ "github.com/maxpert/querygate/grammar/sqlite"
	_ "github.com/maxpert/querygate/grammar/vitess"
)

var rootCmd = &cobra.Command{
	Use:          "qcompare",
	Short:        "Compare statement classification across grammar backends",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.InfoLevel
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Classify a corpus with two backends and diff the results",
	RunE:  runCompare,
}

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a backend's classification of a corpus as a baseline",
	RunE:  runRecord,
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Diff a backend against a recorded baseline",
	RunE:  runVerify,
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("mode", "default", "sql mode (default, oracle)")
	rootCmd.PersistentFlags().Int("workers", 2, "classifier workers per backend")

	for _, cmd := range []*cobra.Command{runCmd, recordCmd} {
		cmd.Flags().StringP("file", "f", "", "corpus file of semicolon separated statements")
		cmd.Flags().String("dsn", "", "read the corpus from mysql.general_log at this DSN")
		cmd.Flags().Int("limit", 10000, "maximum statements read from the general log")
	}

	runCmd.Flags().String("left", "vitess", "left backend")
	runCmd.Flags().String("right", "sqlite", "right backend")

	recordCmd.Flags().String("backend", "vitess", "backend to record")
	recordCmd.Flags().StringP("out", "o", "baseline.qgs", "baseline output path")

	verifyCmd.Flags().String("backend", "", "backend to verify (defaults to the recorded one)")
	verifyCmd.Flags().String("baseline", "baseline.qgs", "baseline path")

	rootCmd.AddCommand(runCmd, recordCmd, verifyCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
