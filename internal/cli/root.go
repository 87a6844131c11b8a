package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.2.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "restclient",
		Short:   "A configurable REST client that decodes what it receives",
		Version: version,
		Long: `restclient sends HTTP requests built from layered defaults (base URL,
headers, parameters, credentials) and decodes the response body according
to its Content-Type or a fixed format: json, yaml and PHP-serialized data
are supported out of the box.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().Bool("debug", false, "Log request execution details to stderr")

	root.AddCommand(
		newGetCmd(),
		newPostCmd(),
		newPutCmd(),
		newPatchCmd(),
		newDeleteCmd(),
		newHeadCmd(),
	)
	return root
}

// Execute runs the root command and reports any error on stderr.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		if !errors.Is(err, errRequestFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		return err
	}
	return nil
}

// newLogger returns the CLI logger: warnings only unless --debug is set
func newLogger(cmd *cobra.Command) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	logger.SetLevel(logrus.WarnLevel)
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
