// Package cli wires rpm-tool's cobra command tree onto the parser
// (internal/rpmformat), the index reconciler (internal/reconciler), and
// the structured-dump renderer (internal/output). Grounded on the
// teacher's internal/cli/root.go for persistent-flag/logging wiring and
// internal/cli/generate.go for the config-struct-plus-RunE shape.
package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rpm-tool/rpm-tool/internal/config"
	"github.com/rpm-tool/rpm-tool/internal/logging"
	"github.com/rpm-tool/rpm-tool/internal/model"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// buildVersion reports the module version cobra's --version flag prints,
// read from the binary's embedded build info when built via "go install"
// or a versioned module fetch; falls back to "dev" otherwise.
func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

// rootState holds the values the root command resolves once — the
// loaded config and the logging sink — that every subcommand depends on.
type rootState struct {
	configPath string
	cfg        *config.Config
	sink       logging.Sink
}

// NewRootCmd builds the "rpm-tool" command tree: "rpm dump", "repository
// generate", "repository add-files", "repository validate".
func NewRootCmd() *cobra.Command {
	state := &rootState{}

	rootCmd := &cobra.Command{
		Use:           "rpm-tool",
		Short:         "Parse RPM packages and maintain yum/dnf repository metadata",
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(state.configPath)
			if err != nil {
				return model.NewError(model.ErrConfig, err)
			}
			state.cfg = cfg

			level := logrus.InfoLevel
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = logrus.DebugLevel
			}
			// RUST_LOG's level, when parseable, wins over --verbose: it is
			// an explicit forcing override, not just a default.
			if cfg.Log.Level != nil {
				level = *cfg.Log.Level
			}
			sink, err := logging.NewLogrusSink(cfg.Log.Target, level)
			if err != nil {
				return model.NewError(model.ErrConfig, err)
			}
			state.sink = sink
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&state.configPath, "config", "", "path to rpm-tool.yaml (default: searched from cwd upward)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug-level logging")

	rootCmd.AddCommand(newRPMCmd(state))
	rootCmd.AddCommand(newRepositoryCmd(state))

	return rootCmd
}

// Execute runs the command tree and maps a returned *model.ToolError to
// the matching process exit code, per §6.
func Execute() int {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "rpm-tool:", err)
		var toolErr *model.ToolError
		if ok := asToolError(err, &toolErr); ok {
			return toolErr.Kind.ExitCode()
		}
		return model.ErrUsage.ExitCode()
	}
	return 0
}

func asToolError(err error, target **model.ToolError) bool {
	for err != nil {
		if te, ok := err.(*model.ToolError); ok {
			*target = te
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
