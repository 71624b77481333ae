package cli

import (
	"fmt"

	"github.com/rpm-tool/rpm-tool/internal/model"
	"github.com/rpm-tool/rpm-tool/internal/reconciler"
	"github.com/rpm-tool/rpm-tool/internal/signer"
	"github.com/spf13/cobra"
)

func newRepositoryCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repository",
		Short: "Build and maintain a yum/dnf repodata index",
	}
	cmd.AddCommand(newGenerateCmd(state))
	cmd.AddCommand(newAddFilesCmd(state))
	cmd.AddCommand(newValidateCmd(state))
	return cmd
}

type repoFlags struct {
	filelists bool
	signKey   string
	signPass  string
}

func (f *repoFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.filelists, "filelists", true, "also generate filelists.xml(.gz)")
	cmd.Flags().StringVar(&f.signKey, "sign-key", "", "path to an OpenPGP private key to sign repomd.xml with")
	cmd.Flags().StringVar(&f.signPass, "sign-passphrase", "", "passphrase for --sign-key, if the key is encrypted")
}

func (f *repoFlags) signFunc() (func([]byte) ([]byte, error), error) {
	if f.signKey == "" {
		return nil, nil
	}
	s, err := signer.New(f.signKey, f.signPass)
	if err != nil {
		return nil, model.NewError(model.ErrConfig, fmt.Errorf("loading sign-key: %w", err))
	}
	return s.SignDetached, nil
}

// newGenerateCmd builds "repository generate <root>": a full walker-
// driven reconciliation, reusing carry-over entries from any existing
// index, per §4.G.
func newGenerateCmd(state *rootState) *cobra.Command {
	var flags repoFlags

	cmd := &cobra.Command{
		Use:   "generate <repository-path>",
		Short: "Build or incrementally update repodata for a directory of RPMs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := args[0]
			signFn, err := flags.signFunc()
			if err != nil {
				return err
			}
			usefulFiles, err := state.cfg.UsefulFilesMatcher()
			if err != nil {
				return model.NewError(model.ErrConfig, err)
			}

			stats, err := reconciler.Generate(cmd.Context(), reconciler.Options{
				Root:           root,
				Concurrency:    state.cfg.Repodata.Concurrency,
				UsefulFiles:    usefulFiles,
				WriteFilelists: flags.filelists,
				Sign:           signFn,
				Sink:           state.sink,
			})
			if err != nil {
				return err
			}
			state.sink.Infof("generate complete: %d carried over, %d parsed, %d failed, %d removed",
				stats.CarriedOver, stats.Parsed, stats.Failed, stats.Removed)
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

// newAddFilesCmd builds "repository add-files --repository-path <root>
// <file.rpm>...": incorporate explicit files without walking the repo.
func newAddFilesCmd(state *rootState) *cobra.Command {
	var flags repoFlags
	var repoPath string

	cmd := &cobra.Command{
		Use:   "add-files <file.rpm>...",
		Short: "Add specific RPM files to an existing repodata index",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if repoPath == "" {
				return model.NewError(model.ErrUsage, fmt.Errorf("--repository-path is required"))
			}
			signFn, err := flags.signFunc()
			if err != nil {
				return err
			}
			usefulFiles, err := state.cfg.UsefulFilesMatcher()
			if err != nil {
				return model.NewError(model.ErrConfig, err)
			}

			stats, err := reconciler.AddFiles(cmd.Context(), reconciler.Options{
				Root:           repoPath,
				Concurrency:    state.cfg.Repodata.Concurrency,
				UsefulFiles:    usefulFiles,
				WriteFilelists: flags.filelists,
				Sign:           signFn,
				Sink:           state.sink,
			}, args)
			if err != nil {
				return err
			}
			state.sink.Infof("add-files complete: %d carried over, %d parsed, %d failed",
				stats.CarriedOver, stats.Parsed, stats.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoPath, "repository-path", "", "repository root whose repodata/ should be updated (required)")
	flags.register(cmd)
	return cmd
}

// newValidateCmd builds "repository validate <root>": check every indexed
// package's location/size/sha256 against what's actually on disk, and
// flag any *.rpm on disk that the index doesn't know about.
func newValidateCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <repository-path>",
		Short: "Check an existing repodata index against the files on disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			problems, err := reconciler.Validate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(problems) == 0 {
				state.sink.Infof("validate: no problems found")
				return nil
			}
			for _, p := range problems {
				state.sink.Errorf("%s: %s", p.LocationHref, p.Reason)
			}
			return model.NewError(model.ErrIntegrity, fmt.Errorf("%d integrity problem(s) found", len(problems)))
		},
	}
	return cmd
}
