package cli

import (
	"fmt"
	"os"

	"github.com/rpm-tool/rpm-tool/internal/model"
	"github.com/rpm-tool/rpm-tool/internal/output"
	"github.com/rpm-tool/rpm-tool/internal/rpmformat"
	"github.com/spf13/cobra"
)

// newRPMCmd builds "rpm", whose only subcommand today is "dump".
func newRPMCmd(state *rootState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rpm",
		Short: "Inspect individual RPM files",
	}
	cmd.AddCommand(newDumpCmd(state))
	return cmd
}

// newDumpCmd builds "rpm dump <file.rpm>": parse one package and render
// it as JSON, YAML, or XML to stdout, per §4.I.
func newDumpCmd(state *rootState) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "dump <file.rpm>",
		Short: "Parse an RPM file and print its metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			pkg, err := rpmformat.Parse(path)
			if err != nil {
				return model.NewFileError(model.ErrParseRpm, path, err)
			}

			data, err := output.Dump(*pkg, output.Format(format))
			if err != nil {
				return model.NewError(model.ErrUsage, err)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", fmt.Sprintf("output format: %s, %s, or %s", output.FormatJSON, output.FormatYAML, output.FormatXML))
	return cmd
}
