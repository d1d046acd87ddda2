package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/gridgeo/internal/adapters/file"
)

// ConvertResult is the JSON payload of a successful conversion.
type ConvertResult struct {
	In      string `json:"in"`
	Out     string `json:"out"`
	Records int    `json:"records"`
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	var in, out string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a position record file to another format",
		Long: `Convert position records between CSV, JSONL and MessagePack. CGMES GL documents
can be read but not written. Formats follow the file extensions.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, rootOpts, in, out)
		},
	}

	cmd.Flags().StringVar(&in, "in", "", "input record file")
	cmd.Flags().StringVar(&out, "out", "", "output record file")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func runConvert(cmd *cobra.Command, rootOpts *RootOptions, in, out string) error {
	f := newFormatter(rootOpts, cmd.OutOrStdout())

	outFormat, err := file.DetectFormat(out)
	if err != nil {
		return f.Fail(ExitCommandError, CodeInput, err)
	}
	if outFormat == file.FormatCGMES {
		return f.Fail(ExitCommandError, CodeInput, fmt.Errorf("cannot write %s: CGMES output is not supported", out))
	}

	source, err := file.NewRecordSource(in)
	if err != nil {
		return f.Fail(ExitCommandError, CodeInput, err)
	}
	records, err := file.Collect(source.PositionRecords(cmd.Context(), ""))
	if err != nil {
		return f.FailRecords(err)
	}

	dst, err := os.Create(out)
	if err != nil {
		return f.Fail(ExitCommandError, CodeInput, err)
	}
	if err := file.WriteRecords(dst, outFormat, records); err != nil {
		_ = dst.Close()
		return f.Fail(ExitCommandError, CodeInput, err)
	}
	if err := dst.Close(); err != nil {
		return f.Fail(ExitCommandError, CodeInput, err)
	}

	result := ConvertResult{In: in, Out: out, Records: len(records)}
	if f.JSON() {
		return f.Success(result)
	}
	fmt.Fprintf(f.Writer, "Converted %d records: %s -> %s\n", result.Records, in, out)
	return nil
}
