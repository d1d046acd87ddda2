package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samirrijal/gridgeo/internal/adapters/file"
	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/core/usecases"
	"github.com/samirrijal/gridgeo/internal/pkg/geospatial"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	NetworkPath string
	RecordsPath string
	CRS         []string // extra accepted systems as name=urn
}

// ImportOutput is the JSON payload of a successful import.
type ImportOutput struct {
	Report    domain.ImportReport      `json:"report"`
	Positions []domain.ElementPosition `json:"positions"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Attach positions from a record file to a network file",
		Long: `Read coordinate records (CSV, JSONL, MessagePack or CGMES GL RDF/XML), group them
per line and dangling line of the network, order them by sequence number and print
the reconstructed positions. Unknown element ids are reported and skipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVar(&opts.NetworkPath, "network", "", "network YAML file")
	cmd.Flags().StringVar(&opts.RecordsPath, "records", "", "position record file")
	cmd.Flags().StringSliceVar(&opts.CRS, "crs", nil, "additional accepted coordinate system as name=urn (repeatable)")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

func runImport(cmd *cobra.Command, rootOpts *RootOptions, opts *ImportOptions) error {
	out := newFormatter(rootOpts, cmd.OutOrStdout())

	catalog, err := parseCatalog(opts.CRS)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, err)
	}
	source, err := file.NewRecordSource(opts.RecordsPath)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, err)
	}

	svc := usecases.NewPositionImportService(file.NewNetworkRepo(opts.NetworkPath), source, catalog, nil, nil, nil)
	res, err := svc.Import(cmd.Context(), "")
	switch {
	case errors.Is(err, domain.ErrUnsupportedCoordinateSystem):
		return out.Fail(ExitFailure, CodeUnsupportedCRS, err)
	case errors.Is(err, domain.ErrMalformedRecord):
		return out.Fail(ExitFailure, CodeMalformedRecord, err)
	case err != nil:
		return out.Fail(ExitCommandError, CodeInput, err)
	}

	if out.JSON() {
		return out.Success(ImportOutput{Report: res.Report, Positions: res.Positions})
	}
	printImport(out, res)
	return nil
}

func printImport(out *OutputFormatter, res *usecases.ImportResult) {
	r := res.Report
	w := out.Writer
	fmt.Fprintf(w, "Network %s: %d records, %d lines, %d dangling lines, %d skipped\n",
		r.NetworkID, r.RecordsRead, r.LinesAttached, r.DanglingLinesAttached, len(r.Skipped))
	for _, p := range res.Positions {
		fmt.Fprintf(w, "  %s %s: %d points\n", p.Element.Kind, p.Element.ID, len(p.Coordinates))
	}
	for _, s := range r.Skipped {
		line := fmt.Sprintf("  skipped %s", s.ElementID)
		if s.DisplayName != "" {
			line += fmt.Sprintf(" (%s)", s.DisplayName)
		}
		line += ": " + s.Reason
		if s.Suggestion != "" {
			line += fmt.Sprintf(", did you mean %s?", s.Suggestion)
		}
		fmt.Fprintln(w, line)
	}
}

// parseCatalog builds the accepted CRS set: WGS 84 plus every name=urn entry.
func parseCatalog(entries []string) (*geospatial.Catalog, error) {
	crs := []geospatial.CRS{{Name: geospatial.WGS84Name, URN: geospatial.WGS84URN}}
	for _, e := range entries {
		name, urn, ok := strings.Cut(e, "=")
		name, urn = strings.TrimSpace(name), strings.TrimSpace(urn)
		if !ok || name == "" || urn == "" {
			return nil, fmt.Errorf("invalid --crs %q: expected name=urn", e)
		}
		crs = append(crs, geospatial.CRS{Name: name, URN: urn})
	}
	return geospatial.NewCatalog(crs...), nil
}
