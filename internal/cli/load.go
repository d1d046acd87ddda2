package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/samirrijal/gridgeo/internal/adapters/file"
	"github.com/samirrijal/gridgeo/internal/adapters/postgres"
	"github.com/samirrijal/gridgeo/internal/core/domain"
	"github.com/samirrijal/gridgeo/internal/pkg/config"
)

// LoadResult is the JSON payload of a successful load.
type LoadResult struct {
	NetworkID string `json:"network_id"`
	Lines     int    `json:"lines"`
	Dangling  int    `json:"dangling_lines"`
	Records   int64  `json:"records"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	var networkPath, recordsPath string
	var keep bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load a network and its position records into the database",
		Long: `Store a network file and a position record file in PostgreSQL so the API and the
worker can import them. Existing records of the network are replaced unless --append is set.
Connection settings come from config.yaml and GRIDGEO_* environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, rootOpts, networkPath, recordsPath, keep)
		},
	}

	cmd.Flags().StringVar(&networkPath, "network", "", "network YAML file")
	cmd.Flags().StringVar(&recordsPath, "records", "", "position record file")
	cmd.Flags().BoolVar(&keep, "append", false, "keep existing records of the network")
	_ = cmd.MarkFlagRequired("network")
	_ = cmd.MarkFlagRequired("records")

	return cmd
}

func runLoad(cmd *cobra.Command, rootOpts *RootOptions, networkPath, recordsPath string, keep bool) error {
	out := newFormatter(rootOpts, cmd.OutOrStdout())
	ctx := cmd.Context()

	data, err := os.ReadFile(networkPath)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, err)
	}
	network, err := file.ParseNetwork(data)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, err)
	}
	source, err := file.NewRecordSource(recordsPath)
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, err)
	}
	records, err := file.Collect(source.PositionRecords(ctx, network.ID))
	if err != nil {
		return out.FailRecords(err)
	}

	cfg, err := config.Load("gridgeo-cli")
	if err != nil {
		return out.Fail(ExitCommandError, CodeInput, err)
	}
	db, err := postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		return out.Fail(ExitCommandError, CodeDatabase, err)
	}
	defer db.Close()

	if err := postgres.NewNetworkRepo(db).SaveNetwork(ctx, network); err != nil {
		return out.Fail(ExitCommandError, CodeDatabase, err)
	}
	recordRepo := postgres.NewRecordSource(db)
	if !keep {
		if err := recordRepo.DeleteRecords(ctx, network.ID); err != nil {
			return out.Fail(ExitCommandError, CodeDatabase, err)
		}
	}
	n, err := recordRepo.AppendRecords(ctx, network.ID, records)
	if errors.Is(err, domain.ErrMalformedRecord) {
		return out.FailRecords(err)
	}
	if err != nil {
		return out.Fail(ExitCommandError, CodeDatabase, err)
	}

	result := LoadResult{
		NetworkID: network.ID,
		Lines:     len(network.Lines()),
		Dangling:  len(network.DanglingLines()),
		Records:   n,
	}
	if out.JSON() {
		return out.Success(result)
	}
	fmt.Fprintf(out.Writer, "Loaded network %s: %d lines, %d dangling lines, %d records\n",
		result.NetworkID, result.Lines, result.Dangling, result.Records)
	return nil
}
