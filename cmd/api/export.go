package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/fluxboard/internal/board"
	"github.com/spec-kit/fluxboard/internal/export"
	"github.com/spec-kit/fluxboard/internal/persistence"
	"github.com/spec-kit/fluxboard/internal/repository"
)

var (
	exportOut  string
	exportTerm string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the flux list to an xlsx workbook",
	Long: `Reads every flux from the store, newest first, keeps the ones matching
--q with the dashboard search rules and writes them to --out.

Example:
  fluxboard export --out flux.xlsx --q lyon`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default flux_<timestamp>.xlsx)")
	exportCmd.Flags().StringVar(&exportTerm, "q", "", "search term")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	ctx, cancel := contextWithTimeout(ctx, cfg.Board.FetchTimeout())
	defer cancel()

	list, err := repository.NewFluxRepository(pg.PoolHandle()).List(ctx, repository.FluxQuery{OrderBy: "created_at"})
	if err != nil {
		return fmt.Errorf("load flux: %s", repository.StoreMessage(err))
	}
	list = board.Search(list, exportTerm)

	path := exportOut
	if path == "" {
		path = export.FileName(nowIn(cfg.Board.Location()))
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteFluxWorkbook(file, list, cfg.Board.Location()); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	logger.Info("flux exported", zap.String("path", path), zap.Int("rows", len(list)))
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
