package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-analyzer/internal/export"
	"github.com/joseph-ayodele/doc-analyzer/internal/repository"
)

func newExportCmd() *cobra.Command {
	var (
		out   string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the document registry to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			var cl closers
			defer cl.run()

			db, err := openRegistry(cmd.Context(), cfg.Database, logger, &cl)
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("export needs a registry database: set DB_URL (or DB_DRIVER=sqlite)")
			}

			svc := export.NewService(repository.NewDocumentRepository(db, logger), logger)
			xlsx, err := svc.ExportDocumentsXLSX(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, xlsx, 0o644); err != nil {
				return err
			}
			logger.Info("export.written", "path", out, "bytes", len(xlsx))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "documents.xlsx", "output file")
	cmd.Flags().IntVar(&limit, "limit", 0, "newest documents to export (0 = all)")
	return cmd
}
