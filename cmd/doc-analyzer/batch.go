package main

import (
	"context"
	"encoding/json"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/async"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
	"github.com/joseph-ayodele/doc-analyzer/internal/ingest"
)

type batchFile struct {
	ingest.FileResult
	ObjectKey    string   `json:"objectKey,omitempty"`
	Provider     string   `json:"provider,omitempty"`
	Simulated    bool     `json:"simulated,omitempty"`
	SkippedSteps []string `json:"skippedSteps,omitempty"`
}

type batchOutput struct {
	Root  string          `json:"root"`
	Stats ingest.DirStats `json:"stats"`
	Files []batchFile     `json:"files"`
}

func newBatchCmd() *cobra.Command {
	var (
		exts       string
		skipHidden bool
	)
	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Upload and analyze every matching file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			var cl closers
			defer cl.run()

			app, err := buildApp(cmd.Context(), cfg, logger, &cl, async.Inline{Timeout: cfg.Queue.ProcessTimeout})
			if err != nil {
				return err
			}
			proc := app.deps.Processor

			done := make(map[string]batchFile)
			walkCfg := ingest.WalkConfig{Extensions: splitExtensions(exts), SkipHidden: skipHidden}
			results, stats, err := ingest.WalkDirectory(cmd.Context(), args[0], walkCfg, func(ctx context.Context, path string) error {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				ct := mime.TypeByExtension(filepath.Ext(path))
				if ct == "" {
					ct = constants.ContentTypeOctetStream
				}
				res, err := proc.ProcessFile(ctx, entity.UploadedFile{
					FileName:            filepath.Base(path),
					DeclaredContentType: ct,
					Payload:             data,
				})
				if err != nil {
					return err
				}
				done[path] = batchFile{
					ObjectKey:    res.File.SavedAs,
					Provider:     res.Analysis.Provider,
					Simulated:    res.Analysis.Simulated,
					SkippedSteps: res.SkippedSteps,
				}
				return nil
			})
			if err != nil {
				return err
			}

			out := batchOutput{Root: args[0], Stats: stats, Files: make([]batchFile, 0, len(results))}
			for _, r := range results {
				f := done[r.Path]
				f.FileResult = r
				out.Files = append(out.Files, f)
			}
			logger.Info("batch.done",
				"root", args[0],
				"scanned", stats.Scanned,
				"matched", stats.Matched,
				"succeeded", stats.Succeeded,
				"failed", stats.Failed,
			)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&exts, "ext", "", "comma separated extensions to include (default: pdf,txt,md,csv,json)")
	cmd.Flags().BoolVar(&skipHidden, "skip-hidden", true, "skip dot files and dot directories")
	return cmd
}

func splitExtensions(s string) []string {
	var out []string
	for _, e := range strings.Split(s, ",") {
		e = constants.NormalizeExt(strings.TrimSpace(e))
		if e != "" {
			out = append(out, e)
		}
	}
	return out
}
