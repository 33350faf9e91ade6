package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/doc-analyzer/constants"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
	"github.com/joseph-ayodele/doc-analyzer/internal/extract"
)

// extractOutput mirrors the ingestion result the upload endpoint reports.
type extractOutput struct {
	OriginalFileName    string                  `json:"originalFileName"`
	DeclaredContentType string                  `json:"declaredContentType"`
	PayloadSize         int64                   `json:"payloadSize"`
	Kind                entity.FileKind         `json:"kind"`
	ExtractionMethod    entity.ExtractionMethod `json:"extractionMethod"`
	Truncated           bool                    `json:"truncated"`
	Warnings            []string                `json:"warnings"`
	Language            string                  `json:"language,omitempty"`
	Pages               int                     `json:"pages,omitempty"`
	Characters          int                     `json:"characters"`
	DurationMs          int64                   `json:"durationMs"`
	ExtractedText       string                  `json:"extractedText"`
}

func newExtractCmd() *cobra.Command {
	var contentType string
	cmd := &cobra.Command{
		Use:   "extract <file>",
		Short: "Classify and extract a local file, printing the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			path := args[0]
			info, err := os.Stat(path)
			if err != nil {
				return err
			}
			if info.Size() > cfg.Ingest.MaxUploadBytes {
				return fmt.Errorf("%s is %d bytes, over the %d byte upload limit", path, info.Size(), cfg.Ingest.MaxUploadBytes)
			}

			ct := contentType
			if ct == "" {
				ct = mime.TypeByExtension(filepath.Ext(path))
			}
			if ct == "" {
				ct = constants.ContentTypeOctetStream
			}

			ex := newExtractor(cfg.Extract, logger)
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			file := entity.UploadedFile{FileName: filepath.Base(path), DeclaredContentType: ct, Payload: data}
			classified := extract.Classify(data, ct)
			res, err := ex.Extract(cmd.Context(), file, classified)
			if err != nil {
				return err
			}

			out := extractOutput{
				OriginalFileName:    file.FileName,
				DeclaredContentType: ct,
				PayloadSize:         int64(len(data)),
				Kind:                classified.Kind,
				ExtractionMethod:    res.Method,
				Truncated:           res.Truncated,
				Warnings:            append([]string{}, res.Warnings...),
				Language:            res.Language,
				Pages:               res.Pages,
				Characters:          utf8.RuneCountInString(res.Text),
				DurationMs:          res.Duration.Milliseconds(),
				ExtractedText:       res.Text,
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&contentType, "type", "", "declared content type (default: from the file extension)")
	return cmd
}
