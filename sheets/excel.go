package sheets

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"hastnet-scraper/models"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExcelWriter writes a run result to a single-sheet xlsx workbook
type ExcelWriter struct {
	path      string
	sheetName string
	delimiter string
	logger    *zap.Logger
}

// NewExcelWriter creates a writer for the workbook at path
func NewExcelWriter(path, sheetName, delimiter string, logger *zap.Logger) *ExcelWriter {
	if delimiter == "" {
		delimiter = DefaultImageDelimiter
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExcelWriter{
		path:      path,
		sheetName: sheetName,
		delimiter: delimiter,
		logger:    logger,
	}
}

// Export implements the Exporter interface. The workbook is written to a
// temporary file next to the destination and renamed over it, so a failed
// export never leaves a partial file behind.
func (w *ExcelWriter) Export(ctx context.Context, result *models.RunResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var ads []models.Ad
	if result != nil {
		ads = result.Ads
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheetName); err != nil {
		return fmt.Errorf("failed to name sheet %q: %w", w.sheetName, err)
	}

	for i, row := range Rows(ads, w.delimiter) {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(w.sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.xlsx")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set workbook permissions: %w", err)
	}
	tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		return fmt.Errorf("failed to move workbook into place: %w", err)
	}

	w.logger.Info("Wrote workbook",
		zap.String("path", w.path),
		zap.String("sheet", w.sheetName),
		zap.Int("ads", len(ads)),
	)
	return nil
}
