package excel

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/example/greekbot/internal/database"
	"github.com/example/greekbot/pkg/models"
)

// Expected column order in vocabulary workbooks
var headerColumns = []string{"greek", "russian", "word_type"}

// sheetName is the worksheet vocabulary lives on
const sheetName = "Sheet1"

// Importer moves vocabulary between xlsx workbooks and the word table
type Importer struct {
	words *database.WordRepository
}

// NewImporter creates an importer over the given word repository
func NewImporter(words *database.WordRepository) *Importer {
	return &Importer{words: words}
}

// ImportResult summarizes one import run
type ImportResult struct {
	Added   int
	Skipped int
	Errors  []string
}

// ImportReader reads an xlsx workbook and inserts every valid row as a word.
// Rows already present (same greek text and type) are skipped, malformed rows
// are collected as errors without stopping the run.
func (i *Importer) ImportReader(ctx context.Context, r io.Reader, createdBy int64) (*ImportResult, error) {
	file, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %v", err)
	}
	defer file.Close()

	sheet := file.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %v", err)
	}

	result := &ImportResult{}
	for idx, row := range rows {
		// Skip a header row if present
		if idx == 0 && isHeaderRow(row) {
			continue
		}
		if len(row) == 0 {
			continue
		}
		if len(row) < 3 {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: expected 3 columns, got %d", idx+1, len(row)))
			continue
		}

		greek := strings.TrimSpace(row[0])
		russian := strings.TrimSpace(row[1])
		wordType := strings.ToLower(strings.TrimSpace(row[2]))

		if greek == "" || russian == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: empty word or translation", idx+1))
			continue
		}
		if !models.ValidWordType(wordType) {
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: unknown word type %q", idx+1, wordType))
			continue
		}

		exists, err := i.words.ExistsByGreek(ctx, greek, models.WordType(wordType))
		if err != nil {
			return nil, err
		}
		if exists {
			result.Skipped++
			continue
		}

		word := &models.Word{
			Greek:     greek,
			Russian:   russian,
			WordType:  models.WordType(wordType),
			CreatedBy: createdBy,
		}
		if err := i.words.Create(ctx, word); err != nil {
			return nil, err
		}
		result.Added++
	}

	return result, nil
}

// Export writes the whole vocabulary into an xlsx workbook and returns its bytes
func (i *Importer) Export(ctx context.Context) ([]byte, error) {
	words, err := i.words.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	file := excelize.NewFile()
	defer file.Close()

	for col, name := range headerColumns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheetName, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header: %v", err)
		}
	}

	for rowIdx, word := range words {
		values := []string{word.Greek, word.Russian, string(word.WordType)}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := file.SetCellValue(sheetName, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row %d: %v", rowIdx+2, err)
			}
		}
	}

	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %v", err)
	}
	return buf.Bytes(), nil
}

// isHeaderRow detects the conventional header line
func isHeaderRow(row []string) bool {
	if len(row) < 1 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(row[0]), headerColumns[0])
}
