// Package feedback loads the customer feedback corpus used by the assistant.
package feedback

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/quickcommerce/insights/internal/insighterrors"
)

// DefaultColumn is the CSV header of the free-text feedback column.
const DefaultColumn = "feedback_text"

// LoadCorpus reads the CSV file at path and returns the values of column, one per data row, in file order.
// Cells are returned as-is; a blank cell stays an empty string so positions match the source rows.
func LoadCorpus(path, column string) ([]string, error) {
	if column == "" {
		column = DefaultColumn
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, insighterrors.NewLoadError(path, "open", err)
	}
	defer f.Close()

	texts, err := ReadCorpus(f, column)
	if err != nil {
		var loadErr *insighterrors.LoadError
		if errors.As(err, &loadErr) {
			loadErr.Path = path
		}

		return nil, err
	}

	slog.Info("feedback corpus loaded", "path", path, "column", column, "rows", len(texts))

	return texts, nil
}

// ReadCorpus reads CSV from r; see LoadCorpus.
func ReadCorpus(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, insighterrors.NewLoadError("", "missing header row", nil)
		}

		return nil, insighterrors.NewLoadError("", "read header", err)
	}

	col := columnIndex(header, column)
	if col < 0 {
		return nil, insighterrors.NewLoadError("", fmt.Sprintf("column %q not found", column), nil)
	}

	texts := []string{}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, insighterrors.NewLoadError("", fmt.Sprintf("read row %d", len(texts)+1), err)
		}

		texts = append(texts, record[col])
	}

	return texts, nil
}

func columnIndex(header []string, column string) int {
	for i, name := range header {
		// Spreadsheet exports often prefix the first header with a UTF-8 BOM.
		name = strings.TrimPrefix(name, "\ufeff")
		if strings.TrimSpace(name) == column {
			return i
		}
	}

	return -1
}
