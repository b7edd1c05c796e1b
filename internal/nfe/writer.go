package nfe

import (
	"fmt"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/unicode"
)

// BuildDataFrame assembles the output table with the fixed column order.
// Cells are kept as strings so the CSV rendering stays under our control.
func BuildDataFrame(rows []RegistroEnriquecido) dataframe.DataFrame {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, Columns)
	for _, row := range rows {
		records = append(records, row.csvRow())
	}

	return dataframe.LoadRecords(
		records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
}

// SaveDataFrame overwrites filename with the dataframe as UTF-8 CSV.
// The BOM is required so spreadsheet tools pick up the encoding.
func SaveDataFrame(df dataframe.DataFrame, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %v", err)
	}
	defer f.Close()

	encoded := unicode.UTF8BOM.NewEncoder().Writer(f)
	if err := df.WriteCSV(encoded); err != nil {
		return fmt.Errorf("error writing CSV: %v", err)
	}

	return nil
}

// SaveEmptyCSV leaves a header-less empty file at the expected path so
// downstream consumers always find something to read.
func SaveEmptyCSV(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating file: %v", err)
	}
	return f.Close()
}
