package export

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/yungbote/datasynth-backend/internal/dataset"
)

// WriteZip writes one "<table>.csv" entry per table, header first, in the
// given order. Null values are written as empty fields.
func WriteZip(w io.Writer, tables []*dataset.Table) error {
	zw := zip.NewWriter(w)
	for _, t := range tables {
		f, err := zw.Create(t.Name + ".csv")
		if err != nil {
			return fmt.Errorf("zip entry %s: %w", t.Name, err)
		}
		if err := writeCSV(f, t); err != nil {
			return fmt.Errorf("csv %s: %w", t.Name, err)
		}
	}
	return zw.Close()
}

// WriteZipFile creates path and writes the archive to it.
func WriteZipFile(path string, tables []*dataset.Table) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return WriteZip(f, tables)
}

func writeCSV(w io.Writer, t *dataset.Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Columns); err != nil {
		return err
	}
	record := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			record[i] = dataset.AsString(r[c])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
