package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/datasynth-backend/internal/dataset"
	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

const insertBatchSize = 200

// WriteSQLite writes every table into a fresh SQLite database at path. Column
// affinity is inferred from the values: INTEGER, REAL, or TEXT.
func WriteSQLite(ctx context.Context, log *logger.Logger, path string, tables []*dataset.Table) (err error) {
	if log == nil {
		log = logger.Nop()
	}
	if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		return fmt.Errorf("remove existing database: %w", rmErr)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sqlDB.Close(); err == nil {
			err = cerr
		}
	}()

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range tables {
			if err := tx.Exec(createTableSQL(t)).Error; err != nil {
				return fmt.Errorf("create %s: %w", t.Name, err)
			}
			if t.Len() == 0 {
				continue
			}
			rows := make([]map[string]any, t.Len())
			for i, r := range t.Rows {
				row := make(map[string]any, len(t.Columns))
				for _, c := range t.Columns {
					row[c] = r[c]
				}
				rows[i] = row
			}
			if err := tx.Table(t.Name).CreateInBatches(rows, insertBatchSize).Error; err != nil {
				return fmt.Errorf("insert %s: %w", t.Name, err)
			}
			log.Debug("SQLite table written", "table", t.Name, "rows", t.Len())
		}
		return nil
	})
}

func createTableSQL(t *dataset.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		def := quote(c) + " " + affinity(t, c)
		if c == "id" {
			def += " PRIMARY KEY"
		}
		cols[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(t.Name), strings.Join(cols, ", "))
}

// affinity picks the narrowest type that holds every non-null value.
func affinity(t *dataset.Table, col string) string {
	kind := ""
	for _, r := range t.Rows {
		switch r[col].(type) {
		case nil:
		case int, int32, int64, bool:
			if kind == "" {
				kind = "INTEGER"
			}
		case float32, float64:
			if kind == "" || kind == "INTEGER" {
				kind = "REAL"
			}
		default:
			return "TEXT"
		}
	}
	if kind == "" {
		return "TEXT"
	}
	return kind
}

func quote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
