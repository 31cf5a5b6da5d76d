package export

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yungbote/datasynth-backend/internal/dataset"
)

func sampleTables() []*dataset.Table {
	users := dataset.NewTable(dataset.TableUser, "id", "username", "email", "score")
	users.AppendRow(dataset.Row{"id": int64(1), "username": "ada", "email": nil, "score": 4.5})
	users.AppendRow(dataset.Row{"id": int64(2), "username": "lin, \"jr\"", "email": "lin@example.com", "score": int64(3)})
	tags := dataset.NewTable(dataset.TableTag, dataset.TagColumns...)
	return []*dataset.Table{users, tags}
}

func TestWriteZip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteZip(&buf, sampleTables()); err != nil {
		t.Fatalf("WriteZip: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	if len(zr.File) != 2 || zr.File[0].Name != "user.csv" || zr.File[1].Name != "tag.csv" {
		t.Fatalf("entries: got=%v", zr.File)
	}

	f, err := zr.File[0].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := [][]string{
		{"id", "username", "email", "score"},
		{"1", "ada", "", "4.5"},
		{"2", "lin, \"jr\"", "lin@example.com", "3"},
	}
	if len(records) != len(want) {
		t.Fatalf("records: want=%d got=%d", len(want), len(records))
	}
	for i := range want {
		for j := range want[i] {
			if records[i][j] != want[i][j] {
				t.Fatalf("cell %d,%d: want=%q got=%q", i, j, want[i][j], records[i][j])
			}
		}
	}

	g, err := zr.File[1].Open()
	if err != nil {
		t.Fatal(err)
	}
	defer g.Close()
	header, err := csv.NewReader(g).ReadAll()
	if err != nil || len(header) != 1 || len(header[0]) != 2 {
		t.Fatalf("empty table should have only its header: got=%v err=%v", header, err)
	}
}

func TestWriteSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.db")
	for range 2 {
		if err := WriteSQLite(context.Background(), nil, path, sampleTables()); err != nil {
			t.Fatalf("WriteSQLite: %v", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormlogger.Discard})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	var n int64
	if err := db.Table("user").Count(&n).Error; err != nil || n != 2 {
		t.Fatalf("user rows: want=2 got=%d err=%v", n, err)
	}
	if err := db.Table("tag").Count(&n).Error; err != nil || n != 0 {
		t.Fatalf("tag rows: want=0 got=%d err=%v", n, err)
	}

	var email sql.NullString
	if err := db.Raw(`SELECT email FROM "user" WHERE id = 1`).Row().Scan(&email); err != nil {
		t.Fatalf("scan email: %v", err)
	}
	if email.Valid {
		t.Fatalf("null email: want NULL got=%q", email.String)
	}

	var kind string
	if err := db.Raw(`SELECT typeof(score) FROM "user" WHERE id = 2`).Row().Scan(&kind); err != nil {
		t.Fatalf("typeof: %v", err)
	}
	if kind != "real" {
		t.Fatalf("score affinity: want=real got=%s", kind)
	}
}

func TestAffinity(t *testing.T) {
	tbl := dataset.NewTable("x", "a", "b", "c", "d")
	tbl.AppendRow(dataset.Row{"a": int64(1), "b": 1.5, "c": "s", "d": nil})
	tbl.AppendRow(dataset.Row{"a": nil, "b": int64(2), "c": int64(3), "d": nil})
	cases := map[string]string{"a": "INTEGER", "b": "REAL", "c": "TEXT", "d": "TEXT"}
	for col, want := range cases {
		if got := affinity(tbl, col); got != want {
			t.Fatalf("affinity(%s): want=%s got=%s", col, want, got)
		}
	}
}
