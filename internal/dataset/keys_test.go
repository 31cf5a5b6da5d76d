package dataset

import (
	"testing"
)

func TestAllocatePrimaryKeys_ContiguousFromExisting(t *testing.T) {
	cases := []struct {
		name     string
		existing []any
		count    int
		wantFrom int64
	}{
		{name: "empty", existing: nil, count: 4, wantFrom: 1},
		{name: "existing", existing: []any{int64(1), int64(2), int64(7)}, count: 3, wantFrom: 8},
		{name: "float ids", existing: []any{1.0, 2.0}, count: 2, wantFrom: 3},
		{name: "zero count", existing: []any{int64(5)}, count: 0, wantFrom: 6},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tbl := NewTable("t", "id", "name")
			for _, id := range tc.existing {
				tbl.AppendRow(Row{"id": id})
			}
			before := tbl.Len()
			AllocatePrimaryKeys(nil, tbl, tc.count)

			if got := tbl.Len() - before; got != tc.count {
				t.Fatalf("rows added: want=%d got=%d", tc.count, got)
			}
			for i, r := range tbl.Rows[before:] {
				want := tc.wantFrom + int64(i)
				if r["id"] != want {
					t.Fatalf("row %d id: want=%d got=%v", i, want, r["id"])
				}
				if _, ok := r["name"]; !ok || r["name"] != nil {
					t.Fatalf("row %d name: want=nil got=%v", i, r["name"])
				}
			}
		})
	}
}

func TestAllocatePrimaryKeys_NonNumericStartsAtOne(t *testing.T) {
	tbl := NewTable("t", "id")
	tbl.AppendRow(Row{"id": "abc"})
	AllocatePrimaryKeys(nil, tbl, 2)
	if tbl.Rows[1]["id"] != int64(1) || tbl.Rows[2]["id"] != int64(2) {
		t.Fatalf("ids: want=[1 2] got=[%v %v]", tbl.Rows[1]["id"], tbl.Rows[2]["id"])
	}
	if CheckPrimaryKeys(nil, tbl) {
		t.Fatalf("CheckPrimaryKeys: want=false on mixed ids")
	}
}

func TestAllocatePrimaryKeys_MissingIDColumn(t *testing.T) {
	tbl := NewTable("t", "name")
	AllocatePrimaryKeys(nil, tbl, 3)
	if !tbl.HasColumn("id") {
		t.Fatalf("id column not added")
	}
	if !CheckPrimaryKeys(nil, tbl) {
		t.Fatalf("CheckPrimaryKeys: want=true")
	}
}

func TestDistributeForeignKeys_CoversEveryKey(t *testing.T) {
	refs := []int64{30, 31, 32, 33, 34}
	for _, n := range []int{5, 6, 9, 17, 100} {
		for seed := uint64(1); seed <= 20; seed++ {
			dest := NewTable("course", "id", "category")
			AllocatePrimaryKeys(nil, dest, n)
			DistributeForeignKeys(nil, dest, "category", refs, NewRand(seed))

			counts := map[int64]int{}
			for _, r := range dest.Rows {
				v, ok := r["category"].(int64)
				if !ok {
					t.Fatalf("n=%d seed=%d: non-int64 value %v", n, seed, r["category"])
				}
				counts[v]++
			}
			for _, k := range refs {
				if counts[k] == 0 {
					t.Fatalf("n=%d seed=%d: key %d unused", n, seed, k)
				}
			}
			if len(counts) != len(refs) {
				t.Fatalf("n=%d seed=%d: unexpected keys %v", n, seed, counts)
			}
		}
	}
}

func TestDistributeForeignKeys_FewerRowsThanKeys(t *testing.T) {
	refs := []int64{1, 2, 3, 4, 5, 6, 7, 8}
	dest := NewTable("resource", "id", "course")
	AllocatePrimaryKeys(nil, dest, 3)
	DistributeForeignKeys(nil, dest, "course", refs, NewRand(7))

	valid := map[int64]bool{}
	for _, k := range refs {
		valid[k] = true
	}
	for i, r := range dest.Rows {
		v, _ := AsInt(r["course"])
		if !valid[v] {
			t.Fatalf("row %d: value %v not a reference key", i, r["course"])
		}
	}
}

func TestDistributeForeignKeys_Balanced(t *testing.T) {
	refs := []int64{1, 2, 3, 4}
	dest := NewTable("t", "id", "fk")
	AllocatePrimaryKeys(nil, dest, 400)
	DistributeForeignKeys(nil, dest, "fk", refs, NewRand(42))

	counts := map[int64]int{}
	for _, r := range dest.Rows {
		v, _ := AsInt(r["fk"])
		counts[v]++
	}
	// base 100, jitter +-1, padding spread over 4 keys
	for _, k := range refs {
		if counts[k] < 95 || counts[k] > 105 {
			t.Fatalf("key %d count: want within [95,105] got=%d", k, counts[k])
		}
	}
}

func TestDistributeForeignKeys_Reproducible(t *testing.T) {
	refs := []int64{10, 20, 30}
	run := func() []any {
		dest := NewTable("t", "id", "fk")
		AllocatePrimaryKeys(nil, dest, 25)
		DistributeForeignKeys(nil, dest, "fk", refs, NewRand(99))
		return dest.Column("fk")
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d: want=%v got=%v", i, a[i], b[i])
		}
	}
}

func TestDistributeForeignKeys_EmptyRefsLeavesTable(t *testing.T) {
	dest := NewTable("t", "id")
	AllocatePrimaryKeys(nil, dest, 3)
	DistributeForeignKeys(nil, dest, "fk", nil, NewRand(1))
	if dest.HasColumn("fk") {
		t.Fatalf("fk column: want absent")
	}
	if dest.Len() != 3 {
		t.Fatalf("rows: want=3 got=%d", dest.Len())
	}
}

func TestDistributeForeignKeys_EmptyDest(t *testing.T) {
	dest := NewTable("t", "id", "fk")
	DistributeForeignKeys(nil, dest, "fk", []int64{1, 2}, NewRand(1))
	if dest.Len() != 0 {
		t.Fatalf("rows: want=0 got=%d", dest.Len())
	}
}
