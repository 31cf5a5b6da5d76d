package dataset

import (
	"math/rand/v2"
	"slices"

	"github.com/yungbote/datasynth-backend/internal/platform/logger"
)

// NewRand returns a reproducible source for seed != 0 and a randomly seeded one otherwise.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// AllocatePrimaryKeys appends count rows with ids last+1..last+count, where last
// is the highest existing id. A missing or non-numeric id column counts as "no
// ids yet"; any clash that causes is left for CheckPrimaryKeys to report.
func AllocatePrimaryKeys(log *logger.Logger, t *Table, count int) {
	log = orNop(log)
	t.EnsureColumn("id")

	var last int64
	numeric := true
	for _, r := range t.Rows {
		v, ok := AsInt(r["id"])
		if !ok {
			numeric = false
			break
		}
		if v > last {
			last = v
		}
	}
	if !numeric {
		log.Warn("Existing id column is not numeric, allocating from 1", "table", t.Name)
		last = 0
	}

	for i := 1; i <= count; i++ {
		t.AppendRow(Row{"id": last + int64(i)})
	}
	log.Debug("Primary keys allocated", "table", t.Name, "count", count, "first", last+1)
}

// DistributeForeignKeys fills column with values drawn from refKeys so every key
// gets roughly len(dest)/len(refKeys) rows, give or take one. When there are at
// least as many rows as keys, every key is used at least once.
func DistributeForeignKeys(log *logger.Logger, dest *Table, column string, refKeys []int64, rng *rand.Rand) {
	log = orNop(log)
	if len(refKeys) == 0 {
		log.Warn("No reference keys found, foreign keys not distributed", "table", dest.Name, "column", column)
		return
	}
	if rng == nil {
		rng = NewRand(0)
	}
	dest.EnsureColumn(column)

	keys := slices.Clone(refKeys)
	rng.Shuffle(len(keys), func(i, j int) { keys[i], keys[j] = keys[j], keys[i] })

	n, k := dest.Len(), len(keys)
	base, residue := n/k, n%k

	counts := make([]int, k)
	sum := 0
	for i := range keys {
		c := max(1, base+rng.IntN(3)-1)
		if i < residue {
			c++
		}
		counts[i] = c
		sum += c
	}

	// Trim surplus from keys holding more than one row first, so no key drops
	// out while n >= k; only then drop whole keys from the tail.
	for sum > n {
		var candidates []int
		for i, c := range counts {
			if c > 1 {
				candidates = append(candidates, i)
			}
		}
		if len(candidates) > 0 {
			counts[candidates[rng.IntN(len(candidates))]]--
		} else {
			for i := k - 1; i >= 0; i-- {
				if counts[i] > 0 {
					counts[i] = 0
					break
				}
			}
		}
		sum--
	}
	for sum < n {
		counts[rng.IntN(k)]++
		sum++
	}

	assignments := make([]int64, 0, n)
	for i, c := range counts {
		for j := 0; j < c; j++ {
			assignments = append(assignments, keys[i])
		}
	}
	rng.Shuffle(len(assignments), func(i, j int) { assignments[i], assignments[j] = assignments[j], assignments[i] })

	for i, r := range dest.Rows {
		r[column] = assignments[i]
	}
	log.Debug("Foreign keys distributed", "table", dest.Name, "column", column, "rows", n, "keys", k)
}

func orNop(log *logger.Logger) *logger.Logger {
	if log == nil {
		return logger.Nop()
	}
	return log
}
