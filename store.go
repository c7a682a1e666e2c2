package regionvar

import (
	"fmt"
	"os"
	"time"

	"github.com/carbocation/pfx"
	"github.com/jmoiron/sqlx"
)

// Store is the accumulation database: one row per individual with its four
// breadth counters, a small per-category totals table, and a fill provenance
// log. A single writer process owns it.
type Store struct {
	DB   *sqlx.DB
	Path string
}

const schema = `
CREATE TABLE IF NOT EXISTS individual (
	id INTEGER PRIMARY KEY,
	name TEXT UNIQUE,
	region TEXT,
	all_regions INTEGER,
	some_regions INTEGER,
	one_region INTEGER,
	one_person INTEGER
);

CREATE TABLE IF NOT EXISTS num_regions (
	name TEXT PRIMARY KEY,
	number INTEGER
);

CREATE TABLE IF NOT EXISTS fill_log (
	treeseq TEXT,
	filled_at INTEGER
);
`

// OpenStore opens an existing accumulation database.
func OpenStore(path string) (*Store, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return &Store{DB: db, Path: path}, nil
}

// InitStore deletes any existing database at path and creates a fresh one
// with zeroed category totals.
func InitStore(path string) (*Store, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return nil, pfx.Err(err)
	}

	s, err := OpenStore(path)
	if err != nil {
		return nil, err
	}

	if _, err := s.DB.Exec(schema); err != nil {
		s.Close()
		return nil, pfx.Err(err)
	}
	for _, c := range Categories {
		if _, err := s.DB.Exec(`INSERT INTO num_regions (name, number) VALUES (?, 0)`, c.Column()); err != nil {
			s.Close()
			return nil, pfx.Err(err)
		}
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// IndividualRow conforms to the rows of the individual table and can be
// parsed with sqlx.
type IndividualRow struct {
	ID          int64  `db:"id"`
	Name        string `db:"name"`
	Region      string `db:"region"`
	AllRegions  int64  `db:"all_regions"`
	SomeRegions int64  `db:"some_regions"`
	OneRegion   int64  `db:"one_region"`
	OnePerson   int64  `db:"one_person"`
}

// Individuals returns every stored individual.
func (s *Store) Individuals() ([]IndividualRow, error) {
	var rows []IndividualRow
	if err := s.DB.Select(&rows, `SELECT * FROM individual ORDER BY id`); err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}

// ReconcileIDs maps each record's dataset-internal ID to its stable stored
// ID. Internal IDs are not guaranteed consistent across treeseq files, but
// names are: the first file's internal IDs seed the store, and later files
// are matched on name. A name missing from a non-empty store is an error.
func (s *Store) ReconcileIDs(records []IndividualRecord) (map[int32]int64, error) {
	stored, err := s.Individuals()
	if err != nil {
		return nil, err
	}

	ids := make(map[int32]int64, len(records))

	if len(stored) == 0 {
		tx, err := s.DB.Beginx()
		if err != nil {
			return nil, pfx.Err(err)
		}
		for _, rec := range records {
			if _, err := tx.Exec(
				`INSERT INTO individual (id, name, region, all_regions, some_regions, one_region, one_person) VALUES (?, ?, ?, 0, 0, 0, 0)`,
				rec.ID, rec.Name, rec.Region,
			); err != nil {
				tx.Rollback()
				return nil, pfx.Err(err)
			}
			ids[rec.ID] = int64(rec.ID)
		}
		if err := tx.Commit(); err != nil {
			return nil, pfx.Err(err)
		}
		return ids, nil
	}

	byName := make(map[string]int64, len(stored))
	for _, row := range stored {
		byName[row.Name] = row.ID
	}
	for _, rec := range records {
		id, ok := byName[rec.Name]
		if !ok {
			return nil, pfx.Err(fmt.Errorf("individual %q is not present in store %s", rec.Name, s.Path))
		}
		ids[rec.ID] = id
	}
	return ids, nil
}

// RegionSummary is one region's arithmetic-mean counters across its stored
// individuals.
type RegionSummary struct {
	Region      string  `db:"region"`
	AllRegions  float64 `db:"all_regions"`
	SomeRegions float64 `db:"some_regions"`
	OneRegion   float64 `db:"one_region"`
	OnePerson   float64 `db:"one_person"`
}

// Mean returns the summary's value for one category.
func (r RegionSummary) Mean(c Category) float64 {
	switch c {
	case AllRegions:
		return r.AllRegions
	case SomeRegions:
		return r.SomeRegions
	case OneRegion:
		return r.OneRegion
	default:
		return r.OnePerson
	}
}

// SummarizeByRegion groups stored individuals by region and averages each of
// the four counters within the group.
func (s *Store) SummarizeByRegion() ([]RegionSummary, error) {
	var rows []RegionSummary
	err := s.DB.Select(&rows, `
		SELECT
			region,
			AVG(all_regions) AS all_regions,
			AVG(some_regions) AS some_regions,
			AVG(one_region) AS one_region,
			AVG(one_person) AS one_person
		FROM
			individual
		GROUP BY
			region
		ORDER BY
			region
	`)
	if err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}

// Counts returns the number of stored individuals and the sum of the global
// category totals (variant-allele events, not unique variants).
func (s *Store) Counts() (individuals, events int64, err error) {
	if err = s.DB.Get(&individuals, `SELECT COUNT(*) FROM individual`); err != nil {
		return 0, 0, pfx.Err(err)
	}
	if err = s.DB.Get(&events, `SELECT COALESCE(SUM(number), 0) FROM num_regions`); err != nil {
		return 0, 0, pfx.Err(err)
	}
	return individuals, events, nil
}

// Total returns the global event total for one category.
func (s *Store) Total(c Category) (int64, error) {
	var n int64
	if err := s.DB.Get(&n, `SELECT number FROM num_regions WHERE name = ?`, c.Column()); err != nil {
		return 0, pfx.Err(err)
	}
	return n, nil
}

// FillRow is one fill_log entry: a treeseq file that has been aggregated
// into this store, and when.
type FillRow struct {
	Treeseq  string `db:"treeseq"`
	FilledAt Time   `db:"filled_at"`
}

// FillLog returns the fill provenance log in insertion order.
func (s *Store) FillLog() ([]FillRow, error) {
	var rows []FillRow
	if err := s.DB.Select(&rows, `SELECT treeseq, filled_at FROM fill_log ORDER BY filled_at, treeseq`); err != nil {
		return nil, pfx.Err(err)
	}
	return rows, nil
}

// FillCount returns how many times the named treeseq file has already been
// aggregated into this store.
func (s *Store) FillCount(treeseq string) (int, error) {
	var n int
	if err := s.DB.Get(&n, `SELECT COUNT(*) FROM fill_log WHERE treeseq = ?`, treeseq); err != nil {
		return 0, pfx.Err(err)
	}
	return n, nil
}

func recordFill(tx *sqlx.Tx, treeseq string) error {
	_, err := tx.Exec(`INSERT INTO fill_log (treeseq, filled_at) VALUES (?, ?)`, treeseq, time.Now().Unix())
	return err
}
