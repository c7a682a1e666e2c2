package regionvar

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/carbocation/pfx"
	log "github.com/sirupsen/logrus"
)

// progressEvery is how many sites pass between scan progress log lines.
const progressEvery = 1000

// Fill scans every variant site of ts and accumulates breadth counts into the
// store. For each non-ancestral, non-missing allele it deduplicates the
// carrier sample nodes to a set of individuals, classifies the allele's
// regional breadth, and increments the assigned category once per carrier
// individual plus once in the global totals.
//
// The whole scan runs in one transaction: a failure mid-file rolls back that
// file's updates. Aggregating the same file twice is not prevented — it
// doubles the counts — but is detected via the fill log and warned about.
func Fill(store *Store, ts *TreeSeq, rm *RegionMap) error {
	records, err := ts.Individuals(rm)
	if err != nil {
		return err
	}

	ids, err := store.ReconcileIDs(records)
	if err != nil {
		return err
	}

	regionOf := make(map[int32]string, len(records))
	for _, rec := range records {
		regionOf[rec.ID] = rec.Region
	}

	// The fill log is keyed on the file's base name so that re-running from a
	// different folder still matches.
	filled := filepath.Base(ts.FilePath)
	if n, err := store.FillCount(filled); err != nil {
		return err
	} else if n > 0 {
		log.Warnf("%s has already been aggregated into %s %d time(s); counts will accumulate again", filled, store.Path, n)
	}

	tx, err := store.DB.Beginx()
	if err != nil {
		return pfx.Err(err)
	}
	defer tx.Rollback()

	// One prepared increment per category; reused for every allele event.
	individualStmts := map[Category]*sql.Stmt{}
	totalStmts := map[Category]*sql.Stmt{}
	for _, c := range Categories {
		stmt, err := tx.Prepare(fmt.Sprintf(`UPDATE individual SET %s = %s + 1 WHERE id = ?`, c.Column(), c.Column()))
		if err != nil {
			return pfx.Err(err)
		}
		individualStmts[c] = stmt
		stmt, err = tx.Prepare(fmt.Sprintf(`UPDATE num_regions SET number = number + 1 WHERE name = '%s'`, c.Column()))
		if err != nil {
			return pfx.Err(err)
		}
		totalStmts[c] = stmt
	}

	nodes := ts.Nodes()
	numRegions := rm.NumRegions()

	vr := ts.NewVariantReader()
	for v := vr.Read(); v != nil; v = vr.Read() {
		if vr.SitesSeen%progressEvery == 0 {
			log.Infof("loaded %d sites", vr.SitesSeen)
		}

		for alleleIndex, allele := range v.Alleles {
			// Skip ancestral states and missing data.
			if alleleIndex == 0 || allele == "" {
				continue
			}

			carriers := map[int32]struct{}{}
			for _, node := range v.Carriers(alleleIndex) {
				if ind := nodes[node].Individual; ind >= 0 {
					carriers[ind] = struct{}{}
				}
			}
			if len(carriers) == 0 {
				continue
			}

			category := ClassifyCarriers(carriers, regionOf, numRegions)

			for ind := range carriers {
				if _, err := individualStmts[category].Exec(ids[ind]); err != nil {
					return pfx.Err(err)
				}
			}
			if _, err := totalStmts[category].Exec(); err != nil {
				return pfx.Err(err)
			}
		}
	}
	if err := vr.Error(); err != nil {
		return err
	}
	log.Infof("loaded %d sites", vr.SitesSeen)

	if err := recordFill(tx, filled); err != nil {
		return pfx.Err(err)
	}

	return pfx.Err(tx.Commit())
}
