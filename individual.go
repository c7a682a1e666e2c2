package regionvar

import (
	"encoding/json"
	"fmt"

	"github.com/carbocation/pfx"
)

// Source identifies which of the three merged datasets an individual's
// metadata record came from. Population names collide between sources, so a
// population is only meaningful together with its Source.
type Source string

const (
	SourceSGDP Source = "SGDP"
	SourceHGDP Source = "HGDP"
	SourceTGP  Source = "TGP"
)

// Each source writes its individual metadata with a different name field.
// Exactly one of the three must be present.
type individualMetadata struct {
	SGDPID       *string `json:"sgdp_id"`
	Sample       *string `json:"sample"`
	IndividualID *string `json:"individual_id"`
}

type populationMetadata struct {
	Name string `json:"name"`
}

// IndividualRecord is one individual with its identity resolved: the
// dataset-internal ID (not stable across files), the canonical name (stable),
// and the region assigned to its source population.
type IndividualRecord struct {
	ID         int32
	Name       string
	Source     Source
	Population string
	Region     string
}

// identify dispatches on the metadata shape and returns the source dataset
// and the individual's canonical name. A record matching none of the three
// known shapes is an error, not a fourth source.
func identify(metadata json.RawMessage) (Source, string, error) {
	var m individualMetadata
	if err := json.Unmarshal(metadata, &m); err != nil {
		return "", "", pfx.Err(err)
	}

	switch {
	case m.SGDPID != nil:
		return SourceSGDP, *m.SGDPID, nil
	case m.Sample != nil:
		return SourceHGDP, *m.Sample, nil
	case m.IndividualID != nil:
		return SourceTGP, *m.IndividualID, nil
	}
	return "", "", pfx.Err(fmt.Errorf("individual metadata %s matches no known source shape", metadata))
}

// Individuals resolves every individual in the container to a name and a
// region. The region comes from looking up (source, population name) in rm,
// where the population is that of the individual's first sample node; a
// missing mapping is a configuration error that aborts the run.
func (ts *TreeSeq) Individuals(rm *RegionMap) ([]IndividualRecord, error) {
	firstNode := make(map[int32]int32, ts.NIndividuals)
	for node := len(ts.nodes) - 1; node >= 0; node-- {
		if ind := ts.nodes[node].Individual; ind >= 0 {
			firstNode[ind] = int32(node)
		}
	}

	records := make([]IndividualRecord, 0, ts.NIndividuals)
	for id, metadata := range ts.individuals {
		source, name, err := identify(metadata)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("individual %d: %w", id, err))
		}

		node, ok := firstNode[int32(id)]
		if !ok {
			return nil, pfx.Err(fmt.Errorf("individual %d (%s) has no sample nodes", id, name))
		}
		population := ts.nodes[node].Population
		if population < 0 || int(population) >= len(ts.populations) {
			return nil, pfx.Err(fmt.Errorf("individual %d (%s): node %d references population %d of %d", id, name, node, population, len(ts.populations)))
		}

		var pm populationMetadata
		if err := json.Unmarshal(ts.populations[population], &pm); err != nil {
			return nil, pfx.Err(fmt.Errorf("population %d metadata: %w", population, err))
		}

		region, err := rm.Lookup(source, pm.Name)
		if err != nil {
			return nil, pfx.Err(fmt.Errorf("individual %d (%s): %w", id, name, err))
		}

		records = append(records, IndividualRecord{
			ID:         int32(id),
			Name:       name,
			Source:     source,
			Population: pm.Name,
			Region:     region,
		})
	}
	return records, nil
}
