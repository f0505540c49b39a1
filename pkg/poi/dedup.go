package poi

import (
	"log/slog"
	"strings"

	h3 "github.com/uber/h3-go/v4"

	"periplo/pkg/geo"
	"periplo/pkg/model"
)

// bucketRes is the H3 resolution used for candidate pairing. At res 10
// a cell edge is roughly 70 m; a two-ring disk around a cell always
// covers the 50-100 m duplicate radius.
const bucketRes = 10

// Deduplicator merges POIs that are close together and similarly
// named, keeping the highest-quality representative.
type Deduplicator struct {
	DistanceM float64
}

// NewDeduplicator creates a Deduplicator with the standard 50 m radius.
func NewDeduplicator() *Deduplicator {
	return &Deduplicator{DistanceM: 50}
}

// NameSimilarity returns a similarity in [0,1]: 1.0 on equality, 0.8
// on substring containment, Jaccard token overlap otherwise.
func NameSimilarity(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))

	if a == b {
		return 1.0
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return 0.8
	}

	wordsA := tokenSet(a)
	wordsB := tokenSet(b)
	var intersection, union int
	for w := range wordsA {
		if wordsB[w] {
			intersection++
		}
	}
	union = len(wordsA) + len(wordsB) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

// Deduplicate collapses duplicates (distance < DistanceM and name
// similarity > 0.6). The better representative wins: higher source
// priority, then longer description, then first seen.
func (d *Deduplicator) Deduplicate(pois []model.POI) []model.POI {
	if len(pois) == 0 {
		return nil
	}

	kept := make([]model.POI, 0, len(pois))
	cells := make([]h3.Cell, 0, len(pois))
	buckets := make(map[h3.Cell][]int)

	for _, p := range pois {
		cell, search := cellsFor(p.Lat, p.Lng)

		dupIdx := -1
		if search == nil {
			// Bucketing unavailable, scan everything.
			for i := range kept {
				if d.isDuplicate(&p, &kept[i]) {
					dupIdx = i
					break
				}
			}
		} else {
		outer:
			for _, c := range search {
				for _, i := range buckets[c] {
					if d.isDuplicate(&p, &kept[i]) {
						dupIdx = i
						break outer
					}
				}
			}
		}

		if dupIdx >= 0 {
			if betterThan(&p, &kept[dupIdx]) {
				old := cells[dupIdx]
				kept[dupIdx] = p
				cells[dupIdx] = cell
				if cell != old {
					buckets[old] = removeIndex(buckets[old], dupIdx)
					buckets[cell] = append(buckets[cell], dupIdx)
				}
			}
			continue
		}

		kept = append(kept, p)
		cells = append(cells, cell)
		buckets[cell] = append(buckets[cell], len(kept)-1)
	}

	slog.Debug("Deduplicated POIs", "in", len(pois), "out", len(kept))
	return kept
}

func (d *Deduplicator) isDuplicate(a, b *model.POI) bool {
	dist := geo.Distance(geo.Point{Lat: a.Lat, Lng: a.Lng}, geo.Point{Lat: b.Lat, Lng: b.Lng})
	return dist < d.DistanceM && NameSimilarity(a.Name, b.Name) > 0.6
}

// DeduplicateMarine applies the tightened marine rule: duplicates at
// <50 m with identical names, or <100 m with substring containment.
func (d *Deduplicator) DeduplicateMarine(pois []model.POI) []model.POI {
	if len(pois) == 0 {
		return nil
	}

	kept := make([]model.POI, 0, len(pois))
	cells := make([]h3.Cell, 0, len(pois))
	buckets := make(map[h3.Cell][]int)

	for _, p := range pois {
		cell, search := cellsFor(p.Lat, p.Lng)

		dupIdx := -1
		if search == nil {
			for i := range kept {
				if marineDuplicate(&p, &kept[i]) {
					dupIdx = i
					break
				}
			}
		} else {
		outer:
			for _, c := range search {
				for _, i := range buckets[c] {
					if marineDuplicate(&p, &kept[i]) {
						dupIdx = i
						break outer
					}
				}
			}
		}

		if dupIdx >= 0 {
			if betterThan(&p, &kept[dupIdx]) {
				old := cells[dupIdx]
				kept[dupIdx] = p
				cells[dupIdx] = cell
				if cell != old {
					buckets[old] = removeIndex(buckets[old], dupIdx)
					buckets[cell] = append(buckets[cell], dupIdx)
				}
			}
			continue
		}

		kept = append(kept, p)
		cells = append(cells, cell)
		buckets[cell] = append(buckets[cell], len(kept)-1)
	}

	slog.Debug("Deduplicated marine POIs", "in", len(pois), "out", len(kept))
	return kept
}

func marineDuplicate(a, b *model.POI) bool {
	dist := geo.Distance(geo.Point{Lat: a.Lat, Lng: a.Lng}, geo.Point{Lat: b.Lat, Lng: b.Lng})
	nameA := strings.ToLower(strings.TrimSpace(a.Name))
	nameB := strings.ToLower(strings.TrimSpace(b.Name))

	if dist < 50 && nameA == nameB {
		return true
	}
	if dist < 100 && (strings.Contains(nameA, nameB) || strings.Contains(nameB, nameA)) {
		return true
	}
	return false
}

// betterThan reports whether a should replace b.
func betterThan(a, b *model.POI) bool {
	pa, pb := model.SourcePriority(a.Source), model.SourcePriority(b.Source)
	if pa != pb {
		return pa > pb
	}
	return len(a.Description) > len(b.Description)
}

// cellsFor returns the candidate's cell and the cells to search for
// nearby kept POIs. A nil search slice means fall back to a full scan.
func cellsFor(lat, lng float64) (h3.Cell, []h3.Cell) {
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lng), bucketRes)
	if err != nil {
		return 0, nil
	}
	ring, err := h3.GridDisk(cell, 2)
	if err != nil {
		return cell, []h3.Cell{cell}
	}
	return cell, ring
}

func removeIndex(s []int, idx int) []int {
	for i, v := range s {
		if v == idx {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}
