package service

import "sort"

// индекс названий для разрешения запросов
type titleIndex struct {
	byTitle map[string]int   // normalizedTitle -> первый id
	keys    []string         // matchKey по id
	inv     map[string][]int // trigram -> ids по возрастанию
}

func buildTitleIndex(cat *Catalog) *titleIndex {
	idx := &titleIndex{
		byTitle: make(map[string]int, cat.Len()),
		keys:    make([]string, cat.Len()),
		inv:     make(map[string][]int),
	}
	for i, e := range cat.Entries() {
		if _, ok := idx.byTitle[e.NormalizedTitle]; !ok {
			idx.byTitle[e.NormalizedTitle] = i
		}
		k := matchKey(e.NormalizedTitle)
		idx.keys[i] = k
		for g := range trigramSet(k) {
			idx.inv[g] = append(idx.inv[g], i)
		}
	}
	return idx
}

func trigramSet(s string) map[string]struct{} {
	m := make(map[string]struct{})
	if s == "" {
		return m
	}
	p := " " + s + " "
	r := []rune(p)
	if len(r) < 3 {
		m[p] = struct{}{}
		return m
	}
	for i := 0; i <= len(r)-3; i++ {
		m[string(r[i:i+3])] = struct{}{}
	}
	return m
}

// candidates: ids, разделяющие с key хотя бы одну триграмму, по возрастанию.
func (idx *titleIndex) candidates(key string) []int {
	if key == "" {
		return nil
	}
	seen := make(map[int]struct{})
	for g := range trigramSet(key) {
		for _, id := range idx.inv[g] {
			seen[id] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Ints(out) // для детерминированного порядка
	return out
}
