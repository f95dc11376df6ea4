package service

import "math"

// DefaultTitleThreshold: минимальная уверенность (0..100), с которой совпадение
// по названию принимается. Ниже него ErrNotFound.
const DefaultTitleThreshold = 60

// ratio: нормированная схожесть Damerau-Levenshtein в [0..1].
func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	d := damerauLevenshtein(a, b)
	m := max(len([]rune(a)), len([]rune(b)))
	return 1 - float64(d)/float64(m)
}

// tokenSortRatio: устойчиво к порядку слов ("story toy" == "toy story").
func tokenSortRatio(a, b string) float64 {
	return ratio(tokenSort(a), tokenSort(b))
}

// fuzzyScore: уверенность совпадения двух ключей matchKey в целых 0..100:
// лучший из ratio и tokenSortRatio, округлённый до ближайшего целого.
func fuzzyScore(a, b string) int {
	s := max(ratio(a, b), tokenSortRatio(a, b))
	return int(math.Round(s * 100))
}
