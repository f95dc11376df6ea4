package service

import (
	"regexp"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// normalizeTitle: то, что хранится в CatalogEntry.NormalizedTitle и во что
// приводится пользовательский запрос: обрезка пробелов + нижний регистр.
func normalizeTitle(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// matchKey: ключ для нечеткого сравнения (NFKC, нижний регистр,
// пунктуация → пробел, схлопнутые пробелы). "Toy Story (1995)" → "toy story 1995".
func matchKey(s string) string {
	if s == "" {
		return ""
	}
	out := norm.NFKC.String(s)
	out = strings.ToLower(out)
	return removePunctToSpaces(out)
}

// splitGenres: "Animation|Children's|Comedy" → ["animation", "children's", "comedy"].
// Пустые токены выбрасываются, порядок сохраняется, повторы удаляются.
func splitGenres(s, sep string) []string {
	if sep == "" {
		sep = "|"
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		// внутри токена тоже могут быть пробелы ("Film Noir"), склеиваем по словам
		for _, tok := range strings.Fields(strings.ToLower(p)) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

var punct = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

func removePunctToSpaces(s string) string {
	return collapseSpaces(punct.ReplaceAllString(s, " "))
}

// Лексикографическая сортировка токенов
func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
