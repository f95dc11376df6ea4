package fileio

import (
	"regexp"
	"strings"

	"movierec-service/internal/recommend/model"
)

var rxHeaderJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, без служебных символов и пробелов
// ("Movie ID" == "movieId" == "movie_id")
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return rxHeaderJunk.ReplaceAllString(s, "")
}

// resolveKey ищет реальный ключ записи по желаемому имени.
// Поддерживает альтернативы через "|" (например: "title|name").
func resolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	for i := range alts {
		alts[i] = strings.TrimSpace(alts[i])
	}

	// 1) точное совпадение
	for _, a := range alts {
		if _, ok := rec[a]; ok {
			return a
		}
	}

	// 2) по нормализованному имени, затем вхождение ("movie title" ⊃ "title")
	bestKey, bestScore := "", 0
	for k := range rec {
		nk := normHeaderKey(k)
		for _, a := range alts {
			n := normHeaderKey(a)
			if n == "" {
				continue
			}
			if nk == n {
				return k
			}
			if strings.Contains(nk, n) && len(n) > bestScore {
				bestScore, bestKey = len(n), k
			}
		}
	}
	return bestKey
}

// ToRecords maps parsed rows onto raw catalog records. Rows whose title and genres are
// both empty are skipped; the rest go to the loader, which decides what is a DataError.
func ToRecords(maps []map[string]string, m model.Mapping) []model.RawRecord {
	if len(maps) == 0 {
		return nil
	}
	titleKey := resolveKey(maps[0], m.TitleKey)
	genresKey := resolveKey(maps[0], m.GenresKey)
	idKey := resolveKey(maps[0], m.IDKey)

	out := make([]model.RawRecord, 0, len(maps))
	for _, rec := range maps {
		r := model.RawRecord{Title: rec[titleKey], Genres: rec[genresKey]}
		if idKey != "" {
			r.ID = rec[idKey]
		}
		if strings.TrimSpace(r.Title) == "" && strings.TrimSpace(r.Genres) == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
