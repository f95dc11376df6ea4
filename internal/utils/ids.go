package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var rxKeepDigits = regexp.MustCompile(`[^\d\.\-]`)

// NormalizeID приводит внешний id из таблицы к каноническому виду:
// "1 234" → "1234", "12.0" (так отдают xls/xlsx) → "12", NBSP/NNBSP убираются.
// Нечисловые id возвращаются обрезанными как есть.
func NormalizeID(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	repl := strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "", "\t", "")
	compact := repl.Replace(s)
	digits := rxKeepDigits.ReplaceAllString(compact, "")
	if digits != compact || digits == "" || digits == "-" || digits == "." {
		return s
	}
	f, err := strconv.ParseFloat(digits, 64)
	if err != nil || f != float64(int64(f)) {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}
