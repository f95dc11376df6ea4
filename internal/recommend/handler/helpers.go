package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	recSvc "movierec-service/internal/recommend/service"
)

type errorBody struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type reportBody struct {
	Input      int      `json:"input"`
	Truncated  int      `json:"truncated"`
	Duplicates int      `json:"duplicates"`
	Dropped    int      `json:"dropped"`
	Kept       int      `json:"kept"`
	Problems   []string `json:"problems,omitempty"` // первые несколько DataError
}

type uploadBody struct {
	Error  string     `json:"error,omitempty"`
	Report reportBody `json:"report"`
}

const maxReportedProblems = 20

func newReportBody(rep recSvc.LoadReport) reportBody {
	b := reportBody{
		Input:      rep.Input,
		Truncated:  rep.Truncated,
		Duplicates: rep.Duplicates,
		Dropped:    len(rep.Dropped),
		Kept:       rep.Kept,
	}
	for i, de := range rep.Dropped {
		if i == maxReportedProblems {
			break
		}
		b.Problems = append(b.Problems, de.Error())
	}
	return b
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func atoi(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return i
}

func toBool(s string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}
