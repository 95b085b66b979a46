package http

import (
	"net/http"
	"sort"

	"github.com/golang/gddo/httputil/header"
)

// negotiateContentType picks the content type to answer r with, from
// available (in order of preference). Of the types the Accept header
// mentions, the one with the highest `q` wins, ties going to the
// earlier in available. No Accept header at all means the first
// available type; an Accept header mentioning none of them means "".
func negotiateContentType(r *http.Request, available []string) string {
	specs := header.ParseAccept(r.Header, "Accept")
	if len(specs) == 0 {
		return available[0]
	}

	var acceptable []header.AcceptSpec
	for _, spec := range specs {
		if rank(available, spec.Value) < len(available) {
			acceptable = append(acceptable, spec)
		}
	}
	if len(acceptable) == 0 {
		return ""
	}
	sort.Stable(byPreference{acceptable, available})
	return acceptable[0].Value
}

// byPreference sorts accept specs from most to least suitable.
type byPreference struct {
	specs []header.AcceptSpec
	prefs []string
}

func (s byPreference) Len() int {
	return len(s.specs)
}

func (s byPreference) Less(i, j int) bool {
	if s.specs[i].Q == s.specs[j].Q {
		return rank(s.prefs, s.specs[i].Value) < rank(s.prefs, s.specs[j].Value)
	}
	return s.specs[i].Q > s.specs[j].Q
}

func (s byPreference) Swap(i, j int) {
	s.specs[i], s.specs[j] = s.specs[j], s.specs[i]
}

// rank is the position of search in ss, or len(ss) if it isn't there,
// so that missing entries sort last.
func rank(ss []string, search string) int {
	for i, s := range ss {
		if s == search {
			return i
		}
	}
	return len(ss)
}
