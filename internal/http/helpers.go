package http

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"fintrack/internal/core"
)

// formatMoney renders an amount as "$1,234.56".
func formatMoney(m core.Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	frac := strconv.FormatInt(cents%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	s := "$" + humanize.Comma(cents/100) + "." + frac
	if neg {
		return "-" + s
	}
	return s
}

// sanitizeInput trims whitespace and strips control characters except
// tab, newline and carriage return.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// filterFromQuery reads ?q= and ?category=. An unknown category is
// ignored rather than matching nothing.
func filterFromQuery(q url.Values) core.Filter {
	f := core.Filter{Search: sanitizeInput(q.Get("q"))}
	if c, ok := core.ParseCategory(q.Get("category")); ok {
		f.Category = c
	}
	return f
}

// filterQuery is the inverse of filterFromQuery, used to carry the active
// filter over to the export link.
func filterQuery(f core.Filter) string {
	v := url.Values{}
	if f.Search != "" {
		v.Set("q", f.Search)
	}
	if f.Category != "" {
		v.Set("category", string(f.Category))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}
