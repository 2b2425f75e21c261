package policy

import (
	"sort"
	"strconv"
	"strings"
)

// Content codings the engine can produce.
const (
	CodingBrotli   = "br"
	CodingGzip     = "gzip"
	CodingDeflate  = "deflate"
	CodingIdentity = "identity"
	codingAny      = "*"
)

// Preference is one entry of an Accept-Encoding header.
type Preference struct {
	Coding string
	Weight float64
}

// ParseAcceptEncoding splits an Accept-Encoding header into codings ordered
// by weight, highest first. Entries with equal weight keep header order. A
// missing or unparseable q parameter counts as 1.0.
func ParseAcceptEncoding(header string) []Preference {
	if strings.TrimSpace(header) == "" {
		return nil
	}
	parts := strings.Split(header, ",")
	prefs := make([]Preference, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, ";")
		coding := strings.ToLower(strings.TrimSpace(fields[0]))
		if coding == "" {
			continue
		}
		weight := 1.0
		for _, param := range fields[1:] {
			param = strings.TrimSpace(param)
			if !strings.HasPrefix(param, "q=") {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(param[2:]), 64); err == nil {
				weight = q
			}
		}
		prefs = append(prefs, Preference{Coding: coding, Weight: weight})
	}
	sort.SliceStable(prefs, func(i, j int) bool {
		return prefs[i].Weight > prefs[j].Weight
	})
	return prefs
}

// selectCoding returns the client's highest weighted coding the engine
// supports, "*" meaning gzip. Identity, or no acceptable coding, yields "".
func selectCoding(prefs []Preference) string {
	for _, p := range prefs {
		if p.Weight <= 0 {
			continue
		}
		switch p.Coding {
		case CodingBrotli, CodingGzip, CodingDeflate:
			return p.Coding
		case codingAny:
			return CodingGzip
		case CodingIdentity:
			return ""
		}
	}
	return ""
}

func codings(prefs []Preference) []string {
	out := make([]string, len(prefs))
	for i, p := range prefs {
		out[i] = p.Coding
	}
	return out
}
