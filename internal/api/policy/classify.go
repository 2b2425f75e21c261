package policy

import "strings"

// Kind is the operation class used by the response policy.
type Kind int

// Operation classes.
const (
	Query Kind = iota
	Mutation
)

func (k Kind) String() string {
	if k == Mutation {
		return "mutation"
	}
	return "query"
}

// Classify reports Mutation when the trimmed operation text does not start
// with "query" and either starts with "mutation" or the operation name
// contains "mutation". Everything else, including the "{ ... }" shorthand,
// is a Query. Comparisons ignore case.
func Classify(query, operationName string) Kind {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.HasPrefix(q, "query") {
		return Query
	}
	if strings.HasPrefix(q, "mutation") ||
		strings.Contains(strings.ToLower(operationName), "mutation") {
		return Mutation
	}
	return Query
}
