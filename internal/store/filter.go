package store

import (
	"fmt"
	"time"
)

// Op is a filter predicate.
type Op int

// Supported predicates.
const (
	// OpContains is a case-insensitive substring match. On array fields it
	// matches when any element contains the value.
	OpContains Op = iota + 1
	// OpEquals is exact equality.
	OpEquals
	// OpIn matches when the field (or, for arrays, any element) is one of the values.
	OpIn
	// OpOnOrAfter matches timestamps at or after the value.
	OpOnOrAfter
)

func (o Op) String() string {
	switch o {
	case OpContains:
		return "contains"
	case OpEquals:
		return "equals"
	case OpIn:
		return "in"
	case OpOnOrAfter:
		return "onOrAfter"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Condition is one field-level predicate. Value is a string, a []string,
// a uuid.UUID or a time.Time depending on Op and field.
type Condition struct {
	Field string
	Op    Op
	Value any
}

// Contains builds a case-insensitive substring condition.
func Contains(field, substr string) Condition {
	return Condition{Field: field, Op: OpContains, Value: substr}
}

// Equals builds an equality condition.
func Equals(field string, value any) Condition {
	return Condition{Field: field, Op: OpEquals, Value: value}
}

// In builds a set-membership condition.
func In(field string, values []string) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

// OnOrAfter builds a lower-bound date condition.
func OnOrAfter(field string, t time.Time) Condition {
	return Condition{Field: field, Op: OpOnOrAfter, Value: t}
}

// Filter is a conjunction of conditions, optionally ANDed with a disjunction
// (AnyOf) used by free-text search. The zero Filter matches everything.
type Filter struct {
	All   []Condition
	AnyOf []Condition
}

// Where returns a filter matching all of conds.
func Where(conds ...Condition) Filter {
	return Filter{All: conds}
}

// And returns a copy of f with extra conjunctive conditions.
func (f Filter) And(conds ...Condition) Filter {
	all := make([]Condition, 0, len(f.All)+len(conds))
	all = append(all, f.All...)
	all = append(all, conds...)
	return Filter{All: all, AnyOf: f.AnyOf}
}

// Or returns a copy of f whose AnyOf group is replaced by conds.
func (f Filter) Or(conds ...Condition) Filter {
	return Filter{All: f.All, AnyOf: conds}
}

// IsEmpty reports whether the filter has no conditions.
func (f Filter) IsEmpty() bool {
	return len(f.All) == 0 && len(f.AnyOf) == 0
}

// SortField orders by one field.
type SortField struct {
	Field string
	Desc  bool
}

// Query is a filtered, ordered window over one collection. Engines append an
// ascending id ordering after Sort so pages are deterministic.
type Query struct {
	Filter Filter
	Sort   []SortField
	Skip   int
	Limit  int
}

// Validate checks the window bounds.
func (q Query) Validate() error {
	if q.Skip < 0 {
		return fmt.Errorf("%w: negative skip %d", ErrInvalidQuery, q.Skip)
	}
	if q.Limit <= 0 {
		return fmt.Errorf("%w: limit must be positive, got %d", ErrInvalidQuery, q.Limit)
	}
	return nil
}

// Logical field names understood by every engine.
const (
	FieldID = "id"

	FieldFirstName    = "firstName"
	FieldLastName     = "lastName"
	FieldGender       = "gender"
	FieldEmail        = "email"
	FieldPhone        = "phone"
	FieldRegisterDate = "registerDate"

	FieldText        = "text"
	FieldLink        = "link"
	FieldTags        = "tags"
	FieldLikes       = "likes"
	FieldOwner       = "owner"
	FieldPublishDate = "publishDate"

	FieldMessage = "message"
	FieldPost    = "post"
)
