package memory

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/store"
)

// getter exposes one logical field of T. It returns a string, []string,
// uuid.UUID, time.Time or int.
type getter[T any] func(*T) any

// schema knows how to filter and order one entity type.
type schema[T any] struct {
	entity string
	fields map[string]getter[T]
	id     func(*T) uuid.UUID
}

func (s schema[T]) field(name string) (getter[T], error) {
	if name == store.FieldID {
		return func(item *T) any { return s.id(item) }, nil
	}
	g, ok := s.fields[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown %s field %q", store.ErrInvalidQuery, s.entity, name)
	}
	return g, nil
}

// match reports whether item satisfies every All condition and, when AnyOf is
// non-empty, at least one AnyOf condition.
func (s schema[T]) match(item *T, f store.Filter) (bool, error) {
	for _, c := range f.All {
		ok, err := s.eval(item, c)
		if err != nil || !ok {
			return false, err
		}
	}
	if len(f.AnyOf) == 0 {
		return true, nil
	}
	for _, c := range f.AnyOf {
		ok, err := s.eval(item, c)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (s schema[T]) eval(item *T, c store.Condition) (bool, error) {
	get, err := s.field(c.Field)
	if err != nil {
		return false, err
	}
	actual := get(item)
	bad := fmt.Errorf("%w: %s on %s field %q with %T", store.ErrInvalidQuery, c.Op, s.entity, c.Field, c.Value)

	switch c.Op {
	case store.OpContains:
		needle, ok := c.Value.(string)
		if !ok {
			return false, bad
		}
		needle = strings.ToLower(needle)
		switch v := actual.(type) {
		case string:
			return strings.Contains(strings.ToLower(v), needle), nil
		case []string:
			return slices.ContainsFunc(v, func(e string) bool {
				return strings.Contains(strings.ToLower(e), needle)
			}), nil
		}
	case store.OpEquals:
		switch v := actual.(type) {
		case string:
			want, ok := c.Value.(string)
			return ok && v == want, boolErr(ok, bad)
		case uuid.UUID:
			want, ok := c.Value.(uuid.UUID)
			return ok && v == want, boolErr(ok, bad)
		case int:
			want, ok := c.Value.(int)
			return ok && v == want, boolErr(ok, bad)
		case []string:
			want, ok := c.Value.(string)
			return ok && slices.Contains(v, want), boolErr(ok, bad)
		}
	case store.OpIn:
		set, ok := c.Value.([]string)
		if !ok {
			return false, bad
		}
		switch v := actual.(type) {
		case string:
			return slices.Contains(set, v), nil
		case []string:
			return slices.ContainsFunc(v, func(e string) bool { return slices.Contains(set, e) }), nil
		}
	case store.OpOnOrAfter:
		bound, ok := c.Value.(time.Time)
		if !ok {
			return false, bad
		}
		if v, ok := actual.(time.Time); ok {
			return !v.Before(bound), nil
		}
	}
	return false, bad
}

func boolErr(ok bool, err error) error {
	if ok {
		return nil
	}
	return err
}

// sort orders items by fields, then by ascending id.
func (s schema[T]) sort(items []*T, fields []store.SortField) error {
	getters := make([]getter[T], len(fields))
	for i, f := range fields {
		g, err := s.field(f.Field)
		if err != nil {
			return err
		}
		getters[i] = g
	}

	slices.SortStableFunc(items, func(a, b *T) int {
		for i, f := range fields {
			c := compare(getters[i](a), getters[i](b))
			if f.Desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(s.id(a).String(), s.id(b).String())
	})
	return nil
}

func compare(a, b any) int {
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case int:
		y := b.(int)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case time.Time:
		return x.Compare(b.(time.Time))
	case uuid.UUID:
		return strings.Compare(x.String(), b.(uuid.UUID).String())
	}
	return 0
}

// count returns the number of items matching f.
func (s schema[T]) count(items []*T, f store.Filter) (int, error) {
	n := 0
	for _, item := range items {
		ok, err := s.match(item, f)
		if err != nil {
			return 0, err
		}
		if ok {
			n++
		}
	}
	return n, nil
}

// find filters, orders and windows items. The input slice is not modified.
func (s schema[T]) find(items []*T, q store.Query) ([]*T, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	matched := make([]*T, 0, len(items))
	for _, item := range items {
		ok, err := s.match(item, q.Filter)
		if err != nil {
			return nil, err
		}
		if ok {
			matched = append(matched, item)
		}
	}
	if err := s.sort(matched, q.Sort); err != nil {
		return nil, err
	}
	if q.Skip >= len(matched) {
		return []*T{}, nil
	}
	end := min(q.Skip+q.Limit, len(matched))
	return matched[q.Skip:end], nil
}
