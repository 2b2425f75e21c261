package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/store"
)

type columnKind int

const (
	kindText columnKind = iota
	kindTextArray
	kindUUID
	kindTime
	kindInt
)

type column struct {
	name string
	kind columnKind
}

// table maps logical store fields onto SQL columns for one entity.
type table struct {
	name    string
	columns map[string]column
}

func (t table) column(field string) (column, error) {
	if field == store.FieldID {
		return column{name: "id", kind: kindUUID}, nil
	}
	c, ok := t.columns[field]
	if !ok {
		return column{}, fmt.Errorf("%w: unknown %s field %q", store.ErrInvalidQuery, t.name, field)
	}
	return c, nil
}

// args accumulates positional parameters.
type args []any

func (a *args) add(v any) string {
	*a = append(*a, v)
	return "$" + strconv.Itoa(len(*a))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(substr string) string {
	return "%" + likeEscaper.Replace(substr) + "%"
}

// where renders f as a WHERE clause (empty for the zero filter).
func (t table) where(f store.Filter, a *args) (string, error) {
	parts := make([]string, 0, len(f.All)+1)
	for _, c := range f.All {
		sql, err := t.condition(c, a)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if len(f.AnyOf) > 0 {
		alts := make([]string, 0, len(f.AnyOf))
		for _, c := range f.AnyOf {
			sql, err := t.condition(c, a)
			if err != nil {
				return "", err
			}
			alts = append(alts, sql)
		}
		parts = append(parts, "("+strings.Join(alts, " OR ")+")")
	}
	if len(parts) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(parts, " AND "), nil
}

func (t table) condition(c store.Condition, a *args) (string, error) {
	col, err := t.column(c.Field)
	if err != nil {
		return "", err
	}
	bad := fmt.Errorf("%w: %s on %s field %q with %T", store.ErrInvalidQuery, c.Op, t.name, c.Field, c.Value)

	switch c.Op {
	case store.OpContains:
		s, ok := c.Value.(string)
		if !ok {
			return "", bad
		}
		switch col.kind {
		case kindText:
			return fmt.Sprintf(`%s ILIKE %s ESCAPE '\'`, col.name, a.add(likePattern(s))), nil
		case kindTextArray:
			return fmt.Sprintf(`EXISTS (SELECT 1 FROM unnest(%s) AS elem WHERE elem ILIKE %s ESCAPE '\')`,
				col.name, a.add(likePattern(s))), nil
		}
	case store.OpEquals:
		switch col.kind {
		case kindText:
			if s, ok := c.Value.(string); ok {
				return fmt.Sprintf("%s = %s", col.name, a.add(s)), nil
			}
		case kindTextArray:
			if s, ok := c.Value.(string); ok {
				return fmt.Sprintf("%s = ANY(%s)", a.add(s), col.name), nil
			}
		case kindUUID:
			if id, ok := c.Value.(uuid.UUID); ok {
				return fmt.Sprintf("%s = %s", col.name, a.add(id)), nil
			}
		case kindInt:
			if n, ok := c.Value.(int); ok {
				return fmt.Sprintf("%s = %s", col.name, a.add(n)), nil
			}
		}
	case store.OpIn:
		set, ok := c.Value.([]string)
		if !ok {
			return "", bad
		}
		switch col.kind {
		case kindText:
			return fmt.Sprintf("%s = ANY(%s::text[])", col.name, a.add(set)), nil
		case kindTextArray:
			return fmt.Sprintf("%s && %s::text[]", col.name, a.add(set)), nil
		}
	case store.OpOnOrAfter:
		if ts, ok := c.Value.(time.Time); ok && col.kind == kindTime {
			return fmt.Sprintf("%s >= %s", col.name, a.add(ts)), nil
		}
	}
	return "", bad
}

// orderBy renders the ORDER BY clause, always ending with the id tiebreaker.
func (t table) orderBy(fields []store.SortField) (string, error) {
	terms := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		col, err := t.column(f.Field)
		if err != nil {
			return "", err
		}
		if col.kind == kindTextArray {
			return "", fmt.Errorf("%w: cannot sort on %s", store.ErrInvalidQuery, f.Field)
		}
		dir := "ASC"
		if f.Desc {
			dir = "DESC"
		}
		terms = append(terms, col.name+" "+dir)
	}
	terms = append(terms, "id ASC")
	return " ORDER BY " + strings.Join(terms, ", "), nil
}

// selectPage renders a full windowed SELECT over cols.
func (t table) selectPage(cols string, q store.Query) (string, []any, error) {
	if err := q.Validate(); err != nil {
		return "", nil, err
	}
	var a args
	where, err := t.where(q.Filter, &a)
	if err != nil {
		return "", nil, err
	}
	order, err := t.orderBy(q.Sort)
	if err != nil {
		return "", nil, err
	}
	limit := a.add(q.Limit)
	offset := a.add(q.Skip)
	query := "SELECT " + cols + " FROM " + t.name + where + order + " LIMIT " + limit + " OFFSET " + offset
	return query, a, nil
}

// selectCount renders a COUNT(*) over the filtered table.
func (t table) selectCount(f store.Filter) (string, []any, error) {
	var a args
	where, err := t.where(f, &a)
	if err != nil {
		return "", nil, err
	}
	return "SELECT COUNT(*) FROM " + t.name + where, a, nil
}

var (
	usersTable = table{
		name: "users",
		columns: map[string]column{
			store.FieldFirstName:    {"first_name", kindText},
			store.FieldLastName:     {"last_name", kindText},
			store.FieldGender:       {"gender", kindText},
			store.FieldEmail:        {"email", kindText},
			store.FieldPhone:        {"phone", kindText},
			store.FieldRegisterDate: {"register_date", kindTime},
		},
	}
	postsTable = table{
		name: "posts",
		columns: map[string]column{
			store.FieldText:        {"text", kindText},
			store.FieldLink:        {"link", kindText},
			store.FieldTags:        {"tags", kindTextArray},
			store.FieldLikes:       {"likes", kindInt},
			store.FieldOwner:       {"owner_id", kindUUID},
			store.FieldPublishDate: {"publish_date", kindTime},
		},
	}
	commentsTable = table{
		name: "comments",
		columns: map[string]column{
			store.FieldMessage:     {"message", kindText},
			store.FieldOwner:       {"owner_id", kindUUID},
			store.FieldPost:        {"post_id", kindUUID},
			store.FieldPublishDate: {"publish_date", kindTime},
		},
	}
)
