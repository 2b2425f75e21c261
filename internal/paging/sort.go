package paging

import "github.com/phrazzld/agora-api/internal/store"

// SortTable maps client sort keys to orderings. Unknown or empty keys use
// Default.
type SortTable struct {
	Options map[string]store.SortField
	Default store.SortField
}

// Resolve returns the ordering for key.
func (t SortTable) Resolve(key string) []store.SortField {
	if f, ok := t.Options[key]; ok {
		return []store.SortField{f}
	}
	return []store.SortField{t.Default}
}

func byTimestamp(field string) map[string]store.SortField {
	return map[string]store.SortField{
		"createdAt_asc":  {Field: field},
		"createdAt_desc": {Field: field, Desc: true},
		field + "_asc":   {Field: field},
		field + "_desc":  {Field: field, Desc: true},
	}
}

// UserSorts orders users; createdAt is an alias of registerDate.
var UserSorts = SortTable{
	Options: byTimestamp(store.FieldRegisterDate),
	Default: store.SortField{Field: store.FieldRegisterDate, Desc: true},
}

// PostSorts orders posts by publication date or likes.
var PostSorts = func() SortTable {
	opts := byTimestamp(store.FieldPublishDate)
	opts["likes_asc"] = store.SortField{Field: store.FieldLikes}
	opts["likes_desc"] = store.SortField{Field: store.FieldLikes, Desc: true}
	return SortTable{
		Options: opts,
		Default: store.SortField{Field: store.FieldPublishDate, Desc: true},
	}
}()

// CommentSorts orders comments by publication date.
var CommentSorts = SortTable{
	Options: byTimestamp(store.FieldPublishDate),
	Default: store.SortField{Field: store.FieldPublishDate, Desc: true},
}
