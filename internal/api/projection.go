package api

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/phrazzld/agora-api/internal/domain"
	"github.com/phrazzld/agora-api/internal/i18n"
	"github.com/phrazzld/agora-api/internal/paging"
)

// object is a JSON object that keeps its keys in selection order.
type object struct {
	keys   []string
	values map[string]any
}

func newObject(size int) *object {
	return &object{keys: make([]string, 0, size), values: make(map[string]any, size)}
}

// set stores v under k. A repeated key keeps its first position.
func (o *object) set(k string, v any) {
	if _, ok := o.values[k]; !ok {
		o.keys = append(o.keys, k)
	}
	o.values[k] = v
}

func (o *object) get(k string) (any, bool) {
	v, ok := o.values[k]
	return v, ok
}

// MarshalJSON implements json.Marshaler.
func (o *object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := shared.EncodeJSON(k)
		if err != nil {
			return nil, err
		}
		val, err := shared.EncodeJSON(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// projector renders domain values for one request.
type projector struct {
	profile versionProfile
	locale  i18n.Locale
	catalog *i18n.Catalog
}

func (p projector) fields(sel *selection, typename string, value func(f *selection) any) *object {
	obj := newObject(len(sel.fields))
	for _, f := range sel.fields {
		if f.name == "__typename" {
			obj.set(f.key(), typename)
			continue
		}
		obj.set(f.key(), value(f))
	}
	return obj
}

func (p projector) date(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	if p.profile.localizeValues {
		return p.catalog.FormatDate(p.locale, t)
	}
	return t.UTC().Format(time.RFC3339)
}

func (p projector) optionalDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return p.date(*t)
}

func (p projector) enum(v string) any {
	if v == "" {
		return nil
	}
	if p.profile.localizeValues {
		return p.catalog.Enum(p.locale, v)
	}
	return v
}

func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func projectRef[T any](ref domain.Ref[T], f *selection, project func(*T, *selection) any) any {
	if !f.expanded() {
		if ref.ID == uuid.Nil {
			return nil
		}
		return ref.ID.String()
	}
	if ref.Value == nil {
		return nil
	}
	return project(ref.Value, f)
}

func projectPage[T any](p projector, res *paging.Result[T], sel *selection, typename string, item func(T, *selection) any) any {
	return p.fields(sel, typename, func(f *selection) any {
		switch f.name {
		case "data":
			out := make([]any, len(res.Data))
			for i, v := range res.Data {
				out[i] = item(v, f)
			}
			return out
		case "pagination":
			return p.pagination(res.Pagination, f)
		}
		return nil
	})
}

func (p projector) pagination(pg paging.Pagination, sel *selection) any {
	return p.fields(sel, typePagination, func(f *selection) any {
		switch f.name {
		case "totalRecords":
			return pg.TotalRecords
		case "totalPages":
			return pg.TotalPages
		case "currentPage":
			return pg.CurrentPage
		case "hasNextPage":
			return pg.HasNextPage
		case "hasPreviousPage":
			return pg.HasPreviousPage
		}
		return nil
	})
}

// user renders u. hideEmail drops the address, as v2 lists do.
func (p projector) user(u *domain.User, sel *selection, hideEmail bool) any {
	if u == nil {
		return nil
	}
	return p.fields(sel, typeUser, func(f *selection) any {
		switch f.name {
		case "id":
			return u.ID.String()
		case "title":
			return optional(string(u.Title))
		case "firstName":
			return u.FirstName
		case "lastName":
			return u.LastName
		case "picture":
			return optional(u.Picture)
		case "gender":
			return p.enum(string(u.Gender))
		case "email":
			if hideEmail {
				return nil
			}
			return u.Email
		case "dateOfBirth":
			return p.optionalDate(u.DateOfBirth)
		case "registerDate":
			return p.date(u.RegisterDate)
		case "phone":
			return optional(u.Phone)
		case "location":
			return p.location(u.Location, f)
		}
		return nil
	})
}

func (p projector) listedUser(u *domain.User, sel *selection) any {
	return p.user(u, sel, !p.profile.listEmails)
}

func (p projector) fullUser(u *domain.User, sel *selection) any {
	return p.user(u, sel, false)
}

func (p projector) location(loc *domain.Location, sel *selection) any {
	if loc == nil {
		return nil
	}
	return p.fields(sel, typeLocation, func(f *selection) any {
		switch f.name {
		case "street":
			return optional(loc.Street)
		case "city":
			return optional(loc.City)
		case "state":
			return optional(loc.State)
		case "country":
			return optional(loc.Country)
		case "timezone":
			return optional(loc.Timezone)
		}
		return nil
	})
}

func (p projector) post(post *domain.Post, sel *selection) any {
	if post == nil {
		return nil
	}
	return p.fields(sel, typePost, func(f *selection) any {
		switch f.name {
		case "id":
			return post.ID.String()
		case "text":
			return post.Text
		case "image":
			return optional(post.Image)
		case "likes":
			return post.Likes
		case "link":
			return optional(post.Link)
		case "tags":
			if post.Tags == nil {
				return []string{}
			}
			return post.Tags
		case "publishDate":
			return p.date(post.PublishDate)
		case "owner":
			return projectRef(post.Owner, f, p.fullUser)
		}
		return nil
	})
}

func (p projector) comment(c *domain.Comment, sel *selection) any {
	if c == nil {
		return nil
	}
	return p.fields(sel, typeComment, func(f *selection) any {
		switch f.name {
		case "id":
			return c.ID.String()
		case "message":
			return c.Message
		case "owner":
			return projectRef(c.Owner, f, p.fullUser)
		case "post":
			return projectRef(c.Post, f, p.post)
		case "publishDate":
			return p.date(c.PublishDate)
		}
		return nil
	})
}

// apiInfo reports the dispatched version. The release date is always shown
// in the request locale.
func (p projector) apiInfo(rc shared.RequestContext, sel *selection) any {
	return p.fields(sel, typeAPIInfo, func(f *selection) any {
		switch f.name {
		case "version":
			return string(p.profile.version)
		case "releaseDate":
			return p.catalog.FormatDate(rc.Locale, p.profile.releaseDate)
		case "deprecated":
			return p.profile.deprecated
		}
		return nil
	})
}

// login renders the token and the minimal user view: id, names and email.
func (p projector) login(token string, u *domain.User, sel *selection) any {
	minimal := &domain.User{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
	return p.fields(sel, typeAuthPayload, func(f *selection) any {
		switch f.name {
		case "token":
			return token
		case "user":
			return p.fullUser(minimal, f)
		}
		return nil
	})
}
