package api

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
)

// Selection errors are reported before any resolver runs.
var (
	errUnknownField     = errors.New("unknown field")
	errScalarSubfields  = errors.New("scalar field cannot have a selection")
	errMissingSelection = errors.New("object field requires a selection")
)

type fieldKind int

const (
	scalar fieldKind = iota
	objectKind
	// reference fields render as an identifier, or as the target object
	// when subfields are selected.
	reference
)

type fieldDef struct {
	kind fieldKind
	typ  string
}

func scalarField() fieldDef         { return fieldDef{kind: scalar} }
func objectField(t string) fieldDef { return fieldDef{kind: objectKind, typ: t} }
func refField(t string) fieldDef    { return fieldDef{kind: reference, typ: t} }

// Type names used by the selection checker and __typename.
const (
	typeQuery            = "Query"
	typeMutation         = "Mutation"
	typeAPIInfo          = "ApiInfo"
	typeUser             = "User"
	typeLocation         = "Location"
	typePost             = "Post"
	typeComment          = "Comment"
	typePagination       = "Pagination"
	typeUsersResponse    = "UsersResponse"
	typePostsResponse    = "PostsResponse"
	typeCommentsResponse = "CommentsResponse"
	typeAuthPayload      = "AuthPayload"
)

type typeSet map[string]map[string]fieldDef

var schemaTypes = typeSet{
	typeAPIInfo: {
		"version":     scalarField(),
		"releaseDate": scalarField(),
		"deprecated":  scalarField(),
	},
	typeUser: {
		"id":           scalarField(),
		"title":        scalarField(),
		"firstName":    scalarField(),
		"lastName":     scalarField(),
		"picture":      scalarField(),
		"gender":       scalarField(),
		"email":        scalarField(),
		"dateOfBirth":  scalarField(),
		"registerDate": scalarField(),
		"phone":        scalarField(),
		"location":     objectField(typeLocation),
	},
	typeLocation: {
		"street":   scalarField(),
		"city":     scalarField(),
		"state":    scalarField(),
		"country":  scalarField(),
		"timezone": scalarField(),
	},
	typePost: {
		"id":          scalarField(),
		"text":        scalarField(),
		"image":       scalarField(),
		"likes":       scalarField(),
		"link":        scalarField(),
		"tags":        scalarField(),
		"publishDate": scalarField(),
		"owner":       refField(typeUser),
	},
	typeComment: {
		"id":          scalarField(),
		"message":     scalarField(),
		"owner":       refField(typeUser),
		"post":        refField(typePost),
		"publishDate": scalarField(),
	},
	typePagination: {
		"totalRecords":    scalarField(),
		"totalPages":      scalarField(),
		"currentPage":     scalarField(),
		"hasNextPage":     scalarField(),
		"hasPreviousPage": scalarField(),
	},
	typeUsersResponse: {
		"data":       objectField(typeUser),
		"pagination": objectField(typePagination),
	},
	typePostsResponse: {
		"data":       objectField(typePost),
		"pagination": objectField(typePagination),
	},
	typeCommentsResponse: {
		"data":       objectField(typeComment),
		"pagination": objectField(typePagination),
	},
	typeAuthPayload: {
		"token": scalarField(),
		"user":  objectField(typeUser),
	},
}

// flatCommentPost is schemaTypes with Comment.post as a plain identifier.
var flatCommentPost = func() typeSet {
	out := make(typeSet, len(schemaTypes))
	for name, fields := range schemaTypes {
		out[name] = fields
	}
	comment := make(map[string]fieldDef, len(schemaTypes[typeComment]))
	for name, def := range schemaTypes[typeComment] {
		comment[name] = def
	}
	comment["post"] = scalarField()
	out[typeComment] = comment
	return out
}()

// typesFor returns the object types visible under profile.
func typesFor(p versionProfile) typeSet {
	if p.commentPostObject {
		return schemaTypes
	}
	return flatCommentPost
}

// rootTypes maps each operation type to its root fields and their result
// types. Scalars have an empty type.
var rootTypes = map[ast.Operation]map[string]fieldDef{
	ast.Query: {
		"apiInfo":        objectField(typeAPIInfo),
		"users":          objectField(typeUsersResponse),
		"user":           objectField(typeUser),
		"searchUsers":    objectField(typeUsersResponse),
		"posts":          objectField(typePostsResponse),
		"post":           objectField(typePost),
		"postsByUser":    objectField(typePostsResponse),
		"postsByTag":     objectField(typePostsResponse),
		"searchPosts":    objectField(typePostsResponse),
		"commentsByPost": objectField(typeCommentsResponse),
		"commentsByUser": objectField(typeCommentsResponse),
		"tags":           scalarField(),
	},
	ast.Mutation: {
		"createUser":    objectField(typeUser),
		"updateUser":    objectField(typeUser),
		"deleteUser":    scalarField(),
		"createPost":    objectField(typePost),
		"updatePost":    objectField(typePost),
		"deletePost":    scalarField(),
		"createComment": objectField(typeComment),
		"deleteComment": scalarField(),
		"login":         objectField(typeAuthPayload),
	},
}

// rootField returns the definition of a root field of the operation type.
func rootField(kind ast.Operation, name string) (fieldDef, bool) {
	fields, ok := rootTypes[kind]
	if !ok {
		return fieldDef{}, false
	}
	def, ok := fields[name]
	return def, ok
}

// checkSelection verifies that every field selected under sel exists on typ
// and that scalars and objects are selected the way their kind allows.
func (ts typeSet) checkSelection(typ string, sel *selection) error {
	fields := ts[typ]
	for _, f := range sel.fields {
		if f.name == "__typename" {
			continue
		}
		def, ok := fields[f.name]
		if !ok {
			return fmt.Errorf("%w: %s.%s", errUnknownField, typ, f.name)
		}
		if err := ts.checkField(def, f, typ+"."+f.name); err != nil {
			return err
		}
	}
	return nil
}

func (ts typeSet) checkField(def fieldDef, f *selection, path string) error {
	switch def.kind {
	case scalar:
		if f.expanded() {
			return fmt.Errorf("%w: %s", errScalarSubfields, path)
		}
	case objectKind:
		if !f.expanded() {
			return fmt.Errorf("%w: %s", errMissingSelection, path)
		}
		return ts.checkSelection(def.typ, f)
	case reference:
		if f.expanded() {
			return ts.checkSelection(def.typ, f)
		}
	}
	return nil
}
