package api

import (
	"errors"
	"fmt"

	"github.com/phrazzld/agora-api/internal/api/shared"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Operation parsing failures; all of them surface as InvalidParameters.
var (
	errNoOperation        = errors.New("document contains no operation")
	errOperationNotFound  = errors.New("named operation not found")
	errAmbiguousOperation = errors.New("operationName is required for documents with several operations")
	errUnknownFragment    = errors.New("unknown fragment")
	errFragmentCycle      = errors.New("fragment spreads form a cycle")
	errSubscription       = errors.New("subscriptions are not supported")
)

// operation is the executable form of a request: its type and the root
// fields with fragments already expanded and arguments evaluated.
type operation struct {
	kind   ast.Operation
	name   string
	fields []*selection
}

// selection is one requested field.
type selection struct {
	name   string
	alias  string
	args   map[string]any
	fields []*selection
}

// key is the response key of the field: its alias when given.
func (s *selection) key() string {
	if s.alias != "" {
		return s.alias
	}
	return s.name
}

// child returns the first subfield named name, or nil.
func (s *selection) child(name string) *selection {
	if s == nil {
		return nil
	}
	for _, f := range s.fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

// expanded reports whether the field asks for subfields.
func (s *selection) expanded() bool {
	return s != nil && len(s.fields) > 0
}

// selects reports whether any subfield named name asks for subfields. Aliased
// duplicates are all considered.
func (s *selection) selects(name string) bool {
	if s == nil {
		return false
	}
	for _, f := range s.fields {
		if f.name == name && f.expanded() {
			return true
		}
	}
	return false
}

// parseOperation parses req.Query and picks the operation to execute.
func parseOperation(req shared.GraphQLRequest) (*operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "request", Input: req.Query})
	if err != nil {
		return nil, err
	}

	var op *ast.OperationDefinition
	switch {
	case len(doc.Operations) == 0:
		return nil, errNoOperation
	case req.OperationName != "":
		op = doc.Operations.ForName(req.OperationName)
		if op == nil {
			return nil, fmt.Errorf("%w: %s", errOperationNotFound, req.OperationName)
		}
	case len(doc.Operations) == 1:
		op = doc.Operations[0]
	default:
		return nil, errAmbiguousOperation
	}
	if op.Operation == ast.Subscription {
		return nil, errSubscription
	}

	vars, err := withDefaults(op.VariableDefinitions, req.Variables)
	if err != nil {
		return nil, err
	}
	b := &selectionBuilder{doc: doc, vars: vars, active: map[string]bool{}}
	fields, err := b.build(op.SelectionSet)
	if err != nil {
		return nil, err
	}
	kind := op.Operation
	if kind == "" {
		kind = ast.Query
	}
	return &operation{kind: kind, name: op.Name, fields: fields}, nil
}

// withDefaults returns the request variables completed with the defaults
// declared by the operation.
func withDefaults(defs ast.VariableDefinitionList, vars map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(vars)+len(defs))
	for k, v := range vars {
		out[k] = v
	}
	for _, def := range defs {
		if _, ok := out[def.Variable]; ok || def.DefaultValue == nil {
			continue
		}
		v, err := def.DefaultValue.Value(nil)
		if err != nil {
			return nil, fmt.Errorf("default of $%s: %w", def.Variable, err)
		}
		out[def.Variable] = v
	}
	return out, nil
}

type selectionBuilder struct {
	doc    *ast.QueryDocument
	vars   map[string]any
	active map[string]bool
}

// build flattens a selection set, inlining fragment spreads and inline
// fragments in document order.
func (b *selectionBuilder) build(set ast.SelectionSet) ([]*selection, error) {
	var out []*selection
	for _, sel := range set {
		switch s := sel.(type) {
		case *ast.Field:
			f, err := b.field(s)
			if err != nil {
				return nil, err
			}
			out = append(out, f)
		case *ast.InlineFragment:
			fields, err := b.build(s.SelectionSet)
			if err != nil {
				return nil, err
			}
			out = append(out, fields...)
		case *ast.FragmentSpread:
			def := b.doc.Fragments.ForName(s.Name)
			if def == nil {
				return nil, fmt.Errorf("%w: %s", errUnknownFragment, s.Name)
			}
			if b.active[s.Name] {
				return nil, fmt.Errorf("%w: %s", errFragmentCycle, s.Name)
			}
			b.active[s.Name] = true
			fields, err := b.build(def.SelectionSet)
			delete(b.active, s.Name)
			if err != nil {
				return nil, err
			}
			out = append(out, fields...)
		}
	}
	return out, nil
}

func (b *selectionBuilder) field(f *ast.Field) (*selection, error) {
	args := make(map[string]any, len(f.Arguments))
	for _, arg := range f.Arguments {
		v, err := arg.Value.Value(b.vars)
		if err != nil {
			return nil, fmt.Errorf("argument %s of %s: %w", arg.Name, f.Name, err)
		}
		args[arg.Name] = v
	}
	children, err := b.build(f.SelectionSet)
	if err != nil {
		return nil, err
	}
	return &selection{name: f.Name, alias: f.Alias, args: args, fields: children}, nil
}
