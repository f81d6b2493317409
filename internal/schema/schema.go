// Package schema renders parsed models into GraphQL schema document text.
package schema

import (
	"fmt"
	"strings"

	"model-graphql/internal/extension"
	"model-graphql/internal/introspection"
	"model-graphql/internal/naming"
)

// FilterInputName is the input type accepted by read-many queries.
const FilterInputName = "FilterOption"

// DateScalarName is the temporal scalar declared in the preamble.
const DateScalarName = "Date"

const preamble = `scalar Date

input FilterOption {
  value_type: String!
  column_name: String
  column_key: String
  value: String!
}
`

// Fragment is a piece of schema document: type declarations plus root operation signatures.
// Signatures are written without the enclosing Query or Mutation block, e.g. "read_User(id: Int!): User".
type Fragment struct {
	TypeDefs  string
	Queries   []string
	Mutations []string
}

// String renders the fragment on its own, with its signatures wrapped in Query and Mutation blocks.
func (f Fragment) String() string {
	var b strings.Builder
	if defs := strings.TrimSpace(f.TypeDefs); defs != "" {
		b.WriteString(defs)
		b.WriteString("\n")
	}
	writeRootBlock(&b, "Query", f.Queries)
	writeRootBlock(&b, "Mutation", f.Mutations)
	return b.String()
}

// RenderEntityFragment renders the object type, page type and the four operation signatures of one model.
func RenderEntityFragment(m introspection.ParsedModel) Fragment {
	var b strings.Builder
	fmt.Fprintf(&b, "type %s {\n", m.Name)
	for _, f := range m.Fields {
		fmt.Fprintf(&b, "  %s: %s\n", f.Name, fieldType(f, f.Required))
	}
	b.WriteString("}\n\n")
	fmt.Fprintf(&b, "type %s {\n  count: Int!\n  rows: [%s]\n}\n", naming.PageType(m.Name), m.Name)

	pk := m.PrimaryKey
	readOne := fmt.Sprintf("%s(%s: %s!): %s", naming.ReadOne(m.Name), pk.Name, pk.Type, m.Name)
	readMultiple := fmt.Sprintf(
		"%s(offset: Int!, limit: Int!, filter_options: [%s], order_column: String, order_method: String): %s",
		naming.ReadMultiple(m.Name), FilterInputName, naming.PageType(m.Name),
	)

	createArgs := make([]string, 0, len(m.CreateFields))
	for _, f := range m.CreateFields {
		createArgs = append(createArgs, fmt.Sprintf("%s: %s", f.Name, fieldType(f, f.Required)))
	}
	updateArgs := make([]string, 0, len(m.Fields))
	for _, f := range m.Fields {
		// Only the key is mandatory on update; every other field is a partial change.
		updateArgs = append(updateArgs, fmt.Sprintf("%s: %s", f.Name, fieldType(f, f.PrimaryKey)))
	}

	return Fragment{
		TypeDefs:  b.String(),
		Queries:   []string{readOne, readMultiple},
		Mutations: []string{signature(naming.Create(m.Name), createArgs, m.Name), signature(naming.Update(m.Name), updateArgs, m.Name)},
	}
}

// AssembleDocument concatenates the preamble, every model's type declarations, the custom
// type declarations and the merged Query and Mutation blocks. Custom signatures are appended
// after generated ones; a custom signature reusing a generated operation name replaces it in place.
// Identical ordered input always yields identical output.
func AssembleDocument(models []introspection.ParsedModel, custom []Fragment) string {
	generatedQueries := extension.NewTable[string]()
	generatedMutations := extension.NewTable[string]()

	var b strings.Builder
	b.WriteString(preamble)
	for _, m := range models {
		frag := RenderEntityFragment(m)
		b.WriteString("\n")
		b.WriteString(frag.TypeDefs)
		addSignatures(generatedQueries, frag.Queries)
		addSignatures(generatedMutations, frag.Mutations)
	}

	customQueries := make([]*extension.Table[string], 0, len(custom))
	customMutations := make([]*extension.Table[string], 0, len(custom))
	for _, frag := range custom {
		if defs := strings.TrimSpace(frag.TypeDefs); defs != "" {
			b.WriteString("\n")
			b.WriteString(defs)
			b.WriteString("\n")
		}
		q := extension.NewTable[string]()
		addSignatures(q, frag.Queries)
		customQueries = append(customQueries, q)
		mu := extension.NewTable[string]()
		addSignatures(mu, frag.Mutations)
		customMutations = append(customMutations, mu)
	}

	queries := extension.Merge(generatedQueries, customQueries...)
	mutations := extension.Merge(generatedMutations, customMutations...)
	writeRootBlock(&b, "Query", tableValues(queries))
	writeRootBlock(&b, "Mutation", tableValues(mutations))
	return b.String()
}

// SignatureName returns the operation name of a signature: the text before the first '(' or ':'.
func SignatureName(sig string) string {
	end := strings.IndexAny(sig, "(:")
	if end == -1 {
		end = len(sig)
	}
	return strings.TrimSpace(sig[:end])
}

func addSignatures(t *extension.Table[string], sigs []string) {
	for _, sig := range sigs {
		sig = strings.TrimSpace(sig)
		if sig == "" {
			continue
		}
		t.Set(SignatureName(sig), sig)
	}
}

func tableValues(t *extension.Table[string]) []string {
	out := make([]string, 0, t.Len())
	t.Each(func(_ string, sig string) {
		out = append(out, sig)
	})
	return out
}

func writeRootBlock(b *strings.Builder, name string, sigs []string) {
	if len(sigs) == 0 {
		return
	}
	fmt.Fprintf(b, "\ntype %s {\n", name)
	for _, sig := range sigs {
		fmt.Fprintf(b, "  %s\n", strings.TrimSpace(sig))
	}
	b.WriteString("}\n")
}

func signature(name string, args []string, result string) string {
	if len(args) == 0 {
		return fmt.Sprintf("%s: %s", name, result)
	}
	return fmt.Sprintf("%s(%s): %s", name, strings.Join(args, ", "), result)
}

func fieldType(f introspection.CanonicalField, nonNull bool) string {
	if nonNull {
		return f.Type.String() + "!"
	}
	return f.Type.String()
}
