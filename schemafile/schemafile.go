// Package schemafile loads named schemas from YAML (or JSON) documents.
//
//	root: user
//	schemas:
//	  book:
//	    fields:
//	      title:
//	        type: String
//	        validate:
//	          presence: {message: is required}
//	      year: {type: Integer}
//	  user:
//	    fields:
//	      name: {type: String, validate: {presence: {}}}
//	      book: {type: book}
//	      books: {type: [book]}
//
// Field and validator order follows the document. A type naming a schema
// of the same file is a nested document; a one-element list of such a name
// is a collection. Other names are scalar types. References may point
// forward; cycles are rejected. validate is either a mapping (name to
// options) or a list whose entries are a name or a one-key mapping, which
// allows the same validator twice.
package schemafile

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	objectschema "github.com/reoring/objectschema"
)

// ErrCycle marks schemas that reference themselves, directly or indirectly.
var ErrCycle = errors.New("cyclic schema reference")

// Options controls how schemas are built. Zero values use the objectschema
// defaults.
type Options struct {
	Registry *objectschema.Registry
	Types    *objectschema.TypeRegistry
}

// File holds the schemas of one document.
type File struct {
	root    string
	names   []string
	schemas map[string]*objectschema.Schema
}

// Schema returns the schema declared under name.
func (f *File) Schema(name string) (*objectschema.Schema, bool) {
	s, ok := f.schemas[name]
	return s, ok
}

// Names lists schema names in document order.
func (f *File) Names() []string { return append([]string(nil), f.names...) }

// Root returns the schema named by "root", or the only schema of the file.
func (f *File) Root() (*objectschema.Schema, error) {
	if f.root != "" {
		return f.schemas[f.root], nil
	}
	if len(f.names) == 1 {
		return f.schemas[f.names[0]], nil
	}
	return nil, fmt.Errorf("schemafile: no root declared among %d schemas", len(f.names))
}

// LoadFile reads and loads path.
func LoadFile(path string, opts ...Options) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()
	return Load(fh, opts...)
}

// Load parses one document and builds every schema it declares. Structural
// problems (bad keys, malformed types, cycles, unknown validators) are
// returned as *objectschema.ValidatorError; YAML syntax errors are returned
// as is.
func Load(r io.Reader, opts ...Options) (*File, error) {
	var opt Options
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, malformed("", "", 0, "empty document")
		}
		return nil, err
	}
	defs, root, err := parseDocument(&doc)
	if err != nil {
		return nil, err
	}
	b := &builder{opt: opt, defs: defs, built: map[string]*objectschema.Schema{}, visiting: map[string]bool{}}
	f := &File{root: root, schemas: make(map[string]*objectschema.Schema, len(defs.order))}
	for _, name := range defs.order {
		s, err := b.build(name, nil)
		if err != nil {
			return nil, err
		}
		f.names = append(f.names, name)
		f.schemas[name] = s
	}
	if root != "" {
		if _, ok := f.schemas[root]; !ok {
			return nil, malformed("", "", 0, fmt.Sprintf("root %q is not declared", root))
		}
	}
	return f, nil
}

type fieldDef struct {
	name     string
	line     int
	typeName string
	many     bool
	validate []objectschema.ValidatorConfig
}

type schemaDef struct {
	name   string
	line   int
	fields []fieldDef
}

type definitions struct {
	order []string
	byKey map[string]*schemaDef
}

func parseDocument(doc *yaml.Node) (*definitions, string, error) {
	top := resolveAlias(doc)
	if top.Kind == yaml.DocumentNode && len(top.Content) > 0 {
		top = resolveAlias(top.Content[0])
	}
	if top.Kind != yaml.MappingNode {
		return nil, "", malformed("", "", top.Line, "document must be a mapping")
	}
	defs := &definitions{byKey: map[string]*schemaDef{}}
	var root string
	err := eachPair(top, func(k, v *yaml.Node) error {
		v = resolveAlias(v)
		switch k.Value {
		case "root":
			if v.Kind != yaml.ScalarNode {
				return malformed("", "", v.Line, "root must be a schema name")
			}
			root = v.Value
		case "schemas":
			if v.Kind != yaml.MappingNode {
				return malformed("", "", v.Line, "schemas must be a mapping")
			}
			return eachPair(v, func(nk, nv *yaml.Node) error {
				sd, err := parseSchema(nk.Value, resolveAlias(nv))
				if err != nil {
					return err
				}
				sd.line = nk.Line
				defs.order = append(defs.order, sd.name)
				defs.byKey[sd.name] = sd
				return nil
			})
		default:
			return malformed("", "", k.Line, fmt.Sprintf("unknown key %q", k.Value))
		}
		return nil
	})
	if err != nil {
		return nil, "", wrapYAML(err)
	}
	if len(defs.order) == 0 {
		return nil, "", malformed("", "", top.Line, "no schemas declared")
	}
	return defs, root, nil
}

func parseSchema(name string, n *yaml.Node) (*schemaDef, error) {
	sd := &schemaDef{name: name}
	if n.Kind != yaml.MappingNode {
		return nil, malformed(name, "", n.Line, "schema must be a mapping")
	}
	err := eachPair(n, func(k, v *yaml.Node) error {
		if k.Value != "fields" {
			return malformed(name, "", k.Line, fmt.Sprintf("unknown key %q", k.Value))
		}
		v = resolveAlias(v)
		if v.Kind != yaml.MappingNode {
			return malformed(name, "", v.Line, "fields must be a mapping")
		}
		return eachPair(v, func(fk, fv *yaml.Node) error {
			fd, err := parseField(name, fk.Value, resolveAlias(fv))
			if err != nil {
				return err
			}
			fd.line = fk.Line
			sd.fields = append(sd.fields, fd)
			return nil
		})
	})
	return sd, err
}

func parseField(schema, name string, n *yaml.Node) (fieldDef, error) {
	fd := fieldDef{name: name}
	if n.Kind != yaml.MappingNode {
		return fd, malformed(schema, name, n.Line, "field must be a mapping")
	}
	err := eachPair(n, func(k, v *yaml.Node) error {
		v = resolveAlias(v)
		switch k.Value {
		case "type":
			return parseType(schema, &fd, v)
		case "validate":
			vcs, err := parseValidators(schema, name, v)
			fd.validate = vcs
			return err
		default:
			return malformed(schema, name, k.Line, fmt.Sprintf("unknown key %q", k.Value))
		}
	})
	if err == nil && fd.typeName == "" {
		err = malformed(schema, name, n.Line, "type is required")
	}
	return fd, err
}

func parseType(schema string, fd *fieldDef, v *yaml.Node) error {
	switch v.Kind {
	case yaml.ScalarNode:
		fd.typeName = strings.TrimSpace(v.Value)
	case yaml.SequenceNode:
		if len(v.Content) != 1 || resolveAlias(v.Content[0]).Kind != yaml.ScalarNode {
			return malformed(schema, fd.name, v.Line, "a list type must hold exactly one schema name")
		}
		fd.typeName = strings.TrimSpace(resolveAlias(v.Content[0]).Value)
		fd.many = true
	default:
		return malformed(schema, fd.name, v.Line, "type must be a name or a one-element list")
	}
	if fd.typeName == "" {
		return malformed(schema, fd.name, v.Line, "type name is empty")
	}
	return nil
}

func parseValidators(schema, field string, v *yaml.Node) ([]objectschema.ValidatorConfig, error) {
	var out []objectschema.ValidatorConfig
	switch v.Kind {
	case yaml.MappingNode:
		err := eachPair(v, func(k, opts *yaml.Node) error {
			vc, err := validatorConfig(schema, field, k.Value, opts)
			out = append(out, vc)
			return err
		})
		return out, err
	case yaml.SequenceNode:
		for _, item := range v.Content {
			item = resolveAlias(item)
			switch {
			case item.Kind == yaml.ScalarNode:
				out = append(out, objectschema.ValidatorConfig{Name: item.Value})
			case item.Kind == yaml.MappingNode && len(item.Content) == 2:
				vc, err := validatorConfig(schema, field, item.Content[0].Value, item.Content[1])
				if err != nil {
					return nil, err
				}
				out = append(out, vc)
			default:
				return nil, malformed(schema, field, item.Line, "validator entry must be a name or a one-key mapping")
			}
		}
		return out, nil
	default:
		return nil, malformed(schema, field, v.Line, "validate must be a mapping or a list")
	}
}

func validatorConfig(schema, field, name string, n *yaml.Node) (objectschema.ValidatorConfig, error) {
	vc := objectschema.ValidatorConfig{Name: name}
	val, err := nodeValue(n)
	if err != nil {
		return vc, err
	}
	switch t := val.(type) {
	case nil:
	case map[string]any:
		vc.Options = objectschema.Options(t)
	default:
		// "presence: true" and similar shorthands carry no options.
		if b, ok := t.(bool); ok && b {
			return vc, nil
		}
		return vc, malformed(schema, field, n.Line, fmt.Sprintf("options of %q must be a mapping", name))
	}
	return vc, nil
}

type builder struct {
	opt      Options
	defs     *definitions
	built    map[string]*objectschema.Schema
	visiting map[string]bool
}

func (b *builder) build(name string, trail []string) (*objectschema.Schema, error) {
	if s, ok := b.built[name]; ok {
		return s, nil
	}
	trail = append(trail, name)
	if b.visiting[name] {
		return nil, &objectschema.ValidatorError{
			Schema: trail[0],
			Reason: strings.Join(trail, " -> "),
			Err:    fmt.Errorf("%w: %w", objectschema.ErrMalformedType, ErrCycle),
		}
	}
	b.visiting[name] = true
	defer delete(b.visiting, name)

	sd := b.defs.byKey[name]
	cfg := objectschema.SchemaConfig{Name: name, Registry: b.opt.Registry, Types: b.opt.Types}
	for _, fd := range sd.fields {
		fc := objectschema.FieldConfig{Name: fd.name, Validate: fd.validate}
		if _, isSchema := b.defs.byKey[fd.typeName]; isSchema {
			ref, err := b.build(fd.typeName, trail)
			if err != nil {
				return nil, err
			}
			if fd.many {
				fc.Type = objectschema.Many(ref)
			} else {
				fc.Type = objectschema.One(ref)
			}
		} else {
			if fd.many {
				return nil, malformed(name, fd.name, fd.line, fmt.Sprintf("list element %q is not a schema of this file", fd.typeName))
			}
			fc.Type = fd.typeName
		}
		cfg.Fields = append(cfg.Fields, fc)
	}
	s, err := objectschema.NewSchema(cfg)
	if err != nil {
		return nil, err
	}
	b.built[name] = s
	return s, nil
}

func malformed(schema, field string, line int, reason string) *objectschema.ValidatorError {
	if line > 0 {
		reason = fmt.Sprintf("line %d: %s", line, reason)
	}
	return &objectschema.ValidatorError{Schema: schema, Field: field, Reason: reason, Err: objectschema.ErrMalformedType}
}

// wrapYAML turns duplicate keys into configuration errors and leaves the
// rest untouched.
func wrapYAML(err error) error {
	var dup *DuplicateKeyError
	if errors.As(err, &dup) {
		return &objectschema.ValidatorError{Reason: dup.Error(), Err: fmt.Errorf("%w: %w", objectschema.ErrDuplicateField, dup)}
	}
	return err
}
