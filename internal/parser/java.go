// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package parser extracts the declarations that route and schema
// extraction need from Java sources.
package parser

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// JavaParser parses Java sources with tree-sitter. It is not safe for
// concurrent use.
type JavaParser struct {
	parser *sitter.Parser
}

// NewJavaParser creates a new Java parser.
func NewJavaParser() *JavaParser {
	parser := sitter.NewParser()
	parser.SetLanguage(java.GetLanguage())
	return &JavaParser{parser: parser}
}

// JavaFile is a parsed compilation unit.
type JavaFile struct {
	Path    string
	Package string
	Imports []string

	// Types holds every class, interface, enum and record, nested ones
	// included, in source order
	Types []JavaType

	// Incomplete is set when tree-sitter had to recover from syntax errors
	Incomplete bool
}

// TypeKind classifies a type declaration.
type TypeKind string

const (
	KindClass     TypeKind = "class"
	KindInterface TypeKind = "interface"
	KindEnum      TypeKind = "enum"
	KindRecord    TypeKind = "record"
)

// JavaType is a class-like declaration.
type JavaType struct {
	Kind        TypeKind
	Name        string
	Annotations []JavaAnnotation
	Modifiers   []string
	Superclass  string
	Interfaces  []string
	Methods     []JavaMethod

	// Fields holds declared fields, or the components of a record
	Fields []JavaField

	EnumConstants []string
	Line          int
}

// JavaAnnotation is an annotation with its evaluated elements. A single
// unnamed element is stored under "value".
type JavaAnnotation struct {
	// Name is the simple name, "Path" for both @Path and @javax.ws.rs.Path
	Name       string
	Attributes map[string][]string
	Line       int
}

// JavaMethod represents a method declaration.
type JavaMethod struct {
	Name        string
	Annotations []JavaAnnotation
	Modifiers   []string
	Parameters  []JavaParameter
	ReturnType  string
	Line        int
}

// JavaParameter represents a method parameter.
type JavaParameter struct {
	Name        string
	Type        string
	Annotations []JavaAnnotation
}

// JavaField represents a field declaration.
type JavaField struct {
	Name        string
	Type        string
	Annotations []JavaAnnotation
	Modifiers   []string
}

// ParseFile parses a Java source file from disk.
func (p *JavaParser) ParseFile(path string) (*JavaFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	return p.Parse(path, content)
}

// Parse parses Java source code.
func (p *JavaParser) Parse(filename string, content []byte) (*JavaFile, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Java: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("failed to get root node")
	}

	w := &javaWalker{src: content, constants: make(map[string]string)}
	w.collectConstants(root, "")

	jf := &JavaFile{
		Path:       filename,
		Incomplete: root.HasError(),
	}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		switch node.Type() {
		case "package_declaration":
			jf.Package = w.qualifiedName(node)
		case "import_declaration":
			jf.Imports = append(jf.Imports, w.qualifiedName(node))
		default:
			jf.Types = append(jf.Types, w.typeDeclarations(node)...)
		}
	}
	return jf, nil
}

type javaWalker struct {
	src []byte

	// constants maps NAME and Class.NAME of static final String fields to
	// their values
	constants map[string]string
}

func (w *javaWalker) text(n *sitter.Node) string {
	if n == nil {
		return ""
	}
	return n.Content(w.src)
}

func line(n *sitter.Node) int {
	return int(n.StartPoint().Row) + 1
}

func (w *javaWalker) qualifiedName(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
			name := w.text(c)
			if n.Type() == "import_declaration" && strings.HasSuffix(strings.TrimSuffix(w.text(n), ";"), "*") {
				name += ".*"
			}
			return name
		}
	}
	return ""
}

func isTypeDeclaration(t string) bool {
	switch t {
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		return true
	}
	return false
}

// collectConstants records string constants so that annotation values
// such as @Path(Routes.USERS) can be resolved.
func (w *javaWalker) collectConstants(n *sitter.Node, owner string) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch {
		case isTypeDeclaration(c.Type()):
			w.collectConstants(c, w.text(c.ChildByFieldName("name")))
		case c.Type() == "class_body" || c.Type() == "interface_body" ||
			c.Type() == "enum_body" || c.Type() == "enum_body_declarations":
			w.collectConstants(c, owner)
		case c.Type() == "field_declaration" || c.Type() == "constant_declaration":
			mods := w.modifiers(c)
			constant := c.Type() == "constant_declaration" ||
				(slices.Contains(mods, "static") && slices.Contains(mods, "final"))
			if !constant || w.text(c.ChildByFieldName("type")) != "String" {
				continue
			}
			for j := 0; j < int(c.NamedChildCount()); j++ {
				d := c.NamedChild(j)
				if d.Type() != "variable_declarator" {
					continue
				}
				values := w.elementValues(d.ChildByFieldName("value"))
				if len(values) != 1 {
					continue
				}
				name := w.text(d.ChildByFieldName("name"))
				w.constants[name] = values[0]
				if owner != "" {
					w.constants[owner+"."+name] = values[0]
				}
			}
		}
	}
}

func (w *javaWalker) typeDeclarations(n *sitter.Node) []JavaType {
	if !isTypeDeclaration(n.Type()) {
		return nil
	}

	t := JavaType{
		Kind:        TypeKind(strings.TrimSuffix(n.Type(), "_declaration")),
		Name:        w.text(n.ChildByFieldName("name")),
		Annotations: w.annotations(n),
		Modifiers:   w.modifiers(n),
		Line:        line(n),
	}
	if sc := n.ChildByFieldName("superclass"); sc != nil {
		t.Superclass = w.firstTypeName(sc)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "super_interfaces" || c.Type() == "extends_interfaces" {
			t.Interfaces = append(t.Interfaces, w.typeList(c)...)
		}
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range w.parameters(params) {
			t.Fields = append(t.Fields, JavaField{Name: p.Name, Type: p.Type, Annotations: p.Annotations})
		}
	}

	var nested []JavaType
	if body := n.ChildByFieldName("body"); body != nil {
		nested = w.members(body, &t)
	}
	return append([]JavaType{t}, nested...)
}

func (w *javaWalker) members(body *sitter.Node, t *JavaType) []JavaType {
	var nested []JavaType
	for i := 0; i < int(body.NamedChildCount()); i++ {
		c := body.NamedChild(i)
		switch c.Type() {
		case "method_declaration":
			t.Methods = append(t.Methods, w.method(c))
		case "field_declaration", "constant_declaration":
			t.Fields = append(t.Fields, w.fields(c)...)
		case "enum_constant":
			t.EnumConstants = append(t.EnumConstants, w.text(c.ChildByFieldName("name")))
		case "enum_body_declarations":
			nested = append(nested, w.members(c, t)...)
		default:
			nested = append(nested, w.typeDeclarations(c)...)
		}
	}
	return nested
}

func (w *javaWalker) method(n *sitter.Node) JavaMethod {
	m := JavaMethod{
		Name:        w.text(n.ChildByFieldName("name")),
		Annotations: w.annotations(n),
		Modifiers:   w.modifiers(n),
		ReturnType:  normalizeType(w.text(n.ChildByFieldName("type"))),
		Line:        line(n),
	}
	if params := n.ChildByFieldName("parameters"); params != nil {
		m.Parameters = w.parameters(params)
	}
	return m
}

func (w *javaWalker) parameters(n *sitter.Node) []JavaParameter {
	var params []JavaParameter
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "formal_parameter":
			typ := normalizeType(w.text(c.ChildByFieldName("type")))
			if dims := c.ChildByFieldName("dimensions"); dims != nil {
				typ += normalizeType(w.text(dims))
			}
			params = append(params, JavaParameter{
				Name:        w.text(c.ChildByFieldName("name")),
				Type:        typ,
				Annotations: w.annotations(c),
			})
		case "spread_parameter":
			p := JavaParameter{Annotations: w.annotations(c)}
			for j := 0; j < int(c.NamedChildCount()); j++ {
				d := c.NamedChild(j)
				switch {
				case d.Type() == "variable_declarator":
					p.Name = w.text(d.ChildByFieldName("name"))
				case d.Type() != "modifiers" && p.Type == "":
					p.Type = normalizeType(w.text(d)) + "[]"
				}
			}
			params = append(params, p)
		}
	}
	return params
}

func (w *javaWalker) fields(n *sitter.Node) []JavaField {
	typ := normalizeType(w.text(n.ChildByFieldName("type")))
	annos := w.annotations(n)
	mods := w.modifiers(n)

	var fields []JavaField
	for i := 0; i < int(n.NamedChildCount()); i++ {
		d := n.NamedChild(i)
		if d.Type() != "variable_declarator" {
			continue
		}
		ft := typ
		if dims := d.ChildByFieldName("dimensions"); dims != nil {
			ft += normalizeType(w.text(dims))
		}
		fields = append(fields, JavaField{
			Name:        w.text(d.ChildByFieldName("name")),
			Type:        ft,
			Annotations: annos,
			Modifiers:   mods,
		})
	}
	return fields
}

func (w *javaWalker) modifierNode(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); c.Type() == "modifiers" {
			return c
		}
	}
	return nil
}

func (w *javaWalker) modifiers(n *sitter.Node) []string {
	mods := w.modifierNode(n)
	if mods == nil {
		return nil
	}
	var out []string
	for i := 0; i < int(mods.ChildCount()); i++ {
		c := mods.Child(i)
		if c.Type() != "annotation" && c.Type() != "marker_annotation" {
			out = append(out, w.text(c))
		}
	}
	return out
}

func (w *javaWalker) annotations(n *sitter.Node) []JavaAnnotation {
	mods := w.modifierNode(n)
	if mods == nil {
		return nil
	}
	var annos []JavaAnnotation
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		c := mods.NamedChild(i)
		if c.Type() != "annotation" && c.Type() != "marker_annotation" {
			continue
		}
		name := w.text(c.ChildByFieldName("name"))
		if dot := strings.LastIndexByte(name, '.'); dot >= 0 {
			name = name[dot+1:]
		}
		a := JavaAnnotation{Name: name, Attributes: map[string][]string{}, Line: line(c)}
		if args := c.ChildByFieldName("arguments"); args != nil {
			for j := 0; j < int(args.NamedChildCount()); j++ {
				arg := args.NamedChild(j)
				if arg.Type() == "element_value_pair" {
					key := w.text(arg.ChildByFieldName("key"))
					a.Attributes[key] = w.elementValues(arg.ChildByFieldName("value"))
				} else {
					a.Attributes["value"] = w.elementValues(arg)
				}
			}
		}
		annos = append(annos, a)
	}
	return annos
}

// elementValues evaluates an annotation element. Arrays yield one entry
// per element, string concatenations and known constants are folded, and
// anything else is kept as source text.
func (w *javaWalker) elementValues(n *sitter.Node) []string {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "element_value_array_initializer", "array_initializer":
		var values []string
		for i := 0; i < int(n.NamedChildCount()); i++ {
			values = append(values, w.elementValues(n.NamedChild(i))...)
		}
		return values
	case "string_literal":
		return []string{unquoteJava(w.text(n))}
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return w.elementValues(n.NamedChild(0))
		}
	case "binary_expression":
		left := w.elementValues(n.ChildByFieldName("left"))
		right := w.elementValues(n.ChildByFieldName("right"))
		if op := n.ChildByFieldName("operator"); op != nil && w.text(op) == "+" && len(left) == 1 && len(right) == 1 {
			return []string{left[0] + right[0]}
		}
	case "identifier", "field_access":
		if v, ok := w.constants[w.text(n)]; ok {
			return []string{v}
		}
	}
	return []string{w.text(n)}
}

func (w *javaWalker) typeList(n *sitter.Node) []string {
	var names []string
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "type_list" {
			names = append(names, w.typeList(c)...)
			continue
		}
		names = append(names, normalizeType(w.text(c)))
	}
	return names
}

func (w *javaWalker) firstTypeName(n *sitter.Node) string {
	if n.NamedChildCount() == 0 {
		return ""
	}
	return normalizeType(w.text(n.NamedChild(0)))
}

func unquoteJava(s string) string {
	if strings.HasPrefix(s, `"""`) {
		return strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, `"""`), `"""`))
	}
	if u, err := strconv.Unquote(s); err == nil {
		return u
	}
	return strings.Trim(s, `"`)
}

// normalizeType removes whitespace so that "Map<String, User>" and
// "Map<String,User>" compare equal.
func normalizeType(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// Value returns the first value of the "value" element.
func (a *JavaAnnotation) Value() string {
	return a.First("value")
}

// First returns the first value of element key, or "".
func (a *JavaAnnotation) First(key string) string {
	if v := a.Attributes[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Values returns all values of the first present key.
func (a *JavaAnnotation) Values(keys ...string) []string {
	for _, k := range keys {
		if v, ok := a.Attributes[k]; ok {
			return v
		}
	}
	return nil
}

// FindAnnotation returns the first annotation with one of names, or nil.
func FindAnnotation(annos []JavaAnnotation, names ...string) *JavaAnnotation {
	for i := range annos {
		if slices.Contains(names, annos[i].Name) {
			return &annos[i]
		}
	}
	return nil
}

// HasAnnotation checks if a method has a specific annotation.
func (m *JavaMethod) HasAnnotation(name string) bool {
	return FindAnnotation(m.Annotations, name) != nil
}

// GetAnnotation returns an annotation by name, or nil if not found.
func (m *JavaMethod) GetAnnotation(name string) *JavaAnnotation {
	return FindAnnotation(m.Annotations, name)
}

// HasModifier reports whether the method is declared with mod.
func (m *JavaMethod) HasModifier(mod string) bool {
	return slices.Contains(m.Modifiers, mod)
}

// HasAnnotation checks if a type has a specific annotation.
func (t *JavaType) HasAnnotation(name string) bool {
	return FindAnnotation(t.Annotations, name) != nil
}

// GetAnnotation returns an annotation by name, or nil if not found.
func (t *JavaType) GetAnnotation(name string) *JavaAnnotation {
	return FindAnnotation(t.Annotations, name)
}

// HasModifier reports whether the field is declared with mod.
func (f *JavaField) HasModifier(mod string) bool {
	return slices.Contains(f.Modifiers, mod)
}
