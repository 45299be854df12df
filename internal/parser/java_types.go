// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package parser

import "strings"

// wrapperTypes are unwrapped to their single type argument.
var wrapperTypes = map[string]bool{
	"ResponseEntity":    true,
	"Optional":          true,
	"CompletableFuture": true,
	"CompletionStage":   true,
	"Mono":              true,
	"Uni":               true,
	"HttpEntity":        true,
	"JAXBElement":       true,
}

var collectionTypes = map[string]bool{
	"List":       true,
	"ArrayList":  true,
	"LinkedList": true,
	"Collection": true,
	"Iterable":   true,
	"Set":        true,
	"HashSet":    true,
	"SortedSet":  true,
	"Flux":       true,
	"Multi":      true,
	"Stream":     true,
}

var mapTypes = map[string]bool{
	"Map":           true,
	"HashMap":       true,
	"LinkedHashMap": true,
	"TreeMap":       true,
	"SortedMap":     true,
}

// SplitGeneric splits "Map<String,List<User>>" into "Map" and
// ["String", "List<User>"]. Package qualifiers are dropped from the raw
// type.
func SplitGeneric(t string) (string, []string) {
	t = normalizeType(t)
	start := strings.IndexByte(t, '<')
	if start < 0 || !strings.HasSuffix(t, ">") {
		return simpleName(t), nil
	}

	var args []string
	depth, from := 0, start+1
	for i := start + 1; i < len(t)-1; i++ {
		switch t[i] {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, t[from:i])
				from = i + 1
			}
		}
	}
	args = append(args, t[from:len(t)-1])
	return simpleName(t[:start]), args
}

func simpleName(t string) string {
	if dot := strings.LastIndexByte(t, '.'); dot >= 0 {
		return t[dot+1:]
	}
	return t
}

// Unwrap strips response and async wrappers such as ResponseEntity<T> or
// Optional<T>, returning T.
func Unwrap(t string) string {
	for {
		raw, args := SplitGeneric(t)
		if !wrapperTypes[raw] || len(args) != 1 {
			return normalizeType(t)
		}
		t = args[0]
	}
}

// ElementType returns the element type of an array or collection type.
func ElementType(t string) (string, bool) {
	t = normalizeType(t)
	if strings.HasSuffix(t, "[]") && t != "byte[]" {
		return strings.TrimSuffix(t, "[]"), true
	}
	raw, args := SplitGeneric(t)
	if collectionTypes[raw] {
		if len(args) == 1 {
			return args[0], true
		}
		return "Object", true
	}
	return "", false
}

// MapValueType returns the value type of a Map type.
func MapValueType(t string) (string, bool) {
	raw, args := SplitGeneric(t)
	if !mapTypes[raw] {
		return "", false
	}
	if len(args) == 2 {
		return args[1], true
	}
	return "Object", true
}

// JavaTypeToOpenAPI converts a Java type to an OpenAPI type and format.
// Unknown reference types map to "object".
func JavaTypeToOpenAPI(javaType string) (openAPIType string, format string) {
	javaType = Unwrap(javaType)

	if _, ok := ElementType(javaType); ok {
		return "array", ""
	}
	if _, ok := MapValueType(javaType); ok {
		return "object", ""
	}

	raw, _ := SplitGeneric(javaType)
	switch raw {
	case "String", "char", "Character", "CharSequence":
		return "string", ""
	case "int", "Integer", "short", "Short", "byte", "Byte":
		return "integer", "int32"
	case "long", "Long", "BigInteger":
		return "integer", "int64"
	case "float", "Float":
		return "number", "float"
	case "double", "Double":
		return "number", "double"
	case "BigDecimal", "Number":
		return "number", ""
	case "boolean", "Boolean":
		return "boolean", ""
	case "LocalDateTime", "ZonedDateTime", "OffsetDateTime", "Instant", "Date", "Timestamp":
		return "string", "date-time"
	case "LocalDate":
		return "string", "date"
	case "LocalTime", "OffsetTime":
		return "string", "time"
	case "UUID":
		return "string", "uuid"
	case "URI", "URL":
		return "string", "uri"
	case "byte[]", "InputStream", "MultipartFile", "File", "Resource", "StreamingOutput":
		return "string", "binary"
	case "void", "Void", "Response":
		return "", ""
	default:
		return "object", ""
	}
}

// IsPrimitive reports whether t maps to a scalar OpenAPI type.
func IsPrimitive(t string) bool {
	typ, _ := JavaTypeToOpenAPI(t)
	return typ != "" && typ != "object" && typ != "array"
}
