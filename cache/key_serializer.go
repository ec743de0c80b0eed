package cache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// Operation tags the kind of call a key belongs to. The tag is always part of
// the key so a read and a delete on the same id never share an entry.
type Operation string

const (
	OpRead   Operation = "read"
	OpCreate Operation = "create"
	OpUpdate Operation = "update"
	OpDelete Operation = "delete"
)

// KeySerializer builds a cache key from an operation tag and its operands.
// Equal operands produce equal keys; distinct operands or operations never collide.
type KeySerializer interface {
	SerializeKey(op Operation, args ...any) string
}

// KeyOption configures the default key serializer.
type KeyOption func(*defaultKeySerializer)

// WithNamespace prefixes every key with the snake_cased namespace.
func WithNamespace(namespace string) KeyOption {
	return func(s *defaultKeySerializer) {
		s.namespace = toSnake(namespace)
	}
}

// WithCompactKeys replaces the operand segment with its 64-bit xxhash digest.
// Keys stay short and bounded, at the price of a 2^-64 collision chance.
func WithCompactKeys() KeyOption {
	return func(s *defaultKeySerializer) {
		s.compact = true
	}
}

// defaultKeySerializer implements KeySerializer using reflection-based serialization.
type defaultKeySerializer struct {
	namespace string
	compact   bool
}

// NewDefaultKeySerializer creates a new instance of the default key serializer.
func NewDefaultKeySerializer(opts ...KeyOption) KeySerializer {
	s := &defaultKeySerializer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SerializeKey builds namespace::op::operand[::operand...].
func (s *defaultKeySerializer) SerializeKey(op Operation, args ...any) string {
	parts := make([]string, 0, 3)
	if s.namespace != "" {
		parts = append(parts, s.namespace)
	}
	parts = append(parts, string(op))

	if len(args) == 0 {
		return strings.Join(parts, KeySeparator)
	}

	operands := make([]string, len(args))
	for i, arg := range args {
		operands[i] = s.serializeValue(reflect.ValueOf(arg))
	}
	operand := strings.Join(operands, KeySeparator)

	if s.compact {
		operand = fmt.Sprintf("x:%016x", xxhash.Sum64String(operand))
	}

	parts = append(parts, operand)
	return strings.Join(parts, KeySeparator)
}

// serializeValue handles individual argument serialization based on kind.
func (s *defaultKeySerializer) serializeValue(rv reflect.Value) string {
	if !rv.IsValid() {
		return "nil"
	}

	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return "nil"
		}
		return s.serializeValue(rv.Elem())

	case reflect.String:
		// quoting keeps operands with separators or braces from colliding
		return strconv.Quote(rv.String())

	case reflect.Bool:
		return strconv.FormatBool(rv.Bool())

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)

	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32)

	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64)

	case reflect.Slice:
		if rv.IsNil() {
			return "slice:nil"
		}
		return "slice" + s.serializeElems(rv)

	case reflect.Array:
		return "array" + s.serializeElems(rv)

	case reflect.Map:
		if rv.IsNil() {
			return "map:nil"
		}
		return s.serializeMap(rv)

	case reflect.Struct:
		return s.serializeStruct(rv)

	case reflect.Func, reflect.Chan:
		// pointers are stable only within a process
		return fmt.Sprintf("%s:%#x", rv.Kind(), rv.Pointer())
	}

	return s.jsonFallback(rv)
}

// serializeElems renders slice and array elements in order.
func (s *defaultKeySerializer) serializeElems(rv reflect.Value) string {
	length := rv.Len()
	parts := make([]string, length)
	for i := 0; i < length; i++ {
		parts[i] = s.serializeValue(rv.Index(i))
	}
	return fmt.Sprintf("[%d]:{%s}", length, strings.Join(parts, ","))
}

// serializeMap handles map serialization with sorted keys for determinism.
func (s *defaultKeySerializer) serializeMap(rv reflect.Value) string {
	pairs := make([]string, 0, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		pairs = append(pairs, s.serializeValue(iter.Key())+"="+s.serializeValue(iter.Value()))
	}
	sort.Strings(pairs)
	return fmt.Sprintf("map[%d]:{%s}", len(pairs), strings.Join(pairs, ","))
}

// serializeStruct renders exported fields as name:value pairs. bun.BaseModel and
// other embedded empty structs contribute nothing.
func (s *defaultKeySerializer) serializeStruct(rv reflect.Value) string {
	rt := rv.Type()
	parts := make([]string, 0, rt.NumField())

	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct && field.Type.NumField() == 0 {
			continue
		}
		parts = append(parts, field.Name+":"+s.serializeValue(rv.Field(i)))
	}

	return fmt.Sprintf("struct:{%s}", strings.Join(parts, ","))
}

// jsonFallback covers kinds with no natural text form.
func (s *defaultKeySerializer) jsonFallback(rv reflect.Value) string {
	if rv.CanInterface() {
		if data, err := json.Marshal(rv.Interface()); err == nil {
			return "json:" + string(data)
		}
	}
	return "fallback:" + rv.Type().String()
}
