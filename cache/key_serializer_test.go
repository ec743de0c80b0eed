package cache

import (
	"strings"
	"testing"

	"github.com/uptrace/bun"
)

func joinWithSeparator(parts ...string) string {
	return strings.Join(parts, KeySeparator)
}

func TestDefaultKeySerializer_BasicTypes(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		op   Operation
		args []any
		want string
	}{
		{
			name: "no args",
			op:   OpRead,
			args: []any{},
			want: "read",
		},
		{
			name: "single int",
			op:   OpRead,
			args: []any{42},
			want: joinWithSeparator("read", "42"),
		},
		{
			name: "multiple basic types",
			op:   OpCreate,
			args: []any{1, "hello", true, 3.14},
			want: joinWithSeparator("create", "1", `"hello"`, "true", "3.14"),
		},
		{
			name: "string with separator",
			op:   OpUpdate,
			args: []any{"hello::world"},
			want: joinWithSeparator("update", `"hello::world"`),
		},
		{
			name: "float keeps full precision",
			op:   OpCreate,
			args: []any{3.8000000000000003},
			want: joinWithSeparator("create", "3.8000000000000003"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(tt.op, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_NilValues(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"nil interface", []any{nil}, joinWithSeparator("read", "nil")},
		{"nil pointer", []any{(*int)(nil)}, joinWithSeparator("read", "nil")},
		{"nil slice", []any{([]int)(nil)}, joinWithSeparator("read", "slice:nil")},
		{"nil map", []any{(map[string]int)(nil)}, joinWithSeparator("read", "map:nil")},
		{"string nil is not nil", []any{"nil"}, joinWithSeparator("read", `"nil"`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(OpRead, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_Collections(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	tests := []struct {
		name string
		args []any
		want string
	}{
		{"empty slice", []any{[]int{}}, joinWithSeparator("read", "slice[0]:{}")},
		{"int slice", []any{[]int{1, 2, 3}}, joinWithSeparator("read", "slice[3]:{1,2,3}")},
		{"string slice", []any{[]string{"alice", "bob"}}, joinWithSeparator("read", `slice[2]:{"alice","bob"}`)},
		{"nested slice", []any{[][]int{{1, 2}, {3, 4}}}, joinWithSeparator("read", "slice[2]:{slice[2]:{1,2},slice[2]:{3,4}}")},
		{"int array", []any{[3]int{1, 2, 3}}, joinWithSeparator("read", "array[3]:{1,2,3}")},
		{"empty map", []any{map[string]int{}}, joinWithSeparator("read", "map[0]:{}")},
		{"sorted map", []any{map[string]int{"count": 10, "age": 25}}, joinWithSeparator("read", `map[2]:{"age"=25,"count"=10}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(OpRead, tt.args...)
			if got != tt.want {
				t.Errorf("SerializeKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDefaultKeySerializer_Structs(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	type School struct {
		Name    string
		Address string
	}

	type Student struct {
		bun.BaseModel `bun:"table:students"`

		ID       int64
		First    string
		GPA      float64
		School   *School
		password string
	}

	tests := []struct {
		name string
		arg  any
		want string
	}{
		{
			name: "nested pointer struct",
			arg:  Student{ID: 1, First: "Ana", GPA: 3.8, School: &School{Name: "Lincoln High", Address: "1 Main St"}},
			want: `struct:{ID:1,First:"Ana",GPA:3.8,School:struct:{Name:"Lincoln High",Address:"1 Main St"}}`,
		},
		{
			name: "nil nested pointer and unexported field",
			arg:  Student{ID: 2, First: "Bo", password: "secret"},
			want: `struct:{ID:2,First:"Bo",GPA:0,School:nil}`,
		},
		{
			name: "pointer to struct",
			arg:  &School{Name: "A", Address: "B"},
			want: `struct:{Name:"A",Address:"B"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := serializer.SerializeKey(OpCreate, tt.arg)
			want := joinWithSeparator("create", tt.want)
			if got != want {
				t.Errorf("SerializeKey() = %v, want %v", got, want)
			}
		})
	}
}

func TestDefaultKeySerializer_NoCollisions(t *testing.T) {
	serializer := NewDefaultKeySerializer(WithNamespace("students"))

	type School struct{ Name, Address string }

	keys := map[string]string{}
	add := func(label, key string) {
		t.Helper()
		if other, exists := keys[key]; exists {
			t.Fatalf("%s collides with %s: %s", label, other, key)
		}
		keys[key] = label
	}

	add("read 1", serializer.SerializeKey(OpRead, int64(1)))
	add("delete 1", serializer.SerializeKey(OpDelete, int64(1)))
	add("create 1", serializer.SerializeKey(OpCreate, int64(1)))
	add("update 1", serializer.SerializeKey(OpUpdate, int64(1)))
	add("read 2", serializer.SerializeKey(OpRead, int64(2)))

	// field values that mimic the serializer's own punctuation
	add("name with comma", serializer.SerializeKey(OpCreate, School{Name: `a",Address:"b`, Address: ""}))
	add("plain", serializer.SerializeKey(OpCreate, School{Name: "a", Address: "b"}))
	add("split args", serializer.SerializeKey(OpCreate, "a::b"))
	add("two args", serializer.SerializeKey(OpCreate, "a", "b"))
}

func TestDefaultKeySerializer_Namespace(t *testing.T) {
	serializer := NewDefaultKeySerializer(WithNamespace("StudentRecords"))

	got := serializer.SerializeKey(OpRead, 7)
	want := joinWithSeparator("student_records", "read", "7")
	if got != want {
		t.Errorf("SerializeKey() = %v, want %v", got, want)
	}
}

func TestDefaultKeySerializer_CompactKeys(t *testing.T) {
	serializer := NewDefaultKeySerializer(WithNamespace("students"), WithCompactKeys())

	read := serializer.SerializeKey(OpRead, int64(1))
	del := serializer.SerializeKey(OpDelete, int64(1))

	if !strings.HasPrefix(read, joinWithSeparator("students", "read", "x:")) {
		t.Errorf("unexpected compact key %q", read)
	}
	if read == del {
		t.Error("compact keys must keep the operation tag")
	}
	if read != serializer.SerializeKey(OpRead, int64(1)) {
		t.Error("compact keys must be stable")
	}
	if len(strings.TrimPrefix(read, joinWithSeparator("students", "read", "x:"))) != 16 {
		t.Errorf("expected 16 hex digits, got %q", read)
	}
}

func TestDefaultKeySerializer_Functions(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	testFunc := func() {}

	key1 := serializer.SerializeKey(OpRead, testFunc)
	key2 := serializer.SerializeKey(OpRead, testFunc)

	if key1 != key2 {
		t.Errorf("Function serialization should be stable: %v != %v", key1, key2)
	}

	if !strings.HasPrefix(key1, joinWithSeparator("read", "func:0x")) {
		t.Errorf("Function serialization should use func: prefix, got: %v", key1)
	}
}

func TestDefaultKeySerializer_Stability(t *testing.T) {
	serializer := NewDefaultKeySerializer()

	args := []any{1, "hello", []int{1, 2, 3}, map[string]int{"a": 1, "b": 2, "c": 3}}

	key1 := serializer.SerializeKey(OpCreate, args...)
	for i := 0; i < 20; i++ {
		if key := serializer.SerializeKey(OpCreate, args...); key != key1 {
			t.Fatalf("Key serialization should be stable across calls: %v != %v", key, key1)
		}
	}
}

func BenchmarkDefaultKeySerializer(b *testing.B) {
	serializer := NewDefaultKeySerializer(WithNamespace("students"))
	args := []any{1, "benchmark", []int{1, 2, 3}, map[string]int{"test": 1}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		serializer.SerializeKey(OpCreate, args...)
	}
}
