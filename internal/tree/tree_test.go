package tree

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_SetPreservesInsertionOrder(t *testing.T) {
	m := NewMapping().
		Set("zebra", Number(1)).
		Set("alpha", Number(2)).
		Set("mango", Number(3))

	assert.Equal(t, []string{"zebra", "alpha", "mango"}, m.Keys())

	// Replacing a key keeps its original position.
	m.Set("alpha", Number(99))
	assert.Equal(t, []string{"zebra", "alpha", "mango"}, m.Keys())

	v, ok := m.Get("alpha")
	require.True(t, ok)
	f, ok := v.NumberValue()
	require.True(t, ok)
	assert.Equal(t, 99.0, f)
}

func TestMapping_GetMissingKey(t *testing.T) {
	m := NewMapping().Set("present", String("yes"))

	_, ok := m.Get("absent")
	assert.False(t, ok)
	assert.False(t, m.Has("absent"))
	assert.True(t, m.Has("present"))
}

func TestScalarAccessors(t *testing.T) {
	tests := []struct {
		name     string
		value    *Value
		typeName string
		isNull   bool
	}{
		{"string", String("hello"), "string", false},
		{"number", Number(4.5), "number", false},
		{"boolean", Bool(true), "boolean", false},
		{"null", Null(), "null", true},
		{"sequence", Seq(Number(1)), "sequence", false},
		{"mapping", NewMapping(), "mapping", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typeName, tt.value.TypeName())
			assert.Equal(t, tt.isNull, tt.value.IsNull())
		})
	}
}

func TestHead(t *testing.T) {
	seq := Seq(Number(1), Number(2), Number(3), Number(4), Number(5))

	assert.Equal(t, 3, seq.Head(3).Len())
	assert.Equal(t, 5, seq.Head(10).Len())

	// Non-sequences pass through untouched.
	m := NewMapping().Set("a", Number(1))
	assert.Same(t, m, m.Head(3))
}

func TestTableShaped(t *testing.T) {
	rows := Seq(
		NewMapping().Set("id", Number(1)).Set("name", String("alice")),
		NewMapping().Set("id", Number(2)).Set("name", String("bob")),
	)
	assert.True(t, TableShaped(rows))

	assert.False(t, TableShaped(nil))
	assert.False(t, TableShaped(Seq()))
	assert.False(t, TableShaped(Seq(Number(1))))
	assert.False(t, TableShaped(NewMapping()))
	assert.False(t, TableShaped(String("rows")))
}

func TestFromAny(t *testing.T) {
	v, err := FromAny(map[string]interface{}{
		"name":   "server-1",
		"cpu":    42.5,
		"online": true,
		"tags":   []interface{}{"prod", "eu"},
		"extra":  nil,
		"count":  7,
	})
	require.NoError(t, err)

	// Go map keys arrive sorted for determinism.
	assert.Equal(t, []string{"count", "cpu", "extra", "name", "online", "tags"}, v.Keys())

	count, _ := v.Get("count")
	f, ok := count.NumberValue()
	require.True(t, ok)
	assert.Equal(t, 7.0, f)

	extra, _ := v.Get("extra")
	assert.True(t, extra.IsNull())
}

func TestFromAny_UnsupportedType(t *testing.T) {
	_, err := FromAny(struct{ X int }{1})
	assert.Error(t, err)

	assert.Panics(t, func() {
		MustFromAny(make(chan int))
	})
}

func TestToAny_RoundTrip(t *testing.T) {
	original := map[string]interface{}{
		"metrics": map[string]interface{}{
			"cpu":    55.0,
			"memory": 80.0,
		},
		"alerts": []interface{}{"disk space low"},
	}

	v := MustFromAny(original)
	assert.Equal(t, original, v.ToAny())
}

func TestJSON_PreservesObjectOrder(t *testing.T) {
	doc := []byte(`{"zulu":1,"alpha":{"inner_z":true,"inner_a":false},"items":[1,"two",null]}`)

	v, err := Parse(doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"zulu", "alpha", "items"}, v.Keys())

	inner, ok := v.Get("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"inner_z", "inner_a"}, inner.Keys())

	out, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, string(doc), string(out))
}

func TestJSON_Scalars(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"string", `"hello"`},
		{"number", `12.25`},
		{"bool", `true`},
		{"null", `null`},
		{"empty object", `{}`},
		{"empty array", `[]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Parse([]byte(tt.doc))
			require.NoError(t, err)

			out, err := json.Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, tt.doc, string(out))
		})
	}
}

func TestJSON_InvalidDocument(t *testing.T) {
	_, err := Parse([]byte(`{"unterminated":`))
	assert.Error(t, err)
}

func TestUnmarshalIntoStructField(t *testing.T) {
	type payload struct {
		Context *Value `json:"context"`
	}

	var p payload
	err := json.Unmarshal([]byte(`{"context":{"b":1,"a":2}}`), &p)
	require.NoError(t, err)
	require.NotNil(t, p.Context)
	assert.Equal(t, []string{"b", "a"}, p.Context.Keys())
}
