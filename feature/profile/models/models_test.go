package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	p, err := Decode(json.RawMessage(`{"$id":"a","name":"Ann","city":"Pune","age":31,"isPublic":true,"$collectionId":"profiles"}`))
	require.NoError(t, err)
	assert.Equal(t, "a", p.ID)
	assert.Equal(t, "Pune", p.City)
	require.NotNil(t, p.Age)
	assert.Equal(t, 31, *p.Age)
	assert.True(t, p.IsPublic)

	_, err = Decode(json.RawMessage(`{"name":"no id"}`))
	assert.Error(t, err)
	_, err = Decode(json.RawMessage(`not json`))
	assert.Error(t, err)
}

func TestForm_Age(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"string", `{"age":"42"}`, 42},
		{"number", `{"age":42}`, 42},
		{"padded", `{"age":" 7 "}`, 7},
		{"empty", `{"age":""}`, 0},
		{"missing", `{}`, 0},
		{"null", `{"age":null}`, 0},
		{"text", `{"age":"old"}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f Form
			require.NoError(t, json.Unmarshal([]byte(tt.body), &f))
			assert.Equal(t, tt.want, f.ParseAge())
		})
	}
}

func TestForm_Document(t *testing.T) {
	var f Form
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Ann","email":"ann@example.com","city":"Pune","age":"x","isPublic":false}`), &f))

	doc := f.Document()
	assert.Equal(t, "Ann", doc["name"])
	assert.Equal(t, "Pune", doc["city"])
	assert.Equal(t, 0, doc["age"])
	assert.Equal(t, false, doc["isPublic"])
	assert.Len(t, doc, 9)
}
