package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthor_MarshalsUnresolvedAsString(t *testing.T) {
	raw, err := json.Marshal(UnresolvedAuthor("u-1"))

	require.NoError(t, err)
	assert.JSONEq(t, `"u-1"`, string(raw))
}

func TestAuthor_MarshalsResolvedAsObject(t *testing.T) {
	img := "https://cdn.example.com/a.png"
	a := Author{Resolved: true, Id: "u-1", Username: "mira", DisplayName: "Mira", Image: &img}

	raw, err := json.Marshal(a)

	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"u-1","username":"mira","displayName":"Mira","image":"https://cdn.example.com/a.png"}`, string(raw))
}

func TestAuthor_UnmarshalsBothShapes(t *testing.T) {
	var item struct {
		Author Author `json:"author"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"author":"u-2"}`), &item))
	assert.Equal(t, Author{Id: "u-2"}, item.Author)

	require.NoError(t, json.Unmarshal([]byte(`{"author":{"id":"u-3","username":"kai","displayName":"Kai","image":null}}`), &item))
	assert.True(t, item.Author.Resolved)
	assert.Equal(t, "u-3", item.Author.Id)
	assert.Equal(t, "Kai", item.Author.DisplayName)
	assert.Nil(t, item.Author.Image)
}

func TestAuthor_RejectsGarbage(t *testing.T) {
	var a Author
	assert.Error(t, json.Unmarshal([]byte(`42`), &a))
}
