package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestURIListValue(t *testing.T) {
	v, err := URIList{"http://a/1", "http://a/2"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "http://a/1;http://a/2", v)

	v, err = URIList{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)

	v, err = URIList(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestURIListValueRejectsRelative(t *testing.T) {
	_, err := URIList{"/images/a.png"}.Value()
	assert.Error(t, err)
}

func TestURIListScan(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
		want  URIList
	}{
		{name: "nil", input: nil, want: URIList{}},
		{name: "empty", input: "", want: URIList{}},
		{name: "single", input: "http://x/y.png", want: URIList{"http://x/y.png"}},
		{name: "bytes", input: []byte("http://a/1;http://a/2"), want: URIList{"http://a/1", "http://a/2"}},
		{name: "empty segments", input: ";http://a/1;;http://a/2;", want: URIList{"http://a/1", "http://a/2"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l URIList
			require.NoError(t, l.Scan(tt.input))
			assert.Equal(t, tt.want, l)
		})
	}
}

func TestURIListScanErrors(t *testing.T) {
	var l URIList
	assert.Error(t, l.Scan(42))
	assert.Error(t, l.Scan("http://a/1;not a uri"))
}

func TestURIListRoundTripKeepsOrder(t *testing.T) {
	original := URIList{"http://a/2", "http://a/1", "https://cdn.example.com/img?x=1"}

	v, err := original.Value()
	require.NoError(t, err)

	var restored URIList
	require.NoError(t, restored.Scan(v))
	assert.Equal(t, original, restored)
}

func TestURIListMarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		URIs URIList `json:"uris"`
	}{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"uris":[]}`, string(out))
}

func TestArticleViews(t *testing.T) {
	a := NewArticle(fixedTime)
	a.ID = 7
	a.Title = "Hello"
	a.ImageURIs = URIList{"http://a/1"}

	view := a.ToView()
	assert.Equal(t, int64(7), view.ID)
	assert.Equal(t, []string{"http://a/1"}, view.ImageURIs)
	assert.Equal(t, StatusVisible, view.Status)

	preview := a.ToPreview()
	assert.Equal(t, "Hello", preview.Title)
	assert.Equal(t, fixedTime, preview.CreateAt)

	assert.True(t, a.IsListed())
	a.Status = StatusHidden
	assert.False(t, a.IsListed())
}
