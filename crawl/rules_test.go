package crawl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPDF(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://docs.example.com/a.pdf", true},
		{"https://docs.example.com/A.PDF", true},
		{"https://docs.example.com/a.pdf?download=1", true},
		{"https://docs.example.com/a.pdf#page=2", true},
		{"https://docs.example.com/a.html?file=b.pdf", false},
		{"https://docs.example.com/pdf/", false},
		{"https://docs.example.com/a.html", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPDF(tt.url), tt.url)
	}
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "https://docs.example.com/erp", NormalizeURL("https://Docs.Example.com/erp/#top"))
	assert.Equal(t, "https://docs.example.com/", NormalizeURL("https://docs.example.com/"))
	assert.Equal(t, "https://docs.example.com/a?x=1", NormalizeURL("https://docs.example.com/a/?x=1"))
}

func TestVisited(t *testing.T) {
	v := NewVisited()
	assert.True(t, v.Add("https://docs.example.com/erp/"))
	assert.False(t, v.Add("https://docs.example.com/erp#intro"))
	assert.True(t, v.Has("https://docs.example.com/erp"))
	assert.False(t, v.Has("https://docs.example.com/hcm"))
	assert.Equal(t, 1, v.Len())
}
