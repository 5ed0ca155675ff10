package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	cases := []struct {
		name     string
		page     string
		size     string
		wantPage int
		wantSize int
	}{
		{"defaults", "", "", 1, 10},
		{"explicit", "3", "25", 3, 25},
		{"zero page falls back", "0", "25", 1, 25},
		{"negative page falls back", "-2", "25", 1, 25},
		{"oversize capped to default", "1", "101", 1, 10},
		{"max size allowed", "1", "100", 1, 100},
		{"garbage ignored", "abc", "xyz", 1, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			page, size := parsePagination(tc.page, tc.size)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantSize, size)
		})
	}
}

func TestPaginationMeta(t *testing.T) {
	meta := paginationMeta(2, 10, 35)
	assert.Equal(t, 2, meta["page"])
	assert.Equal(t, 10, meta["page_size"])
	assert.Equal(t, int64(35), meta["total"])
	assert.Equal(t, 4, meta["total_pages"])

	empty := paginationMeta(1, 10, 0)
	assert.Equal(t, 0, empty["total_pages"])
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)

	_, err = parseID("not-a-number")
	assert.Error(t, err)

	_, err = parseID("-1")
	assert.Error(t, err)
}
