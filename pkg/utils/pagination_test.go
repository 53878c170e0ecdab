package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePagination_Defaults(t *testing.T) {
	t.Parallel()

	page, limit, skip := ParsePagination(url.Values{}, 10)
	assert.Equal(t, 1, page)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 0, skip)
}

func TestParsePagination_Explicit(t *testing.T) {
	t.Parallel()

	q := url.Values{"page": {"3"}, "limit": {"20"}}
	page, limit, skip := ParsePagination(q, 10)
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 40, skip)
}

func TestParsePagination_InvalidFallsBack(t *testing.T) {
	t.Parallel()

	for _, values := range []url.Values{
		{"page": {"abc"}, "limit": {"xyz"}},
		{"page": {"-1"}, "limit": {"0"}},
		{"page": {"1.5"}, "limit": {""}},
	} {
		page, limit, skip := ParsePagination(values, 10)
		assert.Equal(t, 1, page, "values %v", values)
		assert.Equal(t, 10, limit, "values %v", values)
		assert.Equal(t, 0, skip, "values %v", values)
	}
}

func TestHasMore(t *testing.T) {
	t.Parallel()

	// 25 items, page size 10: pages 1 and 2 have more, page 3 does not.
	assert.True(t, HasMore(0, 10, 25))
	assert.True(t, HasMore(10, 10, 25))
	assert.False(t, HasMore(20, 5, 25))

	// Short page before the end still reports more.
	assert.True(t, HasMore(0, 5, 25))

	assert.False(t, HasMore(0, 0, 0))
}
