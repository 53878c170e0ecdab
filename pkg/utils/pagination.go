package utils

import (
	"net/url"
	"strconv"
)

// ParsePagination reads page and limit query parameters. Absent or non-numeric
// values fall back to page 1 and defaultLimit rather than failing; skip is
// derived as (page-1)*limit.
func ParsePagination(query url.Values, defaultLimit int) (page, limit, skip int) {
	page = 1
	if parsed, err := strconv.Atoi(query.Get("page")); err == nil && parsed > 0 {
		page = parsed
	}

	limit = defaultLimit
	if parsed, err := strconv.Atoi(query.Get("limit")); err == nil && parsed > 0 {
		limit = parsed
	}

	skip = (page - 1) * limit
	return page, limit, skip
}

// HasMore reports whether another page exists after the one just returned.
func HasMore(skip, returned int, total int64) bool {
	return int64(skip+returned) < total
}
