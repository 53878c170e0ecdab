package utils

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var hashtagRegex = regexp.MustCompile(`#\w+`)

// HashtagCount is one trending entry. Posts is the display form of Count
// ("1.2k" above a thousand), Tag the display form of the hashtag.
type HashtagCount struct {
	Tag   string `json:"tag"`
	Posts string `json:"posts"`
	Count int    `json:"count"`
}

// TrendingHashtags scans captions for #word tokens and returns the top
// occurrences, most frequent first. Counting is case-folded and per occurrence:
// "#World" and "#world" in one caption count as 2 under the key "#world".
func TrendingHashtags(captions []string, top int) []HashtagCount {
	counts := make(map[string]int)
	for _, caption := range captions {
		for _, tag := range hashtagRegex.FindAllString(caption, -1) {
			counts[strings.ToLower(tag)]++
		}
	}

	trending := make([]HashtagCount, 0, len(counts))
	for tag, count := range counts {
		trending = append(trending, HashtagCount{
			Tag:   capitalizeTag(tag),
			Posts: FormatPostCount(count),
			Count: count,
		})
	}

	sort.SliceStable(trending, func(i, j int) bool {
		if trending[i].Count != trending[j].Count {
			return trending[i].Count > trending[j].Count
		}
		return trending[i].Tag < trending[j].Tag
	})

	if len(trending) > top {
		trending = trending[:top]
	}
	return trending
}

// capitalizeTag upper-cases the first character of the tag. Tags start with
// '#', so for hashtags this is an identity transform; kept for parity with the
// observed display behavior.
func capitalizeTag(tag string) string {
	if tag == "" {
		return tag
	}
	return strings.ToUpper(tag[:1]) + tag[1:]
}

// FormatPostCount renders counts of a thousand and above as "N.Nk".
func FormatPostCount(count int) string {
	if count >= 1000 {
		return strconv.FormatFloat(float64(count)/1000, 'f', 1, 64) + "k"
	}
	return strconv.Itoa(count)
}
