package composer

import (
	"strings"

	"github.com/tidwall/gjson"

	"github.com/DepSpiel/telegram-pidrgpt/internal/utils/text"
)

// minFoundRunes is the shortest free-standing string the recursive search
// will accept as digest text. Shorter strings are IDs, roles, and model
// names, not content.
const minFoundRunes = 50

// extractContent pulls digest text out of a chat completions response body.
// The standard choices[0].message.content path is preferred; when it is
// missing or blank, the body is searched in document order for the first
// plausible text node. Returns "" when nothing usable is found.
func extractContent(body []byte) string {
	root := gjson.ParseBytes(body)

	preferred := root.Get("choices.0.message.content")
	if preferred.Type == gjson.String {
		if trimmed := strings.TrimSpace(preferred.Str); trimmed != "" {
			return trimmed
		}
	}

	return strings.TrimSpace(findContent(root))
}

// findContent walks a JSON value in document order looking for digest text.
// An object with a string "content" key wins immediately, even when the
// value is empty; callers treat "" as no match and keep scanning siblings.
func findContent(value gjson.Result) string {
	switch {
	case value.Type == gjson.String:
		if text.CountRunes(value.Str) > minFoundRunes {
			return value.Str
		}

	case value.IsObject():
		content := value.Get("content")
		if content.Exists() && content.Type == gjson.String {
			return content.Str
		}

		var found string
		value.ForEach(func(_, child gjson.Result) bool {
			found = findContent(child)
			return found == ""
		})
		return found

	case value.IsArray():
		var found string
		value.ForEach(func(_, child gjson.Result) bool {
			found = findContent(child)
			return found == ""
		})
		return found
	}

	return ""
}
