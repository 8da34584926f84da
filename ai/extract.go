package ai

import "strings"

// ExtractJSONObject returns the first JSON-object-looking span of text: the
// substring from the leftmost '{' through the rightmost '}'. Models wrap
// their answers in prose and markdown fences; this peels all of it off in
// one cut. The span is not validated here, only located; decoding decides
// whether it actually parses. Returns false when text holds no such span.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	end := strings.LastIndexByte(text, '}')
	if end < start {
		return "", false
	}
	return text[start : end+1], true
}
