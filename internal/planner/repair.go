package planner

import "regexp"

var (
	trailingCommaObject = regexp.MustCompile(`,\s*}`)
	trailingCommaArray  = regexp.MustCompile(`,\s*]`)
)

// RemoveTrailingCommas drops commas that directly precede a closing brace or
// bracket, a frequent model quirk. The transform is purely textual and
// idempotent. Known gap: it is not string-aware, so a literal ",}" inside a
// string value would also be rewritten; that matches the long-standing
// behavior of this pipeline and is kept as-is.
func RemoveTrailingCommas(s string) string {
	s = trailingCommaObject.ReplaceAllString(s, "}")
	s = trailingCommaArray.ReplaceAllString(s, "]")
	return s
}
