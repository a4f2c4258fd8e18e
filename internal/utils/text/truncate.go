package text

// Truncate clamps text to at most max runes, including the suffix.
// Text already within the limit is returned unchanged. Otherwise the text is
// cut so that the cut portion plus the suffix fits exactly within max runes.
//
// Examples:
//
//	Truncate("abcdef", 10, "…")  // returns "abcdef" (within limit)
//	Truncate("abcdef", 4, "…")   // returns "abc…"
//	Truncate("abcdef", 4, "...") // returns "a..."
func Truncate(text string, max int, suffix string) string {
	if max <= 0 {
		return ""
	}

	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	keep := max - CountRunes(suffix)
	if keep < 0 {
		keep = 0
	}

	return string(runes[:keep]) + suffix
}
