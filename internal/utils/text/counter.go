// Package text provides utilities for text processing and analysis.
// This package includes reusable functions for character counting and
// length-bounded truncation used by the digest formatting pipeline.
package text

// CountRunes counts the number of Unicode characters (runes) in the given text.
// This function correctly handles multi-byte characters including emoji,
// Cyrillic, and other Unicode characters by counting runes instead of bytes.
//
// Caption length limits are expressed in characters, not bytes, so every
// length check in the formatting pipeline goes through this function.
//
// Examples:
//
//	CountRunes("hello")          // returns 5 (ASCII text)
//	CountRunes("биткоин")        // returns 7 (Cyrillic text)
//	CountRunes("📈 update")       // returns 8 (text with emoji)
//	CountRunes("")               // returns 0 (empty string)
func CountRunes(text string) int {
	return len([]rune(text))
}
