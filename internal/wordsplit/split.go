// Package wordsplit implements the overlap-aware multi-character string
// splitter used to tokenize command datagrams, grounded on the reference
// system's string_split (original_source/src/server.c): unlike a
// per-character tokenizer, a partial match against sep that breaks is
// rewound so the separator's first character is re-examined as the start of
// the next candidate match, and end-of-string acts as a virtual terminal
// match so the trailing fragment is always emitted. Empty fragments are
// dropped.
package wordsplit

// Split divides s on every non-overlapping, leftmost occurrence of sep and
// drops empty fragments.
//
//	Split("A  | | B | C |", " | ") -> ["A ", "| B", "C |"]
//	Split("A, B, C", ", ")         -> ["A", "B", "C"]
//
// Callers that pass a single-character separator (as the command
// dispatcher does) may still observe a run of identical separator bytes
// collapse to nothing between two tokens rather than an empty argument;
// the dispatcher treats a short argument list as tolerantly as an empty
// one, so this is not load-bearing for command parsing.
func Split(s, sep string) []string {
	if sep == "" {
		return []string{s}
	}

	var words []string
	start := 0
	i := 0
	for i+len(sep) <= len(s) {
		if s[i:i+len(sep)] == sep {
			if i > start {
				words = append(words, s[start:i])
			}
			i += len(sep)
			start = i
			continue
		}
		i++
	}
	if start < len(s) {
		words = append(words, s[start:])
	}
	return words
}
