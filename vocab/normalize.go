package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// normalizeRune folds full-width forms to their half-width counterparts, then
// applies any explicit q2b override.
func normalizeRune(r rune, q2b map[rune]rune) rune {
	if n := width.LookupRune(r).Narrow(); n != 0 {
		r = n
	}
	if to, ok := q2b[r]; ok {
		return to
	}
	return r
}

// LoadQ2B reads a character mapping file with one "from<TAB>to" pair per line.
// Pairs where either side is not a single rune are skipped.
func LoadQ2B(path string) (map[rune]rune, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening q2b dict: %w", err)
	}
	defer func() { _ = f.Close() }()

	m := make(map[rune]rune)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 2 {
			continue
		}
		from, to := fields[0], fields[1]
		if utf8.RuneCountInString(from) != 1 || utf8.RuneCountInString(to) != 1 {
			continue
		}
		fr, _ := utf8.DecodeRuneInString(from)
		tr, _ := utf8.DecodeRuneInString(to)
		m[fr] = tr
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan q2b dict: %w", err)
	}

	return m, nil
}
