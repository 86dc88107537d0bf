package placeholder

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// RestoreStats counts how each placeholder was resolved. High tolerant or
// appended counts signal that the translation backend degraded placeholder
// fidelity.
type RestoreStats struct {
	TolerantMatches int `json:"tolerant_matches"`
	ExactMatches    int `json:"exact_matches"`
	Appended        int `json:"appended"`
	EmptyMarkup     int `json:"empty_markup"`
}

var ordinalPattern = regexp.MustCompile(`(\d+)`)

// Restore substitutes image markup for every placeholder in the translated
// text. Translation backends rewrite placeholders in predictable ways
// (bracket collapsing, separator changes, dropped leading zeros), so each
// ordinal is first matched with a tolerant pattern, then by exact token,
// and finally appended at the document end so no image is ever dropped.
func Restore(translated string, mapping Mapping, log *slog.Logger) (string, RestoreStats) {
	if log == nil {
		log = slog.Default()
	}
	var stats RestoreStats

	// Deterministic ordinal order.
	tokens := make([]string, 0, len(mapping))
	for token := range mapping {
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		return tokenOrdinal(tokens[i]) < tokenOrdinal(tokens[j])
	})

	var appended []string
	for _, token := range tokens {
		markup := mapping[token]
		ordinal := tokenOrdinal(token)

		// A placeholder that resolved to no image is still removed from
		// the text: raw tokens must never reach the caller.
		if markup == "" {
			stats.EmptyMarkup++
		}

		re := tolerantPattern(ordinal)
		if re.MatchString(translated) {
			// Literal replacement: signed image URLs can contain $.
			translated = re.ReplaceAllLiteralString(translated, markup)
			if markup != "" {
				stats.TolerantMatches++
			}
			continue
		}
		if strings.Contains(translated, token) {
			translated = strings.ReplaceAll(translated, token, markup)
			if markup != "" {
				stats.ExactMatches++
			}
			continue
		}
		if markup != "" {
			appended = append(appended, markup)
			stats.Appended++
			log.Warn("placeholder missing from translated text, appending image", "ordinal", ordinal)
		}
	}

	if len(appended) > 0 {
		translated = strings.TrimRight(translated, "\n") + "\n\n" + strings.Join(appended, "\n\n") + "\n"
	}
	return translated, stats
}

// tolerantPattern matches a reformatted placeholder for one ordinal: one or
// more opening brackets, the token family, an optional separator, the
// ordinal with optional leading zeros, one or more closing brackets.
func tolerantPattern(ordinal int) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(
		`(?i)\[+\s*(?:(?:IMG|IMAGE)[_\s-]*PLACEHOLDER|IMG|IMAGE|PLACEHOLDER)[_\s-]*0*%d\b\s*\]+`,
		ordinal,
	))
}

func tokenOrdinal(token string) int {
	m := ordinalPattern.FindString(token)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}
