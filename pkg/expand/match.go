package expand

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Pair is a front file and its matched back (NoBack if none).
type Pair struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// MatchResult is the outcome of Match.
type MatchResult struct {
	Pairs    []Pair   `json:"pairs"`
	Warnings []string `json:"warnings,omitempty"`
}

// Match pairs front files with back files by name.
//
// Strict mode pairs files with identical stems (file name without
// extension); fronts without a match get NoBack. Fronts and backs left
// without a partner are reported as warnings.
//
// Lenient mode pairs by position when the counts are equal. Otherwise it
// compares normalized names (case-folded, accents and punctuation removed)
// and gives each unmatched front the first back in input order that no
// other front has claimed, or the first back when all are claimed.
func Match(fronts, backs []string, lenient bool) MatchResult {
	res := MatchResult{Pairs: make([]Pair, 0, len(fronts))}
	if lenient {
		matchLenient(fronts, backs, &res)
	} else {
		matchStrict(fronts, backs, &res)
	}
	return res
}

func matchStrict(fronts, backs []string, res *MatchResult) {
	byStem := make(map[string]string, len(backs))
	for _, b := range backs {
		if _, dup := byStem[stem(b)]; !dup {
			byStem[stem(b)] = b
		}
	}
	claimed := make(map[string]bool, len(backs))
	for _, f := range fronts {
		b, ok := byStem[stem(f)]
		if !ok {
			b = NoBack
			if len(backs) > 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("no back named %q for front %s", stem(f), filepath.Base(f)))
			}
		}
		claimed[b] = true
		res.Pairs = append(res.Pairs, Pair{Front: f, Back: b})
	}
	for _, b := range backs {
		if !claimed[b] {
			res.Warnings = append(res.Warnings, fmt.Sprintf("back %s has no front named %q", filepath.Base(b), stem(b)))
		}
	}
}

func matchLenient(fronts, backs []string, res *MatchResult) {
	switch {
	case len(backs) == 0:
		for _, f := range fronts {
			res.Pairs = append(res.Pairs, Pair{Front: f, Back: NoBack})
		}
		return
	case len(fronts) == len(backs):
		for i, f := range fronts {
			res.Pairs = append(res.Pairs, Pair{Front: f, Back: backs[i]})
		}
		return
	}

	byName := make(map[string]int, len(backs))
	for i, b := range backs {
		if _, dup := byName[NormalizeName(b)]; !dup {
			byName[NormalizeName(b)] = i
		}
	}

	used := make([]bool, len(backs))
	pending := make([]int, 0)
	res.Pairs = make([]Pair, len(fronts))
	for i, f := range fronts {
		res.Pairs[i].Front = f
		if j, ok := byName[NormalizeName(f)]; ok {
			res.Pairs[i].Back = backs[j]
			used[j] = true
			continue
		}
		pending = append(pending, i)
	}

	// Unmatched fronts take the first unclaimed back in input order.
	next := 0
	for _, i := range pending {
		for next < len(backs) && used[next] {
			next++
		}
		j := 0
		if next < len(backs) {
			j = next
			used[j] = true
		}
		res.Pairs[i].Back = backs[j]
		res.Warnings = append(res.Warnings, fmt.Sprintf("front %s has no back with a matching name, using %s",
			filepath.Base(fronts[i]), filepath.Base(backs[j])))
	}
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// NormalizeName reduces a file name to a comparison key: the stem is
// decomposed, stripped of combining marks, case-folded and stripped of
// everything but letters, digits and underscores.
func NormalizeName(path string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), cases.Fold(), norm.NFC)
	s, _, err := transform.String(t, stem(path))
	if err != nil {
		s = strings.ToLower(stem(path))
	}
	return nonWord.ReplaceAllString(s, "")
}
