package pipeline

import (
	"github.com/matzehuels/cardimposer/pkg/expand"
)

// Expand turns the parties of opts into a card sequence. In lenient mode
// scheme mismatches are returned as warnings; in strict mode they fail
// with SCHEME_MISMATCH.
func Expand(opts Options) (expand.Sequence, []string, error) {
	seq, err := expand.Expand(opts.Parties, opts.Settings.Scheme, expand.WithLenient(opts.Settings.Lenient))
	if err != nil {
		return expand.Sequence{}, nil, err
	}
	var warnings []string
	for _, m := range seq.Mismatches {
		warnings = append(warnings, m.String())
	}
	return seq, warnings, nil
}
