package expand

import (
	"errors"
	"fmt"
	"strings"

	errs "github.com/matzehuels/cardimposer/pkg/errors"
	"github.com/matzehuels/cardimposer/pkg/settings"
)

// NoBack marks a front that has no back image.
const NoBack = ""

var (
	// ErrEmptyBatch is wrapped when there is nothing to print.
	ErrEmptyBatch = errors.New("empty batch")
	// ErrSchemeMismatch is wrapped when counts violate the matching scheme.
	ErrSchemeMismatch = errors.New("scheme mismatch")
)

// Party is one design set of a batch.
type Party struct {
	Name     string   `json:"name,omitempty" toml:"name"`
	Fronts   []string `json:"fronts" toml:"fronts"`
	Backs    []string `json:"backs,omitempty" toml:"backs"`
	Quantity int      `json:"quantity" toml:"quantity"`
}

// Label returns the party name or its 1-based position.
func (p Party) Label(index int) string {
	if p.Name != "" {
		return fmt.Sprintf("%q (#%d)", p.Name, index+1)
	}
	return fmt.Sprintf("#%d", index+1)
}

// Mismatch describes a party whose back count violates the scheme.
type Mismatch struct {
	Index  int             `json:"index"`
	Name   string          `json:"name,omitempty"`
	Scheme settings.Scheme `json:"scheme"`
	Fronts int             `json:"fronts"`
	Backs  int             `json:"backs"`
}

func (m Mismatch) String() string {
	p := Party{Name: m.Name}
	switch m.Scheme {
	case settings.OneToMany:
		return fmt.Sprintf("party %s: scheme %s expects 1 back, got %d", p.Label(m.Index), m.Scheme, m.Backs)
	default:
		return fmt.Sprintf("party %s: scheme %s expects %d backs, got %d", p.Label(m.Index), m.Scheme, m.Fronts, m.Backs)
	}
}

// Sequence is the expanded print order. Fronts[i] pairs with Backs[i];
// both slices always have the same length.
type Sequence struct {
	Fronts []string `json:"fronts"`
	Backs  []string `json:"backs"`

	// Mismatches lists the parties paired best-effort in lenient mode.
	Mismatches []Mismatch `json:"mismatches,omitempty"`
}

// Len returns the number of cards.
func (s Sequence) Len() int { return len(s.Fronts) }

// HasBacks reports whether any card has a back image.
func (s Sequence) HasBacks() bool {
	for _, b := range s.Backs {
		if b != NoBack {
			return true
		}
	}
	return false
}

// SingleBack returns the back image when every card shares one back.
func (s Sequence) SingleBack() (string, bool) {
	if len(s.Backs) == 0 || s.Backs[0] == NoBack {
		return "", false
	}
	for _, b := range s.Backs[1:] {
		if b != s.Backs[0] {
			return "", false
		}
	}
	return s.Backs[0], true
}

// Option configures Expand.
type Option func(*options)

type options struct {
	lenient bool
}

// WithLenient records scheme mismatches instead of failing.
func WithLenient(lenient bool) Option {
	return func(o *options) { o.lenient = lenient }
}

// Expand flattens parties into a Sequence. Parties are processed in order;
// within a party, fronts keep their input order on every repetition.
func Expand(parties []Party, scheme settings.Scheme, opts ...Option) (Sequence, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateParties(parties); err != nil {
		return Sequence{}, err
	}

	seq := Sequence{Fronts: []string{}, Backs: []string{}}
	var mismatches []Mismatch
	for i, p := range parties {
		fronts, backs, mm := expandParty(p, scheme)
		if mm != nil {
			mm.Index = i
			mm.Name = p.Name
			mismatches = append(mismatches, *mm)
		}
		seq.Fronts = append(seq.Fronts, fronts...)
		seq.Backs = append(seq.Backs, backs...)
	}

	if len(mismatches) > 0 && !o.lenient {
		msgs := make([]string, len(mismatches))
		for i, m := range mismatches {
			msgs[i] = m.String()
		}
		return Sequence{}, errs.Wrap(errs.ErrCodeSchemeMismatch, ErrSchemeMismatch, "%s", strings.Join(msgs, "; "))
	}
	seq.Mismatches = mismatches
	return seq, nil
}

func validateParties(parties []Party) error {
	total := 0
	for i, p := range parties {
		if p.Quantity < 1 {
			return errs.New(errs.ErrCodeInvalidInput, "party %s: quantity must be at least 1, got %d", p.Label(i), p.Quantity)
		}
		if err := errs.ValidatePartyName(p.Name); err != nil {
			return err
		}
		for _, ref := range append(append([]string{}, p.Fronts...), p.Backs...) {
			if err := errs.ValidateImageRef(ref); err != nil {
				return errs.Wrap(errs.ErrCodeInvalidPath, err, "party %s", p.Label(i))
			}
		}
		total += len(p.Fronts)
	}
	if total == 0 {
		return errs.Wrap(errs.ErrCodeEmptyBatch, ErrEmptyBatch, "no front images in %d parties", len(parties))
	}
	return nil
}

// expandParty returns the party's contribution and a mismatch when its
// back count violates scheme. Mismatched parties are paired best-effort.
func expandParty(p Party, scheme settings.Scheme) (fronts, backs []string, mm *Mismatch) {
	f, b := len(p.Fronts), len(p.Backs)
	partyFronts := p.Fronts

	var cycle []string
	switch {
	case b == 0:
		cycle = nil
	case scheme == settings.OneToMany:
		if b != 1 {
			mm = &Mismatch{Scheme: scheme, Fronts: f, Backs: b}
		}
		cycle = p.Backs[:1]
	case scheme == settings.ManyToMany:
		cycle = p.Backs
	default:
		if b != f {
			mm = &Mismatch{Scheme: settings.OneToOne, Fronts: f, Backs: b}
			n := min(f, b)
			partyFronts = p.Fronts[:n]
			cycle = p.Backs[:n]
		} else {
			cycle = p.Backs
		}
	}

	n := len(partyFronts) * p.Quantity
	fronts = make([]string, 0, n)
	backs = make([]string, 0, n)
	for q := 0; q < p.Quantity; q++ {
		fronts = append(fronts, partyFronts...)
	}
	for i := 0; i < n; i++ {
		if len(cycle) == 0 {
			backs = append(backs, NoBack)
			continue
		}
		backs = append(backs, cycle[i%len(cycle)])
	}
	return fronts, backs, mm
}
