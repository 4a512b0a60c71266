// Package regid generates human-readable registration identifiers of the
// form <prefix><YYYYMMDD><8 upper-case hex characters>.
package regid

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	dateLayout = "20060102"
	suffixLen  = 8
)

var suffixPattern = regexp.MustCompile(`^[0-9A-F]{8}$`)

// Generator builds registration identifiers. Uniqueness is not checked here;
// the store's unique constraint on the column is the only guard.
type Generator struct {
	Prefix string
	Now    func() time.Time
	Suffix func() string
}

// New returns a Generator for the given organisation prefix.
func New(prefix string) *Generator {
	return &Generator{Prefix: strings.ToUpper(prefix), Now: time.Now, Suffix: randomSuffix}
}

// Next produces a fresh identifier.
func (g *Generator) Next() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	suffix := randomSuffix
	if g.Suffix != nil {
		suffix = g.Suffix
	}
	return g.Prefix + now().Format(dateLayout) + suffix()
}

func randomSuffix() string {
	return strings.ToUpper(uuid.NewString()[:suffixLen])
}

// Valid reports whether id has the prefix, a calendar date and an 8
// character upper-case hex suffix.
func Valid(prefix, id string) bool {
	rest, ok := strings.CutPrefix(id, prefix)
	if !ok || len(rest) != len(dateLayout)+suffixLen {
		return false
	}
	if _, err := time.Parse(dateLayout, rest[:len(dateLayout)]); err != nil {
		return false
	}
	return suffixPattern.MatchString(rest[len(dateLayout):])
}
