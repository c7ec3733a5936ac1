// Package identifier canonicalizes recipient identifiers (phone numbers and
// email addresses) and expands canonical phone numbers into the legacy
// formats that older account rows may still be stored under.
package identifier

import (
	"fmt"
	"strings"

	"github.com/Khin-96/pochi-sub000/pkg/config"
)

type Kind string

const (
	KindPhone Kind = "phone"
	KindEmail Kind = "email"
)

// subscriberDigits is the length of a national number without trunk or
// country prefix.
const subscriberDigits = 9

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindPhone:
		return KindPhone, nil
	case KindEmail:
		return KindEmail, nil
	default:
		return "", fmt.Errorf("unknown identifier type %q", s)
	}
}

type Identifier struct {
	Kind Kind
	Raw  string
}

func Phone(raw string) Identifier { return Identifier{Kind: KindPhone, Raw: raw} }
func Email(raw string) Identifier { return Identifier{Kind: KindEmail, Raw: raw} }

type Normalizer struct {
	countryCode        string
	trunkPrefix        string
	subscriberPrefixes []string
}

func NewNormalizer(cfg config.IdentifierConfig) *Normalizer {
	return &Normalizer{
		countryCode:        cfg.CountryCode,
		trunkPrefix:        cfg.TrunkPrefix,
		subscriberPrefixes: cfg.SubscriberPrefixes,
	}
}

// Default returns the Kenyan numbering plan: +254, trunk 0, mobile
// subscribers starting with 7 or 1.
func Default() *Normalizer {
	return NewNormalizer(config.Default().Identifier)
}

func (n *Normalizer) Normalize(id Identifier) string {
	if id.Kind == KindEmail {
		return NormalizeEmail(id.Raw)
	}
	return n.NormalizePhone(id.Raw)
}

func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizePhone returns the +<cc>XXXXXXXXX form, or raw unchanged when the
// digits do not match any known layout.
func (n *Normalizer) NormalizePhone(raw string) string {
	digits := digitsOnly(raw)

	switch {
	case strings.HasPrefix(digits, n.countryCode) && len(digits) == len(n.countryCode)+subscriberDigits:
		return "+" + digits
	case strings.HasPrefix(digits, n.trunkPrefix) && len(digits) == len(n.trunkPrefix)+subscriberDigits:
		return "+" + n.countryCode + digits[len(n.trunkPrefix):]
	case len(digits) == subscriberDigits && n.isSubscriberPrefix(digits):
		return "+" + n.countryCode + digits
	default:
		return raw
	}
}

// Candidates returns the lookup keys to try, canonical form first.
func (n *Normalizer) Candidates(id Identifier) []string {
	canonical := n.Normalize(id)
	if id.Kind == KindEmail {
		return []string{canonical}
	}

	candidates := []string{canonical}
	if national, ok := n.nationalNumber(canonical); ok {
		candidates = append(candidates,
			n.countryCode+national,
			n.trunkPrefix+national,
		)
	}
	return dedupe(candidates)
}

func (n *Normalizer) nationalNumber(canonical string) (string, bool) {
	prefix := "+" + n.countryCode
	if !strings.HasPrefix(canonical, prefix) {
		return "", false
	}
	national := canonical[len(prefix):]
	if len(national) != subscriberDigits || digitsOnly(national) != national {
		return "", false
	}
	return national, true
}

func (n *Normalizer) isSubscriberPrefix(digits string) bool {
	for _, p := range n.subscriberPrefixes {
		if p != "" && strings.HasPrefix(digits, p) {
			return true
		}
	}
	return false
}

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
