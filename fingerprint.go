package ordo

import "github.com/ordo-run/ordo/internal/ruleset"

// Fingerprint computes the canonical-form digest of a rule-set JSON
// document, exposed directly so callers can build their own
// cache keys without going through Load.
func Fingerprint(source []byte) (string, error) {
	rs, err := ruleset.Parse(source)
	if err != nil {
		return "", err
	}
	return ruleset.Fingerprint(rs)
}
