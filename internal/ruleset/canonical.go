package ruleset

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// canonical is the fingerprinted subset of a RuleSet: every semantic field,
// with Groups (purely presentational) dropped so that
// layout-only edits never change the fingerprint. encoding/json already
// sorts map keys when marshaling a Go map, which gives us the "mapping
// keys sorted lexicographically" rule for free; omitempty tags on Config,
// Step, and Branch give us "omit absent optional fields". Config.InputSchema
// is copied as its raw JSON with whitespace removed: its key order and
// number spelling are not normalized.
type canonical struct {
	Config Config          `json:"config"`
	Steps  map[string]Step `json:"steps"`
}

// canonicalJSON re-marshals rs into its canonical byte form: a stable
// content string that gets hashed into the fingerprint.
func canonicalJSON(rs *RuleSet) ([]byte, error) {
	c := canonical{Config: rs.Config, Steps: rs.Steps}
	return json.Marshal(c)
}

// Fingerprint computes the cache key / on-the-wire equality digest for a
// RuleSet: sha256 over its canonical JSON form.
func Fingerprint(rs *RuleSet) (string, error) {
	b, err := canonicalJSON(rs)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
