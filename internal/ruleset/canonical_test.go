package ruleset

import "testing"

func TestFingerprintStableAcrossKeyOrder(t *testing.T) {
	a := `{"config":{"name":"x","version":"1","entryStepId":"s"},"steps":{"s":{"id":"s","type":"terminal","code":"OK"}}}`
	b := `{"steps":{"s":{"type":"terminal","id":"s","code":"OK"}},"config":{"version":"1","name":"x","entryStepId":"s"}}`

	rsA, err := Parse([]byte(a))
	if err != nil {
		t.Fatalf("parse a: %v", err)
	}
	rsB, err := Parse([]byte(b))
	if err != nil {
		t.Fatalf("parse b: %v", err)
	}

	fpA, err := Fingerprint(rsA)
	if err != nil {
		t.Fatalf("fingerprint a: %v", err)
	}
	fpB, err := Fingerprint(rsB)
	if err != nil {
		t.Fatalf("fingerprint b: %v", err)
	}
	if fpA != fpB {
		t.Errorf("fingerprints differ across key order: %s != %s", fpA, fpB)
	}
}

func TestFingerprintExcludesGroups(t *testing.T) {
	rs := vipRuleSet()
	fp1, _ := Fingerprint(rs)
	rs.Groups = []StepGroup{{ID: "g1", Label: "layout only"}}
	fp2, _ := Fingerprint(rs)
	if fp1 != fp2 {
		t.Error("presentational groups should not affect the fingerprint")
	}
}
