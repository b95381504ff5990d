package main

import (
	"os"
	"path/filepath"
	"testing"
)

const vipRuleSetJSON = `{
	"config": {"name": "vip", "version": "1", "entryStepId": "check_vip"},
	"steps": {
		"check_vip": {
			"id": "check_vip", "type": "decision",
			"branches": [{"id": "is_vip", "condition": "$.user.vip == true", "nextStepId": "vip"}],
			"defaultNextStepId": "normal"
		},
		"vip": {"id": "vip", "type": "terminal", "code": "VIP",
			"output": [{"name": "discount", "expr": "0.2"}]},
		"normal": {"id": "normal", "type": "terminal", "code": "NORMAL",
			"output": [{"name": "discount", "expr": "0.05"}]}
	}
}`

func writeTempFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestValidateCommandSucceeds(t *testing.T) {
	path := writeTempFile(t, "rules.json", vipRuleSetJSON)
	rootCmd.SetArgs([]string{"validate", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestEvalCommandSucceeds(t *testing.T) {
	rulesPath := writeTempFile(t, "rules.json", vipRuleSetJSON)
	inputPath := writeTempFile(t, "input.json", `{"user": {"vip": true}}`)
	rootCmd.SetArgs([]string{"eval", rulesPath, "--input", inputPath})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("eval: %v", err)
	}
}

func TestFingerprintCommandSucceeds(t *testing.T) {
	path := writeTempFile(t, "rules.json", vipRuleSetJSON)
	rootCmd.SetArgs([]string{"fingerprint", path})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("fingerprint: %v", err)
	}
}

func TestAnalyzeCommandWithExpr(t *testing.T) {
	rootCmd.SetArgs([]string{"analyze", "--expr", "$.a + $.b > 10"})
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("analyze: %v", err)
	}
}
