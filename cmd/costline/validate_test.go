package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func writeTestConfig(t *testing.T, dir string) string {
	t.Helper()

	rulesPath := filepath.Join(dir, "pricing.yaml")
	rules := `rules:
  - category: Window
    unit: EA
    rate: "200.00"
  - category: Wall
    unit: SQ.M
    rate: "50.00"
`
	if err := os.WriteFile(rulesPath, []byte(rules), 0o644); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf(`takeoff:
  base_url: http://localhost:8000
pricing:
  rules_path: %s
`, rulesPath)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return cfgPath
}

func TestValidateConfig(t *testing.T) {
	orig := cfgFile
	defer func() { cfgFile = orig }()

	cfgFile = writeTestConfig(t, t.TempDir())
	if err := validateConfig(validateCmd, nil); err != nil {
		t.Errorf("validateConfig() error = %v, want nil", err)
	}
}

func TestValidateConfig_MissingFile(t *testing.T) {
	orig := cfgFile
	defer func() { cfgFile = orig }()

	cfgFile = filepath.Join(t.TempDir(), "does-not-exist.yaml")
	if err := validateConfig(validateCmd, nil); err == nil {
		t.Error("validateConfig() error = nil, want error for missing config")
	}
}

func TestValidateConfig_BadRules(t *testing.T) {
	orig := cfgFile
	defer func() { cfgFile = orig }()

	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "pricing.yaml")
	if err := os.WriteFile(rulesPath, []byte("rules: []\n"), 0o644); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := fmt.Sprintf("takeoff:\n  base_url: http://localhost:8000\npricing:\n  rules_path: %s\n", rulesPath)
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	cfgFile = cfgPath
	if err := validateConfig(validateCmd, nil); err == nil {
		t.Error("validateConfig() error = nil, want error for empty rule set")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"run": false, "validate": false, "version": false}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
