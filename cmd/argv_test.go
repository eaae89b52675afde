package cmd

import (
	"reflect"
	"testing"
)

func TestPrepareArgv(t *testing.T) {
	raw := []string{"/usr/bin/node", "script.js", "--flag", "value"}

	tests := []struct {
		name       string
		from       ArgvSource
		defaultApp bool
		script     string
		userArgs   []string
	}{
		{
			name:     "node skips interpreter and records script",
			from:     ArgvSourceNode,
			script:   "script.js",
			userArgs: []string{"--flag", "value"},
		},
		{
			name:     "user takes everything",
			from:     ArgvSourceUser,
			userArgs: []string{"/usr/bin/node", "script.js", "--flag", "value"},
		},
		{
			name:     "eval skips only the interpreter",
			from:     ArgvSourceEval,
			userArgs: []string{"script.js", "--flag", "value"},
		},
		{
			name:     "electron without default app",
			from:     ArgvSourceElectron,
			userArgs: []string{"script.js", "--flag", "value"},
		},
		{
			name:       "electron with default app",
			from:       ArgvSourceElectron,
			defaultApp: true,
			userArgs:   []string{"--flag", "value"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PrepareArgv(raw, tt.from, tt.defaultApp)
			if got.ScriptPath != tt.script {
				t.Errorf("Expected script path %q, got %q", tt.script, got.ScriptPath)
			}
			if !reflect.DeepEqual(got.UserArgs, tt.userArgs) {
				t.Errorf("Expected user args %v, got %v", tt.userArgs, got.UserArgs)
			}
		})
	}
}

func TestPrepareArgvShortSlices(t *testing.T) {
	got := PrepareArgv([]string{"node"}, ArgvSourceNode, false)
	if got.ScriptPath != "" || len(got.UserArgs) != 0 {
		t.Errorf("Expected empty preparation for bare interpreter argv, got %+v", got)
	}

	got = PrepareArgv([]string{"electron"}, ArgvSourceElectron, true)
	if len(got.UserArgs) != 0 {
		t.Errorf("Expected no user args, got %v", got.UserArgs)
	}
}

func TestPrepareArgvInvalidSourcePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an unrecognized argv source")
		}
	}()
	PrepareArgv([]string{"x"}, ArgvSource("banana"), false)
}
