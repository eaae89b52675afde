package cmd

import "fmt"

// ArgvSource selects how the raw process argv is sliced into interpreter,
// script, and user-supplied tokens.
type ArgvSource string

const (
	ArgvSourceNode     ArgvSource = "node"
	ArgvSourceUser     ArgvSource = "user"
	ArgvSourceElectron ArgvSource = "electron"
	ArgvSourceEval     ArgvSource = "eval"
)

// PreparedArgv is the result of argv preparation: the user-supplied tokens
// the token parser should run over, plus the script path recorded for help
// text (empty when not applicable to the chosen source).
type PreparedArgv struct {
	ScriptPath string
	UserArgs   []string
}

// PrepareArgv slices raw (the full process argv, interpreter first) into a
// PreparedArgv according to from. electronDefaultApp mirrors Electron's own
// opaque "defaultApp" signal and is only consulted when from is electron.
// An unrecognized source is an authoring error and panics.
func PrepareArgv(raw []string, from ArgvSource, electronDefaultApp bool) PreparedArgv {
	switch from {
	case ArgvSourceUser:
		return PreparedArgv{UserArgs: raw}
	case ArgvSourceEval:
		if len(raw) <= 1 {
			return PreparedArgv{}
		}
		return PreparedArgv{UserArgs: raw[1:]}
	case ArgvSourceElectron:
		start := 1
		if electronDefaultApp {
			start = 2
		}
		if start >= len(raw) {
			return PreparedArgv{}
		}
		return PreparedArgv{UserArgs: raw[start:]}
	case ArgvSourceNode:
		var script string
		if len(raw) > 1 {
			script = raw[1]
		}
		var user []string
		if len(raw) > 2 {
			user = raw[2:]
		}
		return PreparedArgv{ScriptPath: script, UserArgs: user}
	default:
		panic(fmt.Sprintf("unexpected argv source %q", from))
	}
}
