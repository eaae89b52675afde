package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	inspectBareRe     = regexp.MustCompile(`^(--inspect(?:-brk)?)$`)
	inspectSingleRe   = regexp.MustCompile(`^(--inspect(?:-brk|-port)?)=([^:]+)$`)
	inspectHostPortRe = regexp.MustCompile(`^(--inspect(?:-brk|-port)?)=([^:]+):(\d+)$`)
	allDigitsRe       = regexp.MustCompile(`^\d+$`)
)

// RewriteDebuggerPort increments the port of any --inspect/--inspect-brk/
// --inspect-port token in args by one so a spawned executable subcommand
// doesn't collide with the parent's debugger port. A bare --inspect (or
// --inspect-brk) means the default 127.0.0.1:9229 and is rewritten too;
// a literal port 0 is left untouched.
func RewriteDebuggerPort(args []string) []string {
	out := make([]string, len(args))
	for i, tok := range args {
		out[i] = rewriteInspectToken(tok)
	}
	return out
}

func rewriteInspectToken(tok string) string {
	if !strings.HasPrefix(tok, "--inspect") {
		return tok
	}
	var flag string
	host := "127.0.0.1"
	port := "9229"
	if m := inspectBareRe.FindStringSubmatch(tok); m != nil {
		flag = m[1]
	} else if m := inspectSingleRe.FindStringSubmatch(tok); m != nil {
		flag = m[1]
		if allDigitsRe.MatchString(m[2]) {
			port = m[2]
		} else {
			host = m[2]
		}
	} else if m := inspectHostPortRe.FindStringSubmatch(tok); m != nil {
		flag, host, port = m[1], m[2], m[3]
	}
	if flag == "" || port == "0" {
		return tok
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return tok
	}
	return flag + "=" + host + ":" + strconv.Itoa(n+1)
}

// runExecutableSubcommand spawns c as an external executable (named
// ExecutableFile, or "<program>-<name>" by default, searched in
// ExecutableDir if set) passing it args, with the debugger-port rewrite
// applied. The child's stdio is connected to the parent's.
func (c *Command) runExecutableSubcommand(args []string) Completion {
	file := c.ExecutableFile
	if file == "" {
		file = c.Root().Name + "-" + c.Name
	}
	dir := c.ExecutableDir
	if dir == "" {
		dir, _ = os.Getwd()
	}

	path := file
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, file)
	}

	cmd := exec.Command(path, RewriteDebuggerPort(args)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	done := make(chan error, 1)
	go func() {
		err := cmd.Run()
		if err == nil {
			done <- nil
			return
		}
		// Tagged executeSubCommandAsync: fail() prints no message for this
		// code, and swallows it entirely when an exit override is installed.
		done <- wrapError(CodeExecuteSubCommandAsync, 1, err, "error: subcommand %q failed: %s", c.Name, err.Error())
	}()
	return FromChannel(done)
}
