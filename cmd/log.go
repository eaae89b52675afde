package cmd

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// logger is the opt-in diagnostic trace: off by default, and never written
// to unless a caller turns it on via Command.EnableTrace.
type logger struct {
	l       *log.Logger
	enabled bool
}

func newLogger() *logger {
	l := log.New(os.Stderr)
	l.SetLevel(log.DebugLevel)
	return &logger{l: l}
}

// EnableTrace turns on diagnostic logging for this command and every
// descendant that shares its logger, writing to w. The one traced step is
// the per-command walk (command name, operands and unknown tokens after
// tokenizing); resolver decisions and hooks are not traced.
func (c *Command) EnableTrace(w io.Writer) *Command {
	if c.logger == nil {
		c.logger = newLogger()
	}
	if w != nil {
		l := log.New(w)
		l.SetLevel(log.DebugLevel)
		c.logger.l = l
	}
	c.logger.enabled = true
	return c
}

func (c *Command) trace(msg string, kv ...any) {
	if c.logger == nil || !c.logger.enabled {
		return
	}
	c.logger.l.Debug(msg, kv...)
}
