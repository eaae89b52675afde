package cmd

import (
	"strings"

	"github.com/moby/buildkit/util/suggest"
)

// visibleLongFlags collects every visible long-flag name (without the
// leading "--") reachable by walking from c upward until an ancestor has
// enable_positional_options set, per the suggestion policy.
func (c *Command) visibleLongFlags() []string {
	var names []string
	for cur := c; cur != nil; cur = cur.Parent {
		for _, o := range cur.VisibleOptions() {
			if o.Long != "" {
				names = append(names, o.Long)
			}
		}
		if cur.EnablePositionalOptions {
			break
		}
	}
	return names
}

// visibleCommandNames collects visible sibling command names and their
// first alias, for unknown-command suggestions.
func (c *Command) visibleCommandNames() []string {
	var names []string
	for _, s := range c.VisibleSubcommands() {
		names = append(names, s.Name)
		if len(s.Aliases) > 0 {
			names = append(names, s.Aliases[0])
		}
	}
	return names
}

// unknownOptionError builds the commander.unknownOption error for tok,
// appending a "did you mean" suggestion when enabled and tok is a long
// flag. The suggested name is the long flag without its leading dashes.
func (c *Command) unknownOptionError(tok string) *Error {
	base := newError(CodeUnknownOption, 1, "error: unknown option '%s'", tok)
	if !c.ErrorConfig.ShowSuggestionAfterError || !strings.HasPrefix(tok, "--") {
		return base
	}
	word := strings.TrimPrefix(tok, "--")
	if idx := strings.Index(word, "="); idx >= 0 {
		word = word[:idx]
	}
	wrapped := suggest.WrapError(base, word, c.visibleLongFlags(), false)
	return wrapError(CodeUnknownOption, 1, base, "%s", wrapped.Error())
}

// unknownCommandError builds the commander.unknownCommand error for name.
func (c *Command) unknownCommandError(name string) *Error {
	base := newError(CodeUnknownCommand, 1, "error: unknown command '%s'", name)
	if !c.ErrorConfig.ShowSuggestionAfterError {
		return base
	}
	wrapped := suggest.WrapError(base, name, c.visibleCommandNames(), false)
	return wrapError(CodeUnknownCommand, 1, base, "%s", wrapped.Error())
}
