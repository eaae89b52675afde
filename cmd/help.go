package cmd

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// HelpRenderer formats a command's help text. Commands call into it at two
// well-defined points: when the help flag/command fires, and when the
// error-display pipeline appends help after a failure.
type HelpRenderer interface {
	Render(c *Command, width int) string
}

type defaultHelpRenderer struct{}

// DefaultHelpRenderer is the library's built-in HelpRenderer, grounded on
// the column layout of a typical generated command help: usage line,
// description, arguments, options, subcommands.
var DefaultHelpRenderer HelpRenderer = defaultHelpRenderer{}

func (defaultHelpRenderer) Render(c *Command, width int) string {
	if width <= 0 {
		width = 80
	}
	var b strings.Builder

	fmt.Fprintf(&b, "Usage: %s %s\n", c.qualifiedName(), c.usageLine())

	if c.Description != "" {
		b.WriteString("\n")
		b.WriteString(wordwrap.WrapString(c.Description, uint(width)))
		b.WriteString("\n")
	}

	if args := c.RegisteredArguments; len(args) > 0 {
		b.WriteString("\nArguments:\n")
		writeColumns(&b, width, argumentRows(args))
	}

	if opts := c.VisibleOptions(); len(opts) > 0 {
		b.WriteString("\nOptions:\n")
		writeColumns(&b, width, optionRows(opts))
	}

	if subs := c.VisibleSubcommands(); len(subs) > 0 {
		b.WriteString("\nCommands:\n")
		writeColumns(&b, width, commandRows(subs))
	}

	return b.String()
}

func (c *Command) usageLine() string {
	if c.Usage != "" {
		return c.Usage
	}
	parts := make([]string, 0, len(c.RegisteredArguments)+1)
	if len(c.Options) > 0 || !c.helpOptionDisabled {
		parts = append(parts, "[options]")
	}
	if len(c.Subcommands) > 0 {
		parts = append(parts, "[command]")
	}
	for _, a := range c.RegisteredArguments {
		parts = append(parts, argumentDisplay(a))
	}
	return strings.Join(parts, " ")
}

func argumentDisplay(a *Argument) string {
	name := a.Name
	if a.Variadic {
		name += "..."
	}
	if a.Required {
		return "<" + name + ">"
	}
	return "[" + name + "]"
}

func argumentRows(args []*Argument) [][2]string {
	rows := make([][2]string, 0, len(args))
	for _, a := range args {
		rows = append(rows, [2]string{argumentDisplay(a), a.Description})
	}
	return rows
}

func optionRows(opts []*Option) [][2]string {
	rows := make([][2]string, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, [2]string{o.Flags, o.Description})
	}
	return rows
}

func commandRows(subs []*Command) [][2]string {
	rows := make([][2]string, 0, len(subs))
	for _, s := range subs {
		name := s.Name
		if len(s.Aliases) > 0 {
			name += "|" + strings.Join(s.Aliases, "|")
		}
		rows = append(rows, [2]string{name, s.Description})
	}
	return rows
}

// writeColumns renders a left-aligned label column followed by a
// word-wrapped description column, wrapping the whole line to width.
func writeColumns(b *strings.Builder, width int, rows [][2]string) {
	labelWidth := 0
	for _, r := range rows {
		if len(r[0]) > labelWidth {
			labelWidth = len(r[0])
		}
	}
	for _, r := range rows {
		label := "  " + r[0]
		if r[1] == "" {
			b.WriteString(label + "\n")
			continue
		}
		pad := strings.Repeat(" ", labelWidth-len(r[0])+2)
		line := label + pad + r[1]
		b.WriteString(wordwrap.WrapString(line, uint(width)))
		b.WriteString("\n")
	}
}

// AddHelpText registers extra help text at one of the four positions:
// "beforeAll" and "afterAll" apply to this command and every descendant,
// "before" and "after" to this command alone. An unrecognized position is
// an authoring error and panics.
func (c *Command) AddHelpText(position, text string) *Command {
	switch position {
	case "beforeAll", "before", "after", "afterAll":
	default:
		panic(fmt.Sprintf("unexpected addHelpText position %q, expected beforeAll, before, after, or afterAll", position))
	}
	c.helpTexts = append(c.helpTexts, helpTextEntry{position: position, text: text})
	return c
}

func (c *Command) collectHelpText(position string) []string {
	var texts []string
	scope := []*Command{c}
	if position == "beforeAll" || position == "afterAll" {
		scope = append(reverseCommands(c.Ancestors()), c)
	}
	for _, cur := range scope {
		for _, entry := range cur.helpTexts {
			if entry.position == position {
				texts = append(texts, entry.text)
			}
		}
	}
	return texts
}

func (c *Command) renderHelpAt(width int) string {
	r := c.helpRenderer
	if r == nil {
		r = DefaultHelpRenderer
	}
	var b strings.Builder
	for _, pos := range []string{"beforeAll", "before"} {
		for _, text := range c.collectHelpText(pos) {
			b.WriteString(text + "\n")
		}
	}
	b.WriteString(r.Render(c, width))
	for _, pos := range []string{"after", "afterAll"} {
		for _, text := range c.collectHelpText(pos) {
			b.WriteString(text + "\n")
		}
	}
	return b.String()
}

// RenderHelp formats c's help text using its configured HelpRenderer (or
// the default) at the configured stdout width.
func (c *Command) RenderHelp() string {
	return c.renderHelpAt(c.OutputConfig.GetOutHelpWidth())
}

// renderHelpForError is RenderHelp at the stderr width, for the
// error-display pipeline.
func (c *Command) renderHelpForError() string {
	return c.renderHelpAt(c.OutputConfig.GetErrHelpWidth())
}
