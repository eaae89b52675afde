package cmd

import (
	"fmt"
	"strings"
)

// ArgumentParser coerces a raw positional value (and the previously
// accumulated value, for variadic slots) into the value actually stored.
type ArgumentParser func(value string, previous any) (any, error)

// Argument describes a declared positional slot: "<name>", "[name]" or
// "name", optionally suffixed with "..." for a variadic slot.
type Argument struct {
	Name         string
	Description  string
	Required     bool
	Variadic     bool
	DefaultValue any
	Choices      []string
	ParseArg     ArgumentParser
}

// NewArgument parses a name specification such as "<file>", "[files...]" or
// a bare "name" into a new Argument.
func NewArgument(nameSpec, description string) *Argument {
	a := &Argument{Description: description}
	a.parseNameSpec(nameSpec)
	return a
}

func (a *Argument) parseNameSpec(spec string) {
	spec = strings.TrimSpace(spec)

	if strings.HasSuffix(spec, "...>") || strings.HasSuffix(spec, "...]") {
		a.Variadic = true
		spec = spec[:len(spec)-4] + spec[len(spec)-1:]
	}

	switch {
	case strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">"):
		a.Required = true
		a.Name = spec[1 : len(spec)-1]
	case strings.HasPrefix(spec, "[") && strings.HasSuffix(spec, "]"):
		a.Required = false
		a.Name = spec[1 : len(spec)-1]
	default:
		a.Required = true
		a.Name = spec
	}
}

func (a *Argument) SetDefault(value any) *Argument {
	a.DefaultValue = value
	return a
}

func (a *Argument) SetChoices(choices []string) *Argument {
	a.Choices = choices
	return a
}

func (a *Argument) SetParseArg(parser ArgumentParser) *Argument {
	a.ParseArg = parser
	return a
}

// checkChoice validates a raw string against the argument's declared
// choices, when any are declared.
func (a *Argument) checkChoice(value string) error {
	if len(a.Choices) == 0 {
		return nil
	}
	for _, c := range a.Choices {
		if c == value {
			return nil
		}
	}
	return fmt.Errorf("invalid choice %q for argument '%s', expected one of: %s", value, a.Name, strings.Join(a.Choices, ", "))
}

// coerce applies ParseArg (if set) or returns the raw string unchanged.
func (a *Argument) coerce(value string, previous any) (any, error) {
	if err := a.checkChoice(value); err != nil {
		return nil, err
	}
	if a.ParseArg != nil {
		return a.ParseArg(value, previous)
	}
	return value, nil
}
