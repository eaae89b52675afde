package cmd

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/iancoleman/strcase"
)

// OptionParser coerces a raw string value (and the previously stored value,
// for accumulation) into the value actually stored for an option.
type OptionParser func(value string, previous any) (any, error)

var (
	flagSplitRe     = regexp.MustCompile(`[ ,|]+`)
	argDescriptorRe = regexp.MustCompile(`^[\[<]`)
	shortOnlyRe     = regexp.MustCompile(`^-[^-]$`)
)

// Option describes a single declared flag, parsed from a string of the form
// "-s, --long <arg>" (see parseFlags for the exact grammar).
type Option struct {
	Flags       string
	Description string

	// Short and Long are stored without their leading dash(es). Long
	// retains a "no-" prefix when the option is negated.
	Short string
	Long  string

	RequiresArg bool // <arg>
	OptionalArg bool // [arg]
	Variadic    bool // trailing "..."
	Negate      bool // --no-xxx

	DefaultValue  any
	PresetArg     any
	EnvVar        string
	ParseArg      OptionParser
	Choices       []string
	ConflictsWith []string // attribute names
	Implied       map[string]any
	Mandatory     bool
	Hidden        bool
}

// NewOption parses flags (e.g. "-p, --port <n>") into a new Option.
func NewOption(flags, description string) *Option {
	o := &Option{Flags: flags, Description: description, Implied: map[string]any{}}
	o.parseFlags()
	return o
}

// parseFlags implements the splitting rules of the flag grammar: split on
// runs of space/comma/pipe, pull off a short flag when present, then a long
// flag, then treat the remainder as the argument-slot descriptor.
func (o *Option) parseFlags() {
	parts := flagSplitRe.Split(strings.TrimSpace(o.Flags), -1)

	var shortFlag, longFlag string
	if len(parts) > 1 && !argDescriptorRe.MatchString(parts[1]) {
		shortFlag, parts = parts[0], parts[1:]
	}
	if len(parts) > 0 {
		longFlag, parts = parts[0], parts[1:]
	}
	if shortFlag == "" && shortOnlyRe.MatchString(longFlag) {
		shortFlag, longFlag = longFlag, ""
	}

	if shortFlag != "" {
		o.Short = strings.TrimPrefix(shortFlag, "-")
	}
	if longFlag != "" {
		o.Long = strings.TrimPrefix(longFlag, "--")
		o.Negate = strings.HasPrefix(o.Long, "no-")
	}

	if argSpec := strings.TrimSpace(strings.Join(parts, " ")); argSpec != "" {
		o.parseArgSpec(argSpec)
	}
}

func (o *Option) parseArgSpec(spec string) {
	if strings.HasSuffix(spec, "...>") || strings.HasSuffix(spec, "...]") {
		o.Variadic = true
	}
	switch {
	case strings.HasPrefix(spec, "[") && strings.HasSuffix(spec, "]"):
		o.OptionalArg = true
	case strings.HasPrefix(spec, "<") && strings.HasSuffix(spec, ">"):
		o.RequiresArg = true
	}
}

// Name returns the option's identity with leading dashes stripped, preferring
// the long flag (still carrying its "no-" prefix when negated).
func (o *Option) Name() string {
	if o.Long != "" {
		return o.Long
	}
	return o.Short
}

// AttributeName returns the normalized key under which this option's value
// is stored: leading dashes and any "no-" prefix stripped, hyphens folded
// into lowerCamelCase.
func (o *Option) AttributeName() string {
	return strcase.ToLowerCamel(strings.TrimPrefix(o.Name(), "no-"))
}

// IsBoolean reports whether the option takes no argument (plain boolean or
// negated boolean).
func (o *Option) IsBoolean() bool {
	return !o.RequiresArg && !o.OptionalArg
}

// Matches reports whether flag (with leading dashes already stripped, e.g.
// "p", "port", "no-sauce") identifies this option.
func (o *Option) Matches(flag string) bool {
	return (o.Short != "" && flag == o.Short) || (o.Long != "" && flag == o.Long)
}

func (o *Option) SetDefault(value any) *Option {
	o.DefaultValue = value
	return o
}

func (o *Option) SetPreset(value any) *Option {
	o.PresetArg = value
	return o
}

func (o *Option) SetEnvVar(name string) *Option {
	o.EnvVar = name
	return o
}

func (o *Option) SetParseArg(parser OptionParser) *Option {
	o.ParseArg = parser
	return o
}

func (o *Option) SetChoices(choices []string) *Option {
	o.Choices = choices
	return o
}

// SetConflicts declares attribute names this option conflicts with.
func (o *Option) SetConflicts(attrs ...string) *Option {
	o.ConflictsWith = append(o.ConflictsWith, attrs...)
	return o
}

// SetImplies declares attribute/value pairs implied when this option is set
// from a non-default source.
func (o *Option) SetImplies(implied map[string]any) *Option {
	if o.Implied == nil {
		o.Implied = map[string]any{}
	}
	for k, v := range implied {
		o.Implied[k] = v
	}
	return o
}

func (o *Option) SetMandatory(mandatory bool) *Option {
	o.Mandatory = mandatory
	return o
}

func (o *Option) SetHidden(hidden bool) *Option {
	o.Hidden = hidden
	return o
}

// Validate checks the authoring invariants from the flag grammar: at least
// one flag, negated options take no argument, variadic options declare an
// argument slot.
func (o *Option) Validate() error {
	if o.Short == "" && o.Long == "" {
		return fmt.Errorf("option %q: must declare a short or long flag", o.Flags)
	}
	if o.Negate && (o.RequiresArg || o.OptionalArg) {
		return fmt.Errorf("option %q: negated options cannot take an argument", o.Flags)
	}
	if o.Variadic && !o.RequiresArg && !o.OptionalArg {
		return fmt.Errorf("option %q: variadic options must declare a required or optional argument", o.Flags)
	}
	return nil
}

// checkChoice validates a raw string against the option's declared choices,
// when any are declared.
func (o *Option) checkChoice(value string) error {
	if len(o.Choices) == 0 {
		return nil
	}
	for _, c := range o.Choices {
		if c == value {
			return nil
		}
	}
	return fmt.Errorf("invalid choice %q for option %q, expected one of: %s", value, o.Name(), strings.Join(o.Choices, ", "))
}
