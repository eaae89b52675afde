package cmd

import (
	"fmt"
	"os"
)

// optionEvent is a recognized-option occurrence handed from the token
// parser to the resolver: option, the raw text following it (nil when the
// token carried no value), and which source produced it.
type optionEvent struct {
	option *Option
	raw    *string
	source string
}

// applyOptionEvent implements the value-resolver rules: preset substitution,
// parse_arg coercion, variadic accumulation, and the boolean/negate/optional
// defaulting that fires when no raw value survives.
func (c *Command) applyOptionEvent(ev optionEvent) error {
	opt := ev.option
	raw := ev.raw

	if raw == nil && opt.PresetArg != nil {
		preset := fmt.Sprintf("%v", opt.PresetArg)
		raw = &preset
	}

	attr := opt.AttributeName()
	old, hadOld := c.OptionValues[attr]

	var value any
	switch {
	case raw != nil && opt.ParseArg != nil:
		var prev any
		if hadOld {
			prev = old
		}
		coerced, err := opt.ParseArg(*raw, prev)
		if err != nil {
			prefix := "option"
			if ev.source == ValueSourceEnv {
				prefix = fmt.Sprintf("environment variable '%s'", opt.EnvVar)
			}
			return wrapError(CodeInvalidArgument, 1, err, "%s %s: %s", prefix, opt.Name(), err.Error())
		}
		value = coerced
	case raw != nil && opt.Variadic:
		if err := opt.checkChoice(*raw); err != nil {
			return wrapError(CodeInvalidArgument, 1, err, "%s", err.Error())
		}
		if list, ok := old.([]any); ok && hadOld && !isDefaultValue(opt, old) {
			value = append(append([]any{}, list...), *raw)
		} else {
			value = []any{*raw}
		}
	case raw != nil:
		if err := opt.checkChoice(*raw); err != nil {
			return wrapError(CodeInvalidArgument, 1, err, "%s", err.Error())
		}
		value = *raw
	default:
		switch {
		case opt.Negate:
			value = false
		case opt.IsBoolean():
			value = true
		case opt.OptionalArg:
			value = true
		default:
			value = ""
		}
	}

	c.setOptionValue(attr, value, ev.source)
	return nil
}

func isDefaultValue(opt *Option, v any) bool {
	return fmt.Sprintf("%v", v) == fmt.Sprintf("%v", opt.DefaultValue)
}

// setOptionValue records value for attr, overwriting the stored source.
func (c *Command) setOptionValue(attr string, value any, source string) {
	if c.OptionValues == nil {
		c.OptionValues = map[string]any{}
	}
	if c.OptionValueSources == nil {
		c.OptionValueSources = map[string]string{}
	}
	c.OptionValues[attr] = value
	c.OptionValueSources[attr] = source
}

func (c *Command) hasPositiveTwin(negated *Option) bool {
	for _, opt := range c.Options {
		if opt != negated && !opt.Negate && opt.AttributeName() == negated.AttributeName() {
			return true
		}
	}
	return false
}

// applyEnvSources runs the environment pass: for each option bound to an
// env var present in the environment, emits an env event, but only when the
// option's current source is still overridable by env (undefined, default,
// config, or env itself).
func (c *Command) applyEnvSources() error {
	for _, opt := range c.Options {
		if opt.EnvVar == "" {
			continue
		}
		val, ok := os.LookupEnv(opt.EnvVar)
		if !ok {
			continue
		}
		attr := opt.AttributeName()
		switch c.OptionValueSources[attr] {
		case "", ValueSourceDefault, "config", ValueSourceEnv:
		default:
			continue
		}
		var raw *string
		if !opt.IsBoolean() {
			raw = &val
		}
		if err := c.applyOptionEvent(optionEvent{option: opt, raw: raw, source: ValueSourceEnv}); err != nil {
			return err
		}
	}
	return nil
}

// applyImpliedSources runs the implied pass: options whose current value
// came from cli/env (a real user source, not default/implied) push their
// implied attribute/value pairs onto any option whose own value is still
// absent or default.
func (c *Command) applyImpliedSources() {
	for _, opt := range c.Options {
		if len(opt.Implied) == 0 {
			continue
		}
		attr := opt.AttributeName()
		src := c.OptionValueSources[attr]
		if src != ValueSourceCLI && src != ValueSourceEnv {
			continue
		}
		if !c.optionIsImplySource(opt) {
			continue
		}
		for key, val := range opt.Implied {
			switch c.OptionValueSources[key] {
			case "", ValueSourceDefault:
				c.setOptionValue(key, val, ValueSourceImplied)
			}
		}
	}
}

// optionIsImplySource resolves the dual positive/negative disambiguation
// rule from the value resolver: for a pair sharing an attribute, the
// negative option is treated as the source iff the stored value equals its
// preset (or false, when no preset is declared); otherwise the positive one.
func (c *Command) optionIsImplySource(opt *Option) bool {
	twin := c.findTwin(opt)
	if twin == nil {
		return true
	}
	current := c.OptionValues[opt.AttributeName()]
	negIsSource := valuesEqual(current, negPresetOrFalse(negTwinOf(opt, twin)))
	if opt.Negate {
		return negIsSource
	}
	return !negIsSource
}

func negTwinOf(opt, twin *Option) *Option {
	if opt.Negate {
		return opt
	}
	return twin
}

func negPresetOrFalse(neg *Option) any {
	if neg == nil {
		return false
	}
	if neg.PresetArg != nil {
		return neg.PresetArg
	}
	return false
}

func (c *Command) findTwin(opt *Option) *Option {
	for _, o := range c.Options {
		if o != opt && o.Negate != opt.Negate && o.AttributeName() == opt.AttributeName() {
			return o
		}
	}
	return nil
}

func valuesEqual(a, b any) bool {
	return fmt.Sprintf("%v", a) == fmt.Sprintf("%v", b)
}
