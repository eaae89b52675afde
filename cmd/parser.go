package cmd

import "strings"

// parseState accumulates the running classification of a command's argv
// slice as the token parser walks it.
type parseState struct {
	operands         []string
	unknown          []string
	routingToUnknown bool
	variadicPending  *Option
}

func (s *parseState) producedAny() bool {
	return len(s.operands) > 0 || len(s.unknown) > 0
}

func isOptionLike(tok string) bool {
	return strings.HasPrefix(tok, "-") && len(tok) > 1
}

// optionByLong finds a declared option (including the version option, which
// is a real option) by its long name, which still carries a "no-" prefix
// when negated. The help option is deliberately not matched here: help
// tokens route through unknown so that a subcommand named later in argv
// gets to display its own help.
func (c *Command) optionByLong(name string) *Option {
	if c.versionOption != nil && c.versionOption.Long == name {
		return c.versionOption
	}
	for _, o := range c.Options {
		if o.Long == name {
			return o
		}
	}
	return nil
}

func (c *Command) optionByShort(ch string) *Option {
	if c.versionOption != nil && c.versionOption.Short == ch {
		return c.versionOption
	}
	for _, o := range c.Options {
		if o.Short == ch {
			return o
		}
	}
	return nil
}

// exactMatch resolves a token that is exactly a declared short or long flag.
func (c *Command) exactMatch(tok string) *Option {
	if strings.HasPrefix(tok, "--") {
		return c.optionByLong(tok[2:])
	}
	name := tok[1:]
	if len(name) == 1 {
		return c.optionByShort(name)
	}
	return nil
}

// isModeSwitchToken reports whether tok names a known subcommand, the help
// command, or the default-command sentinel. Positional and pass-through
// parsing check this before committing to a batch handoff.
func (c *Command) isModeSwitchToken(tok string) bool {
	if c.FindSubcommand(tok) != nil {
		return true
	}
	if hc := c.HelpCommand(); hc != nil && tok == hc.Name {
		return true
	}
	return c.DefaultCommandName != "" && tok == c.DefaultCommandName
}

// parseTokens implements the token-classification rules: it walks args,
// classifying each token into an operand, an unknown-option token, or a
// recognized-option event applied immediately to the value resolver.
func (c *Command) parseTokens(args []string) (operands, unknown []string, err error) {
	queue := append([]string{}, args...)
	st := &parseState{}

	for len(queue) > 0 {
		tok := queue[0]
		queue = queue[1:]

		if tok == "--" {
			if st.routingToUnknown {
				st.unknown = append(st.unknown, "--")
			}
			st.operands = append(st.operands, queue...)
			queue = nil
			break
		}

		if st.variadicPending != nil {
			if !isOptionLike(tok) {
				if err := c.applyOptionEvent(optionEvent{option: st.variadicPending, raw: &tok, source: ValueSourceCLI}); err != nil {
					return nil, nil, err
				}
				continue
			}
			st.variadicPending = nil
		}

		if isOptionLike(tok) {
			if err := c.handleOptionToken(tok, &queue, st); err != nil {
				return nil, nil, err
			}
			continue
		}

		if (c.EnablePositionalOptions || c.PassThroughOptions) && !st.producedAny() && c.isModeSwitchToken(tok) {
			st.operands = append(st.operands, tok)
			st.operands = append(st.operands, queue...)
			queue = nil
			break
		}

		if c.PassThroughOptions {
			if st.routingToUnknown {
				st.unknown = append(st.unknown, tok)
				st.unknown = append(st.unknown, queue...)
			} else {
				st.operands = append(st.operands, tok)
				st.operands = append(st.operands, queue...)
			}
			queue = nil
			break
		}

		if st.routingToUnknown {
			st.unknown = append(st.unknown, tok)
		} else {
			st.operands = append(st.operands, tok)
		}
	}

	return st.operands, st.unknown, nil
}

// handleOptionToken classifies a single option-shaped token: exact match,
// short cluster, --long=value, or unknown. It consumes from *queue when the
// matched option takes an argument.
func (c *Command) handleOptionToken(tok string, queue *[]string, st *parseState) error {
	if opt := c.exactMatch(tok); opt != nil {
		if opt == c.versionOption {
			c.writeOut(c.Version + "\n")
			return newError(CodeVersion, 0, "%s", c.Version)
		}
		return c.consumeOption(opt, queue, st)
	}

	if !strings.HasPrefix(tok, "--") && len(tok) > 2 {
		first := tok[1:2]
		if opt := c.optionByShort(first); opt != nil {
			rest := tok[2:]
			if opt.RequiresArg || (opt.OptionalArg && c.CombineFlagAndOptionalValue) {
				if err := c.applyOptionEvent(optionEvent{option: opt, raw: &rest, source: ValueSourceCLI}); err != nil {
					return err
				}
				if opt.Variadic {
					st.variadicPending = opt
				}
				return nil
			}
			if err := c.applyOptionEvent(optionEvent{option: opt, raw: nil, source: ValueSourceCLI}); err != nil {
				return err
			}
			requeued := "-" + rest
			*queue = append([]string{requeued}, *queue...)
			return nil
		}
	}

	if strings.HasPrefix(tok, "--") {
		if idx := strings.Index(tok, "="); idx >= 0 {
			name := tok[2:idx]
			value := tok[idx+1:]
			if opt := c.optionByLong(name); opt != nil && (opt.RequiresArg || opt.OptionalArg) {
				if err := c.applyOptionEvent(optionEvent{option: opt, raw: &value, source: ValueSourceCLI}); err != nil {
					return err
				}
				if opt.Variadic {
					st.variadicPending = opt
				}
				return nil
			}
		}
	}

	st.unknown = append(st.unknown, tok)
	st.routingToUnknown = true
	return nil
}

// consumeOption applies opt's argument-consumption rule: required args pull
// the next token unconditionally (erroring if none remains), optional args
// pull it only when the next token doesn't itself look like an option, and
// boolean/negated options take no argument.
func (c *Command) consumeOption(opt *Option, queue *[]string, st *parseState) error {
	switch {
	case opt.RequiresArg:
		if len(*queue) == 0 {
			return newError(CodeOptionMissingArgument, 1, "error: option '%s' argument missing", opt.Flags)
		}
		val := (*queue)[0]
		*queue = (*queue)[1:]
		if err := c.applyOptionEvent(optionEvent{option: opt, raw: &val, source: ValueSourceCLI}); err != nil {
			return err
		}
		if opt.Variadic {
			st.variadicPending = opt
		}
	case opt.OptionalArg:
		if len(*queue) > 0 && !isOptionLike((*queue)[0]) {
			val := (*queue)[0]
			*queue = (*queue)[1:]
			if err := c.applyOptionEvent(optionEvent{option: opt, raw: &val, source: ValueSourceCLI}); err != nil {
				return err
			}
			if opt.Variadic {
				st.variadicPending = opt
			}
		} else if err := c.applyOptionEvent(optionEvent{option: opt, raw: nil, source: ValueSourceCLI}); err != nil {
			return err
		}
	default:
		if err := c.applyOptionEvent(optionEvent{option: opt, raw: nil, source: ValueSourceCLI}); err != nil {
			return err
		}
	}
	return nil
}
