package cmd

import "fmt"

// Parse runs the full command-tree walk synchronously over argv (full
// process argv, interpreter-first, "node"-style), blocking until any
// hook/action completion finishes. Authoring errors still panic; runtime
// failures are returned, unless an exit override is installed in which
// case they are also handed to it before being returned.
func (c *Command) Parse(argv []string) error {
	comp, err := c.parseEntry(argv, ArgvSourceNode, false)
	if err != nil {
		return err
	}
	return comp.Wait()
}

// ParseAsync behaves like Parse but never blocks: the walk and any
// hook/action completion chain run on their own goroutine, and the
// returned Completion resolves once everything finishes.
func (c *Command) ParseAsync(argv []string) Completion {
	done := make(chan error, 1)
	go func() {
		comp, err := c.parseEntry(argv, ArgvSourceNode, false)
		if err != nil {
			done <- err
			return
		}
		done <- comp.Wait()
	}()
	return FromChannel(done)
}

// ParseFrom behaves like Parse but lets the caller select the argv
// source: user/electron/eval instead of the node default.
func (c *Command) ParseFrom(argv []string, from ArgvSource, electronDefaultApp bool) error {
	comp, err := c.parseEntry(argv, from, electronDefaultApp)
	if err != nil {
		return err
	}
	return comp.Wait()
}

func (c *Command) parseEntry(rawArgv []string, from ArgvSource, electronDefaultApp bool) (Completion, error) {
	prepared := PrepareArgv(rawArgv, from, electronDefaultApp)
	c.Root().scriptPath = prepared.ScriptPath
	return c.walk(prepared.UserArgs)
}

// walk implements the per-command dispatch step: parse this command's
// argv slice, apply env/implied sources, then decide whether to descend
// into a subcommand, route to the help command, route to a default
// command, or process as a leaf.
func (c *Command) walk(argv []string) (Completion, error) {
	c.RawArgs = argv

	operands, unknown, err := c.parseTokens(argv)
	if err != nil {
		return c.fail(err)
	}
	if err := c.applyEnvSources(); err != nil {
		return c.fail(err)
	}
	c.applyImpliedSources()
	c.Args = append(append([]string{}, operands...), unknown...)

	c.trace("walk", "command", c.Name, "operands", operands, "unknown", unknown)

	if len(operands) > 0 {
		if sub := c.FindSubcommand(operands[0]); sub != nil {
			if err := c.runAncestorHooks("preSubcommand", sub); err != nil {
				return c.fail(err)
			}
			rest := append(append([]string{}, operands[1:]...), unknown...)
			if sub.ExecutableHandler {
				if err := sub.runExecutableSubcommand(rest).Wait(); err != nil {
					return c.fail(err)
				}
				return Done(nil), nil
			}
			return sub.walk(rest)
		}

		if hc := c.HelpCommand(); hc != nil && operands[0] == hc.Name {
			return c.dispatchHelpCommand(operands[1:])
		}
	}

	if c.DefaultCommandName != "" {
		if containsHelpFlag(unknown, c.HelpOption()) {
			c.writeOut(c.RenderHelp())
			return c.fail(newError(CodeHelpDisplayed, 0, "(outputHelp)"))
		}
		if def := c.FindSubcommand(c.DefaultCommandName); def != nil {
			return def.walk(append(append([]string{}, operands...), unknown...))
		}
	}

	if len(c.Args) == 0 && len(c.Subcommands) > 0 && c.action == nil && c.DefaultCommandName == "" {
		c.writeErr(c.renderHelpForError())
		return c.fail(newError(CodeHelp, 1, "(outputHelp)"))
	}

	return c.dispatchLeaf(operands, unknown)
}

func containsHelpFlag(unknown []string, help *Option) bool {
	if help == nil {
		return false
	}
	for _, tok := range unknown {
		if tok == "-"+help.Short || tok == "--"+help.Long {
			return true
		}
	}
	return false
}

// dispatchHelpCommand renders the referenced child's help (or this
// command's own, if no target named) and exits helpDisplayed.
func (c *Command) dispatchHelpCommand(rest []string) (Completion, error) {
	target := c
	if len(rest) > 0 {
		if sub := c.FindSubcommand(rest[0]); sub != nil {
			target = sub
		}
	}
	target.writeOut(target.RenderHelp())
	return c.fail(newError(CodeHelpDisplayed, 0, "(outputHelp)"))
}

// dispatchLeaf finishes the walk at a command with no matching subcommand:
// help/version control flow, mandatory and conflict validation, then the
// action (or the legacy fallbacks).
func (c *Command) dispatchLeaf(operands, unknown []string) (Completion, error) {
	if containsHelpFlag(unknown, c.HelpOption()) {
		c.writeOut(c.RenderHelp())
		return c.fail(newError(CodeHelpDisplayed, 0, "(outputHelp)"))
	}

	if err := c.validateMandatory(); err != nil {
		return c.fail(err)
	}
	if err := c.validateConflicts(); err != nil {
		return c.fail(err)
	}

	if c.action != nil {
		if err := c.checkUnknownOptions(unknown); err != nil {
			return c.fail(err)
		}
		args, err := c.coercePositionalArgs(c.Args)
		if err != nil {
			return c.fail(err)
		}
		return c.runAction(args)
	}

	if c.Parent != nil && c.Parent.LegacyFallback != nil {
		if _, err := c.coercePositionalArgs(c.Args); err != nil {
			return c.fail(err)
		}
		if c.Parent.LegacyFallback(operands, unknown) {
			return Done(nil), nil
		}
	}

	if len(operands) > 0 {
		if star := c.FindSubcommand("*"); star != nil {
			return star.walk(append(append([]string{}, operands[1:]...), unknown...))
		}
		if c.LegacyFallback != nil && c.LegacyFallback(operands, unknown) {
			return Done(nil), nil
		}
		if len(c.Subcommands) > 0 {
			return c.fail(c.unknownCommandError(operands[0]))
		}
	}

	if err := c.checkUnknownOptions(unknown); err != nil {
		return c.fail(err)
	}
	if _, err := c.coercePositionalArgs(c.Args); err != nil {
		return c.fail(err)
	}
	return Done(nil), nil
}

// checkUnknownOptions raises unknownOption for the first leftover
// option-shaped token, unless this command opted in to receiving them.
func (c *Command) checkUnknownOptions(unknown []string) error {
	if c.AllowUnknownOption || len(unknown) == 0 {
		return nil
	}
	return c.unknownOptionError(unknown[0])
}

// runAction runs preAction hooks (root→leaf over c's ancestor chain
// including c, declaration order within each), the action itself, then
// postAction hooks as the exact reverse of that flattened sequence:
// leaf→root, with each command's own list run back-to-front.
func (c *Command) runAction(args []any) (Completion, error) {
	chain := append(reverseCommands(c.Ancestors()), c)
	for _, ancestor := range chain {
		if err := runHookChain(ancestor.PreActionHooks, ancestor, c); err != nil {
			return c.fail(err)
		}
	}

	opts := make(map[string]any, len(c.OptionValues))
	for k, v := range c.OptionValues {
		opts[k] = v
	}
	ctx := &ActionContext{Command: c, Args: args, Opts: opts}
	comp := c.action(ctx)
	if comp == nil {
		comp = Done(nil)
	}
	if err := comp.Wait(); err != nil {
		return c.fail(err)
	}

	for i := len(chain) - 1; i >= 0; i-- {
		ancestor := chain[i]
		if err := runHookChain(reverseHooks(ancestor.PostActionHooks), ancestor, c); err != nil {
			return c.fail(err)
		}
	}
	return Done(nil), nil
}

func reverseHooks(in []HookHandler) []HookHandler {
	out := make([]HookHandler, len(in))
	for i, h := range in {
		out[len(in)-1-i] = h
	}
	return out
}

func reverseCommands(in []*Command) []*Command {
	out := make([]*Command, len(in))
	for i, c := range in {
		out[len(in)-1-i] = c
	}
	return out
}

// runAncestorHooks runs event's hook lists root→leaf across c and its
// ancestors (used for preSubcommand, where "leaf" is c, the command about
// to descend into actionCommand).
func (c *Command) runAncestorHooks(event string, actionCommand *Command) error {
	chain := append(reverseCommands(c.Ancestors()), c)
	for _, ancestor := range chain {
		var hooks []HookHandler
		switch event {
		case "preSubcommand":
			hooks = ancestor.PreSubcommandHooks
		case "preAction":
			hooks = ancestor.PreActionHooks
		}
		if err := runHookChain(hooks, ancestor, actionCommand); err != nil {
			return err
		}
	}
	return nil
}

// validateMandatory checks, for c and every ancestor, that each mandatory
// option has a non-absent value.
func (c *Command) validateMandatory() error {
	chain := append([]*Command{c}, c.Ancestors()...)
	for _, cur := range chain {
		for _, opt := range cur.Options {
			if !opt.Mandatory {
				continue
			}
			attr := opt.AttributeName()
			if _, ok := cur.OptionValues[attr]; !ok || cur.OptionValues[attr] == nil {
				return newError(CodeMissingMandatoryOptionValue, 1, "error: required option '%s' not specified", opt.Flags)
			}
		}
	}
	return nil
}

// validateConflicts checks, for c and every ancestor independently, that
// no pair of non-default-sourced options both from this command's own set
// conflict with each other.
func (c *Command) validateConflicts() error {
	chain := append([]*Command{c}, c.Ancestors()...)
	for _, cur := range chain {
		if err := cur.validateConflictsLocal(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Command) validateConflictsLocal() error {
	nonDefault := map[string]bool{}
	for attr, src := range c.OptionValueSources {
		if src != ValueSourceDefault {
			nonDefault[attr] = true
		}
	}
	for _, opt := range c.Options {
		attr := opt.AttributeName()
		if !nonDefault[attr] {
			continue
		}
		for _, other := range opt.ConflictsWith {
			if nonDefault[other] {
				return c.conflictError(opt, other)
			}
		}
	}
	return nil
}

func (c *Command) conflictError(opt *Option, otherAttr string) *Error {
	var other *Option
	for _, o := range c.Options {
		if o.AttributeName() == otherAttr {
			other = c.resolveDualFlag(o)
			break
		}
	}
	self := c.resolveDualFlag(opt)
	selfName := c.flagLabel(self)
	otherName := "--" + otherAttr
	if other != nil {
		otherName = c.flagLabel(other)
	}
	return newError(CodeConflictingOption, 1, "error: option '%s' cannot be used with option '%s'", selfName, otherName)
}

// resolveDualFlag applies the dual positive/negative disambiguation rule:
// for an attribute shared between a positive and negative option, prefer
// whichever one the current value actually matches.
func (c *Command) resolveDualFlag(opt *Option) *Option {
	twin := c.findTwin(opt)
	if twin == nil {
		return opt
	}
	current := c.OptionValues[opt.AttributeName()]
	neg := negTwinOf(opt, twin)
	if valuesEqual(current, negPresetOrFalse(neg)) {
		return neg
	}
	if neg == opt {
		return twin
	}
	return opt
}

func (c *Command) flagLabel(opt *Option) string {
	if opt.EnvVar != "" && c.OptionValueSources[opt.AttributeName()] == ValueSourceEnv {
		return opt.EnvVar
	}
	if opt.Long != "" {
		return "--" + opt.Long
	}
	return "-" + opt.Short
}

// coercePositionalArgs validates missing/excess positionals, then coerces
// each slot through its parse_arg, with the final registered argument
// collecting the remainder when variadic. The coerced values are recorded
// as ProcessedArgs.
func (c *Command) coercePositionalArgs(args []string) ([]any, error) {
	regs := c.RegisteredArguments
	for i, a := range regs {
		if a.Required && i >= len(args) {
			return nil, newError(CodeMissingArgument, 1, "error: missing required argument '%s'", a.Name)
		}
	}
	if len(regs) == 0 || !regs[len(regs)-1].Variadic {
		if !c.AllowExcessArguments && len(args) > len(regs) {
			return nil, newError(CodeExcessArguments, 1, "error: too many arguments. Expected %d arguments but got %d.", len(regs), len(args))
		}
	}

	out := make([]any, 0, len(regs))
	for i, a := range regs {
		if a.Variadic {
			rest := args[min(i, len(args)):]
			value, err := coerceVariadic(a, rest)
			if err != nil {
				return nil, newError(CodeInvalidArgument, 1, "%s", err.Error())
			}
			out = append(out, value)
			c.ProcessedArgs = out
			return out, nil
		}
		if i >= len(args) {
			out = append(out, a.DefaultValue)
			continue
		}
		value, err := a.coerce(args[i], a.DefaultValue)
		if err != nil {
			return nil, newError(CodeInvalidArgument, 1, "%s", err.Error())
		}
		out = append(out, value)
	}
	c.ProcessedArgs = out
	return out, nil
}

func coerceVariadic(a *Argument, rest []string) (any, error) {
	if len(rest) == 0 {
		if a.DefaultValue != nil {
			return a.DefaultValue, nil
		}
		return []any{}, nil
	}
	acc := a.DefaultValue
	var list []any
	if a.ParseArg == nil {
		list = make([]any, len(rest))
		for i, r := range rest {
			if err := a.checkChoice(r); err != nil {
				return nil, err
			}
			list[i] = r
		}
		return list, nil
	}
	for _, r := range rest {
		v, err := a.coerce(r, acc)
		if err != nil {
			return nil, err
		}
		acc = v
	}
	return acc, nil
}

// fail runs the error-display pipeline for err (wrapping it into a *Error
// first if needed), calls the installed exit override (if any) with it, and
// returns it to the caller. Under an exit override an
// executeSubCommandAsync error is swallowed instead (neither passed to the
// override nor returned). This package never calls os.Exit
// itself, leaving that to the program entry point.
func (c *Command) fail(err error) (Completion, error) {
	ce, ok := AsCommanderError(err)
	if !ok {
		ce = wrapError(CodeError, 1, err, "%s", err.Error())
	}

	if ce.Code != CodeHelpDisplayed && ce.Code != CodeHelp && ce.Code != CodeVersion &&
		ce.Code != CodeExecuteSubCommandAsync && ce.Message != "" {
		c.OutputConfig.OutputError(fmt.Sprintf("%s\n", ce.Message), c.OutputConfig.WriteErr)
		if c.ErrorConfig.ShowHelpAfterError {
			c.writeErr(c.renderHelpForError())
		}
	}

	if c.ErrorConfig.ExitOverride != nil {
		if ce.Code == CodeExecuteSubCommandAsync {
			// Swallowed to avoid double-reporting: the child process reports
			// its own spawn failures.
			return Done(nil), nil
		}
		c.ErrorConfig.ExitOverride(ce)
	}
	return nil, ce
}
