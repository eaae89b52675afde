package cmd

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// ValueSource constants — the closed set a value's current source can hold.
const (
	ValueSourceDefault = "default"
	ValueSourceConfig  = "config"
	ValueSourceEnv     = "env"
	ValueSourceCLI     = "cli"
	ValueSourceImplied = "implied"
)

// OutputConfiguration carries the write sinks and width providers every
// boundary output (help, errors) passes through.
type OutputConfiguration struct {
	WriteOut        func(str string)
	WriteErr        func(str string)
	OutputError     func(str string, write func(string))
	GetOutHelpWidth func() int
	GetErrHelpWidth func() int
}

func defaultOutputConfiguration() *OutputConfiguration {
	return &OutputConfiguration{
		WriteOut: func(s string) { fmt.Fprint(os.Stdout, s) },
		WriteErr: func(s string) { fmt.Fprint(os.Stderr, s) },
		OutputError: func(s string, write func(string)) {
			write(s)
		},
		GetOutHelpWidth: func() int { return terminalWidth(os.Stdout) },
		GetErrHelpWidth: func() int { return terminalWidth(os.Stderr) },
	}
}

func terminalWidth(_ io.Writer) int {
	return 80
}

// ErrorConfiguration controls the error-display pipeline. It is shared by
// pointer between a command and every descendant created after it, so that
// setting ExitOverride or the suggestion/help toggles on a parent after
// subcommands already exist still reaches them.
type ErrorConfiguration struct {
	ShowHelpAfterError       bool
	ShowSuggestionAfterError bool
	ExitOverride             func(*Error)
}

// Command is a node in the command tree: the root ("program") and every
// declared subcommand share this type.
type Command struct {
	Name            string
	Aliases         []string
	Description     string
	Summary         string
	Usage           string
	ArgsDescription string

	RegisteredArguments []*Argument
	Options             []*Option
	Subcommands         []*Command
	Parent              *Command

	AllowUnknownOption          bool
	AllowExcessArguments        bool
	CombineFlagAndOptionalValue bool
	StoreOptionsAsProperties    bool
	EnablePositionalOptions     bool
	PassThroughOptions          bool
	Hidden                      bool

	DefaultCommandName string
	ExecutableHandler  bool
	ExecutableFile     string
	ExecutableDir      string

	helpOption          *Option
	helpOptionDisabled  bool
	helpCommand         *Command
	helpCommandDisabled bool

	Version       string
	versionOption *Option

	PreSubcommandHooks []HookHandler
	PreActionHooks     []HookHandler
	PostActionHooks    []HookHandler

	action ActionHandler

	LegacyFallback func(operands, unknown []string) bool

	OutputConfig *OutputConfiguration
	ErrorConfig  *ErrorConfiguration

	// Per-invocation parse state, repopulated on every Parse.
	RawArgs            []string
	Args               []string
	ProcessedArgs      []any
	OptionValues       map[string]any
	OptionValueSources map[string]string

	logger       *logger
	helpRenderer HelpRenderer
	helpTexts    []helpTextEntry
	scriptPath   string
}

// helpTextEntry is an AddHelpText registration.
type helpTextEntry struct {
	position string
	text     string
}

// ScriptPath returns the script path recorded during the most recent Parse
// (populated only when the argv source is "node").
func (c *Command) ScriptPath() string {
	return c.Root().scriptPath
}

// SetHelpRenderer overrides the HelpRenderer used to format this command's
// (and, once inherited, its descendants') help text.
func (c *Command) SetHelpRenderer(r HelpRenderer) *Command {
	c.helpRenderer = r
	return c
}

// NewCommand creates a new command node named name. Excess positional
// arguments and flag/optional-value combining are allowed unless turned
// off.
func NewCommand(name string) *Command {
	return &Command{
		Name:                        name,
		AllowExcessArguments:        true,
		CombineFlagAndOptionalValue: true,
		OptionValues:                map[string]any{},
		OptionValueSources:          map[string]string{},
		OutputConfig:                defaultOutputConfiguration(),
		ErrorConfig:                 &ErrorConfiguration{ShowSuggestionAfterError: true},
	}
}

// AddOption registers a fully-constructed Option, panicking on authoring
// errors (duplicate flag, malformed negate/variadic combination).
func (c *Command) AddOption(opt *Option) *Command {
	if err := opt.Validate(); err != nil {
		panic(err)
	}
	for _, existing := range c.Options {
		if (opt.Short != "" && existing.Short == opt.Short) || (opt.Long != "" && existing.Long == opt.Long) {
			panic(fmt.Sprintf("command %q: option %q conflicts with existing option %q", c.Name, opt.Flags, existing.Flags))
		}
	}
	c.Options = append(c.Options, opt)
	attr := opt.AttributeName()
	if _, exists := c.OptionValueSources[attr]; !exists {
		def := opt.DefaultValue
		if def == nil && opt.Negate && !c.hasPositiveTwin(opt) {
			def = true
		}
		c.setOptionValue(attr, def, ValueSourceDefault)
	}
	return c
}

// Option is a fluent shorthand for AddOption(NewOption(flags, description)).
func (c *Command) Option(flags, description string) *Command {
	return c.AddOption(NewOption(flags, description))
}

// AddArgument registers a positional argument, panicking on the authoring
// errors the flag model specifies: a variadic argument must be last, and a
// required argument given a default without a coercer is rejected.
func (c *Command) AddArgument(arg *Argument) *Command {
	for _, existing := range c.RegisteredArguments {
		if existing.Variadic {
			panic(fmt.Sprintf("command %q: cannot add argument %q after variadic argument %q", c.Name, arg.Name, existing.Name))
		}
	}
	if arg.Required && arg.DefaultValue != nil && arg.ParseArg == nil {
		panic(fmt.Sprintf("command %q: argument %q: a required argument cannot have a default value without parse_arg", c.Name, arg.Name))
	}
	c.RegisteredArguments = append(c.RegisteredArguments, arg)
	return c
}

// Argument is a fluent shorthand for AddArgument(NewArgument(nameSpec, description)).
func (c *Command) Argument(nameSpec, description string) *Command {
	return c.AddArgument(NewArgument(nameSpec, description))
}

// AddCommand registers child as a subcommand, panicking on name/alias
// clashes among siblings.
func (c *Command) AddCommand(child *Command) *Command {
	if child.Name == "" {
		panic("subcommand must have a name")
	}
	for _, alias := range child.Aliases {
		if alias == child.Name {
			panic(fmt.Sprintf("command %q: alias %q equals the command's own name", child.Name, alias))
		}
	}
	for _, sibling := range c.Subcommands {
		if sibling.Name == child.Name {
			panic(fmt.Sprintf("command %q: duplicate subcommand name %q", c.Name, child.Name))
		}
		for _, alias := range child.Aliases {
			if sibling.Name == alias || slices.Contains(sibling.Aliases, alias) {
				panic(fmt.Sprintf("command %q: alias %q clashes with sibling command %q", child.Name, alias, sibling.Name))
			}
		}
	}
	if child.PassThroughOptions && !c.EnablePositionalOptions {
		panic(fmt.Sprintf("command %q: pass_through_options requires the parent to enable_positional_options", child.Name))
	}
	child.Parent = c
	child.inheritFromParent(c)
	c.Subcommands = append(c.Subcommands, child)
	return c
}

// Command is a fluent shorthand that creates, registers, and returns a new
// subcommand named name.
func (c *Command) Command(name, description string) *Command {
	child := NewCommand(name)
	child.Description = description
	c.AddCommand(child)
	return child
}

func (c *Command) inheritFromParent(parent *Command) {
	c.OutputConfig = parent.OutputConfig
	c.ErrorConfig = parent.ErrorConfig
	c.logger = parent.logger
	c.helpRenderer = parent.helpRenderer
}

// SetExitOverride replaces process exit with a call to fn carrying the
// structured error, for every command that shares this ErrorConfig pointer
// (this command and any subcommand added before or after).
func (c *Command) SetExitOverride(fn func(*Error)) *Command {
	c.ErrorConfig.ExitOverride = fn
	return c
}

func (c *Command) SetAliases(aliases ...string) *Command {
	c.Aliases = aliases
	return c
}

func (c *Command) SetHidden(hidden bool) *Command {
	c.Hidden = hidden
	return c
}

func (c *Command) SetVersion(version, flags string) *Command {
	c.Version = version
	if flags == "" {
		flags = "-V, --version"
	}
	c.versionOption = NewOption(flags, "output the version number")
	return c
}

func (c *Command) AllowUnknownOptionValue(allow bool) *Command {
	c.AllowUnknownOption = allow
	return c
}

func (c *Command) AllowExcessArgumentsValue(allow bool) *Command {
	c.AllowExcessArguments = allow
	return c
}

func (c *Command) EnablePositionalOptionsValue(enable bool) *Command {
	c.EnablePositionalOptions = enable
	return c
}

func (c *Command) PassThroughOptionsValue(enable bool) *Command {
	if enable && (c.Parent == nil || !c.Parent.EnablePositionalOptions) {
		panic(fmt.Sprintf("command %q: pass_through_options requires the parent to enable_positional_options", c.Name))
	}
	c.PassThroughOptions = enable
	return c
}

func (c *Command) CombineFlagAndOptionalValueSetting(combine bool) *Command {
	c.CombineFlagAndOptionalValue = combine
	return c
}

func (c *Command) SetDefaultCommand(name string) *Command {
	c.DefaultCommandName = name
	return c
}

func (c *Command) SetAction(fn ActionHandler) *Command {
	c.action = fn
	return c
}

// Action registers a plain synchronous action callback as a fluent
// shorthand over SetAction.
func (c *Command) Action(fn func(ctx *ActionContext) error) *Command {
	c.action = func(ctx *ActionContext) Completion {
		return Done(fn(ctx))
	}
	return c
}

func (c *Command) Hook(event string, handler HookHandler) *Command {
	switch event {
	case "preSubcommand":
		c.PreSubcommandHooks = append(c.PreSubcommandHooks, handler)
	case "preAction":
		c.PreActionHooks = append(c.PreActionHooks, handler)
	case "postAction":
		c.PostActionHooks = append(c.PostActionHooks, handler)
	default:
		panic(fmt.Sprintf("invalid hook event %q", event))
	}
	return c
}

func (c *Command) OnFallback(fn func(operands, unknown []string) bool) *Command {
	c.LegacyFallback = fn
	return c
}

// HelpOption lazily creates (or returns the already-created) help option,
// unless help has been explicitly disabled on this command.
func (c *Command) HelpOption() *Option {
	if c.helpOptionDisabled {
		return nil
	}
	if c.helpOption == nil {
		c.helpOption = NewOption("-h, --help", "display help for command")
	}
	return c.helpOption
}

func (c *Command) DisableHelpOption() *Command {
	c.helpOptionDisabled = true
	c.helpOption = nil
	return c
}

// HelpCommand lazily creates the implicit "help [command]" subcommand the
// first time it's queried, unless disabled or already declared explicitly.
// The implicit one exists only for commands that have children and no
// action of their own: a leaf command keeps "help" available as an
// ordinary positional value.
func (c *Command) HelpCommand() *Command {
	if c.helpCommandDisabled {
		return nil
	}
	if c.helpCommand != nil {
		return c.helpCommand
	}
	for _, sub := range c.Subcommands {
		if sub.Name == "help" {
			c.helpCommand = sub
			return c.helpCommand
		}
	}
	if len(c.Subcommands) == 0 || c.action != nil {
		return nil
	}
	hc := NewCommand("help")
	hc.Description = "display help for command"
	hc.Argument("[command]", "command to show help for")
	hc.Parent = c
	hc.inheritFromParent(c)
	c.helpCommand = hc
	return hc
}

func (c *Command) DisableHelpCommand() *Command {
	c.helpCommandDisabled = true
	c.helpCommand = nil
	return c
}

// FindSubcommand returns the child matching name or one of its aliases.
func (c *Command) FindSubcommand(name string) *Command {
	for _, sub := range c.Subcommands {
		if sub.Name == name || slices.Contains(sub.Aliases, name) {
			return sub
		}
	}
	return nil
}

// VisibleOptions returns this command's options that should appear in help.
func (c *Command) VisibleOptions() []*Option {
	var out []*Option
	for _, o := range c.Options {
		if !o.Hidden {
			out = append(out, o)
		}
	}
	if help := c.HelpOption(); help != nil {
		out = append(out, help)
	}
	return out
}

// VisibleSubcommands returns this command's children that should appear in help.
func (c *Command) VisibleSubcommands() []*Command {
	var out []*Command
	for _, s := range c.Subcommands {
		if !s.Hidden {
			out = append(out, s)
		}
	}
	return out
}

// Ancestors returns this command's ancestor chain, nearest first, root last.
func (c *Command) Ancestors() []*Command {
	var out []*Command
	for p := c.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Root returns the top-most ancestor (or c itself, if c is the root).
func (c *Command) Root() *Command {
	root := c
	for root.Parent != nil {
		root = root.Parent
	}
	return root
}

func (c *Command) writeOut(s string) { c.OutputConfig.WriteOut(s) }
func (c *Command) writeErr(s string) { c.OutputConfig.WriteErr(s) }

func (c *Command) qualifiedName() string {
	names := []string{c.Name}
	for p := c.Parent; p != nil; p = p.Parent {
		names = append([]string{p.Name}, names...)
	}
	return strings.Join(names, " ")
}
