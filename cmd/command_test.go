package cmd

import (
	"strings"
	"testing"
)

func TestNewCommandDefaults(t *testing.T) {
	c := NewCommand("test")
	if !c.AllowExcessArguments {
		t.Error("Expected excess arguments to be allowed by default")
	}
	if !c.CombineFlagAndOptionalValue {
		t.Error("Expected flag/optional-value combining to be on by default")
	}
	if c.AllowUnknownOption {
		t.Error("Expected unknown options to be rejected by default")
	}
	if c.ErrorConfig.ShowHelpAfterError {
		t.Error("Expected help-after-error to be off by default")
	}
	if !c.ErrorConfig.ShowSuggestionAfterError {
		t.Error("Expected suggestions to be on by default")
	}
}

func TestAddOptionDuplicateFlagPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a duplicate long flag")
		}
	}()
	c := NewCommand("test")
	c.Option("-v, --verbose", "")
	c.Option("--verbose", "")
}

func TestAddCommandDuplicateNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for a duplicate subcommand name")
		}
	}()
	c := NewCommand("test")
	c.Command("sub", "")
	c.Command("sub", "")
}

func TestAddCommandAliasEqualsNamePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an alias equal to the command name")
		}
	}()
	c := NewCommand("test")
	child := NewCommand("sub")
	child.SetAliases("sub")
	c.AddCommand(child)
}

func TestSubcommandInheritsConfiguration(t *testing.T) {
	c, _, _ := testProgram("root")
	sub := c.Command("sub", "")

	if sub.OutputConfig != c.OutputConfig {
		t.Error("Expected the output configuration to be shared by reference")
	}
	if sub.ErrorConfig != c.ErrorConfig {
		t.Error("Expected the error configuration to be shared by reference")
	}

	// Settings changed on the root after the child exists still reach it.
	var captured *Error
	c.SetExitOverride(func(e *Error) { captured = e })
	sub.Argument("<file>", "")
	sub.Action(func(ctx *ActionContext) error { return nil })
	_ = c.Parse([]string{"node", "root", "sub"})
	if captured == nil {
		t.Error("Expected the exit override installed on the root to fire for the child")
	}
}

func TestHelpOptionLazyCreation(t *testing.T) {
	c := NewCommand("test")
	h := c.HelpOption()
	if h == nil {
		t.Fatal("Expected a lazily-created help option")
	}
	if h.Short != "h" || h.Long != "help" {
		t.Errorf("Expected -h, --help, got -%s, --%s", h.Short, h.Long)
	}
	if c.HelpOption() != h {
		t.Error("Expected the same option on repeated queries")
	}

	c.DisableHelpOption()
	if c.HelpOption() != nil {
		t.Error("Expected nil after disabling the help option")
	}
}

func TestHelpCommandOnlyForParentsWithoutAction(t *testing.T) {
	leaf := NewCommand("leaf")
	leaf.Action(func(ctx *ActionContext) error { return nil })
	if leaf.HelpCommand() != nil {
		t.Error("Expected no implicit help command on a leaf with an action")
	}

	parent := NewCommand("parent")
	parent.Command("sub", "")
	hc := parent.HelpCommand()
	if hc == nil {
		t.Fatal("Expected an implicit help command for a parent without action")
	}
	if hc.Name != "help" {
		t.Errorf("Expected name help, got %q", hc.Name)
	}

	parent.DisableHelpCommand()
	if parent.HelpCommand() != nil {
		t.Error("Expected nil after disabling the help command")
	}
}

func TestExplicitHelpChildIsAdopted(t *testing.T) {
	c := NewCommand("prog")
	own := NewCommand("help")
	c.AddCommand(own)
	c.Command("other", "")

	if c.HelpCommand() != own {
		t.Error("Expected the explicitly declared help child to be used")
	}
}

func TestFindSubcommand(t *testing.T) {
	c := NewCommand("prog")
	install := c.Command("install", "")
	install.SetAliases("i")

	if c.FindSubcommand("install") != install {
		t.Error("Expected lookup by name")
	}
	if c.FindSubcommand("i") != install {
		t.Error("Expected lookup by alias")
	}
	if c.FindSubcommand("remove") != nil {
		t.Error("Expected nil for an unknown name")
	}
}

func TestAncestorsAndRoot(t *testing.T) {
	root := NewCommand("root")
	mid := root.Command("mid", "")
	leaf := mid.Command("leaf", "")

	anc := leaf.Ancestors()
	if len(anc) != 2 || anc[0] != mid || anc[1] != root {
		t.Errorf("Expected [mid root], got %v", anc)
	}
	if leaf.Root() != root {
		t.Error("Expected Root to return the top-most command")
	}
	if got := leaf.qualifiedName(); got != "root mid leaf" {
		t.Errorf("Expected qualified name %q, got %q", "root mid leaf", got)
	}
}

func TestEnableTraceWrites(t *testing.T) {
	var buf strings.Builder
	c := NewCommand("prog")
	c.EnableTrace(&buf)
	c.trace("probe", "key", "value")

	if !strings.Contains(buf.String(), "probe") {
		t.Errorf("Expected trace output, got %q", buf.String())
	}
}

func TestTraceIsNoOpByDefault(t *testing.T) {
	c := NewCommand("prog")
	c.trace("probe") // must not panic with no logger configured
}
