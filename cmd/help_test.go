package cmd

import (
	"strings"
	"testing"
)

func TestRenderHelpSections(t *testing.T) {
	c, _, _ := testProgram("prog")
	c.Description = "a program that does things"
	c.Option("-v, --verbose", "enable verbose output")
	c.Argument("<file>", "input file")
	c.Command("serve", "start the server")

	help := c.RenderHelp()

	for _, want := range []string{
		"Usage: prog",
		"a program that does things",
		"Arguments:",
		"<file>",
		"input file",
		"Options:",
		"-v, --verbose",
		"-h, --help",
		"Commands:",
		"serve",
		"start the server",
	} {
		if !strings.Contains(help, want) {
			t.Errorf("Expected help to contain %q:\n%s", want, help)
		}
	}
}

func TestRenderHelpSkipsHiddenEntries(t *testing.T) {
	c, _, _ := testProgram("prog")
	c.AddOption(NewOption("--secret", "internal use").SetHidden(true))
	c.Option("-v, --verbose", "")
	c.Command("internal", "").SetHidden(true)
	c.Command("public", "")

	help := c.RenderHelp()

	if strings.Contains(help, "--secret") {
		t.Error("Expected hidden option to be omitted from help")
	}
	if strings.Contains(help, "internal") {
		t.Error("Expected hidden subcommand to be omitted from help")
	}
	if !strings.Contains(help, "public") {
		t.Error("Expected visible subcommand to be listed")
	}
}

func TestRenderHelpUsesAliases(t *testing.T) {
	c, _, _ := testProgram("prog")
	c.Command("install", "").SetAliases("i")

	help := c.RenderHelp()
	if !strings.Contains(help, "install|i") {
		t.Errorf("Expected alias in command listing:\n%s", help)
	}
}

func TestRenderHelpCustomUsage(t *testing.T) {
	c, _, _ := testProgram("prog")
	c.Usage = "[options] <source> <dest>"

	help := c.RenderHelp()
	if !strings.Contains(help, "Usage: prog [options] <source> <dest>") {
		t.Errorf("Expected custom usage line:\n%s", help)
	}
}

func TestRenderHelpWrapsLongDescriptions(t *testing.T) {
	c, _, _ := testProgram("prog")
	c.Description = strings.Repeat("wordy ", 40)
	c.OutputConfig.GetOutHelpWidth = func() int { return 40 }

	help := c.RenderHelp()
	for _, line := range strings.Split(help, "\n") {
		if len(line) > 45 {
			t.Errorf("Expected wrapped lines near width 40, got %d: %q", len(line), line)
		}
	}
}

type stubRenderer struct{}

func (stubRenderer) Render(c *Command, width int) string { return "stub help\n" }

func TestSetHelpRendererOverride(t *testing.T) {
	c, out, _ := testProgram("prog")
	c.SetHelpRenderer(stubRenderer{})
	c.Action(func(ctx *ActionContext) error { return nil })

	_ = c.Parse([]string{"node", "prog", "--help"})
	if out.String() != "stub help\n" {
		t.Errorf("Expected the injected renderer to be used, got %q", out.String())
	}
}

func TestHelpRendererInheritedBySubcommands(t *testing.T) {
	c, out, _ := testProgram("prog")
	c.SetHelpRenderer(stubRenderer{})
	sub := c.Command("sub", "")
	sub.Action(func(ctx *ActionContext) error { return nil })

	_ = c.Parse([]string{"node", "prog", "sub", "--help"})
	if out.String() != "stub help\n" {
		t.Errorf("Expected the subcommand to inherit the renderer, got %q", out.String())
	}
}

func TestAddHelpTextPositions(t *testing.T) {
	c, out, _ := testProgram("prog")
	c.AddHelpText("beforeAll", "banner")
	sub := c.Command("sub", "")
	sub.AddHelpText("after", "see also: docs")
	sub.Action(func(ctx *ActionContext) error { return nil })

	_ = c.Parse([]string{"node", "prog", "sub", "--help"})
	help := out.String()

	if !strings.HasPrefix(help, "banner\n") {
		t.Errorf("Expected the ancestor beforeAll text first:\n%s", help)
	}
	if !strings.Contains(help, "see also: docs") {
		t.Errorf("Expected the command's after text:\n%s", help)
	}
	if strings.Index(help, "banner") > strings.Index(help, "Usage:") {
		t.Error("Expected beforeAll text ahead of the usage line")
	}
}

func TestAddHelpTextInvalidPositionPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic for an invalid help text position")
		}
	}()
	NewCommand("prog").AddHelpText("sideways", "nope")
}
