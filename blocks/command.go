package blocks

import (
	"bytes"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"istat/dispatch"
)

// IPC clients print help in a terminal, but the item has no terminal to
// detect, so replies are always styled for plain ANSI.
var helpRenderer = func() *lipgloss.Renderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return r
}()

var (
	errorStyle = helpRenderer.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	usageStyle = helpRenderer.NewStyle().Foreground(lipgloss.Color("3"))
)

// RunCommand parses args with a fresh command tree from build and answers
// ev. Help output and parse errors become a help reply. A command that ran
// replies with whatever value it stored through the returned setter, or
// null.
func RunCommand(ev *dispatch.CustomEvent, build func(reply func(any)) *cobra.Command) {
	var value any
	root := build(func(v any) { value = v })
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.CompletionOptions.DisableDefaultCmd = true

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	args := ev.Args
	if args == nil {
		args = []string{}
	}
	root.SetArgs(args)

	cmd, err := root.ExecuteC()
	if err != nil {
		var b strings.Builder
		b.WriteString(errorStyle.Render("error:"))
		b.WriteString(" ")
		b.WriteString(err.Error())
		b.WriteString("\n\n")
		b.WriteString(usageStyle.Render(strings.TrimRight(cmd.UsageString(), "\n")))
		b.WriteString("\n")
		ev.Respond(dispatch.HelpResponse(b.String()))
		return
	}
	if out.Len() > 0 {
		ev.Respond(dispatch.HelpResponse(out.String()))
		return
	}
	ev.Respond(dispatch.ValueResponse(value))
}
