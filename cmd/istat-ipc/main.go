// Command istat-ipc talks to a running istat over its control socket.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"istat/clicks"
	"istat/config"
	"istat/ipc"
)

var send = ipc.Send

var errFailed = errors.New("request failed")

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "istat-ipc: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var socket string
	root := &cobra.Command{
		Use:           "istat-ipc",
		Short:         "Send commands to a running istat",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&socket, "socket", "", "path of the istat socket (default $I3SOCK.istat or $SWAYSOCK.istat)")

	do := func(req ipc.Request) error {
		path := socket
		if path == "" {
			path = config.DefaultSocket()
		}
		if path == "" {
			return errors.New("no socket given and neither I3SOCK nor SWAYSOCK is set")
		}
		reply, err := send(path, req)
		if err != nil {
			return err
		}
		return printReply(out, reply)
	}
	simple := func(use, short string, kind ipc.RequestKind) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return do(ipc.Request{Kind: kind})
			},
		}
	}

	root.AddCommand(
		simple("info", "Show the index and name of every item", ipc.ReqInfo),
		simple("get-bar", "Print the blocks currently on the bar", ipc.ReqGetBar),
		simple("get-config", "Print the running configuration", ipc.ReqGetConfig),
		simple("get-theme", "Print the current theme", ipc.ReqGetTheme),
		simple("refresh-all", "Send a refresh to every item", ipc.ReqRefreshAll),
		simple("shutdown", "Stop istat", ipc.ReqShutdown),
		&cobra.Command{
			Use:   "set-theme <json>",
			Short: "Replace the theme",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				if !json.Valid([]byte(args[0])) {
					return errors.New("theme is not valid json")
				}
				return do(ipc.Request{Kind: ipc.ReqSetTheme, Theme: json.RawMessage(args[0])})
			},
		},
		&cobra.Command{
			Use:   "signal <target>",
			Short: "Send a refresh signal to an item",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return do(barEvent(args[0], ipc.Event{Kind: ipc.EventSignal}))
			},
		},
		newClickCmd(do),
		newCustomCmd(do),
	)
	return root
}

func barEvent(target string, ev ipc.Event) ipc.Request {
	return ipc.Request{Kind: ipc.ReqBarEvent, Event: &ipc.BarEvent{Instance: target, Event: ev}}
}

func newClickCmd(do func(ipc.Request) error) *cobra.Command {
	var (
		mods   []string
		c      clicks.Click
		button clicks.Button
	)
	cmd := &cobra.Command{
		Use:   "click <target> <button>",
		Short: "Send a click to an item",
		Long:  "Send a click to an item. Buttons: left, middle, right, scroll_up, scroll_down.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			var err error
			if button, err = parseButton(args[1]); err != nil {
				return err
			}
			c.Button = button
			if c.Modifiers, err = parseModifiers(mods); err != nil {
				return err
			}
			return do(barEvent(args[0], ipc.Event{Kind: ipc.EventClick, Click: &c}))
		},
	}
	f := cmd.Flags()
	f.StringSliceVarP(&mods, "modifiers", "m", nil, "held modifiers: control, mod1 to mod5, shift")
	f.IntVarP(&c.X, "x", "x", 0, "x coordinate")
	f.IntVarP(&c.Y, "y", "y", 0, "y coordinate")
	f.IntVar(&c.RelativeX, "relative-x", 0, "x coordinate relative to the block")
	f.IntVar(&c.RelativeY, "relative-y", 0, "y coordinate relative to the block")
	f.IntVar(&c.OutputX, "output-x", 0, "x coordinate relative to the output")
	f.IntVar(&c.OutputY, "output-y", 0, "y coordinate relative to the output")
	f.IntVarP(&c.Width, "width", "W", 0, "block width")
	f.IntVarP(&c.Height, "height", "H", 0, "block height")
	return cmd
}

func newCustomCmd(do func(ipc.Request) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "custom <target> [args...]",
		Short: "Send a custom command to an item",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return do(barEvent(args[0], ipc.Event{Kind: ipc.EventCustom, Args: args[1:]}))
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func parseButton(s string) (clicks.Button, error) {
	for _, b := range []clicks.Button{clicks.Left, clicks.Middle, clicks.Right, clicks.ScrollUp, clicks.ScrollDown} {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

func parseModifiers(names []string) ([]clicks.Modifier, error) {
	out := make([]clicks.Modifier, 0, len(names))
	for _, n := range names {
		var m clicks.Modifier
		switch strings.ToLower(n) {
		case "control", "ctrl":
			m = clicks.Control
		case "shift":
			m = clicks.Shift
		case "mod1":
			m = clicks.Mod1
		case "mod2":
			m = clicks.Mod2
		case "mod3":
			m = clicks.Mod3
		case "mod4":
			m = clicks.Mod4
		case "mod5":
			m = clicks.Mod5
		default:
			return nil, fmt.Errorf("unknown modifier %q", n)
		}
		out = append(out, m)
	}
	return out, nil
}

// printReply writes help as text, a value as json and anything else as the
// reply itself. A failed result returns errFailed.
func printReply(w io.Writer, r ipc.Reply) error {
	switch r.Kind {
	case ipc.ReplyHelp:
		fmt.Fprint(w, r.Help)
		if !strings.HasSuffix(r.Help, "\n") {
			fmt.Fprintln(w)
		}
		return nil
	case ipc.ReplyValue:
		fmt.Fprintln(w, string(r.Value))
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	if !r.IsSuccess() {
		return errFailed
	}
	return nil
}
