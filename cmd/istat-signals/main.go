// Command istat-signals prints the real-time signal range items can use.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"istat/signals"
)

type signalRange struct {
	Count    int `json:"count"`
	SigRTMin int `json:"sigrtmin"`
	SigRTMax int `json:"sigrtmax"`
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "istat-signals: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:           "istat-signals",
		Short:         "Print the real-time signals available to items",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(*cobra.Command, []string) error {
			data, err := json.Marshal(signalRange{
				Count:    signals.RTMax - signals.RTMin,
				SigRTMin: signals.RTMin,
				SigRTMax: signals.RTMax,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		},
	}
}
