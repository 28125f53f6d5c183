// Package report forwards item failures to Sentry when a DSN is configured.
// Every function is a no-op otherwise.
package report

import (
	"runtime"
	"time"

	gosentry "github.com/getsentry/sentry-go"
)

// Version is stamped into the release name.
var Version = "dev"

var enabled bool

// Init sets up the Sentry SDK for dsn. An empty dsn disables reporting.
func Init(dsn string) error {
	if dsn == "" {
		enabled = false
		return nil
	}
	err := gosentry.Init(gosentry.ClientOptions{
		Dsn:              dsn,
		Release:          "istat@" + Version,
		AttachStacktrace: true,
		SampleRate:       1.0,
	})
	if err != nil {
		return err
	}
	gosentry.ConfigureScope(func(scope *gosentry.Scope) {
		scope.SetTag("os", runtime.GOOS)
		scope.SetTag("arch", runtime.GOARCH)
		scope.SetTag("go_version", runtime.Version())
	})
	enabled = true
	return nil
}

func IsEnabled() bool {
	return enabled
}

// ItemError records an item failure tagged with the item's slot and name.
func ItemError(idx int, name string, err error) {
	if !enabled || err == nil {
		return
	}
	gosentry.WithScope(func(scope *gosentry.Scope) {
		scope.SetTag("item", name)
		scope.SetContext("item", map[string]interface{}{
			"index": idx,
			"name":  name,
		})
		gosentry.CaptureException(err)
	})
}

// Flush waits up to 2 seconds for buffered events to be sent.
func Flush() {
	if !enabled {
		return
	}
	gosentry.Flush(2 * time.Second)
}
