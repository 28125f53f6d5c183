package logging

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInitializeSilencesBelowLevel(t *testing.T) {
	t.Cleanup(func() { Initialize(os.Stderr, LevelInfo) })

	var buf bytes.Buffer
	Initialize(&buf, LevelWarn)
	ErrorLog.Print("boom")
	WarnLog.Print("careful")
	InfoLog.Print("hello")
	DebugLog.Print("noise")

	out := buf.String()
	assert.Contains(t, out, "ERROR boom")
	assert.Contains(t, out, "WARN careful")
	assert.NotContains(t, out, "hello")
	assert.NotContains(t, out, "noise")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, LevelError, ParseLevel("error"))
	assert.Equal(t, LevelWarn, ParseLevel(" warn "))
	assert.Equal(t, LevelInfo, ParseLevel(""))
	assert.Equal(t, LevelInfo, ParseLevel("loud"))
}
