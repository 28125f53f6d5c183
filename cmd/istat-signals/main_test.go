package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintsRange(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.JSONEq(t, `{"count":30,"sigrtmin":34,"sigrtmax":64}`, out.String())
}
