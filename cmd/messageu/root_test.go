package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

// executeCLI runs one invocation, as a separate process would
func executeCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	// flag values outlive Execute within one process
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func TestCLIOneShotFlow(t *testing.T) {
	addr := startRelay(t)
	aliceDir := t.TempDir()
	bobDir := t.TempDir()

	alice := func(args ...string) (string, error) {
		return executeCLI(t, append([]string{"--server", addr, "--data-dir", aliceDir}, args...)...)
	}
	bob := func(args ...string) (string, error) {
		return executeCLI(t, append([]string{"--server", addr, "--data-dir", bobDir}, args...)...)
	}

	out, err := alice("register", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Registration of a new user ended successfully.")
	assert.FileExists(t, filepath.Join(aliceDir, "me.info"))

	_, err = bob("register", "bob")
	require.NoError(t, err)

	_, err = alice("register", "alice")
	assert.ErrorIs(t, err, protocol.ErrAlreadyRegistered)

	out, err = alice("clients")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "bob")

	out, err = alice("pubkey", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Fingerprint:")

	out, err = alice("send-key", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "Symmetric key sent successfully to 'bob'.")

	// the key comes back from the history database
	out, err = alice("send", "bob", "hello", "from", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Message sent successfully to 'bob'.")

	out, err = bob("inbox")
	require.NoError(t, err)
	assert.Contains(t, out, "From: alice")
	assert.Contains(t, out, "hello from alice")

	out, err = bob("inbox")
	require.NoError(t, err)
	assert.Contains(t, out, "No waiting messages.")

	out, err = bob("request-key", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Symmetric key request sent successfully to 'alice'.")

	out, err = alice("history", "bob")
	require.NoError(t, err)
	assert.Contains(t, out, "hello from alice")

	out, err = bob("history", "alice", "--limit", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "hello from alice")

	out, err = bob("history")
	require.NoError(t, err)
	assert.Contains(t, out, "Conversations:")
	assert.Contains(t, out, "alice")

	out, err = bob("clients", "--cached")
	require.NoError(t, err)
	assert.Contains(t, out, "Known clients:")
	assert.Contains(t, out, "alice")

	_, err = bob("history", "--clear")
	assert.Error(t, err)

	out, err = bob("history", "alice", "--clear")
	require.NoError(t, err)
	assert.Contains(t, out, "stored message(s) with alice.")

	out, err = bob("history", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored messages with alice.")
}

func TestCLIRequiresRegistration(t *testing.T) {
	addr := startRelay(t)

	_, err := executeCLI(t, "--server", addr, "--data-dir", t.TempDir(), "clients")
	assert.ErrorIs(t, err, protocol.ErrNotRegistered)
}

func TestCLIInvalidServer(t *testing.T) {
	_, err := executeCLI(t, "--server", "not-an-address", "--data-dir", t.TempDir(), "clients")
	assert.Error(t, err)
}
