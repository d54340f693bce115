package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/ZentaChain/messageu-client/pkg/client"
	"github.com/ZentaChain/messageu-client/pkg/protocol"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("2"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))
)

const endOfMessage = "-----<EOM>-----"

func printOK(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf(format, args...)))
}

func printError(out io.Writer, err error) {
	fmt.Fprintln(out, errorStyle.Render(describeError(err)))
}

// describeError turns the client error taxonomy into one line for the terminal
func describeError(err error) string {
	var serverErr *protocol.ServerError
	switch {
	case errors.As(err, &serverErr):
		return "server responded with an error: " + serverErr.Message
	case errors.Is(err, protocol.ErrAlreadyRegistered):
		return "Error: You already registered."
	case errors.Is(err, protocol.ErrInvalidName):
		return "Error: invalid username, use 1-254 printable characters: " + err.Error()
	case errors.Is(err, protocol.ErrNotRegistered):
		return "Error: register first (110)."
	case errors.Is(err, protocol.ErrUnknownPeer):
		return "Error: unknown user, refresh the clients list (120). " + err.Error()
	case errors.Is(err, protocol.ErrNoSessionKey):
		return "Error: no symmetric key with this user, send one (152) or request one (151)."
	case errors.Is(err, protocol.ErrKeyFormat):
		return "Error: public key not found or malformed, request it first (130)."
	case errors.Is(err, protocol.ErrTransport):
		return "Error: server unreachable: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

func printClients(out io.Writer, entries []client.DirectoryEntry) {
	fmt.Fprintln(out, headerStyle.Render("Clients list:"))
	if len(entries) == 0 {
		fmt.Fprintln(out, dimStyle.Render("(empty)"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%-32s %s\n", e.Name, dimStyle.Render(hex.EncodeToString(e.ID[:])))
	}
}

func printInbox(out io.Writer, messages []client.InboxMessage) {
	if len(messages) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No waiting messages."))
		return
	}
	for _, m := range messages {
		content := m.Content
		if m.Err != nil {
			content = warnStyle.Render(displayFailure(m))
		}
		fmt.Fprintf(out, "From: %s\nContent:\n%s\n%s\n\n", m.FromName, content, endOfMessage)
	}
}

func displayFailure(m client.InboxMessage) string {
	switch {
	case errors.Is(m.Err, protocol.ErrNoSessionKey):
		return "can't decrypt message"
	case errors.Is(m.Err, client.ErrUnsupportedMessage):
		return fmt.Sprintf("[%s] (not supported)", protocol.MessageTypeName(m.Type))
	default:
		return m.Err.Error()
	}
}
