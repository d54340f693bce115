package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"github.com/ZentaChain/messageu-client/pkg/client"
	"github.com/ZentaChain/messageu-client/pkg/crypto"
)

// The menu and the one-shot subcommands share these; each prints its own
// success line and returns the error for the caller to render.

func doRegister(ctx context.Context, s *client.Session, out io.Writer, name string) error {
	id, err := s.Register(ctx, name)
	if err != nil && id.IsZero() {
		return err
	}
	printOK(out, "Registration of a new user ended successfully.")
	fmt.Fprintf(out, "Client ID: %s\n", hex.EncodeToString(id[:]))
	return err
}

func doClients(ctx context.Context, s *client.Session, out io.Writer) error {
	entries, err := s.ListClients(ctx)
	if err != nil {
		return err
	}
	printClients(out, entries)
	return nil
}

func doPublicKey(ctx context.Context, s *client.Session, out io.Writer, name string) error {
	key, err := s.GetPublicKey(ctx, name)
	if err != nil {
		return err
	}
	printOK(out, "Public key for %s has been received", name)
	fmt.Fprintf(out, "Fingerprint: %s\n", crypto.Fingerprint(key))
	return nil
}

func doInbox(ctx context.Context, s *client.Session, out io.Writer) error {
	messages, err := s.FetchMessages(ctx)
	if err != nil {
		return err
	}
	printInbox(out, messages)
	return nil
}

func doSend(ctx context.Context, s *client.Session, out io.Writer, name, text string) error {
	if _, err := s.SendMessage(ctx, name, text); err != nil {
		return err
	}
	printOK(out, "Message sent successfully to '%s'.", name)
	return nil
}

func doRequestKey(ctx context.Context, s *client.Session, out io.Writer, name string) error {
	if _, err := s.RequestSymmetricKey(ctx, name); err != nil {
		return err
	}
	printOK(out, "Symmetric key request sent successfully to '%s'.", name)
	return nil
}

func doSendKey(ctx context.Context, s *client.Session, out io.Writer, name string) error {
	if _, err := s.ExchangeKey(ctx, name); err != nil {
		return err
	}
	printOK(out, "Symmetric key sent successfully to '%s'.", name)
	return nil
}

func doHistory(s *client.Session, out io.Writer, name string, limit int) error {
	messages, err := s.History(name, limit)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No stored messages with "+name+"."))
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render("Conversation with "+name+":"))
	// stored newest first, printed oldest first
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		direction := "<-"
		if m.IsOutgoing {
			direction = "->"
		}
		stamp := time.Unix(m.Timestamp, 0).Format("2006-01-02 15:04:05")
		fmt.Fprintf(out, "%s %s %s %s\n", dimStyle.Render(stamp), direction, string(m.Content), dimStyle.Render("["+string(m.Status)+"]"))
	}
	return nil
}

func doConversations(s *client.Session, out io.Writer) error {
	conversations, err := s.Conversations()
	if err != nil {
		return err
	}
	if len(conversations) == 0 {
		fmt.Fprintln(out, dimStyle.Render("No stored conversations."))
		return nil
	}

	fmt.Fprintln(out, headerStyle.Render("Conversations:"))
	for _, c := range conversations {
		direction := "<-"
		if c.LastOutgoing {
			direction = "->"
		}
		fmt.Fprintf(out, "%-20s %s %s %s\n", c.PeerName, dimStyle.Render(fmt.Sprintf("(%d)", c.MessageCount)), direction, c.LastMessage)
	}
	return nil
}

func doClearHistory(s *client.Session, out io.Writer, name string) error {
	n, err := s.ClearHistory(name)
	if err != nil {
		return err
	}
	printOK(out, "Deleted %d stored message(s) with %s.", n, name)
	return nil
}

func doKnownContacts(s *client.Session, out io.Writer) error {
	contacts, err := s.KnownContacts()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, headerStyle.Render("Known clients:"))
	if len(contacts) == 0 {
		fmt.Fprintln(out, dimStyle.Render("(empty)"))
		return nil
	}
	for _, c := range contacts {
		marker := ""
		if len(c.PublicKey) > 0 {
			marker = okStyle.Render(" [key]")
		}
		fmt.Fprintf(out, "%-32s %s%s\n", c.Name, dimStyle.Render(c.ClientID), marker)
	}
	return nil
}
