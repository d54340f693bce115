package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ZentaChain/messageu-client/pkg/client"
)

// Menu codes, as printed by the original clients
const (
	menuExit       = 0
	menuRegister   = 110
	menuClients    = 120
	menuPublicKey  = 130
	menuInbox      = 140
	menuSendText   = 150
	menuRequestKey = 151
	menuSendKey    = 152
)

type menu struct {
	session *client.Session
	in      *bufio.Scanner
	out     io.Writer
}

// runMenu reads menu choices from in until 0 or end of input
func runMenu(ctx context.Context, s *client.Session, in io.Reader, out io.Writer) error {
	m := &menu{
		session: s,
		in:      bufio.NewScanner(in),
		out:     out,
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		m.printMenu()
		line, ok := m.readLine()
		if !ok {
			return nil
		}

		choice, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Fprintln(m.out, errorStyle.Render("Invalid input. Please enter a number."))
			continue
		}
		if choice == menuExit {
			fmt.Fprintln(m.out, "Exiting...")
			return nil
		}

		if err := m.dispatch(ctx, choice); err != nil {
			printError(m.out, err)
		}
	}
}

func (m *menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, titleStyle.Render("MessageU client at your service."))
	if m.session.Registered() {
		fmt.Fprintln(m.out, dimStyle.Render("Signed in as "+m.session.Name()))
	}
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, "110) Register")
	fmt.Fprintln(m.out, "120) Request for clients list")
	fmt.Fprintln(m.out, "130) Request for public key")
	fmt.Fprintln(m.out, "140) Fetch waiting messages")
	fmt.Fprintln(m.out, "150) Send a text message")
	fmt.Fprintln(m.out, "151) Send a request for symmetric key")
	fmt.Fprintln(m.out, "152) Send your symmetric key")
	fmt.Fprintln(m.out, "0) Exit client")
	fmt.Fprint(m.out, "? ")
}

func (m *menu) dispatch(ctx context.Context, choice int) error {
	s := m.session

	switch choice {
	case menuRegister:
		if s.Registered() {
			fmt.Fprintln(m.out, errorStyle.Render("Error: You already registered."))
			return nil
		}
		name, ok := m.prompt("Enter your username: ")
		if !ok {
			return nil
		}
		return doRegister(ctx, s, m.out, name)

	case menuClients:
		return doClients(ctx, s, m.out)

	case menuPublicKey:
		name, ok := m.prompt("Enter recipient username: ")
		if !ok {
			return nil
		}
		return doPublicKey(ctx, s, m.out, name)

	case menuInbox:
		return doInbox(ctx, s, m.out)

	case menuSendText:
		name, ok := m.prompt("Enter recipient username: ")
		if !ok {
			return nil
		}
		fmt.Fprint(m.out, "Enter your message: ")
		text, ok := m.readLine()
		if !ok {
			return nil
		}
		return doSend(ctx, s, m.out, name, text)

	case menuRequestKey:
		name, ok := m.prompt("Enter recipient username for symmetric key request: ")
		if !ok {
			return nil
		}
		return doRequestKey(ctx, s, m.out, name)

	case menuSendKey:
		name, ok := m.prompt("Enter recipient username: ")
		if !ok {
			return nil
		}
		return doSendKey(ctx, s, m.out, name)

	default:
		fmt.Fprintln(m.out, errorStyle.Render("Invalid choice. Please try again."))
		return nil
	}
}

// prompt reads a trimmed single-word answer such as a username
func (m *menu) prompt(label string) (string, bool) {
	fmt.Fprint(m.out, label)
	line, ok := m.readLine()
	return strings.TrimSpace(line), ok
}

func (m *menu) readLine() (string, bool) {
	if !m.in.Scan() {
		return "", false
	}
	return strings.TrimRight(m.in.Text(), "\r"), true
}
