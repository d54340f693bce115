package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ZentaChain/messageu-client/pkg/api"
)

var registerCmd = &cobra.Command{
	Use:   "register <name>",
	Short: "Register with the server and write me.info",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return doRegister(cmd.Context(), session, cmd.OutOrStdout(), args[0])
	},
}

var clientsCached bool

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List the clients registered on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if clientsCached {
			return doKnownContacts(session, cmd.OutOrStdout())
		}
		return doClients(cmd.Context(), session, cmd.OutOrStdout())
	},
}

var pubkeyCmd = &cobra.Command{
	Use:   "pubkey <name>",
	Short: "Fetch a client's public key and show its fingerprint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return doPublicKey(cmd.Context(), session, cmd.OutOrStdout(), args[0])
	},
}

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Fetch and decode waiting messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshDirectory(cmd.Context()); err != nil {
			return err
		}
		return doInbox(cmd.Context(), session, cmd.OutOrStdout())
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <name> <text>...",
	Short: "Send a text message encrypted with the shared symmetric key",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshDirectory(cmd.Context()); err != nil {
			return err
		}
		return doSend(cmd.Context(), session, cmd.OutOrStdout(), args[0], strings.Join(args[1:], " "))
	},
}

var requestKeyCmd = &cobra.Command{
	Use:   "request-key <name>",
	Short: "Ask a client to send you a symmetric key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := refreshDirectory(cmd.Context()); err != nil {
			return err
		}
		return doRequestKey(cmd.Context(), session, cmd.OutOrStdout(), args[0])
	},
}

var sendKeyCmd = &cobra.Command{
	Use:   "send-key <name>",
	Short: "Generate a symmetric key and send it wrapped with the client's public key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return doSendKey(cmd.Context(), session, cmd.OutOrStdout(), args[0])
	},
}

var (
	historyLimit int
	historyClear bool
)

var historyCmd = &cobra.Command{
	Use:   "history [name]",
	Short: "Show the stored conversation with a client, or list conversations",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			if historyClear {
				return errors.New("--clear needs a client name")
			}
			return doConversations(session, cmd.OutOrStdout())
		}
		if historyClear {
			return doClearHistory(session, cmd.OutOrStdout(), args[0])
		}
		return doHistory(session, cmd.OutOrStdout(), args[0], historyLimit)
	},
}

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the session over a local HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		config := api.DefaultConfig()
		config.ListenAddr = cfg.API.Listen
		config.EnableCORS = cfg.API.EnableCORS
		config.RateLimit = cfg.API.RateLimit
		if serveListen != "" {
			config.ListenAddr = serveListen
		}

		return api.NewServer(session, config).Start(ctx)
	},
}

// refreshDirectory fetches the listing once per process. Peer names only
// resolve after a listing, which the menu leaves to the user (120).
func refreshDirectory(ctx context.Context) error {
	if !session.Registered() || len(session.Directory()) > 0 {
		return nil
	}
	_, err := session.ListClients(ctx)
	return err
}

func init() {
	clientsCmd.Flags().BoolVar(&clientsCached, "cached", false, "show the directory saved in the history database without contacting the server")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 50, "maximum number of messages to show")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete the stored conversation")
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides api.listen)")

	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(pubkeyCmd)
	rootCmd.AddCommand(inboxCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(requestKeyCmd)
	rootCmd.AddCommand(sendKeyCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}
