package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/ZentaChain/messageu-client/pkg/client"
	"github.com/ZentaChain/messageu-client/pkg/config"
	"github.com/ZentaChain/messageu-client/pkg/network"
	"github.com/ZentaChain/messageu-client/pkg/storage"
)

var (
	// Global flags
	cfgFile     string
	serverFlag  string
	dataDirFlag string
	verboseFlag bool

	// Shared state set during PersistentPreRun
	cfg     *config.Config
	session *client.Session
	history *storage.HistoryDB
)

// rootCmd starts the interactive menu when no subcommand is given.
var rootCmd = &cobra.Command{
	Use:   "messageu",
	Short: "MessageU client: register, exchange keys and send end-to-end encrypted messages",
	Long: `messageu talks to a MessageU server. Without a subcommand it starts the
interactive menu (110 register ... 152 send symmetric key, 0 exit).
The identity is kept in me.info and the server address in server.info,
both under the data directory.`,
	SilenceUsage:       true,
	SilenceErrors:      true,
	PersistentPreRunE:  openSession,
	PersistentPostRunE: closeSession,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMenu(cmd.Context(), session, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func openSession(cmd *cobra.Command, args []string) error {
	// post-run hooks are skipped when a command fails
	if err := closeSession(cmd, args); err != nil {
		log.Printf("⚠️  Failed to close history: %v", err)
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Override config with flags
	if serverFlag != "" {
		cfg.Server = serverFlag
	}
	if dataDirFlag != "" {
		cfg.DataDir = dataDirFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}

	if err := os.MkdirAll(cfg.DataDir, 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	addr, err := cfg.ServerAddress()
	if err != nil {
		return err
	}

	transport := network.NewTCPTransport(cfg.DialTimeout, cfg.ReadTimeout)
	transport.DialRetries = cfg.DialRetries
	transport.Verbose = cfg.Verbose

	session, err = client.New(client.Config{
		ServerAddr:  addr,
		Transport:   transport,
		Credentials: storage.NewCredentialStore(cfg.Path(cfg.Credentials)),
	})
	if err != nil {
		return err
	}

	history = nil
	if cfg.HistoryDB != "" {
		history, err = storage.NewHistoryDB(cfg.Path(cfg.HistoryDB), session.PrivateKeyDER())
		if err != nil {
			return fmt.Errorf("failed to open history: %w", err)
		}
		session.AttachHistory(history)
	}

	if cfg.Verbose {
		log.Printf("📡 Server %s", addr)
	}
	return nil
}

func closeSession(cmd *cobra.Command, args []string) error {
	if history == nil {
		return nil
	}
	err := history.Close()
	history = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "messageu.yaml", "config file (missing file means defaults)")
	rootCmd.PersistentFlags().StringVar(&serverFlag, "server", "", "server address, host:port or multiaddr (overrides server.info)")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "directory holding me.info, server.info and the history database")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "log every frame sent and received")
}
