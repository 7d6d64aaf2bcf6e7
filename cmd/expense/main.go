package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Veraticus/smart-expense-tracker/internal/cli"
	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// rootOptions is shared by every command of one invocation.
type rootOptions struct {
	v       *viper.Viper
	cfgFile string
	envFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "expense",
		Short: "🧾 Smart Expense Tracker client",
		Long: `expense: a terminal client for the Smart Expense Tracker.

Upload receipt images, review the expenses parsed from them and see where
your money goes on the spending dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.initConfig(cmd)
		},
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default: $HOME/.config/expense/config.yaml)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	flags.String("api-url", "", "API base URL (default: "+config.DefaultBaseURL+")")
	flags.String("session", "", "session database path (default: "+config.DefaultSessionPath+")")
	flags.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	flags.String("log-format", config.DefaultLogFormat, "log format (console, json)")

	// Bind flags to viper
	_ = opts.v.BindPFlag("api.base_url", flags.Lookup("api-url"))
	_ = opts.v.BindPFlag("session.path", flags.Lookup("session"))
	_ = opts.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("logging.format", flags.Lookup("log-format"))

	// Add commands
	rootCmd.AddCommand(authCmd(opts))
	rootCmd.AddCommand(profileCmd(opts))
	rootCmd.AddCommand(expensesCmd(opts))
	rootCmd.AddCommand(receiptsCmd(opts))
	rootCmd.AddCommand(dashboardCmd(opts))
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, cli.FormatError(common.UserMessage(err)))
		}
		os.Exit(1)
	}
}

func (o *rootOptions) initConfig(_ *cobra.Command) error {
	// .env values become environment variables before viper reads them
	if err := config.LoadDotEnv(o.envFile); err != nil {
		return err
	}

	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		o.v.AddConfigPath(filepath.Join(home, ".config", "expense"))
		o.v.AddConfigPath(".")
		o.v.SetConfigName("config")
		o.v.SetConfigType("yaml")
	}

	// Environment variables
	o.v.SetEnvPrefix("EXPENSE")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	// Read config file
	if err := o.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := common.SetupLogger(o.v.GetString("logging.level"), o.v.GetString("logging.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "expense %s\n", version)
		},
	}
}
