// Package cmd provides the command-line interface of the chatledger application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"chatledger/internal/application/common/slogger"
	"chatledger/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//nolint:gochecknoglobals // Standard Cobra CLI pattern for the root command
var rootCmd = newRootCmd()

// newRootCmd creates the base command when called without any subcommands.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chatledger",
		Short: "Turn chat transcripts into a categorized request ledger",
		Long: `ChatLedger reads exported chat transcripts, repairs export artifacts in the
message text and classifies the messages of tracked senders into work requests.

The system supports:
- Cleaning raw transcript exports
- Rule-based request classification with YAML rule tables
- CSV and JSON ledger exports with monthly and category summaries
- Optional persistence in PostgreSQL
- Optional request events on NATS JetStream`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "config file (default: ./configs/config.yaml)")
	cmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "json", "Log format (json, text)")
	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// globalBindings maps configuration keys to the persistent flags of the root command.
func globalBindings() map[string]string {
	return map[string]string{
		"log.level":  "log-level",
		"log.format": "log-format",
	}
}

// newViper creates a viper instance with defaults, the optional config file and the
// CHATLEDGER_ environment overrides.
func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()

	// Set defaults
	config.SetDefaults(v)

	// Set config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Environment variables
	v.SetEnvPrefix("CHATLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read configuration
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults and environment
	}
	return v, nil
}

// loadConfig builds the configuration for cmd. Flags named in bindings override the
// matching configuration keys when set on the command line.
func loadConfig(cmd *cobra.Command, bindings map[string]string) (*config.Config, error) {
	flags := cmd.Flags()

	cfgFile, err := flags.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read config flag: %w", err)
	}

	v, err := newViper(cfgFile)
	if err != nil {
		return nil, err
	}

	for _, set := range []map[string]string{globalBindings(), bindings} {
		for key, name := range set {
			flag := flags.Lookup(name)
			if flag == nil {
				return nil, fmt.Errorf("flag --%s is not defined on %s", name, cmd.Name())
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("error binding %s flag: %w", name, err)
			}
		}
	}

	cfg, err := config.New(v)
	if err != nil {
		return nil, err
	}

	if err := slogger.Configure(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("invalid log configuration: %w", err)
	}
	return cfg, nil
}
