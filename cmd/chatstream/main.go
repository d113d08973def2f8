// Command chatstream talks to a streaming chat backend that answers with
// newline-delimited JSON, rendering the answer as it arrives.
//
// Usage:
//
//	chatstream send [flags] [message...]   stream one answer to stdout
//	chatstream chat [flags]                interactive terminal UI
//	chatstream list                        stored conversations
//	chatstream rm <id>                     delete a conversation
//
// Configuration is read from $XDG_CONFIG_HOME/chatstream/config.yaml unless
// --config is given. CHATSTREAM_API_KEY supplies model keys left empty in
// the file.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fwojciec/chatstream"
	"github.com/fwojciec/chatstream/ndjson"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Getenv).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

// app holds the state shared by all subcommands once the root command has
// loaded the configuration.
type app struct {
	configPath string
	verbose    bool
	getenv     func(string) string

	cfg    Config
	logger *slog.Logger
}

func newRootCmd(getenv func(string) string) *cobra.Command {
	a := &app{getenv: getenv}

	root := &cobra.Command{
		Use:           appName,
		Short:         "Stream answers from a chat backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to config file (default $XDG_CONFIG_HOME/chatstream/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.newSendCmd(),
		a.newChatCmd(),
		a.newListCmd(),
		a.newRemoveCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	level := slog.LevelInfo
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	path := a.configPath
	if path == "" {
		dir, err := defaultConfigDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.yaml")
	}
	cfg, err := loadConfig(path, a.getenv)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger.Debug("Loaded config",
		slog.String("path", path),
		slog.String("store", cfg.Store.Driver),
		slog.Int("models", len(cfg.Models)))
	return nil
}

// newExchange wires the NDJSON backend and store into an Exchange.
func (a *app) newExchange(store chatstream.Store) (*chatstream.Exchange, error) {
	if a.cfg.Endpoint == "" {
		return nil, fmt.Errorf("no endpoint configured")
	}
	backend := ndjson.New(a.cfg.Endpoint, ndjson.WithLogger(a.logger))
	return chatstream.NewExchange(backend, store, a.logger), nil
}

// conversation loads the conversation with the given id, or starts a new one
// when id is empty. A non-empty modelID overrides the conversation's model.
// Stored conversations carry no key, so the model is always re-resolved
// from the config.
func (a *app) conversation(ctx context.Context, store chatstream.Store, id, modelID string) (chatstream.Conversation, error) {
	if id == "" {
		return chatstream.Conversation{
			ID:          uuid.NewString(),
			Name:        chatstream.DefaultConversationName,
			Model:       a.cfg.model(modelID, a.getenv),
			Prompt:      a.cfg.Prompt,
			Temperature: a.cfg.Temperature,
		}, nil
	}

	conv, err := store.Conversation(ctx, id)
	if err != nil {
		return chatstream.Conversation{}, err
	}
	if modelID == "" {
		modelID = conv.Model.ID
	}
	conv.Model = a.cfg.model(modelID, a.getenv)
	return conv, nil
}
