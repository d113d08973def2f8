package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fwojciec/chatstream"
	bt "github.com/fwojciec/chatstream/bubbletea"
	"github.com/spf13/cobra"
)

func (a *app) newChatCmd() *cobra.Command {
	var conversationID, modelID string
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Open the interactive terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.chat(cmd.Context(), conversationID, modelID)
		},
	}
	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Continue the conversation with this id")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Model id (default from config)")
	return cmd
}

func (a *app) chat(ctx context.Context, conversationID, modelID string) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	store, closeStore, err := openStore(a.cfg.Store)
	if err != nil {
		return err
	}
	defer closeStore()

	exchange, err := a.newExchange(store)
	if err != nil {
		return err
	}
	conv, err := a.conversation(ctx, store, conversationID, modelID)
	if err != nil {
		return err
	}

	// The TUI only renders snapshots; conv is owned by the send goroutine.
	send := func(ctx context.Context, msg chatstream.Message, sig *chatstream.Signal, onSnapshot func(chatstream.Draft)) (chatstream.Outcome, error) {
		return exchange.Send(ctx, &conv, msg, sig,
			chatstream.WithSnapshotHandler(onSnapshot),
			chatstream.WithUser(a.cfg.User),
		)
	}

	if err := bt.Run(ctx, bt.New(send, conv, chatstream.DefaultTheme())); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}
	return nil
}
