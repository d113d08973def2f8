package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fwojciec/chatstream"
	"github.com/spf13/cobra"
)

func (a *app) newSendCmd() *cobra.Command {
	var (
		conversationID string
		modelID        string
		deleteCount    int
	)
	cmd := &cobra.Command{
		Use:   "send [message...]",
		Short: "Send one message and stream the answer to stdout",
		Long: `Send one message and stream the answer to stdout.

The message is read from stdin when no arguments are given. Interrupting
with Ctrl+C stops the stream and keeps the partial answer.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read message: %w", err)
				}
				text = string(data)
			}
			return a.send(cmd, strings.TrimSpace(text), conversationID, modelID, deleteCount)
		},
	}
	cmd.Flags().StringVarP(&conversationID, "conversation", "c", "", "Continue the conversation with this id")
	cmd.Flags().StringVarP(&modelID, "model", "m", "", "Model id (default from config)")
	cmd.Flags().IntVar(&deleteCount, "delete", 0, "Drop this many trailing messages before sending (regenerate)")
	return cmd
}

func (a *app) send(cmd *cobra.Command, text, conversationID, modelID string, deleteCount int) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

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

	// An interrupt stops the stream at the next pull and aborts a pending
	// read.
	sig := &chatstream.Signal{}
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)
	go func() {
		select {
		case <-interrupts:
			sig.Stop()
			cancel()
		case <-ctx.Done():
		}
	}()

	p := &deltaPrinter{w: cmd.OutOrStdout()}
	out, err := exchange.Send(ctx, &conv, chatstream.UserMessage(text), sig,
		chatstream.WithSnapshotHandler(p.print),
		chatstream.WithDeleteCount(deleteCount),
		chatstream.WithUser(a.cfg.User),
	)
	if p.printed > 0 {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	if err != nil {
		return err
	}
	if out.State == chatstream.StreamStateCancelled {
		fmt.Fprintln(cmd.ErrOrStderr(), "stopped")
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "conversation %s\n", conv.ID)
	return nil
}

// deltaPrinter writes the part of the assistant answer that has not been
// written yet. Snapshots carry cumulative text, so each one extends the
// previous.
type deltaPrinter struct {
	w       io.Writer
	printed int
}

func (p *deltaPrinter) print(d chatstream.Draft) {
	msg, ok := d.LastAssistant()
	if !ok || len(msg.Content) <= p.printed {
		return
	}
	io.WriteString(p.w, msg.Content[p.printed:])
	p.printed = len(msg.Content)
}
