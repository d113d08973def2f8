package main

import (
	"fmt"
	"io"

	"github.com/fwojciec/chatstream"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// nameWidth is the display width of the name column in list output.
const nameWidth = 32

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeStore, err := openStore(a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()

			convs, err := store.Conversations(cmd.Context())
			if err != nil {
				return err
			}
			writeConversations(cmd.OutOrStdout(), convs)
			return nil
		},
	}
}

func (a *app) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <id>",
		Short: "Delete a stored conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeStore, err := openStore(a.cfg.Store)
			if err != nil {
				return err
			}
			defer closeStore()
			return store.DeleteConversation(cmd.Context(), args[0])
		},
	}
}

// writeConversations prints one line per conversation. Names are cut and
// padded by display width so wide characters keep the columns aligned.
func writeConversations(w io.Writer, convs []chatstream.Conversation) {
	if len(convs) == 0 {
		fmt.Fprintln(w, "No conversations.")
		return
	}
	for _, c := range convs {
		name := runewidth.FillRight(runewidth.Truncate(c.Name, nameWidth, "…"), nameWidth)
		updated := "-"
		if !c.UpdatedAt.IsZero() {
			updated = c.UpdatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s  %s  %3d  %s\n", c.ID, name, len(c.Messages), updated)
	}
}
