package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/querydsl/internal/events"
	"github.com/alfredjeanlab/querydsl/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:               "watch",
	Short:             "Stream member and team change events",
	GroupID:           "system",
	Args:              cobra.NoArgs,
	PersistentPreRunE: skipClient,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats")
		if natsURL == "" {
			natsURL = os.Getenv("QD_NATS_URL")
		}
		if natsURL == "" {
			natsURL = activeRemoteNATSURL()
		}
		if natsURL == "" {
			return fmt.Errorf("no NATS URL: pass --nats, set QD_NATS_URL or add one to the active remote")
		}

		sub, err := events.NewNATSSubscriber(natsURL,
			nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
				log.Printf("nats: disconnected: %v", err)
			}),
			nats.ReconnectHandler(func(_ *nats.Conn) {
				log.Printf("nats: reconnected")
			}),
		)
		if err != nil {
			return fmt.Errorf("connecting to NATS: %w", err)
		}
		defer sub.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watchEvents(ctx, sub, cmd.OutOrStdout())
	},
}

// watchEvents prints every event published under events.TopicAll until ctx
// is done or the subscription closes.
func watchEvents(ctx context.Context, sub events.Subscriber, w io.Writer) error {
	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if err := printEvent(w, msg); err != nil {
				return err
			}
		}
	}
}

func printEvent(w io.Writer, msg events.Message) error {
	if jsonOutput {
		_, err := fmt.Fprintf(w, "%s\n", msg.Data)
		return err
	}

	ev, err := msg.Decode()
	if err != nil {
		_, err = fmt.Fprintf(w, "%s %s\n", ui.RenderMuted(msg.Topic), msg.Data)
		return err
	}

	var line string
	switch e := ev.(type) {
	case *events.TeamCreated:
		line = fmt.Sprintf("team %d %s created", e.Team.ID, e.Team.Name)
	case *events.MemberCreated:
		line = fmt.Sprintf("member %d %s created", e.Member.ID, e.Member.Username)
	case *events.MemberUpdated:
		line = fmt.Sprintf("member %d %s updated", e.Member.ID, e.Member.Username)
	case *events.MemberDeleted:
		line = fmt.Sprintf("member %d deleted", e.MemberID)
	case *events.MembersBulk:
		line = fmt.Sprintf("bulk %s affected %d members", e.Operation, e.Affected)
	}
	_, err = fmt.Fprintf(w, "%s %s\n", ui.RenderAccent(msg.Topic), line)
	return err
}

func init() {
	watchCmd.Flags().String("nats", "", "NATS URL (default: QD_NATS_URL or the active remote)")
}
