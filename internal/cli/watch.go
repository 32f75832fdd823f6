package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"legal-analyzer-be/pkg/events"
	pktNats "legal-analyzer-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var watchDurable string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print analysis events published to NATS",
	Long: `Subscribe to the analyzer's JetStream stream and print every event as it
arrives. Requires NATS_URL.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDurable, "durable", "", "Durable consumer name (empty for an ephemeral consumer)")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()
	if cfg.Events.NatsURL == "" {
		return fmt.Errorf("NATS_URL is not set")
	}

	sub, err := pktNats.NewSubscriber(cfg.Events.NatsURL, log)
	if err != nil {
		return err
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sub.Subscribe(ctx, pktNats.Subject(">"), watchDurable, printEvent); err != nil {
		return err
	}
	color.Cyan("Watching %s on %s (Ctrl+C to stop)", pktNats.Subject(">"), cfg.Events.NatsURL)

	<-ctx.Done()
	return nil
}

func printEvent(_ context.Context, event events.Event) error {
	data, err := json.Marshal(event.Payload())
	if err != nil {
		return err
	}

	label := color.New(color.FgYellow).SprintFunc()
	switch event.EventType() {
	case events.TypeDocumentAnalyzed:
		label = color.New(color.FgGreen).SprintFunc()
	case events.TypeDocumentRejected:
		label = color.New(color.FgRed).SprintFunc()
	}
	fmt.Printf("%s %s %s\n", event.Timestamp().Local().Format(time.TimeOnly), label(event.EventType()), data)
	return nil
}
