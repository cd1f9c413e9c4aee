package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Soptq/shapeshift-lib/internal/core/domain"
	"github.com/Soptq/shapeshift-lib/internal/health"
	"github.com/Soptq/shapeshift-lib/internal/infra/chain"
	redisclient "github.com/Soptq/shapeshift-lib/internal/infra/redis"
	"github.com/Soptq/shapeshift-lib/internal/subscription"
)

var publish bool

var watchCmd = &cobra.Command{
	Use:   "watch [address...]",
	Short: "Stream transactions for addresses until interrupted",
	Long: `watch subscribes to each address on the selected chain and prints every
normalized transaction event. With --publish events are also published to
Redis on the txs:<caip2>:<address> channel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&publish, "publish", false, "publish events to Redis")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	adapter, err := a.adapter()
	if err != nil {
		return err
	}

	var publisher *redisclient.Client
	if publish {
		publisher, err = redisclient.NewClient(a.cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			_ = publisher.Close()
		}()
	}

	monitor := health.NewMonitor(a.providers...)
	monitor.CountSubscriptions(a.activeSubscriptions)
	server := health.NewServer(monitor, a.cfg.Server.Port)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Health server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Stop(shutdownCtx)
	}()

	events := make(chan domain.TxEvent, 64)
	subs := make([]*subscription.Subscription, 0, len(args))
	for _, address := range args {
		sub, err := adapter.SubscribeTxs(ctx, chain.SubscribeTxsInput{Address: address},
			func(ev domain.TxEvent) {
				select {
				case events <- ev:
				case <-ctx.Done():
				}
			},
			func(err error) {
				slog.Error("Subscription error", "address", address, "error", err)
			},
		)
		if err != nil {
			return err
		}
		subs = append(subs, sub)
		slog.Info("Watching address", "address", address, "subscription", sub.ID())
	}

	allDone := make(chan struct{})
	go func() {
		for _, sub := range subs {
			<-sub.Done()
		}
		close(allDone)
	}()

	for {
		select {
		case ev := <-events:
			if err := printJSON(cmd, ev); err != nil {
				return err
			}
			if publisher == nil {
				continue
			}
			if _, err := publisher.Publish(ctx, ev); err != nil {
				slog.Error("Publish failed", "txid", ev.TxID, "error", err)
			}
		case <-allDone:
			return errors.New("all subscriptions terminated")
		case <-ctx.Done():
			slog.Info("Received signal, shutting down...")
			return nil
		}
	}
}
