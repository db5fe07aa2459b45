package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/theirongolddev/kburn/internal/logger"
	"github.com/theirongolddev/kburn/internal/pipeline"
	"github.com/theirongolddev/kburn/internal/server"

	"github.com/spf13/cobra"
)

var (
	flagServeAddr         string
	flagServeInterval     time.Duration
	flagServeEventsBuffer int
	flagServeLogJSON      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve estimates over HTTP and watch inputs for changes",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running server's status",
	RunE:  runServeStatus,
}

func init() {
	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", 30*time.Second, "How often inputs are re-read")
	serveCmd.Flags().IntVar(&flagServeEventsBuffer, "events-buffer", 100, "Max in-memory events retained")
	serveCmd.Flags().BoolVar(&flagServeLogJSON, "log-json", false, "Log JSON lines instead of console output")

	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	addr := flagServeAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	level := flagLogLevel
	if !rootCmd.PersistentFlags().Changed("log-level") {
		level = "info"
	}
	srvLog := logger.New(logger.Config{Level: level, Pretty: !flagServeLogJSON})

	// Re-read config and readings on every call so edits show up without a restart.
	source := func() (pipeline.Input, error) {
		_, in, err := loadInput()
		return in, err
	}

	svc := server.New(server.Config{
		Addr:         addr,
		Interval:     flagServeInterval,
		EventsBuffer: flagServeEventsBuffer,
		Currency:     cfg.Tariff.Currency,
		Log:          srvLog,
	}, source)

	info("  kburn listening on http://%s\n", addr)
	info("  Re-reading inputs every %s\n", flagServeInterval)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	addr := flagServeAddr
	if addr == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr = cfg.Server.Addr
	}

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  Server: unreachable at %s (%v)\n", addr, err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  Server: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st server.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  Server: malformed response (%v)\n", err)
		return nil
	}
	if flagJSON {
		return printJSON(st)
	}

	fmt.Printf("  Address: http://%s\n", addr)
	fmt.Printf("  Up since: %s\n", st.StartedAt.Local().Format(time.RFC3339))
	if st.LastPollAt.IsZero() {
		fmt.Printf("  Last poll: pending\n")
	} else {
		fmt.Printf("  Last poll: %s (%d total)\n", st.LastPollAt.Local().Format(time.RFC3339), st.PollCount)
	}
	if st.Summary != nil {
		est := st.Summary.Estimate
		fmt.Printf("  Daily usage: %.2f kWh\n", est.DailyKWh)
		fmt.Printf("  Days remaining: %.1f\n", est.DaysRemaining)
		fmt.Printf("  Best cut: %.1f%% (+%.1f days)\n", est.OptimalReduction*100, est.DaysGained)
	}
	fmt.Printf("  Events: %d, subscribers: %d\n", st.EventCount, st.SubscriberCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}
