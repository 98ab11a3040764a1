package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var serveStatsInterval time.Duration

var serveStatsCmd = &cobra.Command{
	Use:   "serve-stats",
	Short: "Print background worker pool statistics, optionally on a poll interval",
	Args:  cobra.NoArgs,
	RunE:  runServeStats,
}

func init() {
	serveStatsCmd.Flags().DurationVar(&serveStatsInterval, "interval", 0, "repeat and print stats every interval (default: print once)")
}

func runServeStats(cmd *cobra.Command, args []string) error {
	e, err := loadEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	printStats := func() {
		s := e.Stats()
		fmt.Printf("total=%d completed=%d failed=%d queued=%d active=%d avg_duration=%s\n",
			s.Total, s.Completed, s.Failed, s.Queued, s.ActiveWorkers, s.AvgDuration)
	}

	if serveStatsInterval <= 0 {
		printStats()
		return nil
	}

	ticker := time.NewTicker(serveStatsInterval)
	defer ticker.Stop()
	for range ticker.C {
		printStats()
	}
	return nil
}
