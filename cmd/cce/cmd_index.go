package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var indexCmd = &cobra.Command{
	Use:   "index [roots...]",
	Short: "Index one or more workspace roots",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	e, err := loadEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	logger.Info("indexing roots", zap.Strings("roots", args))
	progresses, err := e.IndexRoots(context.Background(), args)
	if err != nil {
		return err
	}
	for _, p := range progresses {
		fmt.Printf("%s: indexed=%d skipped=%d errors=%d elapsed=%s\n",
			p.Root, p.FilesIndexed, p.FilesSkipped, p.Errors, p.Elapsed)
	}
	return nil
}
