package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cce/internal/relevance"
)

var (
	rankCurrentFile string
	rankTopN        int
)

var rankCmd = &cobra.Command{
	Use:   "rank <root> <query>",
	Short: "Rank indexed files by relevance to a query",
	Args:  cobra.ExactArgs(2),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().StringVar(&rankCurrentFile, "current-file", "", "path of the file currently open, for import-chain scoring")
	rankCmd.Flags().IntVar(&rankTopN, "top", 10, "number of ranked results to print")
}

func runRank(cmd *cobra.Command, args []string) error {
	root, query := args[0], args[1]

	e, err := loadEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	logger.Info("indexing before ranking", zap.String("root", root))
	if _, err := e.IndexRoots(context.Background(), []string{root}); err != nil {
		return err
	}

	importsOf, importedBy := e.ImportMaps()
	scores := e.Rank(relevance.Input{
		CurrentFile: rankCurrentFile,
		Query:       query,
		Candidates:  e.AllFiles(),
		ImportsOf:   importsOf,
		ImportedBy:  importedBy,
	})

	limit := rankTopN
	if limit <= 0 || limit > len(scores) {
		limit = len(scores)
	}
	for _, s := range scores[:limit] {
		fmt.Printf("%.4f  conf=%.2f  %s\n", s.Score, s.Confidence, s.Path)
	}
	return nil
}
