package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"cce/internal/compaction"
	"cce/internal/config"
	"cce/internal/model"
)

var (
	compactInputPath  string
	compactLevel      string
	compactMaxTokens  int
	compactTargetComp float64
)

// jsonMessage is the on-disk shape a transcript file is read/written in;
// model.Message itself carries no JSON tags since only the CLI boundary
// needs to serialize it.
type jsonMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonTranscript struct {
	Messages []jsonMessage `json:"messages"`
}

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Compact a transcript under a token or ratio budget",
	Args:  cobra.NoArgs,
	RunE:  runCompact,
}

func init() {
	compactCmd.Flags().StringVar(&compactInputPath, "input", "", "path to a JSON transcript file (default: stdin)")
	compactCmd.Flags().StringVar(&compactLevel, "level", "", "explicit level: light, moderate, or aggressive")
	compactCmd.Flags().IntVar(&compactMaxTokens, "max-tokens", 0, "auto-select a level to fit this token budget")
	compactCmd.Flags().Float64Var(&compactTargetComp, "target-compression", 0, "auto-select a level to hit this compression ratio")
}

func runCompact(cmd *cobra.Command, args []string) error {
	transcript, err := readTranscript(compactInputPath)
	if err != nil {
		return err
	}

	e, err := loadEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	opts := compaction.Options{
		MaxTokens:         compactMaxTokens,
		TargetCompression: compactTargetComp,
	}
	if compactLevel != "" {
		opts.Level = config.Level(compactLevel)
	}

	result, err := e.Compact(transcript, opts)
	if err != nil {
		return err
	}

	out := jsonTranscript{Messages: make([]jsonMessage, 0, len(result.Compacted.Messages))}
	for _, m := range result.Compacted.Messages {
		out.Messages = append(out.Messages, jsonMessage{Role: string(m.Role), Content: m.Content})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "level=%s rollback_token=%s compression=%.2f token_reduction=%.2f\n",
		result.Level, result.RollbackToken, result.Metrics.CompressionRatio, result.Metrics.TokenReduction)
	return nil
}

func readTranscript(path string) (model.Transcript, error) {
	var r io.Reader = os.Stdin
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return model.Transcript{}, err
		}
		defer f.Close()
		r = f
	}

	var jt jsonTranscript
	if err := json.NewDecoder(r).Decode(&jt); err != nil {
		return model.Transcript{}, err
	}

	t := model.Transcript{Messages: make([]model.Message, 0, len(jt.Messages))}
	for _, m := range jt.Messages {
		t.Messages = append(t.Messages, model.Message{Role: model.Role(m.Role), Content: m.Content})
	}
	return t, nil
}
