package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cce/internal/cerrors"
)

var rollbackCmd = &cobra.Command{
	Use:   "rollback <token>",
	Short: "Restore a transcript previously compacted under the given token",
	Args:  cobra.ExactArgs(1),
	RunE:  runRollback,
}

func runRollback(cmd *cobra.Command, args []string) error {
	token := args[0]

	e, err := loadEngine()
	if err != nil {
		return err
	}
	defer e.Shutdown()

	restored, ok := e.Rollback(token)
	if !ok {
		return cerrors.New(cerrors.NotFound, "rollback", fmt.Errorf("no rollback entry for token %q", token))
	}

	out := jsonTranscript{Messages: make([]jsonMessage, 0, len(restored.Messages))}
	for _, m := range restored.Messages {
		out.Messages = append(out.Messages, jsonMessage{Role: string(m.Role), Content: m.Content})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
