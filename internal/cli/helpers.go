package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/mesh-intelligence/ownbox/internal/sqlite"
	"github.com/mesh-intelligence/ownbox/pkg/types"
)

var (
	nameStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	violatedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// attachJournal resolves the data directory and attaches a SQLite journal.
// The caller must defer journal.Detach().
func attachJournal() (*sqlite.Journal, string, error) {
	dataDir, err := resolveDataDir()
	if err != nil {
		return nil, "", fmt.Errorf("resolve data dir: %w", err)
	}

	cfg := types.Config{
		Backend: current.config.GetString(cfgKeyBackend),
		DataDir: dataDir,
	}

	journal := sqlite.NewJournal()
	if err := journal.Attach(cfg); err != nil {
		return nil, "", fmt.Errorf("attach journal: %w", err)
	}
	current.logger.Debug("journal attached", "path", journal.Path())
	return journal, dataDir, nil
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
