package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/existflow/ideabox/internal/model"
	"github.com/existflow/ideabox/internal/repository"
	"github.com/existflow/ideabox/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ideas as JSON or CSV",
	Long: `Export ideas matching the filters. Without --output the export is
written to stdout.

Examples:
  ideabox export --format csv -o ideas.csv
  ideabox export -c business --status all`,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import ideas from a legacy JSON file",
	Long: `Import a JSON array of ideas saved by the old browser version. Each
record becomes a new active idea; ids and timestamps are not kept. The
import stops at the first invalid record.

Examples:
  ideabox import ideas-backup.json`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var (
	exportFormat   string
	exportOutput   string
	exportCategory string
	exportPriority string
	exportStatus   string
	exportKeyword  string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", service.FormatJSON, "Export format (json, csv)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Write to file instead of stdout")
	exportCmd.Flags().StringVarP(&exportCategory, "category", "c", "", "Filter by category")
	exportCmd.Flags().StringVarP(&exportPriority, "priority", "p", "", "Filter by priority")
	exportCmd.Flags().StringVarP(&exportStatus, "status", "s", "all", "Filter by status (active, archived, completed, all)")
	exportCmd.Flags().StringVarP(&exportKeyword, "keyword", "k", "", "Match title, description or tags")
}

func runExport(cmd *cobra.Command, args []string) error {
	status, err := parseStatusFilter(exportStatus)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewIdeaService(repository.NewIdeaRepository(store))
	result, err := svc.Export(ctx, exportFormat, model.Filters{
		Category: exportCategory,
		Priority: exportPriority,
		Status:   status,
		Keyword:  exportKeyword,
	})
	if err != nil {
		return fmt.Errorf("failed to export ideas: %w", err)
	}

	var data []byte
	if result.Format == service.FormatCSV {
		data = []byte(result.Payload.(string))
	} else {
		if data, err = json.MarshalIndent(result, "", "  "); err != nil {
			return fmt.Errorf("failed to encode export: %w", err)
		}
		data = append(data, '\n')
	}

	if exportOutput == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := os.WriteFile(exportOutput, data, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Exported %d ideas to %s\n", result.Metadata.Count, exportOutput)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	records, err := service.DecodeLegacyIdeas(raw)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := service.NewIdeaService(repository.NewIdeaRepository(store)).Migrate(ctx, records)
	if err != nil {
		return fmt.Errorf("import stopped: %w", err)
	}

	return printResult(cmd.OutOrStdout(), result, "✓ Imported %d ideas", result.MigratedCount)
}
