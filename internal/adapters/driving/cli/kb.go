package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aiohm/assistant/internal/core/domain"
	"github.com/aiohm/assistant/internal/core/ports/driving"
	"github.com/aiohm/assistant/internal/ingest"
)

var (
	kbAddTitle   string
	kbAddType    string
	kbAddURL     string
	kbAddFile    string
	kbAddOwner   int64
	kbAddPublic  bool
	kbListOwner  int64
	kbListAll    bool
	kbPortOwner  int64
	kbResetOwner int64
	kbResetYes   bool
)

var kbCmd = &cobra.Command{
	Use:   "kb",
	Short: "Manage the knowledge base",
	Long:  `Add, list, delete, import, and export knowledge base entries.`,
}

var kbAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add an entry",
	Long: `Adds a knowledge base entry. Content comes from the argument, from
stdin when the argument is "-", or from a local file with --file.
Markdown and HTML files are reduced to plain text before storage.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runKBAdd,
}

var kbListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries",
	RunE:  runKBList,
}

var kbDeleteCmd = &cobra.Command{
	Use:   "delete [content-id...]",
	Short: "Delete entries",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKBDelete,
}

var kbShareCmd = &cobra.Command{
	Use:   "share [content-id...]",
	Short: "Make entries public",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKBShare,
}

var kbUnshareCmd = &cobra.Command{
	Use:   "unshare [content-id...]",
	Short: "Make entries private",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runKBUnshare,
}

var kbExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export entries to a JSON file",
	Long:  `Exports all entries visible to the owner as a JSON array. Writes to stdout when no file is given.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runKBExport,
}

var kbImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import entries from a JSON file",
	Long: `Imports entries from a JSON array produced by export. Malformed
elements are skipped; the rest are inserted.`,
	Args: cobra.ExactArgs(1),
	RunE: runKBImport,
}

var kbRandomCmd = &cobra.Command{
	Use:   "random",
	Short: "Show a random entry",
	RunE:  runKBRandom,
}

var kbResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all entries in a scope",
	RunE:  runKBReset,
}

func init() {
	kbAddCmd.Flags().StringVarP(&kbAddTitle, "title", "t", "", "entry title")
	kbAddCmd.Flags().StringVar(&kbAddType, "type", "", "content type (note, post, pdf, ...)")
	kbAddCmd.Flags().StringVar(&kbAddURL, "url", "", "source URL")
	kbAddCmd.Flags().StringVarP(&kbAddFile, "file", "f", "", "read content from a local file")
	kbAddCmd.Flags().Int64VarP(&kbAddOwner, "user", "u", 0, "owner ID")
	kbAddCmd.Flags().BoolVar(&kbAddPublic, "public", false, "make the entry public")

	kbListCmd.Flags().Int64VarP(&kbListOwner, "user", "u", 0, "owner ID; includes that user's private entries")
	kbListCmd.Flags().BoolVar(&kbListAll, "all", false, "list every entry regardless of visibility")

	kbExportCmd.Flags().Int64VarP(&kbPortOwner, "user", "u", 0, "owner ID whose entries to export")
	kbImportCmd.Flags().Int64VarP(&kbPortOwner, "user", "u", 0, "owner ID to assign imported entries to")

	kbResetCmd.Flags().Int64VarP(&kbResetOwner, "user", "u", 0, "only reset entries visible to this owner")
	kbResetCmd.Flags().BoolVarP(&kbResetYes, "yes", "y", false, "skip the confirmation prompt")

	kbCmd.AddCommand(kbAddCmd)
	kbCmd.AddCommand(kbListCmd)
	kbCmd.AddCommand(kbDeleteCmd)
	kbCmd.AddCommand(kbShareCmd)
	kbCmd.AddCommand(kbUnshareCmd)
	kbCmd.AddCommand(kbExportCmd)
	kbCmd.AddCommand(kbImportCmd)
	kbCmd.AddCommand(kbRandomCmd)
	kbCmd.AddCommand(kbResetCmd)
	rootCmd.AddCommand(kbCmd)
}

func runKBAdd(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	in := driving.AddEntryInput{
		ContentType: kbAddType,
		Title:       kbAddTitle,
		Metadata:    domain.EntryMetadata{URL: kbAddURL},
		OwnerID:     kbAddOwner,
		IsPublic:    kbAddPublic,
	}

	switch {
	case kbAddFile != "" && len(args) > 0:
		return errors.New("content argument and --file are mutually exclusive")
	case kbAddFile != "":
		data, err := os.ReadFile(kbAddFile)
		if err != nil {
			return fmt.Errorf("reading %s: %w", kbAddFile, err)
		}
		doc, err := ingest.Extract(kbAddFile, data)
		if err != nil {
			return err
		}
		in.Content = doc.Content
		if in.Title == "" {
			in.Title = doc.Title
		}
		in.Metadata.FilePath = kbAddFile
		in.Metadata.FileType = doc.FileType
		in.Metadata.MIMEType = doc.MIMEType
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		in.Content = string(data)
	case len(args) == 1:
		in.Content = args[0]
	default:
		return errors.New("provide content, \"-\" for stdin, or --file")
	}

	contentID, err := knowledgeService.AddEntry(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("adding entry: %w", err)
	}

	cmd.Printf("Added entry %s\n", contentID)
	return nil
}

func runKBList(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	scope := domain.PublicScope()
	switch {
	case kbListAll:
		scope = domain.AllScope()
	case kbListOwner != 0:
		scope = domain.UserScope(kbListOwner)
	}

	entries, err := knowledgeService.ListEntries(cmd.Context(), scope)
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	if len(entries) == 0 {
		cmd.Println("No entries.")
		return nil
	}

	for i := range entries {
		e := &entries[i]
		visibility := "private"
		if e.IsPublic {
			visibility = "public"
		}
		title := e.Title
		if title == "" {
			title = summarize(e.Content, 60)
		}
		cmd.Printf("%s  [%s, %s]  %s\n", e.ContentID, e.ContentType, visibility, title)
	}
	cmd.Printf("\n%d entries\n", len(entries))
	return nil
}

func runKBDelete(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if len(args) == 1 {
		if err := knowledgeService.DeleteEntry(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("deleting %s: %w", args[0], err)
		}
		cmd.Printf("Deleted %s\n", args[0])
		return nil
	}

	result, err := knowledgeService.BulkDelete(cmd.Context(), args)
	if err != nil {
		return fmt.Errorf("bulk delete: %w", err)
	}
	printBulkResult(cmd, "Deleted", result)
	return nil
}

func runKBShare(cmd *cobra.Command, args []string) error {
	return setVisibility(cmd, args, true)
}

func runKBUnshare(cmd *cobra.Command, args []string) error {
	return setVisibility(cmd, args, false)
}

func setVisibility(cmd *cobra.Command, args []string, public bool) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	label := "Unshared"
	if public {
		label = "Shared"
	}

	if len(args) == 1 {
		if err := knowledgeService.SetVisibility(cmd.Context(), args[0], public); err != nil {
			return fmt.Errorf("updating %s: %w", args[0], err)
		}
		cmd.Printf("%s %s\n", label, args[0])
		return nil
	}

	result, err := knowledgeService.BulkSetVisibility(cmd.Context(), args, public)
	if err != nil {
		return fmt.Errorf("bulk visibility update: %w", err)
	}
	printBulkResult(cmd, label, result)
	return nil
}

func runKBExport(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	data, err := knowledgeService.Export(cmd.Context(), kbPortOwner)
	if err != nil {
		return fmt.Errorf("exporting: %w", err)
	}

	if len(args) == 0 {
		cmd.Println(string(data))
		return nil
	}

	if err := os.WriteFile(args[0], data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	cmd.Printf("Exported to %s\n", args[0])
	return nil
}

func runKBImport(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	count, err := knowledgeService.Import(cmd.Context(), data, kbPortOwner)
	if err != nil {
		return fmt.Errorf("importing (inserted %d): %w", count, err)
	}

	cmd.Printf("Imported %d entries\n", count)
	return nil
}

func runKBRandom(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	entry, err := knowledgeService.RandomSample(cmd.Context())
	if err != nil {
		if errors.Is(err, domain.ErrEmptyKnowledgeBase) {
			cmd.Println("The knowledge base is empty.")
			return nil
		}
		return err
	}

	if entry.Title != "" {
		cmd.Printf("%s\n\n", entry.Title)
	}
	cmd.Println(entry.Content)
	cmd.Printf("\n(%s, %s)\n", entry.ContentID, entry.ContentType)
	return nil
}

func runKBReset(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	if !kbResetYes {
		return errors.New("refusing to reset without --yes")
	}

	scope := domain.AllScope()
	if kbResetOwner != 0 {
		scope = domain.UserScope(kbResetOwner)
	}

	removed, err := knowledgeService.Reset(cmd.Context(), scope)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}

	cmd.Printf("Removed %d entries\n", removed)
	return nil
}

func printBulkResult(cmd *cobra.Command, verb string, result driving.BulkResult) {
	cmd.Printf("%s %d entries", verb, result.Succeeded)
	if result.FailedCount() > 0 {
		cmd.Printf(", %d failed", result.FailedCount())
	}
	cmd.Println()
	for id, reason := range result.Failed {
		cmd.Printf("  %s: %s\n", id, reason)
	}
}

func summarize(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
