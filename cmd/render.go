package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/scopedoc/internal/docs"
	"github.com/ziadkadry99/scopedoc/internal/scope"
)

var renderCmd = &cobra.Command{
	Use:   "render [document.json]",
	Short: "Render a stored scope document as Markdown, HTML or JSON",
	Long: `Renders a scope document. The document is read from a JSON file written
by an earlier run, or from the session database with --session.

Examples:
  scopedoc render scopes/<session>/scope-v2.json --format html -o scope.html
  scopedoc render --session <session> --version 1`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().String("session", "", "read the document from this session")
	renderCmd.Flags().Int("version", 0, "document version to read with --session (default latest)")
	renderCmd.Flags().String("format", "md", "output format: md, html or json")
	renderCmd.Flags().StringP("output", "o", "", "write to this file instead of stdout")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	sessionID, _ := cmd.Flags().GetString("session")
	version, _ := cmd.Flags().GetInt("version")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")

	var doc *scope.Document
	switch {
	case sessionID != "" && len(args) > 0:
		return fmt.Errorf("give either a file or --session, not both")
	case sessionID != "":
		a, err := openApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		if doc, _, err = a.engine.Document(context.Background(), sessionID, version); err != nil {
			return err
		}
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading document: %w", err)
		}
		doc = &scope.Document{}
		if err := json.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
	default:
		return fmt.Errorf("give a document file or --session")
	}

	var out []byte
	switch format {
	case "md", "markdown":
		s, err := docs.RenderMarkdown(doc)
		if err != nil {
			return err
		}
		out = []byte(s)
	case "html":
		page, err := docs.RenderHTML(doc)
		if err != nil {
			return err
		}
		out = page
	case "json":
		data, err := docs.RenderJSON(doc)
		if err != nil {
			return err
		}
		out = data
	default:
		return fmt.Errorf("unknown format %q: use md, html or json", format)
	}

	if output == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Wrote %s\n", output)
	}
	return nil
}
