package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	pretty "github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"tablecast/adapters/inference"
	"tablecast/adapters/inference/offline"
	"tablecast/adapters/sheet"
	"tablecast/ai"
	"tablecast/app"
	"tablecast/domain/table"
	"tablecast/domain/transform"
	"tablecast/internal/config"
	"tablecast/internal/profile"
	"tablecast/internal/session"
	"tablecast/internal/usage"
	"tablecast/ports"
)

var (
	flagProvider string
	flagVerbose  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "tablecast-cli",
		Short: "Inspect, analyze, and transform spreadsheets from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if !flagVerbose {
				log.SetOutput(io.Discard)
			}
			if err := godotenv.Load(); err != nil {
				log.Printf("[CLI] No .env file found, using system environment")
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&flagProvider, "provider", "", "inference provider: gemini or offline (defaults to INFERENCE_PROVIDER)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log adapter activity and token usage to stderr")

	rootCmd.AddCommand(
		newInspectCmd(),
		newAnalyzeCmd(),
		newTransformCmd(),
		newTemplateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliStack is the same pipeline the web UI serves, assembled for one
// command invocation: parser, writer, session store, inference client,
// and the transform service on top.
type cliStack struct {
	cfg      *config.Config
	meter    *usage.Meter
	analyzer *ai.Client
	writer   *sheet.Writer
	store    *session.Store
	service  *app.TransformService
}

func buildStack() (*cliStack, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	meter := usage.NewMeter()
	analyzer, err := analyzerFor(cfg, flagProvider, meter)
	if err != nil {
		return nil, err
	}

	writer := sheet.NewWriter()
	store := session.NewStore(cfg.Server.SessionTTL)
	service := app.NewTransformService(sheet.NewReader(), writer, analyzer, store)

	return &cliStack{
		cfg:      cfg,
		meter:    meter,
		analyzer: analyzer,
		writer:   writer,
		store:    store,
		service:  service,
	}, nil
}

func (s *cliStack) Close() {
	s.store.Close()
}

// analyzerFor builds the inference client for the chosen provider. An empty
// choice falls back to the configured one. A gemini choice without an API
// key still yields a working client; its answers explain the missing
// credential instead of calling out.
func analyzerFor(cfg *config.Config, choice string, meter *usage.Meter) (*ai.Client, error) {
	provider := cfg.Inference.Provider
	if choice != "" {
		provider = choice
	}

	var gen ports.TextGenerator
	switch provider {
	case config.ProviderOffline:
		gen = offline.NewMatcher()
	case config.ProviderGemini:
		if cfg.Inference.APIKey != "" {
			gen = inference.NewGeminiClient(inference.GeminiConfig{
				APIKey:  cfg.Inference.APIKey,
				Model:   cfg.Inference.Model,
				BaseURL: cfg.Inference.BaseURL,
				Timeout: cfg.Inference.Timeout,
			})
		}
	default:
		return nil, fmt.Errorf("unknown provider %q (expected %s or %s)",
			provider, config.ProviderGemini, config.ProviderOffline)
	}

	return ai.New(gen, meter, ai.Config{
		Temperature:     cfg.Inference.Temperature,
		MaxOutputTokens: cfg.Inference.MaxOutputTokens,
	}), nil
}

func newInspectCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Show sheets, dimensions, and a column profile for a spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(file)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "spreadsheet to inspect (.xlsx, .csv, .tsv)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runInspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	tables, err := sheet.NewReader().Parse(data, filepath.Base(path))
	if err != nil {
		return err
	}
	sess := transform.NewSession(filepath.Base(path), tables)

	fmt.Printf("File: %s\n", sess.SourceName)

	t := pretty.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(pretty.StyleLight)
	t.AppendHeader(pretty.Row{"Sheet", "Rows", "Columns"})
	for i := range sess.Tables {
		name := sess.Tables[i].Name
		if i == 0 {
			name += " (active)"
		}
		t.AppendRow(pretty.Row{name, sess.Tables[i].RowCount(), sess.Tables[i].ColumnCount()})
	}
	t.Render()

	active := sess.ActiveTable()
	if active == nil {
		fmt.Println("No sheets were found.")
		return nil
	}

	fmt.Printf("\nColumn profile (%s):\n", active.Name)
	renderProfile(os.Stdout, profile.Columns(active))
	return nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		file        string
		description string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Derive a column mapping from a description of the desired output",
		Long: `Analyze reads the first sheet of the file and asks the inference provider
to map its columns onto the columns the description names. The result is
printed as JSON. When no mapping can be derived the mapping is empty and
the suggestions explain why; that is still a successful run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), file, description)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "spreadsheet to analyze")
	cmd.Flags().StringVarP(&description, "description", "d", "", "desired output columns, in plain language")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func runAnalyze(ctx context.Context, path, description string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description must not be empty")
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	sess, err := uploadFile(stack.service, path)
	if err != nil {
		return err
	}

	res, err := stack.service.Analyze(ctx, sess.ID, description)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))

	reportUsage(stack.meter)
	return nil
}

func newTransformCmd() *cobra.Command {
	var (
		file        string
		description string
		output      string
		preview     int
	)

	cmd := &cobra.Command{
		Use:   "transform",
		Short: "Analyze a spreadsheet and write the remapped result to a workbook",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTransform(cmd.Context(), file, description, output, preview)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "spreadsheet to transform")
	cmd.Flags().StringVarP(&description, "description", "d", "", "desired output columns, in plain language")
	cmd.Flags().StringVarP(&output, "output", "o", "", "path of the workbook to write")
	cmd.Flags().IntVar(&preview, "preview", 0, "print the first N transformed rows")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runTransform(ctx context.Context, path, description, output string, preview int) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description must not be empty")
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	sess, err := uploadFile(stack.service, path)
	if err != nil {
		return err
	}

	res, err := stack.service.Analyze(ctx, sess.ID, description)
	if err != nil {
		return err
	}
	if res.Mapping.IsEmpty() {
		for _, s := range res.Suggestions {
			fmt.Fprintln(os.Stderr, s)
		}
		return fmt.Errorf("no column mapping was derived; nothing to transform")
	}

	out, err := stack.service.Transform(sess.ID)
	if err != nil {
		return err
	}
	data, err := stack.writer.Write([]table.Table{out})
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("Wrote %s (%d rows, %d columns)\n", output, out.RowCount(), out.ColumnCount())
	if preview > 0 {
		renderPreview(os.Stdout, &out, preview)
	}

	reportUsage(stack.meter)
	return nil
}

func newTemplateCmd() *cobra.Command {
	var (
		description string
		output      string
	)

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Generate a blank workbook schema from a description",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTemplate(cmd.Context(), description, output)
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "the table to propose, in plain language")
	cmd.Flags().StringVarP(&output, "output", "o", "", "path of the workbook to write")
	_ = cmd.MarkFlagRequired("description")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func runTemplate(ctx context.Context, description, output string) error {
	if strings.TrimSpace(description) == "" {
		return fmt.Errorf("description must not be empty")
	}

	stack, err := buildStack()
	if err != nil {
		return err
	}
	defer stack.Close()

	res, sess, err := stack.service.Template(ctx, description)
	if err != nil {
		return err
	}
	if res.IsEmpty() {
		for _, n := range res.Notes {
			fmt.Fprintln(os.Stderr, n)
		}
		return fmt.Errorf("no schema was derived from the description")
	}

	data, err := stack.writer.Write(sess.Tables)
	if err != nil {
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	fmt.Printf("Wrote %s (%d columns: %s)\n", output, len(res.Headers), strings.Join(res.Headers, ", "))
	for _, n := range res.Notes {
		fmt.Println(n)
	}

	reportUsage(stack.meter)
	return nil
}

// uploadFile reads a spreadsheet from disk into a fresh session
func uploadFile(svc *app.TransformService, path string) (*transform.Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return svc.Upload(data, filepath.Base(path))
}

func renderProfile(w io.Writer, cols []profile.Column) {
	t := pretty.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(pretty.StyleLight)
	t.AppendHeader(pretty.Row{"Column", "Kind", "Non-empty", "Distinct", "Mean", "Median", "Min", "Max", "Std dev"})
	for _, col := range cols {
		row := pretty.Row{col.Name, string(col.Kind), col.NonEmpty, col.Distinct, "", "", "", "", ""}
		if col.Numeric != nil {
			row[4] = fmt.Sprintf("%.2f", col.Numeric.Mean)
			row[5] = fmt.Sprintf("%.2f", col.Numeric.Median)
			row[6] = fmt.Sprintf("%.2f", col.Numeric.Min)
			row[7] = fmt.Sprintf("%.2f", col.Numeric.Max)
			row[8] = fmt.Sprintf("%.2f", col.Numeric.StdDev)
		}
		t.AppendRow(row)
	}
	t.Render()
}

func renderPreview(w io.Writer, tbl *table.Table, limit int) {
	t := pretty.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(pretty.StyleLight)

	header := make(pretty.Row, len(tbl.Headers))
	for i, h := range tbl.Headers {
		header[i] = h
	}
	t.AppendHeader(header)

	shown := tbl.RowCount()
	if shown > limit {
		shown = limit
	}
	for i := 0; i < shown; i++ {
		row := make(pretty.Row, len(tbl.Headers))
		for j := range tbl.Headers {
			row[j] = table.ValueString(tbl.Rows[i].CellAt(j))
		}
		t.AppendRow(row)
	}
	t.Render()
	fmt.Fprintf(w, "(%d of %d rows)\n", shown, tbl.RowCount())
}

// reportUsage prints token consumption to stderr in verbose mode
func reportUsage(meter *usage.Meter) {
	if !flagVerbose {
		return
	}
	snap := meter.Snapshot()
	if snap.Totals.Calls == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "usage: %d call(s), %d prompt + %d completion = %d tokens\n",
		snap.Totals.Calls, snap.Totals.PromptTokens, snap.Totals.CompletionTokens, snap.Totals.TotalTokens)
}
