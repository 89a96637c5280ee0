package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/ziadkadry99/scopedoc/internal/docs"
	"github.com/ziadkadry99/scopedoc/internal/intelligence"
	"github.com/ziadkadry99/scopedoc/internal/interview"
	"github.com/ziadkadry99/scopedoc/internal/llm"
	"github.com/ziadkadry99/scopedoc/internal/progress"
	"github.com/ziadkadry99/scopedoc/internal/scope"
	"github.com/ziadkadry99/scopedoc/internal/session"
)

// pauseCommand ends the terminal interview without completing it.
const pauseCommand = "/pause"

// maxMalformed is how many unparseable model replies in a row are retried.
const maxMalformed = 2

var websiteTypeChoices = []string{
	"business", "ecommerce", "portfolio", "blog", "landing",
	"nonprofit", "booking", "membership", "community", "web_app",
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run a client intake interview in the terminal",
	Long: `Interviews a client in the terminal. Scopedoc asks one question at a time,
extracts facts from each answer and stops when it knows enough, then
writes the scope document to the output directory.

Type /pause as an answer to stop and resume later with --resume.`,
	RunE: runInterview,
}

func init() {
	interviewCmd.Flags().String("resume", "", "resume the session with this id")
	interviewCmd.Flags().Bool("skip-foundation", false, "do not ask for contact details up front")
	rootCmd.AddCommand(interviewCmd)
}

func runInterview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := openApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	resume, _ := cmd.Flags().GetString("resume")
	skipFoundation, _ := cmd.Flags().GetBool("skip-foundation")

	var s *session.Session
	if resume != "" {
		if s, err = a.engine.Get(ctx, resume); err != nil {
			return fmt.Errorf("resuming session: %w", err)
		}
		fmt.Printf("Resuming session %s (%d question(s) answered)\n\n", s.ID, s.QuestionCount())
	} else {
		if s, err = a.engine.Create(ctx); err != nil {
			return err
		}
		fmt.Printf("Session %s\n\n", s.ID)
	}
	if !skipFoundation && len(s.View().MissingFoundation) > 0 {
		if err := collectFoundation(ctx, a.engine, s.ID); err != nil {
			return pauseOrFail(s.ID, err)
		}
	}

	reporter := progress.NewReporter()
	reporter.Update(s.Progress().Percent, "starting")

	malformed := 0
	for !s.IsComplete() {
		resp, err := a.engine.NextQuestion(ctx, s.ID)
		if errors.Is(err, interview.ErrInvalidUpstreamResponse) && malformed < maxMalformed {
			malformed++
			a.logger.Warn("discarding malformed question", "attempt", malformed, "error", err)
			continue
		}
		malformed = 0
		if err != nil {
			reporter.Finish()
			return fmt.Errorf("generating question: %w", err)
		}
		if resp.Action == interview.ActionComplete {
			break
		}

		answer, err := ask(resp.Question)
		if err != nil || strings.TrimSpace(answer) == pauseCommand {
			reporter.Finish()
			return pauseOrFail(s.ID, err)
		}

		res, err := a.engine.Answer(ctx, s.ID, session.AnswerInput{Answer: answer})
		if err != nil {
			reporter.Finish()
			return err
		}
		if verbose {
			for _, f := range res.Facts {
				fmt.Fprintf(os.Stderr, "  %s = %s (%.2f)\n", f.Key, f.Value, f.Confidence)
			}
		}
		msg := fmt.Sprintf("%d question(s)", res.Progress.QuestionCount)
		if len(res.NewlyClosed) > 0 {
			msg += ", settled " + strings.Join(res.NewlyClosed, ", ")
		}
		reporter.Update(res.Progress.Percent, msg)
	}
	reporter.Update(100, "complete")
	reporter.Finish()

	doc, err := a.engine.Generate(ctx, s.ID)
	var missing *scope.MissingFieldsError
	if errors.As(err, &missing) {
		return fmt.Errorf("the interview ended without %s; add them with `scopedoc interview --resume %s`",
			strings.Join(missing.Fields, ", "), s.ID)
	}
	if err != nil {
		return fmt.Errorf("generating scope document: %w", err)
	}

	printDocumentSummary(doc, filepath.Join(a.cfg.OutputDir, s.ID))
	printUsage(a.provider.Usage())
	return nil
}

func collectFoundation(ctx context.Context, engine *session.Engine, id string) error {
	var f intelligence.Foundation
	fields := []struct {
		label string
		dst   *string
	}{
		{"Client name", &f.Name},
		{"Email", &f.Email},
		{"Phone (optional)", &f.Phone},
		{"Company", &f.Company},
	}
	for _, field := range fields {
		p := promptui.Prompt{Label: field.label}
		v, err := p.Run()
		if err != nil {
			return err
		}
		*field.dst = strings.TrimSpace(v)
	}

	sel := promptui.Select{Label: "Website type", Items: websiteTypeChoices}
	_, f.WebsiteType, _ = sel.Run()

	view, err := engine.SetFoundation(ctx, id, f)
	if err != nil {
		return err
	}
	if len(view.MissingFoundation) > 0 {
		fmt.Printf("Still missing: %s. The interview will ask.\n", strings.Join(view.MissingFoundation, ", "))
	}
	fmt.Println()
	return nil
}

// ask renders one question. Choice questions use a selector; everything
// else is free text and may be left blank.
func ask(q *interview.Question) (string, error) {
	if q.Type == interview.TypeChoice && len(q.Options) > 0 {
		sel := promptui.Select{Label: q.Text, Items: q.Options}
		_, v, err := sel.Run()
		return v, err
	}
	label := q.Text
	if q.Type == interview.TypeMultiChoice && len(q.Options) > 0 {
		label += " [" + strings.Join(q.Options, ", ") + "]"
	}
	p := promptui.Prompt{Label: label}
	return p.Run()
}

// pauseOrFail treats an interrupted prompt as a pause.
func pauseOrFail(id string, err error) error {
	if err == nil || errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		fmt.Printf("\nInterview paused. Resume with: scopedoc interview --resume %s\n", id)
		return nil
	}
	return err
}

func printDocumentSummary(doc *scope.Document, dir string) {
	fmt.Println()
	fmt.Println("Scope document generated!")
	fmt.Printf("  Project:    %s\n", doc.ExecutiveSummary.ProjectName)
	fmt.Printf("  Version:    %d\n", doc.Version)
	fmt.Printf("  Complexity: %s (%s package)\n", doc.Classification.Complexity, doc.Classification.PackageTier)
	fmt.Printf("  Total:      %s\n", docs.Money(doc.InvestmentSummary.ProjectTotal))
	fmt.Printf("  Score:      %d/100\n", doc.Validation.Score)
	if !doc.Validation.Complete {
		fmt.Printf("  Issues:     %d (see the Validation section)\n", len(doc.Validation.Issues))
	}
	fmt.Printf("  Files:      %s\n", dir)
}

func printUsage(u llm.Usage) {
	if u.Calls == 0 {
		return
	}
	fmt.Printf("  Model:      %d call(s), %d input / %d output tokens, ~$%.4f\n",
		u.Calls, u.InputTokens, u.OutputTokens, u.CostUSD)
}
