package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/launchtree"
	"github.com/aretw0/launchtree/internal/presentation"
	"github.com/muesli/termenv"
	"mvdan.cc/sh/v3/syntax"
)

// Output controls how analyses are printed.
type Output struct {
	Format  presentation.Format
	Profile termenv.Profile
	Styled  bool
	Width   int
}

func (o Output) options() presentation.Options {
	return presentation.Options{Profile: o.Profile, Styled: o.Styled, Width: o.Width}
}

// Invocation turns command-line words into one invocation string.
// A single word holding spaces is taken as a whole invocation.
func Invocation(words []string) (string, error) {
	if len(words) == 1 && strings.ContainsAny(words[0], " \t") {
		return words[0], nil
	}
	quoted := make([]string, len(words))
	for i, w := range words {
		q, err := syntax.Quote(w, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("invalid argument %q: %w", w, err)
		}
		quoted[i] = q
	}
	return strings.Join(quoted, " "), nil
}

// RunAnalyze analyzes words once and prints the result to w.
func RunAnalyze(ctx context.Context, a *launchtree.Analyzer, w io.Writer, words []string, out Output) error {
	var res *launchtree.Analysis
	var err error
	if len(words) == 1 && strings.ContainsAny(words[0], " \t") {
		res, err = a.Analyze(ctx, words[0])
	} else {
		res, err = a.AnalyzeArgs(ctx, words)
	}
	if res != nil {
		if rerr := presentation.Render(w, out.Format, res, out.options()); rerr != nil {
			return rerr
		}
	}
	return err
}

// RunWatch prints the analysis of words, then a new one every time a launch
// file it read changes. Between two trees it prints a one-line change summary
// to status. It returns when ctx is done.
func RunWatch(ctx context.Context, a *launchtree.Analyzer, w, status io.Writer, words []string, debounce time.Duration, out Output) error {
	invocation, err := Invocation(words)
	if err != nil {
		return err
	}
	return a.Watch(ctx, invocation, debounce, func(u launchtree.Update) {
		if u.Err != nil {
			fmt.Fprintf(status, "analysis failed: %v\n", u.Err)
			if u.Analysis == nil {
				return
			}
		}
		if u.Diff != nil {
			fmt.Fprintf(status, "--- %s: %d added, %d removed, %d changed\n",
				time.Now().Format(time.TimeOnly), len(u.Diff.Added), len(u.Diff.Removed), len(u.Diff.Changed))
		}
		opts := out.options()
		opts.Diff = u.Diff
		if err := presentation.Render(w, out.Format, u.Analysis, opts); err != nil {
			fmt.Fprintf(status, "render failed: %v\n", err)
		}
	})
}

// RunArgs prints the arguments path declares, as JSON or as a table.
func RunArgs(ctx context.Context, a *launchtree.Analyzer, w io.Writer, path string, asJSON bool) error {
	args, err := a.Arguments(ctx, path)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(args)
	}
	if len(args) == 0 {
		fmt.Fprintln(w, "no arguments declared")
		return nil
	}
	for _, arg := range args {
		line := arg.Name
		if arg.Default != nil {
			line += " := " + *arg.Default
		} else {
			line += " (required)"
		}
		if len(arg.Choices) > 0 {
			line += " [" + strings.Join(arg.Choices, "|") + "]"
		}
		if arg.Conditional {
			line += " (conditional)"
		}
		fmt.Fprintln(w, line)
		if arg.Description != "" {
			fmt.Fprintf(w, "    %s\n", arg.Description)
		}
	}
	return nil
}
