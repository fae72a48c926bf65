package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"golang.org/x/term"

	"admissions/internal/notify"
	"admissions/pkg/cel"
)

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiDim   = "\x1b[2m"
)

// terminal describes where output goes and what it can show.
type terminal struct {
	out   io.Writer
	err   io.Writer
	in    io.Reader
	color bool
	width int
	tty   bool
}

func detectTerminal(out, errOut io.Writer, in io.Reader, noColor bool) terminal {
	t := terminal{out: out, err: errOut, in: in}
	if f, ok := out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.tty = true
		t.color = !noColor && os.Getenv("NO_COLOR") == ""
		if w, _, err := term.GetSize(int(f.Fd())); err == nil {
			t.width = w
		}
	}
	return t
}

func (t terminal) paint(code, s string) string {
	if !t.color {
		return s
	}
	return code + s + ansiReset
}

// expressionHints lists sample condition expressions after a rule fails to
// validate.
func (t terminal) expressionHints() {
	names := make([]string, 0, len(cel.ConditionExpressionExamples))
	for name := range cel.ConditionExpressionExamples {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(t.err, t.paint(ansiDim, "expression examples:"))
	for _, name := range names {
		fmt.Fprintf(t.err, "  %-18s %s\n", name, cel.ConditionExpressionExamples[name])
	}
}

// notifier prints notifications to stderr.
func (t terminal) notifier() notify.Notifier {
	return notify.Func(func(_ context.Context, n notify.Notification) error {
		mark, code := "ok", ansiGreen
		if n.Variant == notify.VariantDestructive {
			mark, code = "error", ansiRed
		}
		line := fmt.Sprintf("%s %s", t.paint(code, mark+":"), n.Title)
		if n.Description != "" {
			line += ": " + n.Description
		}
		_, err := fmt.Fprintln(t.err, line)
		return err
	})
}
