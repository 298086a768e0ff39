// Command inspector attaches an editor to an HTML page outside the browser and reports
// the buffer, its spans and the cursor of a selection placed at given offsets.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/burntcarrot/duald"
	"github.com/burntcarrot/duald/commons"
	"github.com/burntcarrot/duald/editor"
	"github.com/burntcarrot/duald/logging"
	"github.com/burntcarrot/duald/tui"
)

func main() {
	flags, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		color.Red("%s", err)
		os.Exit(2)
	}

	if err := run(flags, os.Stdin, os.Stdout); err != nil {
		color.Red("inspector: %s", err)
		os.Exit(1)
	}
}

func run(flags Flags, stdin io.Reader, out io.Writer) error {
	logger, err := logging.New(logging.Config{Debug: flags.Debug, Verbosity: 4})
	if err != nil {
		return err
	}
	if flags.Debug {
		logFile, debugLogFile, err := logging.SetupFiles(logger.Logger, flags.LogDir)
		if err != nil {
			return err
		}
		defer logging.CloseFiles(logFile, debugLogFile)
	}

	doc, err := loadPage(flags.File, stdin)
	if err != nil {
		return fmt.Errorf("loading %s: %w", flags.File, err)
	}

	cfg := editor.DefaultConfig()
	cfg.Logger = logger
	cfg.Sanitize = flags.Sanitize

	e, err := duald.AttachEditorWith(flags.ID, doc, cfg)
	if err != nil {
		return err
	}
	defer e.Detach()

	if flags.Start >= 0 {
		if err := e.Select(flags.Start, flags.End); err != nil {
			return fmt.Errorf("placing selection [%d, %d]: %w", flags.Start, flags.End, err)
		}
	}

	if flags.TUI {
		return tui.Run(e)
	}

	if flags.Render {
		if err := doc.Render(out); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}

	report := commons.NewReport(e.ID(), e.Cursor(), e.Buffer())
	if flags.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printSummary(out, e)
	printReport(out, report)
	return nil
}

// printSummary prints the buffer and its spans.
func printSummary(out io.Writer, e *duald.Editor) {
	buf := e.Buffer()

	color.New(color.FgYellow).Fprintf(out, "buffer (%d code units): ", buf.Len())
	fmt.Fprintf(out, "%q\n", buf.Content)

	for _, span := range buf.Spans {
		color.New(color.FgCyan).Fprintf(out, "  <%s> ", span.Tag)
		fmt.Fprintf(out, "%s %q\n", span.Range, buf.Text(span.Range))
	}
}

// printReport prints the cursor report.
func printReport(out io.Writer, r commons.Report) {
	switch r.Kind {
	case commons.InsertCursor:
		color.New(color.FgGreen).Fprintf(out, "caret at %d", r.Start)
	case commons.SelectCursor:
		color.New(color.FgGreen).Fprintf(out, "selection [%d, %d] %q", r.Start, r.End, r.Text)
	default:
		color.New(color.FgMagenta).Fprint(out, "no cursor")
	}

	if len(r.Spans) > 0 {
		fmt.Fprintf(out, " inside %s", strings.Join(r.Spans, " < "))
	}
	fmt.Fprintln(out)
}
