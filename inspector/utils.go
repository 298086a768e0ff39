package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/burntcarrot/duald/dom/htmldom"
)

// Flags represents the command-line flags that are passed to the inspector.
type Flags struct {
	File     string
	ID       string
	Start    int
	End      int
	TUI      bool
	JSON     bool
	Render   bool
	Sanitize bool
	Debug    bool
	LogDir   string
}

// parseFlags parses command-line flags.
func parseFlags(fs *flag.FlagSet, args []string) (Flags, error) {
	file := fs.String("file", "", "The HTML page to load (- for stdin)")
	id := fs.String("id", "editor", "The id of the editor element")
	start := fs.Int("start", -1, "Start of the selection to place, in UTF-16 code units")
	end := fs.Int("end", -1, "End of the selection to place (defaults to -start, placing a caret)")
	useTUI := fs.Bool("tui", false, "Open the interactive selection inspector")
	useJSON := fs.Bool("json", false, "Print the cursor report as JSON")
	render := fs.Bool("render", false, "Print the page as it looks after the editor attached")
	sanitize := fs.Bool("sanitize", false, "Sanitize the adopted markup with bluemonday's UGC policy")
	enableDebug := fs.Bool("debug", false, "Enable debugging mode to show more verbose logs")
	logDir := fs.String("logdir", "", "Directory for the debug log files (defaults to ~/.duald)")

	if err := fs.Parse(args); err != nil {
		return Flags{}, err
	}

	flags := Flags{
		File:     *file,
		ID:       *id,
		Start:    *start,
		End:      *end,
		TUI:      *useTUI,
		JSON:     *useJSON,
		Render:   *render,
		Sanitize: *sanitize,
		Debug:    *enableDebug,
		LogDir:   *logDir,
	}

	if flags.File == "" {
		return flags, fmt.Errorf("no page given, use -file")
	}
	if flags.End < 0 {
		flags.End = flags.Start
	}

	return flags, nil
}

// loadPage parses the page named by path.
func loadPage(path string, stdin io.Reader) (*htmldom.Document, error) {
	if path == "-" {
		return htmldom.Parse(stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return htmldom.Parse(f)
}
