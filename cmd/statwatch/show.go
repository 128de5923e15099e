package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/macrat/statwatch/internal/jq"
	"github.com/macrat/statwatch/internal/notify"
	"github.com/macrat/statwatch/internal/store"
	"github.com/spf13/pflag"
)

// ShowCommand prints the saved state without checking the status page.
type ShowCommand struct {
	OutStream io.Writer
	ErrStream io.Writer
}

var defaultShowCommand = &ShowCommand{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
}

const showHelp = `statwatch show -- print the saved state

Usage:
  statwatch show [-f FILE] [-q QUERY] [--previous] [--text]

Options:
  -f, --state-file=PATH  Path to state file. (default %s)
  -q, --query=QUERY      jq query to filter the state. (default .)
      --previous         Use the previous snapshot instead of the current one.
      --text             Print as status text instead of JSON.
  -h, --help             Show this message and exit.
`

func (cmd ShowCommand) Run(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("statwatch show", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	statePath := flags.StringP("state-file", "f", DefaultStatePath, "Path to state file")
	query := flags.StringP("query", "q", ".", "jq query")
	previous := flags.Bool("previous", false, "Use the previous snapshot")
	text := flags.Bool("text", false, "Print as status text")
	help := flags.BoolP("help", "h", false, "Show help message")

	if err := flags.Parse(args[2:]); err != nil {
		fmt.Fprintln(cmd.ErrStream, err)
		fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s show -h` for more information.\n", args[0])
		return 2
	}

	if *help {
		fmt.Fprintf(cmd.OutStream, showHelp, DefaultStatePath)
		return 0
	}

	if *text && flags.Changed("query") {
		fmt.Fprintln(cmd.ErrStream, "error: --query and --text can not be used together.")
		return 2
	}

	q, err := jq.Parse(*query)
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: invalid query: %s\n", err)
		return 2
	}

	s := store.New(*statePath)
	if err := s.Restore(); err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 1
	}

	snap, prev := s.Load()
	if *previous {
		snap = prev
	}
	if snap == nil {
		fmt.Fprintln(cmd.ErrStream, "error: no snapshot recorded yet.")
		return 1
	}

	if *text {
		io.WriteString(cmd.OutStream, notify.FormatStatus("", *snap))
		return 0
	}

	input, err := jq.Normalize(snap)
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 1
	}

	outputs, err := q.Run(context.Background(), input)

	enc := json.NewEncoder(cmd.OutStream)
	enc.SetIndent("", "  ")
	for _, o := range outputs {
		if err := enc.Encode(o); err != nil {
			fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
			return 1
		}
	}

	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 5
	}

	return 0
}
