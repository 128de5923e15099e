package main

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"text/template"

	"github.com/macrat/statwatch/internal/detect"
	"github.com/macrat/statwatch/internal/fetch"
	"github.com/macrat/statwatch/internal/meta"
	"github.com/macrat/statwatch/internal/notify"
	"github.com/macrat/statwatch/internal/parser"
	"github.com/macrat/statwatch/internal/schedule"
	"github.com/macrat/statwatch/internal/store"
	"github.com/macrat/statwatch/internal/watcher"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

type StatwatchCommand struct {
	OutStream io.Writer
	ErrStream io.Writer
	Getenv    func(string) string

	ConfigPath  string
	OneshotMode bool
	ShowVersion bool
	ShowHelp    bool

	Config   Config
	Schedule schedule.Schedule
	Logger   zerolog.Logger
}

var defaultStatwatchCommand = &StatwatchCommand{
	OutStream: os.Stdout,
	ErrStream: os.Stderr,
	Getenv:    os.Getenv,
}

//go:embed help.txt
var helpText string

func (cmd *StatwatchCommand) PrintUsage(detail bool) {
	tmpl := template.Must(template.New("help.txt").Parse(helpText))
	tmpl.Execute(cmd.ErrStream, map[string]interface{}{
		"Version":         meta.Version,
		"DefaultURL":      fetch.DefaultURL,
		"DefaultStore":    DefaultStatePath,
		"DefaultPort":     DefaultPort,
		"HTTPRedirectMax": fetch.HTTP_REDIRECT_MAX,
		"Short":           !detail,
	})
}

func (cmd *StatwatchCommand) PrintVersion() {
	fmt.Fprintf(cmd.OutStream, "statwatch version %s (%s)\n", meta.Version, meta.Commit)
}

func (cmd *StatwatchCommand) usageError(name string, err error) int {
	fmt.Fprintln(cmd.ErrStream, err)
	fmt.Fprintf(cmd.ErrStream, "\nPlease see `%s -h` for more information.\n", name)
	return 2
}

func (cmd *StatwatchCommand) ParseArgs(args []string) (exitCode int) {
	flags := pflag.NewFlagSet("statwatch", pflag.ContinueOnError)
	flags.SetOutput(io.Discard)

	def := DefaultConfig()

	var (
		scheduleSpec string
		statePath    string
		port         int
		user         string
		rateLimit    int
		webhooks     []string
		components   []string
		title        string
		logLevel     string
	)
	var fetchConf FetchConfig

	flags.StringVarP(&cmd.ConfigPath, "config", "C", "", "Path to YAML config file")
	flags.StringVarP(&scheduleSpec, "schedule", "s", def.Schedule, "Interval or cron schedule")
	flags.StringVarP(&statePath, "state-file", "f", def.StateFile, "Path to state file")
	flags.IntVarP(&port, "port", "p", def.Port, "HTTP listen port")
	flags.StringVarP(&user, "user", "u", "", "Username and password for HTTP endpoint")
	flags.IntVar(&rateLimit, "rate-limit", 0, "Requests per minute per client to HTTP endpoint")
	flags.StringArrayVarP(&webhooks, "webhook", "w", nil, "Webhook URLs")
	flags.StringArrayVarP(&components, "component", "c", nil, "Components to track")
	flags.StringVarP(&title, "title", "t", def.Title, "Title of status text")
	flags.StringVar(&logLevel, "log-level", def.LogLevel, "Log level")
	flags.DurationVar(&fetchConf.Timeout, "timeout", def.Fetch.Timeout, "Timeout of a request")
	flags.IntVar(&fetchConf.Retries, "retries", def.Fetch.Retries, "Retry count of a request")
	flags.StringVar(&fetchConf.UserAgent, "user-agent", def.Fetch.UserAgent, "User-Agent header")
	flags.BoolVarP(&cmd.OneshotMode, "oneshot", "1", false, "Check status only once and exit")
	flags.BoolVarP(&cmd.ShowVersion, "version", "v", false, "Show version")
	flags.BoolVarP(&cmd.ShowHelp, "help", "h", false, "Show help message")

	if err := flags.Parse(args[1:]); err != nil {
		return cmd.usageError(args[0], err)
	}

	if cmd.ShowVersion || cmd.ShowHelp {
		return 0
	}

	if flags.NArg() > 1 {
		return cmd.usageError(args[0], fmt.Errorf("too many arguments: %q", flags.Args()))
	}

	cmd.Config = def
	if cmd.ConfigPath != "" {
		var err error
		if cmd.Config, err = LoadConfig(cmd.ConfigPath); err != nil {
			return cmd.usageError(args[0], err)
		}
	}

	if flags.NArg() == 1 {
		cmd.Config.URL = flags.Arg(0)
	}
	if flags.Changed("schedule") {
		cmd.Config.Schedule = scheduleSpec
	}
	if flags.Changed("state-file") {
		cmd.Config.StateFile = statePath
	}
	if flags.Changed("port") {
		cmd.Config.Port = port
	}
	if flags.Changed("user") {
		cmd.Config.User = user
	}
	if flags.Changed("rate-limit") {
		cmd.Config.RateLimit = rateLimit
	}
	if flags.Changed("webhook") {
		cmd.Config.Webhooks = webhooks
	}
	if flags.Changed("component") {
		cmd.Config.Components = components
	}
	if flags.Changed("title") {
		cmd.Config.Title = title
	}
	if flags.Changed("log-level") {
		cmd.Config.LogLevel = logLevel
	}
	if flags.Changed("timeout") {
		cmd.Config.Fetch.Timeout = fetchConf.Timeout
	}
	if flags.Changed("retries") {
		cmd.Config.Fetch.Retries = fetchConf.Retries
	}
	if flags.Changed("user-agent") {
		cmd.Config.Fetch.UserAgent = fetchConf.UserAgent
	}

	if cmd.Getenv != nil {
		cmd.Config.ApplyEnv(cmd.Getenv)
	}

	if cmd.Config.StateFile == "-" {
		cmd.Config.StateFile = ""
	}

	if cmd.OneshotMode {
		if flags.Changed("port") {
			fmt.Fprintln(cmd.ErrStream, "warning: port option will ignored in the oneshot mode.")
		}
		if flags.Changed("user") || flags.Changed("rate-limit") {
			fmt.Fprintln(cmd.ErrStream, "warning: user and rate-limit options will ignored in the oneshot mode.")
		}
	}

	if err := cmd.Config.Validate(); err != nil {
		return cmd.usageError(args[0], err)
	}

	cmd.Schedule, _ = schedule.Parse(cmd.Config.Schedule)

	return 0
}

// Setup makes all parts of statwatch from the Config.
func (cmd *StatwatchCommand) Setup() (*watcher.Watcher, *store.Store, error) {
	c := cmd.Config

	f, err := fetch.New(c.URL, c.FetchOptions())
	if err != nil {
		return nil, nil, err
	}
	if hf, ok := f.(*fetch.HTTPFetcher); ok {
		hf.Logger = cmd.Logger.With().Str("component", "fetch").Logger()
	}

	p := parser.New(c.Components)
	p.Logger = cmd.Logger.With().Str("component", "parser").Logger()

	e := detect.New(c.Dedup.Expiry, c.Dedup.Capacity)
	e.Logger = cmd.Logger.With().Str("component", "detect").Logger()

	s := store.New(c.StateFile)
	s.Logger = cmd.Logger.With().Str("component", "store").Logger()

	notifiers := notify.Set{notify.NewConsole(cmd.OutStream)}
	for _, u := range c.Webhooks {
		w, err := notify.NewWebhook(u)
		if err != nil {
			return nil, nil, err
		}
		w.Title = c.Title
		notifiers = append(notifiers, w)
	}

	return &watcher.Watcher{
		Fetcher:  f,
		Parser:   p,
		Engine:   e,
		Store:    s,
		Notifier: notifiers,
		Logger:   cmd.Logger,
	}, s, nil
}

func (cmd *StatwatchCommand) Run(args []string) (exitCode int) {
	if code := cmd.ParseArgs(args); code != 0 {
		return code
	}

	if cmd.ShowVersion {
		cmd.PrintVersion()
		return 0
	}

	if cmd.ShowHelp {
		cmd.PrintUsage(true)
		return 0
	}

	cmd.Logger = NewLogger(cmd.ErrStream, cmd.Config.LogLevel)

	w, s, err := cmd.Setup()
	if err != nil {
		fmt.Fprintf(cmd.ErrStream, "error: %s\n", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cmd.OneshotMode {
		exitCode = cmd.RunOneshot(ctx, w, s)
	} else {
		exitCode = cmd.RunServer(ctx, w, s)
	}

	healthy, _ := s.Errors()
	if exitCode == 0 && !healthy {
		return 1
	}

	return exitCode
}

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "oneshot":
			os.Args[1] = "-1"
		case "show":
			os.Exit(defaultShowCommand.Run(os.Args))
		}
	}

	os.Exit(defaultStatwatchCommand.Run(os.Args))
}
