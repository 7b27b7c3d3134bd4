package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/knowledge-engine/pagefilter/internal/config"
	"github.com/knowledge-engine/pagefilter/internal/document"
	"github.com/knowledge-engine/pagefilter/internal/filter"
	"github.com/knowledge-engine/pagefilter/internal/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	var configPath string
	flagSet := newFlagSet(cfg, &configPath)

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if configPath != "" {
		if err := applyConfigFile(cfg, flagSet, configPath); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	args := flagSet.Args()
	if len(args) != 1 {
		printHelp(flagSet)
		return errors.New("exactly one page path or URL is required")
	}

	logger, closeLog, err := setupLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()
	entry := logger.WithField("service", "pagefilter")

	sel, err := filter.CompileSelectors(cfg.Filter)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.Timeout)
	defer cancel()
	doc, err := document.NewLoader(cfg.Fetch, entry.WithField("component", "loader")).Load(ctx, args[0])
	if err != nil {
		return fmt.Errorf("cannot load %s: %w", args[0], err)
	}

	program := tea.NewProgram(tui.NewModel(doc, sel, entry), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(tui.Model); ok {
		if link, ok := m.Followed(); ok {
			fmt.Println(link.URL)
		}
	}
	return nil
}

func newFlagSet(cfg *config.Config, configPath *string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("pagefilter", pflag.ContinueOnError)
	flagSet.StringVarP(configPath, "config", "c", "", "YAML config file, applied over environment settings")
	flagSet.StringVar(&cfg.Filter.Items, "items", cfg.Filter.Items, "CSS selector of the filterable items")
	flagSet.StringVar(&cfg.Filter.Elements, "elements", cfg.Filter.Elements, "CSS selector of the searchable elements inside an item")
	flagSet.StringVar(&cfg.Filter.Attributes, "attributes", cfg.Filter.Attributes, "comma-separated data attribute keys to search, e.g. topic,releaseDate")
	flagSet.StringVar(&cfg.Filter.Sections, "sections", cfg.Filter.Sections, "CSS selector of the section containers")
	flagSet.StringVar(&cfg.Filter.Links, "links", cfg.Filter.Links, "CSS selector of the link followed on enter")
	flagSet.StringVar(&cfg.Fetch.UserAgent, "user-agent", cfg.Fetch.UserAgent, "User-Agent for remote pages")
	flagSet.DurationVar(&cfg.Fetch.Timeout, "timeout", cfg.Fetch.Timeout, "timeout for loading remote pages")
	flagSet.BoolVar(&cfg.Fetch.EnableRobotsCheck, "robots", cfg.Fetch.EnableRobotsCheck, "honour robots.txt for remote pages")
	flagSet.StringVar(&cfg.Log.File, "log-file", cfg.Log.File, "write logs to this file (discarded by default)")
	flagSet.StringVar(&cfg.Log.Level, "log-level", cfg.Log.Level, "log level")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

// applyConfigFile overlays the YAML file at path onto cfg. Flags given on
// the command line keep their values.
func applyConfigFile(cfg *config.Config, flagSet *pflag.FlagSet, path string) error {
	explicit := changedFlags(flagSet)
	if err := cfg.LoadFile(path); err != nil {
		return err
	}
	for name, value := range explicit {
		if err := flagSet.Set(name, value); err != nil {
			return fmt.Errorf("cannot reapply --%s: %w", name, err)
		}
	}
	return nil
}

// changedFlags captures the values of the flags set on the command line.
// They must be read before the config file overwrites the fields they
// are bound to.
func changedFlags(flagSet *pflag.FlagSet) map[string]string {
	explicit := make(map[string]string)
	flagSet.Visit(func(f *pflag.Flag) {
		if f.Name != "config" && f.Name != "help" {
			explicit[f.Name] = f.Value.String()
		}
	})
	return explicit
}

func setupLogger(cfg config.LogConfig) (*logrus.Logger, func(), error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}
	logger.SetLevel(level)

	// The terminal belongs to the UI
	if cfg.File == "" {
		logger.SetOutput(io.Discard)
		return logger, func() {}, nil
	}

	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(f)
	return logger, func() { f.Close() }, nil
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `pagefilter - filter the items of an index page as you type.

Loads an HTML or Markdown page from a local path or an http(s) URL and
shows its items grouped by section. Press / to search, enter to open the
only remaining match (its URL is printed on exit), esc to cancel.

Usage:
  pagefilter [flags] <page>

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
