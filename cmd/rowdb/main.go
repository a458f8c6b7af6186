// Package main implements the CLI interface for rowdb.
//
// EDUCATIONAL NOTES:
// ------------------
// This is the entry point for the record store. It provides:
// 1. A REPL (Read-Eval-Print Loop) with line editing and persistent history
// 2. Command-line flags layered over an optional YAML config file
// 3. An optional HTTP API mode instead of the REPL
//
// Whatever path the program exits through, the table is closed, which is
// the moment its pages are flushed to disk.

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/chzyer/readline"

	"github.com/cabewaldrop/rowdb/internal/command"
	"github.com/cabewaldrop/rowdb/internal/config"
	"github.com/cabewaldrop/rowdb/internal/logging"
	"github.com/cabewaldrop/rowdb/internal/table"
	"github.com/cabewaldrop/rowdb/internal/web"
)

const version = "0.1.0"

var (
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle    = lipgloss.NewStyle().Faint(true)
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, showVersion, err := loadConfig(os.Args[1:], os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		return 0
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	case showVersion:
		fmt.Printf("rowdb version %s\n", version)
		return 0
	}

	if err := logging.Init(cfg.Logging()); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		return 1
	}
	defer logging.Close()
	log := logging.WithComponent("main")

	tbl, err := table.OpenFile(cfg.DBPath, table.WithSlotPolicy(cfg.Policy()))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		return 1
	}
	defer func() {
		if err := tbl.Close(); err != nil {
			log.Error("close failed", "error", err)
			fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error flushing database: %v", err)))
		}
	}()

	exec := command.NewExecutor(tbl)

	if cfg.HTTPAddr != "" {
		if err := web.NewServer(cfg.HTTPAddr, exec).Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := repl(exec, cfg.HistoryFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Info("end")
	return 0
}

// loadConfig parses args, reads the config file if one is named, and then
// applies the flags that were given explicitly. A flag left unset never
// overrides the file.
func loadConfig(args []string, output io.Writer) (config.Config, bool, error) {
	fs := flag.NewFlagSet("rowdb", flag.ContinueOnError)
	fs.SetOutput(output)

	configPath := fs.String("config", "", "Path to YAML config file")
	dbPath := fs.String("db", "", "Path to database file")
	historyFile := fs.String("history", "", "Path to command history file")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "Write logs to this file instead of stderr")
	httpAddr := fs.String("http", "", "Serve the HTTP API on this address instead of the REPL")
	slots := fs.String("slots", "", "Slot policy (sequential, id)")
	showVersion := fs.Bool("version", false, "Show version and exit")
	if err := fs.Parse(args); err != nil {
		return config.Config{}, false, err
	}

	cfg := config.Default()
	if *showVersion {
		return cfg, true, nil
	}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return cfg, false, fmt.Errorf("loading config: %w", err)
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "db":
			cfg.DBPath = *dbPath
		case "history":
			cfg.HistoryFile = *historyFile
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "slots":
			cfg.SlotPolicy = *slots
		}
	})
	if err := cfg.Validate(); err != nil {
		return cfg, false, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, false, nil
}

// repl implements the Read-Eval-Print Loop.
func repl(exec *command.Executor, historyFile string) error {
	fmt.Println(bannerStyle.Render("~ rowdb"))

	if _, err := os.Stat(historyFile); err != nil {
		fmt.Println(dimStyle.Render("No previous history."))
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:      "> ",
		HistoryFile: historyFile,
	})
	if err != nil {
		return fmt.Errorf("failed to start line editor: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			fmt.Println("CTRL-C")
			return nil
		case errors.Is(err, io.EOF):
			fmt.Println("CTRL-D")
			return nil
		case err != nil:
			return err
		}

		result, err := exec.ExecuteLine(line)
		if err != nil {
			fmt.Println(errorStyle.Render(err.Error()))
			continue
		}
		if result == nil {
			continue
		}

		fmt.Println(result.String())
		if result.Exit {
			return nil
		}
	}
}
