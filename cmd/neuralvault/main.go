// Package main is the Neural Vault CLI entry point.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/neuralvault/internal/config"
	"github.com/hyperjump/neuralvault/internal/storage"
	"github.com/hyperjump/neuralvault/pkg/utils"
)

var version = "dev"

// defaultConfigPath is resolved against the working directory; a missing
// file means built-in defaults.
const defaultConfigPath = "neuralvault.yaml"

var errUsage = errors.New("usage")

// app carries the process streams so commands can be driven from tests.
type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
}

func main() {
	a := &app{stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr, getenv: os.Getenv}
	err := a.run(os.Args[1:])
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(args []string) error {
	if len(args) < 1 {
		a.printUsage()
		return errUsage
	}
	command, rest := args[0], args[1:]
	switch command {
	case "server":
		return a.runServer(rest)
	case "list":
		return a.runList(rest)
	case "show":
		return a.runShow(rest)
	case "new":
		return a.runNew(rest)
	case "edit":
		return a.runEdit(rest)
	case "delete":
		return a.runDelete(rest)
	case "render":
		return a.runRender(rest)
	case "search":
		return a.runSearch(rest)
	case "ask":
		return a.runAsk(rest)
	case "chat":
		return a.runChat(rest)
	case "import-commits":
		return a.runImportCommits(rest)
	case "import-doc":
		return a.runImportDoc(rest)
	case "version", "--version", "-v":
		fmt.Fprintf(a.stdout, "neuralvault version %s\n", version)
		return nil
	case "help", "--help", "-h":
		a.printUsage()
		return nil
	default:
		fmt.Fprintf(a.stderr, "Unknown command: %s\n", command)
		a.printUsage()
		return errUsage
	}
}

// newFlagSet returns a flag set that reports errors instead of exiting and
// registers the shared --config flag.
func (a *app) newFlagSet(name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	return fs, configPath
}

// parse reorders args so flags may follow positionals, then parses them.
func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(reorderArgs(fs, args)); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errUsage
		}
		return err
	}
	return nil
}

// reorderArgs moves every flag (and its value) in front of the positional
// arguments, since flag.Parse stops at the first non-flag. With it
// "neuralvault show dev/go --format json" works. Flags known to fs that are
// not boolean consume the next argument; everything after "--" is
// positional.
func reorderArgs(fs *flag.FlagSet, args []string) []string {
	var flags, positionals []string
	terminated := false
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			terminated = true
			positionals = append(positionals, args[i+1:]...)
			break
		}
		if len(a) < 2 || a[0] != '-' {
			positionals = append(positionals, a)
			continue
		}
		flags = append(flags, a)
		name := strings.TrimLeft(a, "-")
		if strings.Contains(name, "=") {
			continue
		}
		if f := fs.Lookup(name); f != nil && !isBoolFlag(f) && i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	out := make([]string, 0, len(args))
	out = append(out, flags...)
	if terminated {
		out = append(out, "--")
	}
	return append(out, positionals...)
}

func isBoolFlag(f *flag.Flag) bool {
	bf, ok := f.Value.(interface{ IsBoolFlag() bool })
	return ok && bf.IsBoolFlag()
}

// joinArgs joins positionals so multi-word input works with or without
// shell quoting.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// loadConfig loads .env, the config file, and environment overrides.
func (a *app) loadConfig(path string) (*config.Config, error) {
	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	if err := config.ApplyEnv(cfg, a.getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// openStore loads config and opens the notes directory with a CLI logger.
func (a *app) openStore(configPath string) (*config.Config, *storage.FileStore, *zap.Logger, error) {
	cfg, err := a.loadConfig(configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := utils.NewCLILogger(cfg.Debug)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	files := storage.NewFileStore(cfg.Notes.Dir,
		storage.WithExtension(cfg.Notes.Extension),
		storage.WithLogger(logger),
	)
	return cfg, files, logger, nil
}

func formatFlag(fs *flag.FlagSet) *string {
	return fs.String("format", "text", "output format: text, compact or json")
}

func (a *app) printUsage() {
	fmt.Fprintln(a.stdout, `neuralvault - markdown notes with search and an assistant

Usage:
  neuralvault server [flags]                 Start the HTTP server
  neuralvault list [--tag t]                 List notes
  neuralvault show <slug>                    Print a note
  neuralvault new --title T [--slug s]       Create a note (content from --file or stdin)
  neuralvault edit <slug> [flags]            Update title, tags or content
  neuralvault delete <slug>                  Delete a note
  neuralvault render <slug> | --file f       Render markdown to HTML
  neuralvault search [flags] <query>         Full-text search
  neuralvault ask <question>                 One-shot question across all notes
  neuralvault chat [--note slug] [message]   Chat about a note or the vault
  neuralvault import-commits [flags]         Create daily commit digests from git history
  neuralvault import-doc <file> [flags]      Import a document as a note
  neuralvault version                        Show version
  neuralvault help                           Show this help

Common Flags:
  --config string    Config file path (default: ./neuralvault.yaml, built-in defaults when missing)
  --format string    Output format: text, compact or json (list, show, search, ask)

Server Flags:
  --debug            Enable debug logging

Search Flags:
  --server string    Query a running server instead of indexing the notes directory
  --limit int        Number of results (default from config)
  --tag string       Only notes carrying this tag

Import Flags:
  --repo string      Git repository (import-commits, default: .)
  --days int         Days of history (import-commits, default from config)
  --dry-run          Show what would be written (import-commits)
  --slug, --title, --tags   Override derived values (import-doc)

Environment:
  NEURALVAULT_NOTES_DIR, NEURALVAULT_PORT, NEURALVAULT_CHAT_MODEL,
  OPENAI_API_KEY | ANTHROPIC_API_KEY | GEMINI_API_KEY (by chat.provider).
  A .env file in the working directory is loaded first.

Examples:
  neuralvault server
  neuralvault new --title "Deploy Guide" --slug dev/deploy --tags ops,k8s < deploy.md
  neuralvault search --format json kubernetes rollout
  neuralvault ask "what did I write about postgres vacuum?"
  neuralvault import-commits --repo ~/src/app --days 3`)
}
