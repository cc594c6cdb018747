package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/savioxavier/termlink"
)

// startupMessage describes the result of the initial load
func startupMessage(existed bool, count int, path string) string {
	if !existed {
		return "No existing task file found. Starting with empty list."
	}
	return fmt.Sprintf("Loaded %d tasks from %s", count, fileLink(path))
}

// fileLink renders path as a terminal hyperlink when the terminal supports it
func fileLink(path string) string {
	if !termlink.SupportsHyperlinks() {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return termlink.Link(path, "file://"+filepath.ToSlash(abs))
}

func runTUI(ctx context.Context, store *Store) error {
	if path := os.Getenv("TD_DEBUG"); path != "" {
		f, err := tea.LogToFile(path, "td")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	var watcher *Watcher
	if w, err := NewWatcher(store.Path()); err != nil {
		log.Printf("watch %s: %v", store.Path(), err)
	} else {
		watcher = w
		defer watcher.Close()
	}

	debouncer := NewDebouncer(reloadDebounce)

	p := tea.NewProgram(newModel(store, watcher, debouncer), tea.WithAltScreen(), tea.WithContext(ctx))
	debouncer.SetProgram(p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

func main() {
	filePath := flag.String("file", "", "Path to the task file (default tasks.txt)")
	profileName := flag.String("profile", "", "Profile name from config (optional)")
	listOnly := flag.Bool("list", false, "Print tasks and exit (non-interactive)")
	useTUI := flag.Bool("tui", false, "Run the full-screen interface instead of the menu")
	flag.Parse()

	cfg, cfgPath, err := loadConfig()
	if err != nil {
		fmt.Printf("Error loading config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	settings, err := resolveSettings(cfg, *profileName, *filePath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	store := NewStore(settings.File)

	existed, err := store.Load()
	if err != nil {
		fmt.Printf("Error loading tasks: %v\n", err)
		os.Exit(1)
	}

	if *listOnly {
		fmt.Print(renderList(store.Tasks(), settings.Theme))
		os.Exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *useTUI || settings.TUI {
		if err := runTUI(ctx, store); err != nil {
			fmt.Printf("Error running TUI: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println(startupMessage(existed, store.Len(), store.Path()))

	styled := isatty.IsTerminal(os.Stdout.Fd())
	shell := NewShell(store, os.Stdin, os.Stdout, WithStyle(styled))

	if err := shell.Run(ctx); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
