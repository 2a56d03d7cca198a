package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chintak/qrganize/internal/article"
	"github.com/chintak/qrganize/internal/config"
	"github.com/chintak/qrganize/internal/panel"
)

func main() {
	pageURL := flag.String("url", "", "article URL to summarize on startup")
	configPath := flag.String("config", "", "path to the config file (default ~/.config/qrganize/config.yaml)")
	exportDir := flag.String("export-dir", ".", "directory for exported HTML summaries")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	if logPath := os.Getenv("QRGANIZE_DEBUG"); logPath != "" {
		f, err := tea.LogToFile(logPath, "qrganize")
		if err != nil {
			fmt.Println("failed to open debug log:", err)
			os.Exit(1)
		}
		defer f.Close()
	}

	// Piped stdin acts as a host-page text selection: summarize it
	// directly instead of fetching a URL.
	selection := readPipedSelection()

	extractor, err := article.NewWebExtractor(nil)
	if err != nil {
		fmt.Println("failed to initialize article extractor:", err)
		os.Exit(1)
	}

	model := panel.New(panel.Deps{
		LoadConfig: func() (config.Config, error) { return config.Load(*configPath) },
		Extractor:  extractor,
		PageURL:    *pageURL,
		Selection:  selection,
		ExportDir:  *exportDir,
	})

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if selection != "" {
		// Stdin was consumed by the pipe; keyboard input comes from
		// the terminal device instead.
		if tty, err := os.Open("/dev/tty"); err == nil {
			defer tty.Close()
			opts = append(opts, tea.WithInput(tty))
		}
	}
	program := tea.NewProgram(model, opts...)

	if _, err := program.Run(); err != nil {
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}

func readPipedSelection() string {
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice != 0 {
		return ""
	}
	data, err := io.ReadAll(io.LimitReader(os.Stdin, 1<<20))
	if err != nil {
		return ""
	}
	return string(data)
}
