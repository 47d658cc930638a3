package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"go.uber.org/zap"

	"github.com/naveenspark/tavola/internal/browser"
	"github.com/naveenspark/tavola/internal/config"
	"github.com/naveenspark/tavola/internal/logging"
	"github.com/naveenspark/tavola/internal/tui"
	"github.com/naveenspark/tavola/pkg/client"
	"github.com/naveenspark/tavola/pkg/domain"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("tavola " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		}
	}

	cfg, err := config.Load("", "")
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck
	log.Info("starting", zap.String("version", version), zap.String("api", cfg.APIURL))

	c := client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout), client.WithLogger(log))

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "menu":
			filter, err := parseMenuArgs(os.Args[2:])
			if err != nil {
				return err
			}
			return runMenu(context.Background(), c, filter, os.Stdout)
		case "web":
			return openWeb(cfg.APIURL)
		default:
			return fmt.Errorf("unknown command %q (try: tavola help)", os.Args[1])
		}
	}

	p := tea.NewProgram(tui.NewApp(c, log), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// parseMenuArgs reads "[search words] [--category=NAME]".
func parseMenuArgs(args []string) (domain.MenuFilter, error) {
	var f domain.MenuFilter
	var words []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--category" || arg == "-c":
			if i+1 >= len(args) {
				return f, fmt.Errorf("%s needs a value", arg)
			}
			i++
			f.Category = domain.Category(args[i])
		case strings.HasPrefix(arg, "--category="):
			f.Category = domain.Category(strings.TrimPrefix(arg, "--category="))
		case strings.HasPrefix(arg, "-"):
			return f, fmt.Errorf("unknown flag %s", arg)
		default:
			words = append(words, arg)
		}
	}
	f.Search = strings.Join(words, " ")
	if f.Category != "" && f.Category != domain.CategoryAll && !domain.ValidCategory(f.Category) {
		return f, fmt.Errorf("unknown category %q", f.Category)
	}
	return f, nil
}

// runMenu prints the menu as a table.
func runMenu(ctx context.Context, c *client.Client, filter domain.MenuFilter, w io.Writer) error {
	items, _, err := c.ListMenuItems(ctx, filter)
	if err != nil {
		return fmt.Errorf("fetch menu: %w", err)
	}
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No dishes match.")
		return err
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#6b6058"))).
		Headers("TITLE", "CATEGORY", "PRICE")
	for _, it := range items {
		t.Row(it.Title, string(it.Category), "$"+it.Price.StringFixed(2))
	}
	_, err = fmt.Fprintln(w, t.Render())
	return err
}

// webURL derives the web frontend from the API URL: the /api path is dropped
// and an "api." host prefix is stripped.
func webURL(apiURL string) (string, error) {
	u, err := url.Parse(apiURL)
	if err != nil {
		return "", fmt.Errorf("parse api url: %w", err)
	}
	u.Path = strings.TrimSuffix(strings.TrimRight(u.Path, "/"), "/api")
	if host, ok := strings.CutPrefix(u.Hostname(), "api."); ok {
		port := u.Port()
		u.Host = host
		if port != "" {
			u.Host += ":" + port
		}
	}
	u.RawQuery = ""
	return u.String(), nil
}

func openWeb(apiURL string) error {
	target, err := webURL(apiURL)
	if err != nil {
		return err
	}
	if err := browser.Open(target); err != nil {
		fmt.Printf("Could not open a browser. Visit:\n  %s\n", target)
	}
	return nil
}
