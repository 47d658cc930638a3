package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/tavola/pkg/domain"
)

// shimmerTickMsg advances the logo glow and the spinners.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// Logo colors: ember when a letter is dark, amber when it is lit.
var (
	emberRGB = [3]float64{74, 36, 18}
	amberRGB = [3]float64{245, 176, 65}
)

// renderShimmerLogo draws TAVOLA with a glow that drifts left to right like
// a candle flame.
func renderShimmerLogo(frame int) string {
	const word = "TAVOLA"
	letters := make([]string, 0, len(word))
	for i, r := range word {
		glow := 0.55 + 0.35*math.Cos(float64(frame)*0.09-float64(i)*0.6) + 0.1*math.Sin(float64(frame)*0.031)
		style := lipgloss.NewStyle().Bold(true).Foreground(blend(emberRGB, amberRGB, glow))
		letters = append(letters, style.Render(string(r)))
	}
	return strings.Join(letters, "  ")
}

// blend mixes two colors, t in [0,1] (clamped).
func blend(from, to [3]float64, t float64) lipgloss.Color {
	t = math.Max(0, math.Min(1, t))
	var c [3]int
	for i := range c {
		c[i] = int(math.Round(from[i] + (to[i]-from[i])*t))
	}
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// spinner returns the glyph for an animation frame.
func spinner(frame int) string {
	return accentStyle.Render(spinnerFrames[(frame/2)%len(spinnerFrames)])
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a09488"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f4ede4")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d8cfc4"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b6058"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a09488"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6b6058"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f5b041")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e59a3a"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7fb069"))

	rejectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0504d"))

	goldStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4a844"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#8a7d70")).
				Bold(true)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#e59a3a")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#4a423c"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#2a221e"))

	categoryColors = map[domain.Category]lipgloss.Color{
		domain.CategoryBreakfast: lipgloss.Color("#f0c05a"),
		domain.CategoryMainDish:  lipgloss.Color("#e0745a"),
		domain.CategoryDessert:   lipgloss.Color("#d08ac0"),
		domain.CategoryDrink:     lipgloss.Color("#5ab4e0"),
	}

	statusColors = map[domain.BookingStatus]lipgloss.Color{
		domain.BookingPending:   lipgloss.Color("#d4a844"),
		domain.BookingConfirmed: lipgloss.Color("#7fb069"),
		domain.BookingCancelled: lipgloss.Color("#c0504d"),
		domain.BookingCompleted: lipgloss.Color("#8a7d70"),
	}
)

// CategoryStyle returns a bold style colored for a menu category.
func CategoryStyle(c domain.Category) lipgloss.Style {
	if col, ok := categoryColors[c]; ok {
		return lipgloss.NewStyle().Foreground(col).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#8a7d70")).Bold(true)
}

// StatusBadge renders a booking status, e.g. "[confirmed]".
func StatusBadge(s domain.BookingStatus) string {
	if s == "" {
		return ""
	}
	col, ok := statusColors[s]
	if !ok {
		col = lipgloss.Color("#a09488")
	}
	return lipgloss.NewStyle().Foreground(col).Render("[" + string(s) + "]")
}

// helpEntry renders "key label".
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins key/label pairs: helpBar("q", "quit", "?", "help").
func helpBar(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpView renders the help overlay.
func helpView() string {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5b041")).
		Bold(true).
		Render("T A V O L A")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"A table is waiting. Here is how to reach it."`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	keys := []struct{ key, desc string }{
		{"1-6", "switch tabs"},
		{":", "go to a path, e.g. /menu or /admin/bookings"},
		{"j/k", "move the selection"},
		{"enter", "open or submit"},
		{"esc", "back"},
		{"?", "toggle this help"},
		{"q", "quit"},
	}
	commands := []struct{ cmd, desc string }{
		{"tavola", "Open the restaurant (interactive TUI)"},
		{"tavola menu [search]", "Print the menu, --category=NAME to filter"},
		{"tavola web", "Open the web site in a browser"},
		{"tavola version", "Show version"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n  %s\n\n", title, quote)

	fmt.Fprintf(&b, "  %s\n", sectionHeaderStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-8s", k.key)), descStyle.Render(k.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionHeaderStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	return b.String()
}
