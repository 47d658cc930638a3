package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
)

var taglines = [...]string{
	"The kitchen opens at noon. The menu never closes.",
	"Every table has a story. Most of them start with a booking.",
	"The espresso machine has opinions. Book before it shares them.",
	"Twelve seats at the long table. Eleven are still free.",
	"The tiramisu does not wait for latecomers.",
	"A good dinner starts with a reservation and ends with dessert.",
	"The chef tastes everything twice. You only need to order once.",
	"The pasta is fresh. The tables are not infinite.",
}

func tagline() string {
	return taglines[rand.IntN(len(taglines))]
}

func printHelp() {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#f5b041")).
		Bold(true).
		Render("T A V O L A")

	quote := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(`"` + tagline() + `"`)

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"tavola", "Open the restaurant (interactive TUI)"},
		{"tavola menu [search]", "Print the menu"},
		{"  --category=NAME", "breakfast, main dish, dessert or drink"},
		{"tavola web", "Open the web site in a browser"},
		{"tavola --version", "Show version"},
		{"tavola help", "You are here"},
	}

	fmt.Printf("\n  %s\n\n  %s\n\n  Commands:\n", title, quote)
	for _, c := range commands {
		fmt.Printf("    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	env := descStyle.Render("Settings: ~/.tavola/config.yaml, .env, TAVOLA_API_URL, TAVOLA_LOG_LEVEL")
	fmt.Printf("\n  %s\n\n", env)
}
