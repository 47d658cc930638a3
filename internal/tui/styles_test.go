package tui

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/naveenspark/tavola/pkg/domain"
)

func TestCategoryStyleRendersText(t *testing.T) {
	for _, c := range []domain.Category{domain.CategoryBreakfast, domain.CategoryMainDish, domain.CategoryDessert, domain.CategoryDrink, "brunch"} {
		t.Run(string(c), func(t *testing.T) {
			rendered := CategoryStyle(c).Render(string(c))
			if !strings.Contains(rendered, string(c)) {
				t.Errorf("CategoryStyle(%q).Render = %q, want to contain the name", c, rendered)
			}
		})
	}
}

func TestStatusBadge(t *testing.T) {
	for _, s := range domain.BookingStatuses {
		if got := StatusBadge(s); !strings.Contains(got, "["+string(s)+"]") {
			t.Errorf("StatusBadge(%q) = %q", s, got)
		}
	}
	if got := StatusBadge("lost"); !strings.Contains(got, "[lost]") {
		t.Errorf("unknown status should still render, got %q", got)
	}
	if got := StatusBadge(""); got != "" {
		t.Errorf("StatusBadge(\"\") = %q, want empty", got)
	}
}

func TestSpinnerCycles(t *testing.T) {
	first := spinner(0)
	if first == "" {
		t.Fatal("spinner(0) is empty")
	}
	if spinner(2*len(spinnerFrames)) != first {
		t.Error("spinner should wrap around")
	}
	if spinner(2) == first {
		t.Error("spinner should advance every two frames")
	}
}

func TestHelpBar(t *testing.T) {
	got := helpBar("q", "quit", "?", "help")
	for _, want := range []string{"q", "quit", "?", "help"} {
		if !strings.Contains(got, want) {
			t.Errorf("helpBar missing %q: %q", want, got)
		}
	}
	if got := helpBar("dangling"); strings.Contains(got, "dangling") {
		t.Errorf("a key without a label should be dropped, got %q", got)
	}
}

func TestHelpViewListsGoToPaths(t *testing.T) {
	view := helpView()
	for _, want := range []string{"Keys", "Commands", "/menu", "/bookings"} {
		if !strings.Contains(view, want) {
			t.Errorf("help view missing %q", want)
		}
	}
}

func TestShimmerLogoKeepsLetters(t *testing.T) {
	for _, frame := range []int{0, 7, 40} {
		logo := renderShimmerLogo(frame)
		for _, r := range "TAVOLA" {
			if !strings.ContainsRune(logo, r) {
				t.Errorf("frame %d: logo missing %q", frame, r)
			}
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := map[string]string{
		"14":    "$14.00",
		"8.5":   "$8.50",
		"7.255": "$7.26",
		"0.1":   "$0.10",
	}
	for in, want := range tests {
		if got := formatPrice(decimal.RequireFromString(in)); got != want {
			t.Errorf("formatPrice(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatRemaining(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		at   time.Time
		want string
	}{
		{now.Add(-time.Minute), "expired"},
		{now, "expired"},
		{now.Add(42 * time.Minute), "42m"},
		{now.Add(23*time.Hour + 59*time.Minute), "23h 59m"},
	}
	for _, tc := range tests {
		if got := formatRemaining(tc.at, now); got != tc.want {
			t.Errorf("formatRemaining(%v) = %q, want %q", tc.at.Sub(now), got, tc.want)
		}
	}
}

func TestFormatTime(t *testing.T) {
	if got := formatTime(time.Time{}); got != "" {
		t.Errorf("zero time = %q, want empty", got)
	}
	if got := formatTime(time.Now().Add(-3 * time.Hour)); got != "3h ago" {
		t.Errorf("formatTime(3h) = %q", got)
	}
	if got := formatTime(time.Now().Add(-49 * time.Hour)); got != "2d ago" {
		t.Errorf("formatTime(49h) = %q", got)
	}
}

func TestTruncStrAndCleanLine(t *testing.T) {
	if got := truncStr("Tiramisu", 5); got != "Tira…" {
		t.Errorf("truncStr = %q", got)
	}
	if got := truncStr("Pasta", 5); got != "Pasta" {
		t.Errorf("truncStr should keep short text, got %q", got)
	}
	if got := cleanLine(" two\nlines\r\n  here "); got != "two lines here" {
		t.Errorf("cleanLine = %q", got)
	}
}

func TestReadUpload(t *testing.T) {
	up, err := readUpload("  ")
	if err != nil || up != nil {
		t.Fatalf("empty path = %v, %v; want nil, nil", up, err)
	}
	if _, err := readUpload(t.TempDir() + "/missing.png"); err == nil {
		t.Error("missing file should fail")
	}

	path := t.TempDir() + "/dish.png"
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	if err := os.WriteFile(path, png, 0o600); err != nil {
		t.Fatal(err)
	}
	up, err = readUpload(path)
	if err != nil {
		t.Fatalf("readUpload error: %v", err)
	}
	if up.Filename != "dish.png" || up.ContentType != "image/png" || len(up.Data) != len(png) {
		t.Errorf("upload = %s %s %d bytes", up.Filename, up.ContentType, len(up.Data))
	}
}

func TestBlend(t *testing.T) {
	tests := []struct {
		t    float64
		want string
	}{
		{0, "#4a2412"},
		{1, "#f5b041"},
		{-3, "#4a2412"},
		{7, "#f5b041"},
		{0.5, "#a06a2a"},
	}
	for _, tc := range tests {
		if got := string(blend(emberRGB, amberRGB, tc.t)); got != tc.want {
			t.Errorf("blend(%v) = %s, want %s", tc.t, got, tc.want)
		}
	}
}
