package ui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"
)

func TestTruncate_WidthSafe(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		maxWidth int
		want     string
	}{
		{name: "zero max", input: "hello", maxWidth: 0, want: ""},
		{name: "fits", input: "hello", maxWidth: 10, want: "hello"},
		{name: "ellipsis", input: "Install Nginx and Utilities", maxWidth: 10, want: "Install N…"},
		{name: "wide runes", input: "日本語テキスト", maxWidth: 7, want: "日本語…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.input, tt.maxWidth)
			if got != tt.want {
				t.Fatalf("truncate(%q, %d) = %q; want %q", tt.input, tt.maxWidth, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Fatalf("truncate output is not valid UTF-8: %q", got)
			}
			if w := runewidth.StringWidth(got); w > tt.maxWidth {
				t.Fatalf("truncate output is %d cells; max %d", w, tt.maxWidth)
			}
		})
	}
}

func TestPadRight(t *testing.T) {
	if got := padRight("ab", 5); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("abcdef", 3); got != "abcdef" {
		t.Errorf("padRight should not cut: %q", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, lo, hi, want int }{
		{5, 0, 10, 5},
		{-1, 0, 10, 0},
		{11, 0, 10, 10},
		{3, 0, -1, 0}, // empty range
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestRenderProgressBar(t *testing.T) {
	theme := TestTheme()
	tests := []struct {
		percent, width int
		filled         int
	}{
		{0, 10, 0},
		{50, 10, 5},
		{100, 10, 10},
		{150, 10, 10},
		{-5, 10, 0},
	}
	for _, tt := range tests {
		bar := ansi.Strip(RenderProgressBar(theme, tt.percent, tt.width))
		if got := strings.Count(bar, "█"); got != tt.filled {
			t.Errorf("RenderProgressBar(%d): filled = %d, want %d", tt.percent, got, tt.filled)
		}
		if got := utf8.RuneCountInString(bar); got != tt.width {
			t.Errorf("RenderProgressBar(%d): width = %d, want %d", tt.percent, got, tt.width)
		}
	}
	if RenderProgressBar(theme, 50, 0) != "" {
		t.Error("zero width bar should be empty")
	}
}

func TestRenderTechBadges_StopsAtWidth(t *testing.T) {
	theme := TestTheme()
	got := ansi.Strip(RenderTechBadges(theme, []string{"Linux", "Nginx", "MySQL", "PHP", "phpMyAdmin"}, 20))
	if !strings.HasPrefix(got, "#Linux #Nginx") || !strings.HasSuffix(got, "…") {
		t.Errorf("RenderTechBadges = %q", got)
	}
}

func TestIconGlyph(t *testing.T) {
	if IconGlyph("Database") == "•" {
		t.Error("known icon should map to a glyph")
	}
	if IconGlyph("Unknown") != "•" {
		t.Error("unknown icon should fall back to a bullet")
	}
}

func TestCodeBlock(t *testing.T) {
	got := codeBlock("echo hi\n", "bash")
	if got != "```bash\necho hi\n```" {
		t.Errorf("codeBlock = %q", got)
	}
	nested := codeBlock("```\ninner\n```", "markdown")
	if !strings.HasPrefix(nested, "````markdown\n") || !strings.HasSuffix(nested, "\n````") {
		t.Errorf("codeBlock should lengthen the fence: %q", nested)
	}
}

func TestMarkdownRenderer_RendersCode(t *testing.T) {
	r := NewMarkdownRendererWithTheme(60, TestTheme())
	out, err := r.Render(codeBlock("sudo systemctl restart nginx", "bash"))
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(ansi.Strip(out), "sudo systemctl restart nginx") {
		t.Errorf("rendered code missing: %q", out)
	}
	if r.Width() != 60 {
		t.Errorf("Width = %d", r.Width())
	}

	var nilRenderer *MarkdownRenderer
	if got, _ := nilRenderer.Render("plain"); got != "plain" {
		t.Errorf("nil renderer = %q", got)
	}
}
