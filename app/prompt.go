package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("49")).
			Bold(true).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 2)

	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
)

// StartPromptLoop reads free-text prompts from stdin on a background
// goroutine and morphs the swarm into whatever the AI answers. Failures
// are printed and the loop continues; the loop exits on EOF.
func (a *App) StartPromptLoop() {
	if a.brain == nil {
		a.log.Warnf("app: interactive prompts disabled (no API key)")
		return
	}

	fmt.Println(bannerStyle.Render("swarm: speak shapes into being"))
	fmt.Println(hintStyle.Render("  try: a DNA helix / a spiral galaxy / a five-pointed star"))
	fmt.Println(hintStyle.Render("  ESC or Ctrl+C quits"))

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print(promptStyle.Render("> "))
			if !scanner.Scan() {
				return
			}
			prompt := strings.TrimSpace(scanner.Text())
			if prompt == "" {
				continue
			}
			a.translateAndApply(context.Background(), prompt)
		}
	}()
}
