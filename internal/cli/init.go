package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/joebot/discordbridge/internal/bridge"
)

// ErrConfigExists is returned by RunInit when it may not replace a file.
var ErrConfigExists = errors.New("bridge config already exists (use --force to overwrite)")

// --- init selection model ---

type initChoice int

const (
	choiceOverwrite initChoice = iota
	choiceKeep
)

type initModel struct {
	path    string
	choices []string
	cursor  int
	chosen  bool
	choice  initChoice
}

func newInitModel(path string) initModel {
	return initModel{
		path: path,
		choices: []string{
			"Overwrite: replace it with the example config",
			"Keep: leave the existing file alone",
		},
	}
}

func (m initModel) Init() tea.Cmd { return nil }

func (m initModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.choice = choiceKeep
			m.chosen = true
			return m, tea.Quit
		case tea.KeyUp, tea.KeyShiftTab:
			if m.cursor > 0 {
				m.cursor--
			}
		case tea.KeyDown, tea.KeyTab:
			if m.cursor < len(m.choices)-1 {
				m.cursor++
			}
		case tea.KeyEnter:
			m.choice = initChoice(m.cursor)
			m.chosen = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m initModel) View() string {
	if m.chosen {
		return ""
	}

	s := "\n"
	s += fmt.Sprintf("  Bridge config already exists at %s\n\n", DimStyle.Render(m.path))
	for i, choice := range m.choices {
		cursor := "  "
		if i == m.cursor {
			cursor = BotLabel.Render("❯ ")
		}
		s += "  " + cursor + choice + "\n"
	}
	s += "\n" + DimStyle.Render("  ↑/↓ navigate · enter select · esc cancel") + "\n"
	return s
}

// RunInit writes the example bridge config to path. An existing file is
// replaced only with force, or after asking when stdin is a terminal.
func RunInit(w io.Writer, path string, force bool) error {
	fmt.Fprintln(w)
	fmt.Fprintln(w, Title("Init"))

	if _, err := os.Stat(path); err == nil && !force {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return ErrConfigExists
		}
		final, err := tea.NewProgram(newInitModel(path)).Run()
		if err != nil {
			return err
		}
		if final.(initModel).choice != choiceOverwrite {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "  "+DimStyle.Render("Bridge config unchanged"))
			fmt.Fprintln(w)
			return nil
		}
	}

	if err := writeExample(path); err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  "+OkStyle.Render("✓")+" Wrote bridge config to "+DimStyle.Render(path))
	fmt.Fprintln(w)
	fmt.Fprintln(w, DimStyle.Render("  Next steps:"))
	fmt.Fprintln(w, DimStyle.Render("  1. Replace the example channel ids and rooms"))
	fmt.Fprintln(w, DimStyle.Render("  2. Set DISCORD_BOT_TOKEN in the environment or .env"))
	fmt.Fprintln(w, DimStyle.Render("  3. Check it: discordbridge check"))
	fmt.Fprintln(w)
	return nil
}

func writeExample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, bridge.ExampleConfig, 0o644); err != nil {
		return fmt.Errorf("write bridge config: %w", err)
	}
	return nil
}
