// Command pixelc-explore is a Bubble Tea browser over a compile run: one
// pane lists the lexeme stream, the other shows the parsed Program tree,
// both scrollable and styled from the same [palette] settings the other
// cmd/ binaries use.
package main

import (
	"fmt"
	"image"
	_ "image/png"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pixelc/internal/settings"
	"pixelc/internal/xlog"
	"pixelc/keydict"
	"pixelc/lexer"
	"pixelc/parser"
	"pixelc/pixelimg"
)

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: pixelc-explore <key_image> <source_image>")
		os.Exit(2)
	}
	keyPath, sourcePath := os.Args[1], os.Args[2]

	cfg := settings.LoadSettings("pixelc.toml")
	log := xlog.GetLogger()
	log.SetLevel(cfg.Level())

	m, err := newModel(keyPath, sourcePath, cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pixelc-explore: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "pixelc-explore: %v\n", err)
		os.Exit(1)
	}
}

// pane identifies which of the two scrollable panels has focus.
type pane int

const (
	lexemePane pane = iota
	treePane
)

// keyMap mirrors the navigation bindings shared across the cmd/ binaries.
type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Tab    key.Binding
	Cursor key.Binding
	Quit   key.Binding
}

var defaultKeyMap = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch pane")),
	Cursor: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "jump to statement")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

type styles struct {
	Header      lipgloss.Style
	Footer      lipgloss.Style
	PaneActive  lipgloss.Style
	PaneInert   lipgloss.Style
	TokenColors map[keydict.TokenKind]lipgloss.Style
}

func buildStyles(p settings.Palette) styles {
	colorFor := func(hex string) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	}
	return styles{
		Header: lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("14")),
		Footer: lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245")),
		PaneActive: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("213")),
		PaneInert: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		TokenColors: map[keydict.TokenKind]lipgloss.Style{
			keydict.Zero:      colorFor(p.Zero),
			keydict.Increment: colorFor(p.Increment),
			keydict.Decrement: colorFor(p.Decrement),
			keydict.Access:    colorFor(p.Access),
			keydict.Repeat:    colorFor(p.Repeat),
			keydict.Quote:     colorFor(p.Quote),
			keydict.LineBreak: colorFor(p.LineBreak),
		},
	}
}

type model struct {
	styles styles

	lexemes []lexer.Lexeme
	program *parser.Program
	dump    string

	lexemeView viewport.Model
	treeView   viewport.Model
	focused    pane
	ready      bool

	sourcePath string
	err        error
}

func newModel(keyPath, sourcePath string, cfg settings.Settings, log *xlog.Logger) (model, error) {
	keyBuf, err := decodeImage(keyPath)
	if err != nil {
		return model{}, fmt.Errorf("reading key image: %w", err)
	}
	dict, err := keydict.BuildFromKeyImage(keyBuf)
	if err != nil {
		return model{}, fmt.Errorf("inducing dictionary: %w", err)
	}

	sourceBuf, err := decodeImage(sourcePath)
	if err != nil {
		return model{}, fmt.Errorf("reading source image: %w", err)
	}

	lx := lexer.New(dict, log)
	lexemes := lx.Analyse(sourceBuf)

	program, err := parser.Parse(lexemes)
	if err != nil {
		return model{}, fmt.Errorf("parsing: %w", err)
	}

	var dumpBuf strings.Builder
	if err := parser.Dump(&dumpBuf, program); err != nil {
		return model{}, fmt.Errorf("dumping program: %w", err)
	}

	return model{
		styles:     buildStyles(cfg.Palette),
		lexemes:    lexemes,
		program:    program,
		dump:       dumpBuf.String(),
		sourcePath: sourcePath,
	}, nil
}

func decodeImage(path string) (*pixelimg.Buffer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return pixelimg.FromImage(img), nil
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) renderLexemes() string {
	var b strings.Builder
	for i, lex := range m.lexemes {
		style, ok := m.styles.TokenColors[lex.Kind]
		if !ok {
			style = lipgloss.NewStyle()
		}
		fmt.Fprintf(&b, "%4d  %s\n", i, style.Render(lex.String()))
	}
	if len(m.lexemes) == 0 {
		b.WriteString("(no lexemes)")
	}
	return b.String()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		paneHeight := msg.Height - headerHeight - footerHeight - 2
		paneWidth := msg.Width/2 - 2

		if !m.ready {
			m.lexemeView = viewport.New(paneWidth, paneHeight)
			m.treeView = viewport.New(paneWidth, paneHeight)
			m.lexemeView.SetContent(m.renderLexemes())
			m.treeView.SetContent(m.dump)
			m.ready = true
		} else {
			m.lexemeView.Width, m.lexemeView.Height = paneWidth, paneHeight
			m.treeView.Width, m.treeView.Height = paneWidth, paneHeight
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, defaultKeyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, defaultKeyMap.Tab):
			if m.focused == lexemePane {
				m.focused = treePane
			} else {
				m.focused = lexemePane
			}
			return m, nil
		}
	}

	if !m.ready {
		return m, nil
	}

	var cmd tea.Cmd
	if m.focused == lexemePane {
		m.lexemeView, cmd = m.lexemeView.Update(msg)
	} else {
		m.treeView, cmd = m.treeView.Update(msg)
	}
	return m, cmd
}

func (m model) headerView() string {
	return m.styles.Header.Render(fmt.Sprintf("pixelc-explore: %s (%d lexemes, %d statements)",
		m.sourcePath, len(m.lexemes), len(m.program.Statements)))
}

func (m model) footerView() string {
	return m.styles.Footer.Render("tab: switch pane   ↑/↓ j/k: scroll   q: quit")
}

func (m model) View() string {
	if !m.ready {
		return "\n  initializing...\n"
	}

	lexemeBox := m.styles.PaneInert
	treeBox := m.styles.PaneInert
	if m.focused == lexemePane {
		lexemeBox = m.styles.PaneActive
	} else {
		treeBox = m.styles.PaneActive
	}

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		lexemeBox.Render(m.lexemeView.View()),
		treeBox.Render(m.treeView.View()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), panes, m.footerView())
}
