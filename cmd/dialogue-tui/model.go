package main

import (
	"errors"
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/decker502/dialogue/pkg/directive"
	"github.com/decker502/dialogue/pkg/playback"
	"github.com/decker502/dialogue/pkg/script"
	"github.com/decker502/dialogue/pkg/session"
	"github.com/decker502/dialogue/pkg/transition"
)

const (
	refreshInterval = 33 * time.Millisecond
	maxDiagnostics  = 3
	defaultWidth    = 80
)

// diagnostics 保存最近的脚本诊断，OnDiagnostic 在打印 goroutine 中调用
type diagnostics struct {
	mu    sync.Mutex
	items []string
}

func (d *diagnostics) add(err error) {
	var misuse *playback.SequenceMisuse
	if errors.As(err, &misuse) {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.items = append(d.items, err.Error())
	if len(d.items) > maxDiagnostics {
		d.items = d.items[len(d.items)-maxDiagnostics:]
	}
}

func (d *diagnostics) list() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.items...)
}

type refreshMsg time.Time

func refresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

// model 终端播放器
// 播放状态全部来自会话快照，model 本身只保存界面状态
type model struct {
	sess    *session.Session
	text    string
	diags   *diagnostics
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
}

func newModel(sess *session.Session, text string, diags *diagnostics) model {
	sp := spinner.New()
	sp.Spinner = spinner.Points
	return model{
		sess:    sess,
		text:    text,
		diags:   diags,
		keys:    defaultKeyMap(),
		help:    help.New(),
		spinner: sp,
		width:   defaultWidth,
	}
}

// Init 开始播放
func (m model) Init() tea.Cmd {
	_ = m.sess.Play(m.text)
	return tea.Batch(m.spinner.Tick, refresh())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case refreshMsg:
		return m, refresh()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.sess.Close()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Replay):
			if m.sess.Engine.Snapshot().Ended() {
				_ = m.sess.Play(m.text)
			}
		case key.Matches(msg, m.keys.Swap):
			_ = m.sess.Engine.ChangeCharacter()
		case key.Matches(msg, m.keys.Advance):
			_ = m.sess.Advance()
		}
	}
	return m, nil
}

func (m model) View() string {
	v := m.sess.Coordinator.View()
	snap := m.sess.Engine.Snapshot()

	var b strings.Builder
	switch {
	case v.Active:
		b.WriteString(m.renderPanel(v, snap))
	case snap.Ended() && snap.SessionID != "":
		b.WriteString(hintStyle.Render("The conversation is over. Press r to replay."))
	default:
		b.WriteString(hintStyle.Render("..."))
	}
	b.WriteString("\n")

	for _, d := range m.diags.list() {
		b.WriteString(diagStyle.Render("! " + d))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

var (
	hintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	diagStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	textStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
)

// renderPanel 渲染面板：标题栏、正文与推进提示，按 Side 靠左或靠右
func (m model) renderPanel(v transition.View, snap playback.Snapshot) string {
	width := m.width * 3 / 4
	if width < 20 {
		width = m.width
	}

	header := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(lipgloss.Color("255")).
		Background(hexColour(v.HeaderColour))

	body := textStyle.Render(script.StripFormatting(snap.Rendered))
	if snap.PromptVisible && !v.Busy {
		body += " " + m.spinner.View()
	}

	panel := lipgloss.NewStyle().
		Width(width-2).
		Padding(0, 1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(hexColour(v.PanelColour))
	if v.Busy {
		panel = panel.Faint(true)
	}

	var rows []string
	if v.Portrait != "" {
		rows = append(rows, hintStyle.Render(fmt.Sprintf("[%s]", v.Portrait)))
	}
	if v.Speaker != "" {
		rows = append(rows, header.Render(v.Speaker))
	}
	rows = append(rows, panel.Render(body))

	pos := lipgloss.Right
	if v.Side == directive.SideLeft {
		pos = lipgloss.Left
	}
	block := lipgloss.JoinVertical(pos, rows...)
	return lipgloss.PlaceHorizontal(m.width, pos, block)
}

// hexColour 把面板颜色转换为终端颜色
func hexColour(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B))
}
