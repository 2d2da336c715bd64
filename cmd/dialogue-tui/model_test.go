package main

import (
	"context"
	"errors"
	"image/color"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/decker502/dialogue/pkg/clock"
	"github.com/decker502/dialogue/pkg/config"
	"github.com/decker502/dialogue/pkg/logging"
	"github.com/decker502/dialogue/pkg/playback"
	"github.com/decker502/dialogue/pkg/script"
	"github.com/decker502/dialogue/pkg/session"
)

func newTestModel(t *testing.T, text string) model {
	t.Helper()

	cfg := config.Default()
	cfg.Directives.Macros = map[string][]string{"dave": {"char:dave", "name:Crazy Dave"}}
	diags := &diagnostics{}
	sess, err := session.New(cfg, session.Options{
		Logger: logging.Discard(),
		Clock: clock.Func(func(ctx context.Context, _ time.Duration) error {
			return ctx.Err()
		}),
		OnDiagnostic: diags.add,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sess.Close)
	return newModel(sess, text, diags)
}

func waitFor(t *testing.T, m model, states ...playback.State) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if _, err := m.sess.WaitState(ctx, states...); err != nil {
		t.Fatal(err)
	}
	if states[0] != playback.StateAwaitingAdvance {
		return
	}
	// 换角动画结束后才能推进
	if err := m.sess.Flags.ReadyToProceed.Wait(ctx); err != nil {
		t.Fatal(err)
	}
}

func TestModel_PlayThrough(t *testing.T) {
	m := newTestModel(t, "[dave]Hello <b>there</b>.\nBye.")
	m.Init()

	waitFor(t, m, playback.StateAwaitingAdvance)
	out := m.View()
	if !strings.Contains(out, "Crazy Dave") || !strings.Contains(out, "Hello there.") {
		t.Errorf("view missing speaker or text:\n%s", out)
	}
	if strings.Contains(out, "<b>") {
		t.Error("formatting tags should be stripped in the terminal")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	waitFor(t, m, playback.StateAwaitingAdvance)
	if got := m.sess.Engine.Snapshot().Rendered; got != "Bye." {
		t.Errorf("second line = %q", got)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(model)
	waitFor(t, m, playback.StateIdle)
	if !strings.Contains(m.View(), "replay") {
		t.Error("finished view should offer a replay")
	}

	// r 重新播放
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(model)
	if st := m.sess.Engine.Snapshot().State; st == playback.StateIdle {
		t.Error("replay should start a new session")
	}
}

// TestModel_ReplayEmptyScript 空脚本结束后同样可以重新播放
func TestModel_ReplayEmptyScript(t *testing.T) {
	m := newTestModel(t, "\n  \n")
	m.Init()

	if n := len(m.diags.list()); n != 1 {
		t.Fatalf("diagnostics = %d, want 1", n)
	}
	if !strings.Contains(m.View(), "replay") {
		t.Error("empty script view should offer a replay")
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = next.(model)
	if n := len(m.diags.list()); n != 2 {
		t.Errorf("diagnostics = %d after replay, want 2", n)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, "Hi.")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestDiagnostics(t *testing.T) {
	d := &diagnostics{}
	d.add(&playback.SequenceMisuse{Op: "Advance"})
	if len(d.list()) != 0 {
		t.Error("sequence misuse should not be shown")
	}

	for i := 0; i < 5; i++ {
		d.add(errors.New("warning"))
	}
	d.add(&script.ParseFault{Line: 0, Offset: 3, Tag: "[x"})
	got := d.list()
	if len(got) != maxDiagnostics {
		t.Fatalf("len = %d, want %d", len(got), maxDiagnostics)
	}
	if !strings.Contains(got[len(got)-1], "[x") {
		t.Errorf("latest diagnostic should be kept last, got %v", got)
	}
}

func TestHexColour(t *testing.T) {
	if got := hexColour(color.RGBA{R: 0x28, G: 0x2c, B: 0x34, A: 0xff}); string(got) != "#282c34" {
		t.Errorf("hexColour = %q", got)
	}
}
