package monitor

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/evanklingensmith/hungrymarmots/internal/syncer"
)

func keyPress(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func testModel() Model {
	return NewModel(nil, "hh1", time.Second)
}

func TestPanelCycling(t *testing.T) {
	m := testModel()
	if m.ActivePanel != PanelConflicts {
		t.Fatalf("initial panel: got %v", m.ActivePanel)
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.ActivePanel != PanelPending {
		t.Fatalf("after tab: got %v", m.ActivePanel)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	m = next.(Model)
	if m.ActivePanel != PanelConflicts {
		t.Fatalf("after shift+tab: got %v", m.ActivePanel)
	}

	next, _ = m.Update(keyPress('3'))
	m = next.(Model)
	if m.ActivePanel != PanelActivity {
		t.Fatalf("after 3: got %v", m.ActivePanel)
	}
}

func TestScrollClampsAtZero(t *testing.T) {
	m := testModel()

	next, _ := m.Update(keyPress('k'))
	m = next.(Model)
	if m.ScrollOffset[PanelConflicts] != 0 {
		t.Fatalf("scroll above top: %d", m.ScrollOffset[PanelConflicts])
	}

	next, _ = m.Update(keyPress('j'))
	m = next.(Model)
	next, _ = m.Update(keyPress('j'))
	m = next.(Model)
	if m.ScrollOffset[PanelConflicts] != 2 {
		t.Fatalf("scroll down: %d", m.ScrollOffset[PanelConflicts])
	}
}

func TestRefreshDataUpdatesState(t *testing.T) {
	m := testModel()
	stamp := time.Now()

	next, _ := m.Update(RefreshDataMsg{
		State:     syncer.State{ClientID: "mm_abc", Count: 1},
		Timestamp: stamp,
	})
	m = next.(Model)

	if m.State.ClientID != "mm_abc" || m.State.Count != 1 {
		t.Fatalf("state: %+v", m.State)
	}
	if !m.LastRefresh.Equal(stamp) {
		t.Fatalf("last refresh: %v", m.LastRefresh)
	}
}

func TestFilterNarrowsConflicts(t *testing.T) {
	m := testModel()
	m.State = syncer.State{
		Count: 2,
		Conflicts: []syncer.Conflict{
			{Path: "households/h1/groceryItems/milk"},
			{Path: "households/h1/weeks/2026-08-24/days/monday"},
		},
	}

	if got := len(m.visibleConflicts()); got != 2 {
		t.Fatalf("unfiltered: got %d", got)
	}

	m.Filter.SetValue("groceryItems")
	visible := m.visibleConflicts()
	if len(visible) != 1 || visible[0].Path != "households/h1/groceryItems/milk" {
		t.Fatalf("filtered: %+v", visible)
	}
}

func TestFilterModeCapturesKeys(t *testing.T) {
	m := testModel()

	next, _ := m.Update(keyPress('/'))
	m = next.(Model)
	if !m.Filtering {
		t.Fatal("slash should enter filter mode")
	}

	// 'q' while filtering types text instead of quitting.
	next, cmd := m.Update(keyPress('q'))
	m = next.(Model)
	if cmd != nil {
		if _, isQuit := cmd().(tea.QuitMsg); isQuit {
			t.Fatal("quit fired while filtering")
		}
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	if m.Filtering {
		t.Fatal("esc should leave filter mode")
	}
}
