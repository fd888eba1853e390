package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/mcdonaldj/zip2hash/internal/extract"
	"github.com/mcdonaldj/zip2hash/internal/mocks"
	"github.com/mcdonaldj/zip2hash/internal/ziptest"
)

// testArchive holds one hash, one skipped and one failed entry, in that order.
func testArchive(t *testing.T) *extract.Archive {
	t.Helper()
	enc := ziptest.Entry{
		Name: "secret.txt", VersionNeeded: 20, Flags: 0x0001, Method: 8,
		CRC32: 0xdeadbeef, UncompressedSize: 16, Payload: bytes.Repeat([]byte{0xaa}, 12),
	}
	plain := ziptest.Entry{Name: "readme.txt", VersionNeeded: 10, Payload: []byte("hello"), UncompressedSize: 5}
	broken := enc
	broken.Name = "broken.bin"
	broken.Extra = []byte{0x01, 0x00, 0x20, 0x00}

	data := ziptest.Bytes(ziptest.Archive{Entries: []ziptest.Entry{enc, plain, broken}})
	a, err := extract.Process("/tmp/test.zip", bytes.NewReader(data), int64(len(data)), extract.Options{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	return a
}

func press(m *Model, msg tea.KeyMsg) (*Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(*Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel(t *testing.T) {
	m := NewModel(testArchive(t), nil)

	if len(m.rows) != 3 {
		t.Errorf("rows = %d, expected 3", len(m.rows))
	}
	if m.view != EntriesView {
		t.Errorf("view = %v, expected EntriesView", m.view)
	}
	if m.Init() != nil {
		t.Error("Init returned a command")
	}
}

func TestModelNavigation(t *testing.T) {
	m := NewModel(testArchive(t), nil)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 1 {
		t.Errorf("cursor = %d, expected 1", m.cursor)
	}
	m, _ = press(m, runes("j"))
	if m.cursor != 2 {
		t.Errorf("cursor = %d, expected 2", m.cursor)
	}

	// Boundary
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 2 {
		t.Errorf("cursor = %d, expected 2 (at boundary)", m.cursor)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = press(m, runes("k"))
	m, _ = press(m, runes("k"))
	if m.cursor != 0 {
		t.Errorf("cursor = %d, expected 0 (at boundary)", m.cursor)
	}
}

func TestDetailView(t *testing.T) {
	m := NewModel(testArchive(t), nil)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != DetailView {
		t.Fatalf("view = %v, expected DetailView", m.view)
	}

	out := m.View()
	for _, want := range []string{"secret.txt", "deadbeef", "dead (crc)", "PKZIP Encr: 2b chk", "$pkzip2$"} {
		if !strings.Contains(out, want) {
			t.Errorf("detail view missing %q", want)
		}
	}

	// Cursor movement is ignored in the detail view.
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.cursor != 0 {
		t.Errorf("cursor moved in detail view: %d", m.cursor)
	}

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.view != EntriesView {
		t.Errorf("view = %v, expected EntriesView after esc", m.view)
	}
}

func TestDetailViewFailedEntry(t *testing.T) {
	m := NewModel(testArchive(t), nil)
	m.cursor = 2

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	out := m.View()
	if !strings.Contains(out, "broken.bin") || !strings.Contains(out, "error:") {
		t.Errorf("detail view for failed entry:\n%s", out)
	}
	if strings.Contains(out, "$pkzip2$") {
		t.Error("failed entry shows a hash line")
	}
}

func TestHashOnlyFilter(t *testing.T) {
	m := NewModel(testArchive(t), nil)
	m.cursor = 2

	m, _ = press(m, runes("h"))
	if !m.hashOnly || len(m.rows) != 1 {
		t.Fatalf("hashOnly = %v, rows = %d", m.hashOnly, len(m.rows))
	}
	if m.cursor != 0 {
		t.Errorf("cursor = %d, expected clamp to 0", m.cursor)
	}
	if strings.Contains(m.View(), "readme.txt") {
		t.Error("filtered view still lists skipped entry")
	}

	m, _ = press(m, runes("h"))
	if m.hashOnly || len(m.rows) != 3 {
		t.Errorf("hashOnly = %v, rows = %d after toggling back", m.hashOnly, len(m.rows))
	}
}

func TestCopyLine(t *testing.T) {
	a := testArchive(t)
	clip := mocks.NewMockClipboard()
	m := NewModel(a, clip)

	m, cmd := press(m, runes("y"))
	if cmd == nil {
		t.Fatal("copy returned no command")
	}
	msg := cmd()
	m, _ = pressMsg(m, msg)

	if clip.Last() != a.Results[0].Line {
		t.Errorf("clipboard = %q, expected the hash line", clip.Last())
	}
	if m.statusErr || !strings.Contains(m.statusMsg, "secret.txt") {
		t.Errorf("status = %q (err %v)", m.statusMsg, m.statusErr)
	}

	// Any key clears the status.
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	if m.statusMsg != "" {
		t.Errorf("status not cleared: %q", m.statusMsg)
	}
}

func TestCopyLineErrors(t *testing.T) {
	a := testArchive(t)

	t.Run("skipped entry", func(t *testing.T) {
		clip := mocks.NewMockClipboard()
		m := NewModel(a, clip)
		m.cursor = 1
		_, cmd := press(m, runes("y"))
		msg := cmd().(statusMsg)
		if !msg.err || !strings.Contains(msg.msg, "no hash line") {
			t.Errorf("msg = %+v", msg)
		}
		if len(clip.Writes) != 0 {
			t.Error("clipboard written for skipped entry")
		}
	})

	t.Run("no clipboard", func(t *testing.T) {
		m := NewModel(a, nil)
		_, cmd := press(m, runes("y"))
		if msg := cmd().(statusMsg); !msg.err {
			t.Errorf("msg = %+v, expected error", msg)
		}
	})

	t.Run("clipboard failure", func(t *testing.T) {
		clip := mocks.NewMockClipboard()
		clip.Err = errors.New("no display")
		m := NewModel(a, clip)
		_, cmd := press(m, runes("y"))
		msg := cmd().(statusMsg)
		if !msg.err || !strings.Contains(msg.msg, "no display") {
			t.Errorf("msg = %+v", msg)
		}
	})
}

func TestEmptyArchive(t *testing.T) {
	data := ziptest.Bytes(ziptest.Archive{})
	a, err := extract.Process("empty.zip", bytes.NewReader(data), int64(len(data)), extract.Options{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	m := NewModel(a, nil)

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.view != EntriesView {
		t.Error("entered detail view with no entries")
	}
	if !strings.Contains(m.View(), "No entries") {
		t.Error("empty archive view missing placeholder")
	}
	_, cmd := press(m, runes("y"))
	if msg := cmd().(statusMsg); !msg.err {
		t.Error("copy with no entries did not fail")
	}
}

func TestEntriesViewRendering(t *testing.T) {
	m := NewModel(testArchive(t), nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	out := m.View()
	for _, want := range []string{"test.zip", "3 entries, 1 hashes, 1 skipped, 1 errors", "ENTRY", "secret.txt", "readme.txt", "not encrypted", "dead"} {
		if !strings.Contains(out, want) {
			t.Errorf("entries view missing %q", want)
		}
	}
}

func TestQuit(t *testing.T) {
	m := NewModel(testArchive(t), nil)
	m, cmd := press(m, runes("q"))
	if !m.quitting || cmd == nil {
		t.Fatal("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command did not produce QuitMsg")
	}
	if m.View() != "" {
		t.Error("View not empty after quitting")
	}
}

func TestWithTeatest(t *testing.T) {
	a := testArchive(t)
	clip := mocks.NewMockClipboard()
	m := NewModel(a, clip)

	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(100, 30))

	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("secret.txt"))
	}, teatest.WithDuration(time.Second))

	tm.Send(runes("y"))
	teatest.WaitFor(t, tm.Output(), func(b []byte) bool {
		return bytes.Contains(b, []byte("Copied hash"))
	}, teatest.WithDuration(time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyDown})
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})
	tm.Send(runes("q"))

	tm.WaitFinished(t, teatest.WithFinalTimeout(time.Second))

	final := tm.FinalModel(t).(*Model)
	if final.view != DetailView || final.cursor != 1 {
		t.Errorf("final view = %v cursor = %d", final.view, final.cursor)
	}
	if clip.Last() != a.Results[0].Line {
		t.Errorf("clipboard = %q", clip.Last())
	}
}

func pressMsg(m *Model, msg tea.Msg) (*Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(*Model), cmd
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 8, "this is…"},
		{"日本語ファイル名.txt", 12, "日本語ファイル名.txt"},
		{"日本語ファイル名.txt", 6, "日本語ファ…"},
		{"résumé-final.doc", 7, "résumé…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, expected %q", tt.in, tt.max, got, tt.want)
		}
		if got := truncate(tt.in, tt.max); !utf8.ValidString(got) {
			t.Errorf("truncate(%q, %d) produced invalid UTF-8", tt.in, tt.max)
		}
	}
}

func TestWrap(t *testing.T) {
	if got := wrap("abcdefgh", 3); got != "abc\ndef\ngh" {
		t.Errorf("wrap = %q", got)
	}
	if got := wrap("abc", 3); got != "abc" {
		t.Errorf("wrap = %q", got)
	}
	if got := wrap("abc", 0); got != "abc" {
		t.Errorf("wrap = %q", got)
	}

	got := wrap("暗号化された.zip", 4)
	if got != "暗号化さ\nれた.z\nip" {
		t.Errorf("wrap = %q", got)
	}
	for _, line := range strings.Split(got, "\n") {
		if !utf8.ValidString(line) || utf8.RuneCountInString(line) > 4 {
			t.Errorf("wrapped line %q is not a whole-rune chunk of at most 4", line)
		}
	}
}

func TestStatusBadge(t *testing.T) {
	a := testArchive(t)
	for i, want := range []string{"hash", "skipped: not encrypted", "error:"} {
		if got := statusBadge(a.Results[i]); !strings.Contains(got, want) {
			t.Errorf("statusBadge(%s) = %q, expected %q", a.Results[i].Entry.Name, got, want)
		}
	}
}

func TestEntriesViewNonASCIIName(t *testing.T) {
	e := ziptest.Entry{
		Name: strings.Repeat("機密", 20) + ".txt", VersionNeeded: 20, Flags: 0x0001, Method: 8,
		CRC32: 0xdeadbeef, UncompressedSize: 16, Payload: bytes.Repeat([]byte{0xaa}, 12),
	}
	data := ziptest.Bytes(ziptest.Archive{Entries: []ziptest.Entry{e}})
	a, err := extract.Process("名前.zip", bytes.NewReader(data), int64(len(data)), extract.Options{})
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	out := NewModel(a, nil).View()
	if !utf8.ValidString(out) {
		t.Error("entries view is not valid UTF-8")
	}
	if !strings.Contains(out, strings.Repeat("機密", 17)+"機…") {
		t.Errorf("long name not cut at a rune boundary:\n%s", out)
	}
}
