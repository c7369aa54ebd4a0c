package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sadopc/pomotrack/internal/store"
)

func fixtureSessions(t *testing.T) ([]store.Session, map[string]*store.Task) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	task, err := s.CreateTask("Deep work")
	if err != nil {
		t.Fatal(err)
	}

	s1, _ := s.StartSession(task.ID, store.KindWork, 1_700_000_000)
	s.EndSession(s1.ID, 1_700_001_500)
	s2, _ := s.StartSession(task.ID, store.KindBreak, 1_700_001_500)
	s.EndSession(s2.ID, 1_700_001_800)
	s.StartSession(task.ID, store.KindWork, 1_700_002_000) // still open

	sessions, err := s.ListSessions(store.SessionFilter{})
	if err != nil {
		t.Fatal(err)
	}
	return sessions, map[string]*store.Task{task.ID: task}
}

func TestToCSV(t *testing.T) {
	sessions, tasks := fixtureSessions(t)
	path := filepath.Join(t.TempDir(), "sessions.csv")

	if err := ToCSV(sessions, tasks, path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 4 { // header + 3 sessions
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[0][1] != "Task" || rows[0][2] != "Kind" {
		t.Fatalf("header = %v", rows[0])
	}

	var sawOpen, sawWork bool
	for _, row := range rows[1:] {
		if row[1] != "Deep work" {
			t.Fatalf("task column = %q", row[1])
		}
		if row[4] == "" {
			sawOpen = true
			if row[5] != "0" {
				t.Fatalf("open session duration = %q, want 0", row[5])
			}
		}
		if row[2] == "work" && row[5] == "1500" {
			sawWork = true
			if row[6] != "00:25:00" {
				t.Fatalf("formatted duration = %q", row[6])
			}
		}
	}
	if !sawOpen || !sawWork {
		t.Fatalf("missing rows: open=%v work=%v", sawOpen, sawWork)
	}
}

func TestToCSVUnknownTask(t *testing.T) {
	sessions, _ := fixtureSessions(t)
	path := filepath.Join(t.TempDir(), "sessions.csv")

	if err := ToCSV(sessions, map[string]*store.Task{}, path); err != nil {
		t.Fatal(err)
	}
	f, _ := os.Open(path)
	defer f.Close()
	rows, _ := csv.NewReader(f).ReadAll()
	if rows[1][1] != "Unknown" {
		t.Fatalf("unknown task rendered as %q", rows[1][1])
	}
}

func TestToJSON(t *testing.T) {
	sessions, tasks := fixtureSessions(t)
	path := filepath.Join(t.TempDir(), "sessions.json")

	if err := ToJSON(sessions, tasks, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out jsonExport
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatal(err)
	}
	if out.Count != 3 || len(out.Sessions) != 3 {
		t.Fatalf("count = %d, sessions = %d", out.Count, len(out.Sessions))
	}
	if out.ExportedAt == "" {
		t.Fatal("exported_at missing")
	}

	for _, sess := range out.Sessions {
		if sess.Task != "Deep work" {
			t.Fatalf("task = %q", sess.Task)
		}
		if sess.Kind != "work" && sess.Kind != "break" {
			t.Fatalf("kind = %q", sess.Kind)
		}
		if sess.StartTime == "" {
			t.Fatal("start_time missing")
		}
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[int64]string{
		0:    "00:00:00",
		59:   "00:00:59",
		1500: "00:25:00",
		3725: "01:02:05",
	}
	for secs, want := range cases {
		if got := formatDuration(secs); got != want {
			t.Errorf("formatDuration(%d) = %q, want %q", secs, got, want)
		}
	}
}
