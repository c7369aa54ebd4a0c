package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pomotrack/internal/store"
)

func ToCSV(sessions []store.Session, tasks map[string]*store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"ID", "Task", "Kind", "Start", "End", "Duration (s)", "Duration"}); err != nil {
		return err
	}

	for _, sess := range sessions {
		taskTitle := "Unknown"
		if t, ok := tasks[sess.TaskID]; ok {
			taskTitle = t.Title
		}
		endStr := ""
		var durSecs int64
		if sess.EndTS != nil {
			endStr = time.Unix(*sess.EndTS, 0).Local().Format(time.RFC3339)
		}
		if sess.DurationSec != nil {
			durSecs = *sess.DurationSec
		}

		row := []string{
			sess.ID,
			taskTitle,
			string(sess.Kind),
			time.Unix(sess.StartTS, 0).Local().Format(time.RFC3339),
			endStr,
			fmt.Sprintf("%d", durSecs),
			formatDuration(durSecs),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
