package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/pomotrack/internal/store"
)

type jsonExport struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Sessions   []jsonSession `json:"sessions"`
}

type jsonSession struct {
	ID          string `json:"id"`
	Task        string `json:"task"`
	TaskID      string `json:"task_id"`
	Kind        string `json:"kind"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time,omitempty"`
	DurationSec int64  `json:"duration_seconds"`
	Duration    string `json:"duration"`
}

func ToJSON(sessions []store.Session, tasks map[string]*store.Task, path string) error {
	out := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(sessions),
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

		out.Sessions = append(out.Sessions, jsonSession{
			ID:          sess.ID,
			Task:        taskTitle,
			TaskID:      sess.TaskID,
			Kind:        string(sess.Kind),
			StartTime:   time.Unix(sess.StartTS, 0).Local().Format(time.RFC3339),
			EndTime:     endStr,
			DurationSec: durSecs,
			Duration:    formatDuration(durSecs),
		})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
