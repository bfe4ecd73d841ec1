package engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// DigestEmptyMessage is returned when the digest window holds no activity.
const DigestEmptyMessage = "No activity recorded for today."

// CompileDigest builds a deterministic plain-text outline of the owner's
// notes and meetings in [start, end] and summarizes it. An empty window
// returns DigestEmptyMessage without touching the model at all. If
// summarization is unavailable the outline itself is returned, so the digest
// degrades to raw facts instead of disappearing.
func (l *Linker) CompileDigest(ctx context.Context, ownerID string, start, end time.Time) (string, error) {
	notes, err := l.store.NotesInWindow(ctx, ownerID, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to load notes for digest: %w", err)
	}
	meetings, err := l.store.MeetingsInWindow(ctx, ownerID, start, end)
	if err != nil {
		return "", fmt.Errorf("failed to load meetings for digest: %w", err)
	}

	if len(notes) == 0 && len(meetings) == 0 {
		return DigestEmptyMessage, nil
	}

	var outline strings.Builder
	if len(notes) > 0 {
		outline.WriteString("Notes:\n")
		for i := range notes {
			outline.WriteString(outlineLine(notes[i].Title, notes[i].Text))
		}
	}
	if len(meetings) > 0 {
		if outline.Len() > 0 {
			outline.WriteString("\n")
		}
		outline.WriteString("Meetings:\n")
		for i := range meetings {
			outline.WriteString(outlineLine(meetings[i].Title, meetings[i].Text))
			for _, item := range meetings[i].ActionItems {
				outline.WriteString(fmt.Sprintf("  - action: %s\n", item))
			}
		}
	}

	summary, err := l.capability.Summarize(ctx, outline.String())
	if err != nil || strings.TrimSpace(summary) == "" {
		log.Printf("Digest: summarization unavailable for %s: %v", ownerID, err)
		return outline.String(), nil
	}
	return summary, nil
}

func outlineLine(title, body string) string {
	body = strings.TrimSpace(body)
	if title == "" {
		return fmt.Sprintf("- %s\n", body)
	}
	if body == "" {
		return fmt.Sprintf("- %s\n", title)
	}
	return fmt.Sprintf("- %s: %s\n", title, body)
}
