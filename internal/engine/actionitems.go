package engine

import (
	"context"
	"log"
	"time"

	"github.com/loomknot/loom/pkg/types"
)

// ReminderDueOffset is how far in the future derived reminders fall due.
const ReminderDueOffset = 72 * time.Hour

// deriveActionItems extracts action items from a meeting, replaces the
// meeting's stored list wholesale, and creates one high-priority reminder
// per item. A derivation failure leaves the existing list untouched; zero
// derived items clears it and creates no reminders.
func (l *Linker) deriveActionItems(ctx context.Context, meeting *types.Meeting) (items []string, reminderIDs []string) {
	items, err := l.capability.DeriveActionItems(ctx, meeting.Content())
	if err != nil {
		log.Printf("Linker: action item derivation unavailable for %s: %v", meeting.ID, err)
		return nil, nil
	}

	if err := l.store.ReplaceActionItems(ctx, meeting.ID, items); err != nil {
		log.Printf("Linker: failed to store action items for %s: %v", meeting.ID, err)
		return items, nil
	}

	due := time.Now().UTC().Add(ReminderDueOffset)
	for _, item := range items {
		reminder := &types.Reminder{
			ID:               types.NewID("reminder"),
			OwnerID:          meeting.OwnerID,
			Title:            item,
			DueDate:          due,
			Priority:         types.PriorityHigh,
			LinkedEntityID:   meeting.ID,
			LinkedEntityType: types.EntityTypeMeeting,
		}
		if err := l.store.StoreReminder(ctx, reminder); err != nil {
			log.Printf("Linker: failed to store reminder for %s: %v", meeting.ID, err)
			continue
		}
		reminderIDs = append(reminderIDs, reminder.ID)
		l.notify(LinkEvent{Type: "reminder", SourceID: meeting.ID, TargetID: reminder.ID})
	}
	return items, reminderIDs
}
