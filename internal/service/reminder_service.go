package service

import (
	"context"
	"log"
	"time"

	"vocabdrill/internal/models"
)

type reminderDeviceSource interface {
	WithReminderEmails() ([]models.Device, error)
}

type backlogCounter interface {
	Counts(deviceID string, now time.Time) (int, int, error)
}

type reminderSender interface {
	IsEnabled() bool
	SendPracticeReminder(ctx context.Context, toEmail string, dueCount, totalCount int) error
}

// ReminderService emails devices whose due backlog has grown past a
// threshold. It runs on a daily schedule and is strictly best-effort: one
// failing recipient never blocks the rest.
type ReminderService struct {
	devices   reminderDeviceSource
	states    backlogCounter
	email     reminderSender
	threshold int
}

// ReminderResult summarizes one reminder pass
type ReminderResult struct {
	Checked int
	Sent    int
	Failed  int
}

// NewReminderService creates a new reminder service
func NewReminderService(devices reminderDeviceSource, states backlogCounter, email reminderSender, threshold int) *ReminderService {
	return &ReminderService{
		devices:   devices,
		states:    states,
		email:     email,
		threshold: threshold,
	}
}

// Run performs one reminder pass over all opted-in devices
func (s *ReminderService) Run(ctx context.Context, now time.Time) (ReminderResult, error) {
	result := ReminderResult{}

	if !s.email.IsEnabled() {
		log.Println("Reminder pass skipped: email service disabled")
		return result, nil
	}

	devices, err := s.devices.WithReminderEmails()
	if err != nil {
		return result, err
	}

	for _, device := range devices {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		result.Checked++

		total, due, err := s.states.Counts(device.ID, now)
		if err != nil {
			log.Printf("Reminder pass: failed to count backlog for device %s: %v", device.ID, err)
			result.Failed++
			continue
		}

		if due < s.threshold {
			continue
		}

		if err := s.email.SendPracticeReminder(ctx, device.ReminderEmail, due, total); err != nil {
			log.Printf("Reminder pass: failed to email device %s: %v", device.ID, err)
			result.Failed++
			continue
		}

		result.Sent++
	}

	return result, nil
}
