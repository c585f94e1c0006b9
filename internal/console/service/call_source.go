package service

import (
	"context"
	"fmt"

	"github.com/xela07ax/dashboard-daddy/internal/connectors"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

// NewCallSource адаптирует историю звонков голосового API под источник ленты.
func NewCallSource(provider connectors.CallHistoryProvider) ActivitySource {
	return ActivitySource{
		Name: "calls",
		Fetch: func(ctx context.Context, limit int) ([]domain.ActivityEntry, error) {
			records, err := provider.ListRecent(ctx, limit)
			if err != nil {
				return nil, err
			}

			entries := make([]domain.ActivityEntry, 0, len(records))
			for _, rec := range records {
				entries = append(entries, domain.ActivityEntry{
					ID:        "call-" + rec.ID,
					Type:      "call",
					Action:    callAction(rec.Outcome),
					Details:   callDetails(rec),
					Timestamp: rec.Timestamp,
				})
			}
			return entries, nil
		},
	}
}

func callAction(outcome string) string {
	switch outcome {
	case "answered":
		return "Call completed"
	case "voicemail":
		return "Voicemail left"
	case "failed":
		return "Call failed"
	}
	return "Call logged"
}

func callDetails(rec connectors.CallRecord) string {
	if rec.Summary != "" {
		return fmt.Sprintf("%s: %s", rec.Contact, rec.Summary)
	}
	if rec.DurationSec > 0 {
		return fmt.Sprintf("%s (%ds)", rec.Contact, rec.DurationSec)
	}
	return rec.Contact
}
