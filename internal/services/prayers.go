package services

import (
	"strings"
	"time"

	"parish-backend-go/internal/models"
	"parish-backend-go/internal/store"
)

type PrayerWorkflow = Workflow[models.Prayer]

func NewPrayerWorkflow(deps WorkflowDeps) *PrayerWorkflow {
	return newWorkflow(deps, store.PendingPrayers, store.Prayers, kindRules[models.Prayer]{
		kind:      "prayer",
		validate:  ValidatePrayer,
		stamp:     stampPrayer,
		summarize: summarizePrayer,
	})
}

// ValidatePrayer trims the text fields and requires a non-empty text.
func ValidatePrayer(p models.Prayer) (models.Prayer, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Text = strings.TrimSpace(p.Text)
	if p.Text == "" {
		return p, BadRequest("Missing text")
	}
	return p, nil
}

// stampPrayer keeps a client supplied positive ts.
func stampPrayer(p models.Prayer, now time.Time) models.Prayer {
	if p.TS <= 0 {
		p.TS = now.Unix()
	}
	return p
}

func summarizePrayer(p models.Prayer) string {
	name := p.Name
	if p.Anon || name == "" {
		name = "Anonymous"
	}
	return name + ": " + truncate(p.Text, 200)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "…"
}
