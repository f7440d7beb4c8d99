package financial

import (
	"time"

	"mandi-backend/internal/apperr"
	"mandi-backend/internal/models"
)

type Preset string

const (
	PresetToday  Preset = "today"
	PresetWeek   Preset = "week"
	PresetMonth  Preset = "month"
	PresetCustom Preset = "custom"
)

func (p Preset) Valid() bool {
	switch p {
	case PresetToday, PresetWeek, PresetMonth, PresetCustom:
		return true
	}
	return false
}

// ResolveRange turns a preset into an inclusive from/to date pair relative to
// today. Weeks run Sunday to Saturday. An empty preset means month.
func ResolveRange(preset Preset, from, to string, today time.Time) (string, string, error) {
	if preset == "" {
		preset = PresetMonth
	}
	if !preset.Valid() {
		return "", "", apperr.Validation("range must be one of today, week, month, custom")
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	switch preset {
	case PresetToday:
		d := day.Format(models.DateLayout)
		return d, d, nil
	case PresetWeek:
		start := day.AddDate(0, 0, -int(day.Weekday()))
		return start.Format(models.DateLayout), start.AddDate(0, 0, 6).Format(models.DateLayout), nil
	case PresetMonth:
		start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, day.Location())
		return start.Format(models.DateLayout), start.AddDate(0, 1, -1).Format(models.DateLayout), nil
	case PresetCustom:
		if _, err := models.ParseDate(from); err != nil {
			return "", "", apperr.Validation("from must be YYYY-MM-DD")
		}
		if _, err := models.ParseDate(to); err != nil {
			return "", "", apperr.Validation("to must be YYYY-MM-DD")
		}
		if from > to {
			return "", "", apperr.Validation("from must not be after to")
		}
		return from, to, nil
	}
	return "", "", apperr.Validation("unknown range %q", preset)
}
