package policy

import (
	"time"

	"martilhaven-backend/internal/domain"
)

// Overlaps reports whether two half-open windows intersect. A nil End never ends.
func Overlaps(a, b domain.Window) bool {
	return before(a.Start, b.End) && before(b.Start, a.End)
}

func before(t time.Time, end *time.Time) bool {
	return end == nil || t.Before(*end)
}

// ValidateWindow requires Start < End when End is present. Open windows are only
// accepted when allowOpen is set.
func ValidateWindow(w domain.Window, allowOpen bool) error {
	if w.Start.IsZero() {
		return domain.NewValidationError("start is required")
	}
	if w.End == nil {
		if allowOpen {
			return nil
		}
		return domain.NewValidationError("end is required")
	}
	if !w.Start.Before(*w.End) {
		return domain.NewValidationError("start must be before end")
	}
	return nil
}

// MeasureDuration returns the elapsed time of a window, measured against now when it has
// no end. A window that ends before it starts is flagged and reports zero.
func MeasureDuration(start time.Time, end *time.Time, now time.Time) domain.Duration {
	var d domain.Duration
	stop := now
	if end == nil {
		d.Ongoing = true
	} else {
		stop = *end
	}
	if stop.Before(start) {
		d.Inconsistent = true
		return d
	}
	d.Elapsed = stop.Sub(start)
	d.ElapsedMinutes = int64(d.Elapsed / time.Minute)
	return d
}
