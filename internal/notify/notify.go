// Package notify renders and delivers over-limit alerts to the channels a
// guardian has configured. Each dispatcher decides for itself whether the
// contact carries its channel; failures are independent per channel.
package notify

import (
	"context"
	"fmt"

	"github.com/playwatch/platform/internal/domain"
)

// Alert carries the figures rendered into a notification message.
type Alert struct {
	ChildName        string
	WeeklyLimitHours int
	TotalMinutes     int
	LimitMinutes     int
}

// TotalHours restates the total playtime in hours.
func (a Alert) TotalHours() float64 {
	return float64(a.TotalMinutes) / 60
}

// Dispatcher delivers one alert over one channel. The first return value
// reports whether a delivery was attempted: false means the contact does
// not have this channel configured, which is not an error.
type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, contact domain.Contact, alert Alert) (bool, error)
}

// subject and body shared between channels.

func alertSubject() string {
	return "Playtime limit exceeded"
}

func alertText(a Alert) string {
	return fmt.Sprintf(
		"%s has played %.2f hours (%d minutes) over the last 2 weeks, exceeding the configured limit of %d hours (%d h/week).",
		a.ChildName, a.TotalHours(), a.TotalMinutes, a.WeeklyLimitHours*2, a.WeeklyLimitHours)
}
