package calendar

import (
	"time"

	calendar "google.golang.org/api/calendar/v3"
)

// EventSummary represents a simplified calendar event for listing.
type EventSummary struct {
	ID       string    `json:"id"`
	Summary  string    `json:"summary"`
	Location string    `json:"location,omitempty"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end,omitzero"`
	// StartRaw is the start exactly as the API returned it: an RFC 3339
	// timestamp, or a date for all-day events.
	StartRaw string `json:"start_raw"`
	AllDay   bool   `json:"all_day"`
	HTMLLink string `json:"html_link,omitempty"`
	MeetLink string `json:"meet_link,omitempty"`
}

// Title returns the summary, or a placeholder for untitled events.
func (e EventSummary) Title() string {
	if e.Summary == "" {
		return "(no title)"
	}
	return e.Summary
}

// toEventSummary converts a Google Calendar event to an EventSummary.
func toEventSummary(event *calendar.Event) EventSummary {
	if event == nil {
		return EventSummary{}
	}

	summary := EventSummary{
		ID:       event.Id,
		Summary:  event.Summary,
		Location: event.Location,
		HTMLLink: event.HtmlLink,
	}

	summary.Start, summary.StartRaw, summary.AllDay = parseEventTime(event.Start)
	summary.End, _, _ = parseEventTime(event.End)

	if event.ConferenceData != nil {
		for _, ep := range event.ConferenceData.EntryPoints {
			if ep.EntryPointType == "video" {
				summary.MeetLink = ep.Uri
				break
			}
		}
	}

	return summary
}

func parseEventTime(edt *calendar.EventDateTime) (time.Time, string, bool) {
	if edt == nil {
		return time.Time{}, "", false
	}
	if edt.DateTime != "" {
		t, _ := time.Parse(time.RFC3339, edt.DateTime)
		return t, edt.DateTime, false
	}
	if edt.Date != "" {
		t, _ := time.Parse("2006-01-02", edt.Date)
		return t, edt.Date, true
	}
	return time.Time{}, "", false
}
