package toolkit

import (
	"context"
	"fmt"
	"strings"

	"github.com/teemow/chattools/internal/calendar"
	"github.com/teemow/chattools/internal/config"
	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/google"
	"github.com/teemow/chattools/internal/instrumentation"
	"github.com/teemow/chattools/internal/logging"
)

// ListUpcomingCalendarEvents lists the next events on the user's primary
// calendar, emitting one message per event. Authentication failures,
// including a failed interactive grant, and an empty calendar are reported
// as an error notification with an empty result object.
func (t *Toolkit) ListUpcomingCalendarEvents(ctx context.Context, em *events.Emitter, prompt events.PromptSink) Result {
	const authPrefix = "Error authenticating with Google Calendar API: "

	em.Progress(ctx, "Getting calendar events from Google Calendar API...")
	if t.auth == nil || t.calendars == nil {
		return failure(ctx, em, authPrefix+config.MissingError(config.EnvGoogleClientID).Error(), emptyObject())
	}

	cred, err := t.auth.Authenticate(ctx, t.authReq, em, prompt)
	if err != nil {
		t.logger.WarnContext(ctx, "calendar authentication failed", logging.Provider(instrumentation.ProviderGoogleCalendar), logging.Err(err))
		return failure(ctx, em, authPrefix+err.Error(), emptyObject())
	}
	em.Progress(ctx, "Authenticated with Google Calendar API...")

	em.Progress(ctx, "Setting up Google Calendar service...")
	svc, err := t.calendars(ctx, google.TokenSource(cred))
	if err != nil {
		return failure(ctx, em, "Error setting up Google Calendar service: "+err.Error(), emptyObject())
	}

	em.Progress(ctx, fmt.Sprintf("Getting the upcoming %d events...", calendar.DefaultMaxResults))
	items, err := svc.ListUpcoming(ctx, calendar.PrimaryCalendar, t.now().UTC(), calendar.DefaultMaxResults)
	if err != nil {
		t.logger.WarnContext(ctx, "listing calendar events failed", logging.Err(err))
		return failure(ctx, em, "Error fetching calendar events: "+err.Error(), emptyObject())
	}
	em.Progress(ctx, fmt.Sprintf("Retrieved %d upcoming events from Google Calendar.", len(items)))

	if len(items) == 0 {
		return failure(ctx, em, "No upcoming events found.", emptyObject())
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		line := fmt.Sprintf("Upcoming event: %s - %s", item.StartRaw, item.Title())
		em.Message(ctx, line)
		lines = append(lines, line)
	}
	em.Success(ctx, "Retrieved upcoming events from Google Calendar.")
	return success(strings.Join(lines, "\n"), map[string]any{"events": items})
}
