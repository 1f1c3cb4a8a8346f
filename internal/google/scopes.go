package google

import calendar "google.golang.org/api/calendar/v3"

// CalendarReadonlyScope grants read access to the user's calendars.
const CalendarReadonlyScope = calendar.CalendarReadonlyScope

// CalendarScopes are requested by the calendar tool.
var CalendarScopes = []string{CalendarReadonlyScope}
