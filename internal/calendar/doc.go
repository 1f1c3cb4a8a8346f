// Package calendar reads upcoming events from the Google Calendar v3 API.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, google.TokenSource(cred))
//	if err != nil {
//	    return err
//	}
//	events, err := client.ListUpcoming(ctx, calendar.PrimaryCalendar, time.Now(), calendar.DefaultMaxResults)
package calendar
