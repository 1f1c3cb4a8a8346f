package toolkit

import (
	"context"

	"github.com/teemow/chattools/internal/events"
)

// dateTimeLayout renders e.g. "Monday, January 02, 2006, 03:04:05 PM".
const dateTimeLayout = "Monday, January 02, 2006, 03:04:05 PM"

// CurrentTime reports the local date and time. It makes no external calls
// and cannot fail.
func (t *Toolkit) CurrentTime(ctx context.Context, em *events.Emitter) Result {
	em.Progress(ctx, "Fetching current time...")
	text := "Current Date and Time = " + t.now().Format(dateTimeLayout)
	em.Success(ctx, text)
	return success(text, nil)
}
