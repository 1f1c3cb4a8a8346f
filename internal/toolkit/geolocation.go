package toolkit

import (
	"context"
	"fmt"

	"github.com/teemow/chattools/internal/events"
	"github.com/teemow/chattools/internal/logging"
)

// PublicIPGeolocation looks up the public IP address and geolocates it.
// On failure the Result carries an empty object.
func (t *Toolkit) PublicIPGeolocation(ctx context.Context, em *events.Emitter) Result {
	const errPrefix = "Error retrieving public IP geolocation: "

	if t.locator == nil {
		return failure(ctx, em, errPrefix+"no geolocation provider configured", emptyObject())
	}

	em.Progress(ctx, "Looking up public IP address and geolocation...")
	loc, err := t.locator.Locate(ctx)
	if err != nil {
		t.logger.WarnContext(ctx, "geolocation failed", logging.Err(err))
		return failure(ctx, em, errPrefix+err.Error(), emptyObject())
	}

	text := "Public IP: " + loc.IP
	if place := loc.Place(); place != "" {
		text += ", Location: " + place
	}
	if loc.Timezone != "" {
		text += ", Timezone: UTC" + loc.Timezone
	}
	if loc.ISP != "" {
		text += ", ISP: " + loc.ISP
	}

	var data any = loc
	if len(loc.Raw) > 0 {
		data = loc.Raw
	}
	em.Success(ctx, fmt.Sprintf("Found geolocation for public IP %s", loc.IP), data)
	return success(text, data)
}
