package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SaltaGet/Back-SIJAC/internal/timezone"
)

// --------------------------------------------------
// Dates are always read in the office timezone
// --------------------------------------------------

// optionalDate parses a YYYY-MM-DD query parameter. Missing means nil.
func optionalDate(c *gin.Context, key string, loc *time.Location) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}

	d, err := timezone.ParseDate(raw, loc)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// dateRange reads date_start/date_end and rejects an inverted range.
func dateRange(c *gin.Context, loc *time.Location) (from, to *time.Time, ok bool) {
	from, ok = optionalDate(c, "date_start", loc)
	if !ok {
		return nil, nil, false
	}
	to, ok = optionalDate(c, "date_end", loc)
	if !ok {
		return nil, nil, false
	}
	if from != nil && to != nil && timezone.BeforeDate(*to, *from) {
		return nil, nil, false
	}
	return from, to, true
}
