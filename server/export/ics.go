package export

import (
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/hrygo/datesense/server/service/parse"
)

// ProductID identifies the calendar producer in PRODID.
const ProductID = "-//datesense//datesense//EN"

// uidNamespace scopes event UIDs so that the same match always gets the same UID.
var uidNamespace = uuid.MustParse("5d1f0f3e-8c0b-4a53-9d44-6f3b8e0f2a11")

// ICSEncoder writes one VEVENT per match. A match without a stated hour
// becomes an all-day event.
type ICSEncoder struct {
	// Now stamps DTSTAMP; nil means time.Now.
	Now func() time.Time
}

// NewICSEncoder creates an ICSEncoder.
func NewICSEncoder() *ICSEncoder {
	return &ICSEncoder{Now: time.Now}
}

// Encode implements Encoder.
func (e *ICSEncoder) Encode(w io.Writer, results []parse.DocumentResult) error {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	stamp := now().UTC()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, doc := range results {
		for _, m := range doc.Matches {
			event := cal.AddEvent(EventUID(doc.ID, m))
			event.SetDtStampTime(stamp)
			event.SetSummary(m.Text)
			if m.Context != "" {
				event.SetDescription(m.Context)
			}

			end := m.Start
			if m.End != nil {
				end = *m.End
			}
			if m.Certain["hour"] {
				event.SetStartAt(m.Start)
				event.SetEndAt(end)
				continue
			}
			event.SetAllDayStartAt(m.Start)
			event.SetAllDayEndAt(end.AddDate(0, 0, 1))
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return errors.Wrap(err, "failed to write calendar")
	}
	return nil
}

// EventUID derives a stable UID for a match of document docID.
func EventUID(docID string, m parse.Match) string {
	key := fmt.Sprintf("%s\x00%d\x00%s", docID, m.Index, m.Text)
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@datesense"
}
