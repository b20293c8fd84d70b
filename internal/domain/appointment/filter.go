package appointment

import (
	"strings"
	"time"
)

// MaxResults caps a filtered result set.
const MaxResults = 10

// Filter narrows slots by criteria without reordering them. A date that does
// not parse as YYYY-MM-DD is ignored, as is an unknown time bucket.
func Filter(slots []Slot, c Criteria) []Slot {
	specialty := strings.ToLower(strings.TrimSpace(c.Specialty))
	doctor := strings.ToLower(strings.TrimSpace(c.DoctorName))

	date := ""
	if c.Date != "" {
		if d, err := time.Parse(DateLayout, strings.TrimSpace(c.Date)); err == nil {
			date = d.Format(DateLayout)
		}
	}

	out := make([]Slot, 0, MaxResults)
	for _, s := range slots {
		if specialty != "" && !strings.Contains(strings.ToLower(s.Specialty), specialty) {
			continue
		}
		if doctor != "" && !strings.Contains(strings.ToLower(s.PractitionerName), doctor) {
			continue
		}
		if date != "" && s.Start.Format(DateLayout) != date {
			continue
		}
		if c.TimeBucket.Valid() && !c.TimeBucket.Contains(s.Start.Hour()) {
			continue
		}
		out = append(out, s)
		if len(out) == MaxResults {
			break
		}
	}
	return out
}
