package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/example/careslot/internal/domain/appointment"
	"github.com/example/careslot/internal/domain/practitioner"
)

// Specialties recognized in free text, in match priority order.
var Specialties = []string{
	"cardiology", "dermatology", "neurology", "orthopedics", "pediatrics",
	"gynecology", "psychiatry", "general medicine", "general",
}

var urgencyWords = []string{"urgent", "emergency", "asap", "immediately"}

var bucketWords = []struct {
	bucket appointment.TimeBucket
	words  []string
}{
	{appointment.BucketMorning, []string{"morning", "am", "9am", "10am", "11am"}},
	{appointment.BucketAfternoon, []string{"afternoon", "pm", "1pm", "2pm", "3pm", "4pm"}},
	{appointment.BucketEvening, []string{"evening", "night", "5pm", "6pm"}},
}

// clockTime matches "2:30pm", "9 am" and "10am".
var clockTime = regexp.MustCompile(`\b(\d{1,2})(?::[0-5]\d)?\s*(am|pm)\b`)

// bucketTokens are the keywords that only count when written after a clock
// hour; "i am free" says nothing about the time of day.
var bucketTokens = map[string]bool{"am": true, "pm": true}

var nextWeekdays = []struct {
	phrase string
	day    time.Weekday
}{
	{"next monday", time.Monday},
	{"next tuesday", time.Tuesday},
	{"next wednesday", time.Wednesday},
	{"next thursday", time.Thursday},
	{"next friday", time.Friday},
}

type monthPattern struct {
	month time.Month
	re    *regexp.Regexp
}

// August and September come first; any valid future match wins.
var monthPatterns = buildMonthPatterns([]struct {
	month time.Month
	names string
}{
	{time.August, "august|aug"},
	{time.September, "september|sept|sep"},
	{time.January, "january|jan"},
	{time.February, "february|feb"},
	{time.March, "march|mar"},
	{time.April, "april|apr"},
	{time.May, "may"},
	{time.June, "june|jun"},
	{time.July, "july|jul"},
	{time.October, "october|oct"},
	{time.November, "november|nov"},
	{time.December, "december|dec"},
})

var numericDate = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})\b`)

func buildMonthPatterns(specs []struct {
	month time.Month
	names string
}) []monthPattern {
	out := make([]monthPattern, 0, len(specs))
	for _, s := range specs {
		re := regexp.MustCompile(fmt.Sprintf(`\b(?:%s)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b`, s.names))
		out = append(out, monthPattern{month: s.month, re: re})
	}
	return out
}

// Extractor maps free text to a BookingRequest with keyword and date-phrase
// rules. It is pure apart from the injected clock.
type Extractor struct {
	doctorNames []string
	loc         *time.Location
	now         func() time.Time
}

func NewExtractor(roster []practitioner.Practitioner, loc *time.Location, now func() time.Time) *Extractor {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Extractor{doctorNames: DoctorNames(roster), loc: loc, now: now}
}

// DoctorNames lists lower-cased full names followed by surnames.
func DoctorNames(roster []practitioner.Practitioner) []string {
	seen := map[string]bool{}
	var names []string
	add := func(n string) {
		if n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	for _, p := range roster {
		add(p.FullName())
	}
	for _, p := range roster {
		add(p.Surname())
	}
	return names
}

func (e *Extractor) Extract(text string) appointment.BookingRequest {
	req := appointment.NewBookingRequest()
	lower := strings.ToLower(text)

	for _, s := range Specialties {
		if strings.Contains(lower, s) {
			req.Specialty = s
			break
		}
	}
	for _, n := range e.doctorNames {
		if strings.Contains(lower, n) {
			req.DoctorName = n
			break
		}
	}
	req.TimeBucket = timeBucket(lower)
	for _, w := range urgencyWords {
		if strings.Contains(lower, w) {
			req.Urgency = appointment.UrgencyUrgent
			break
		}
	}
	if d, ok := e.date(lower); ok {
		req.Date = d.Format(appointment.DateLayout)
	}
	return req
}

// timeBucket matches keywords against word tokens so that "am" does not hit
// words such as "name" or "exam". Clock times collapse to their hour, so
// "2:30pm" reads as "2pm"; an hour with no keyword of its own falls back to
// plain "am" or "pm".
func timeBucket(lower string) appointment.TimeBucket {
	tokens := map[string]bool{}
	for _, m := range clockTime.FindAllStringSubmatch(lower, -1) {
		tok := strings.TrimLeft(m[1], "0") + m[2]
		if !listedBucketWord(tok) {
			tok = m[2]
		}
		tokens[tok] = true
	}
	for _, tok := range strings.FieldsFunc(clockTime.ReplaceAllString(lower, " "), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if !bucketTokens[tok] {
			tokens[tok] = true
		}
	}
	for _, b := range bucketWords {
		for _, w := range b.words {
			if tokens[w] {
				return b.bucket
			}
		}
	}
	return ""
}

func listedBucketWord(tok string) bool {
	for _, b := range bucketWords {
		for _, w := range b.words {
			if w == tok {
				return true
			}
		}
	}
	return false
}

func (e *Extractor) today() time.Time {
	n := e.now().In(e.loc)
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, e.loc)
}

func (e *Extractor) date(lower string) (time.Time, bool) {
	today := e.today()

	switch {
	case strings.Contains(lower, "tomorrow"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(lower, "next week"):
		return NextWeekday(today, time.Monday), true
	}
	for _, nw := range nextWeekdays {
		if strings.Contains(lower, nw.phrase) {
			return NextWeekday(today, nw.day), true
		}
	}

	for _, mp := range monthPatterns {
		for _, m := range mp.re.FindAllStringSubmatch(lower, -1) {
			day, _ := strconv.Atoi(m[1])
			if d, ok := futureDate(today, mp.month, day); ok {
				return d, true
			}
		}
	}

	if m := numericDate.FindStringSubmatch(lower); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			if d, ok := futureDate(today, time.Month(month), day); ok {
				return d, true
			}
		}
	}
	return time.Time{}, false
}

// NextWeekday returns the nearest date strictly after today falling on wd.
func NextWeekday(today time.Time, wd time.Weekday) time.Time {
	days := (int(wd) - int(today.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return today.AddDate(0, 0, days)
}

// futureDate builds month/day in today's year, rejecting impossible dates
// and dates before today.
func futureDate(today time.Time, month time.Month, day int) (time.Time, bool) {
	d := time.Date(today.Year(), month, day, 0, 0, 0, 0, today.Location())
	if d.Month() != month || d.Day() != day {
		return time.Time{}, false
	}
	if d.Before(today) {
		return time.Time{}, false
	}
	return d, true
}
