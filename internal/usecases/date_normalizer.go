package usecases

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"syllabus_calendar/internal/models"
)

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`

var monthNames = map[string]time.Month{
	"jan": time.January, "january": time.January,
	"feb": time.February, "february": time.February,
	"mar": time.March, "march": time.March,
	"apr": time.April, "april": time.April,
	"may": time.May,
	"jun": time.June, "june": time.June,
	"jul": time.July, "july": time.July,
	"aug": time.August, "august": time.August,
	"sep": time.September, "sept": time.September, "september": time.September,
	"oct": time.October, "october": time.October,
	"nov": time.November, "november": time.November,
	"dec": time.December, "december": time.December,
}

type dateLayout int

const (
	layoutNumeric   dateLayout = iota // month/day[/year]
	layoutMonthDay                    // Month day[, year]
	layoutDayMonth                    // day Month [year]
	layoutISO                         // year-month-day
)

var datePatterns = []struct {
	re     *regexp.Regexp
	layout dateLayout
}{
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})(?:/(\d{4}))?$`), layoutNumeric},
	{regexp.MustCompile(`^` + monthPattern + `\s+(\d{1,2})(?:,?\s+(\d{4}))?$`), layoutMonthDay},
	{regexp.MustCompile(`^(\d{1,2})\s+` + monthPattern + `(?:,?\s+(\d{4}))?$`), layoutDayMonth},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), layoutISO},
}

// ParseDate normalizes a date string into a calendar day. Year-less inputs take
// referenceYear. It reports false when no shape matches or the day does not exist.
func ParseDate(dateString string, referenceYear int) (models.Date, bool) {
	clean := strings.ToLower(strings.TrimSpace(dateString))
	if clean == "" {
		return models.Date{}, false
	}

	for _, p := range datePatterns {
		m := p.re.FindStringSubmatch(clean)
		if m == nil {
			continue
		}

		var month time.Month
		var day, year int
		var ok bool
		switch p.layout {
		case layoutNumeric:
			month = time.Month(atoi(m[1]))
			day = atoi(m[2])
			year = yearOr(m[3], referenceYear)
		case layoutMonthDay:
			month, ok = lookupMonth(m[1])
			if !ok {
				return models.Date{}, false
			}
			day = atoi(m[2])
			year = yearOr(m[3], referenceYear)
		case layoutDayMonth:
			day = atoi(m[1])
			month, ok = lookupMonth(m[2])
			if !ok {
				return models.Date{}, false
			}
			year = yearOr(m[3], referenceYear)
		case layoutISO:
			year = atoi(m[1])
			month = time.Month(atoi(m[2]))
			day = atoi(m[3])
		}

		return models.NewDate(year, month, day)
	}

	return models.Date{}, false
}

// ParseISODate accepts only the canonical YYYY-MM-DD form.
func ParseISODate(s string) (models.Date, bool) {
	t, err := time.Parse(models.DateFormat, s)
	if err != nil {
		return models.Date{}, false
	}
	return models.NewDate(t.Year(), t.Month(), t.Day())
}

func lookupMonth(name string) (time.Month, bool) {
	month, ok := monthNames[strings.TrimSuffix(strings.ToLower(name), ".")]
	return month, ok
}

func yearOr(raw string, referenceYear int) int {
	if raw == "" {
		return referenceYear
	}
	return atoi(raw)
}

// atoi is only called on \d{1,4} captures.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
