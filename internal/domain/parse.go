package domain

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	inputSeparators = strings.NewReplacer("-", "", "_", "", ".", "", "/", "", ":", "", " ", "", "\t", "")
	combinedInput   = regexp.MustCompile(`(?i)^(\d{8})(\d{2,4})(am|pm)?$`)
	dateOnlyInput   = regexp.MustCompile(`^\d{8}$`)
	ampmInput       = regexp.MustCompile(`(?i)^(\d{1,4})(am|pm)$`)
	clockInput      = regexp.MustCompile(`^\d{1,4}$`)
)

// ParsedInput is the result of parsing a loosely formatted date/time field.
// Either part may be missing.
type ParsedInput struct {
	Date Date   // Parsed date (zero if absent)
	Time string // "HH:MM" (empty if absent)
}

// ParseDateInput parses a date field. Separators (- _ . / :) are ignored.
// Accepted forms: YYYYMMDD and YYYYMMDDHHMM with an optional am/pm suffix,
// which also yields a time.
func ParseDateInput(input string) (ParsedInput, bool) {
	cleaned := inputSeparators.Replace(strings.TrimSpace(input))
	if m := combinedInput.FindStringSubmatch(cleaned); m != nil {
		return parseCombined(m)
	}
	if dateOnlyInput.MatchString(cleaned) {
		d, ok := parseCompactDate(cleaned)
		if !ok {
			return ParsedInput{}, false
		}
		return ParsedInput{Date: d}, true
	}
	return ParsedInput{}, false
}

// ParseTimeInput parses a time field. Accepted forms: the combined
// date-time form of ParseDateInput, H..HHMM with am/pm (130pm, 0901pm)
// and 24-hour H..HHMM (1301, 900).
func ParseTimeInput(input string) (ParsedInput, bool) {
	cleaned := inputSeparators.Replace(strings.TrimSpace(input))
	if m := combinedInput.FindStringSubmatch(cleaned); m != nil {
		return parseCombined(m)
	}
	if m := ampmInput.FindStringSubmatch(cleaned); m != nil {
		clock, ok := parseClockDigits(m[1], m[2])
		return ParsedInput{Time: clock}, ok
	}
	if clockInput.MatchString(cleaned) {
		clock, ok := parseClockDigits(cleaned, "")
		return ParsedInput{Time: clock}, ok
	}
	return ParsedInput{}, false
}

// NormalizeTime accepts "HH:MM" or any ParseTimeInput form and returns "HH:MM".
func NormalizeTime(input string) (string, error) {
	if input == "" {
		return "", nil
	}
	if h, m, ok := ParseClock(input); ok {
		return FormatClock(h, m), nil
	}
	parsed, ok := ParseTimeInput(input)
	if !ok || parsed.Time == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, input)
	}
	return parsed.Time, nil
}

// NormalizeDate accepts "YYYY-MM-DD", the compact forms of ParseDateInput
// and the words today/tomorrow/yesterday relative to today.
func NormalizeDate(input string, today Date) (Date, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return Date{}, nil
	case "today":
		return today, nil
	case "tomorrow":
		return today.AddDays(1), nil
	case "yesterday":
		return today.AddDays(-1), nil
	}
	if d, err := ParseDate(input); err == nil {
		return d, nil
	}
	parsed, ok := ParseDateInput(input)
	if !ok {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, input)
	}
	return parsed.Date, nil
}

func parseCombined(m []string) (ParsedInput, bool) {
	d, ok := parseCompactDate(m[1])
	if !ok {
		return ParsedInput{}, false
	}
	clock, ok := parseClockDigits(m[2], m[3])
	if !ok {
		return ParsedInput{}, false
	}
	return ParsedInput{Date: d, Time: clock}, true
}

func parseCompactDate(s string) (Date, bool) {
	month, _ := strconv.Atoi(s[4:6])
	day, _ := strconv.Atoi(s[6:8])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Date{}, false
	}
	d, err := ParseDate(s[0:4] + "-" + s[4:6] + "-" + s[6:8])
	if err != nil {
		return Date{}, false
	}
	return d, true
}

// parseClockDigits reads up to four digits as HHMM (left-padded with zeros).
// Hour 24 wraps to midnight and minutes above 59 clamp to 59.
func parseClockDigits(digits, ampm string) (string, bool) {
	padded := strings.Repeat("0", 4-len(digits)) + digits
	hour, _ := strconv.Atoi(padded[0:2])
	minute, _ := strconv.Atoi(padded[2:4])
	switch strings.ToLower(ampm) {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour == 24 {
		hour = 0
	}
	if hour > 23 {
		return "", false
	}
	if minute > 59 {
		minute = 59
	}
	return FormatClock(hour, minute), true
}
