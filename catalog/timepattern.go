package catalog

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const toBeAnnounced = "TBA"

var meetingDays = map[rune]time.Weekday{
	'M': time.Monday,
	'T': time.Tuesday,
	'W': time.Wednesday,
	'R': time.Thursday,
	'F': time.Friday,
	'S': time.Saturday,
	'U': time.Sunday,
}

type Clock struct {
	Hour   int
	Minute int
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

type Meeting struct {
	Days  []time.Weekday
	Start Clock
	End   Clock
}

// ParseTimePattern reads patterns such as "MWF 9:00 am - 9:50 am". A "TBA"
// pattern has no meeting and reports false with a nil error.
func ParseTimePattern(pattern string) (Meeting, bool, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == toBeAnnounced {
		return Meeting{}, false, nil
	}

	dayLetters, span, found := strings.Cut(pattern, " ")
	if !found {
		return Meeting{}, false, fmt.Errorf("time pattern %q has no time range", pattern)
	}

	var days []time.Weekday
	for _, letter := range dayLetters {
		day, okay := meetingDays[letter]
		if !okay {
			return Meeting{}, false, fmt.Errorf("unknown meeting day %q in %q", letter, pattern)
		}
		days = append(days, day)
	}

	startText, endText, found := strings.Cut(span, " - ")
	if !found {
		return Meeting{}, false, fmt.Errorf("time pattern %q has no end time", pattern)
	}
	start, err := parseClock(startText)
	if err != nil {
		return Meeting{}, false, err
	}
	end, err := parseClock(endText)
	if err != nil {
		return Meeting{}, false, err
	}

	return Meeting{Days: days, Start: start, End: end}, true, nil
}

func parseClock(text string) (Clock, error) {
	hhmm, meridiem, found := strings.Cut(strings.TrimSpace(text), " ")
	if !found {
		return Clock{}, fmt.Errorf("time %q has no am/pm marker", text)
	}
	hourText, minuteText, found := strings.Cut(hhmm, ":")
	if !found {
		return Clock{}, fmt.Errorf("time %q is not hh:mm", text)
	}
	hour, err := strconv.Atoi(hourText)
	if err != nil {
		return Clock{}, err
	}
	minute, err := strconv.Atoi(minuteText)
	if err != nil {
		return Clock{}, err
	}
	if hour < 1 || hour > 12 || minute < 0 || minute > 59 {
		return Clock{}, fmt.Errorf("time %q out of range", text)
	}

	switch strings.ToLower(meridiem) {
	case "am":
		if hour == 12 {
			hour = 0
		}
	case "pm":
		if hour != 12 {
			hour += 12
		}
	default:
		return Clock{}, fmt.Errorf("time %q has no am/pm marker", text)
	}
	return Clock{Hour: hour, Minute: minute}, nil
}
