package utils

import (
	"time"
)

var acceptedDateFormats = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05-07:00",
	time.RFC3339,
}

func ParseDate(dateStr string) (time.Time, bool) {
	if dateStr == "" {
		return time.Time{}, false
	}

	for _, format := range acceptedDateFormats {
		if parsed, err := time.Parse(format, dateStr); err == nil {
			return parsed, true
		}
	}

	return time.Time{}, false
}

func IsValidDate(dateStr string) bool {
	_, ok := ParseDate(dateStr)
	return ok
}
