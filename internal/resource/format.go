package resource

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DateTimeFormat = "Jan 2, 2006 15:04:05"
	ellipsis       = "..."
)

// Format renders one table cell of record.
func (d *Descriptor[T]) Format(record T, column string) (string, error) {
	c, ok := d.Column(column)
	if !ok {
		return "", unknownColumn(d.name, column)
	}
	if c.State != nil {
		return c.State(record), nil
	}

	v, ok := record.Field(c.path())
	if !ok {
		return "", unknownColumn(d.name, column)
	}

	var s string
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		s = x
	case time.Time:
		if c.DateTime {
			s = x.Format(DateTimeFormat)
		} else {
			s = x.Format(time.RFC3339)
		}
	case bool:
		s = strconv.FormatBool(x)
	default:
		s = fmt.Sprint(x)
	}

	if c.Limit > 0 {
		s = Truncate(s, c.Limit)
	}
	return s, nil
}

// Truncate keeps the first limit characters of s and appends "..." when
// anything was cut. Trailing whitespace before the marker is dropped.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRight(string(runes[:limit]), " \t\n") + ellipsis
}
