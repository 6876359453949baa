package archive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrBadName marks a file whose base name does not follow the
// NET.STA.LOC.CHAN.NEL.YEAR.JDAY archive naming convention.
var ErrBadName = errors.New("file name does not follow NET.STA.LOC.CHAN.NEL.YEAR.JDAY")

// ParsedName holds the structural fields of an archive file base name.
type ParsedName struct {
	Network  string
	Station  string
	Location string
	Channel  string
	Quality  string
	Year     int
	Day      int       // Julian day, 1-366
	Date     time.Time // calendar date of Year.Day
}

// ParseName parses and validates an archive file base name. The name must
// have exactly seven dot-delimited fields and the trailing YEAR.JDAY pair
// must form a valid calendar date.
func ParseName(base string) (ParsedName, error) {
	parts := strings.Split(base, ".")
	if len(parts) != 7 {
		return ParsedName{}, fmt.Errorf("%w: %q", ErrBadName, base)
	}

	year, err := strconv.Atoi(parts[5])
	if err != nil || year <= 0 {
		return ParsedName{}, fmt.Errorf("%w: invalid year %q", ErrBadName, parts[5])
	}
	day, err := strconv.Atoi(parts[6])
	if err != nil || day < 1 || day > 366 {
		return ParsedName{}, fmt.Errorf("%w: invalid julian day %q", ErrBadName, parts[6])
	}

	date := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day-1)
	if date.Year() != year {
		// Day 366 of a non-leap year.
		return ParsedName{}, fmt.Errorf("%w: day %d out of range for year %d", ErrBadName, day, year)
	}

	return ParsedName{
		Network:  parts[0],
		Station:  parts[1],
		Location: parts[2],
		Channel:  parts[3],
		Quality:  parts[4],
		Year:     year,
		Day:      day,
		Date:     date,
	}, nil
}
