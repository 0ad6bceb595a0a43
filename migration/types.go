package migration

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
)

type Direction rune

const (
	Down Direction = 'd'
	Up   Direction = 'u'
)

func (d Direction) String() string {
	if d == Down {
		return "down"
	}
	return "up"
}

// ---

const (
	VersionBits   = 64
	VersionLength = 14
)

var (
	ErrInvalidVersion = errors.New("invalid migration version")
	ErrInvalidOrder   = errors.New("invalid version order")
)

// Version is a timestamp-derived identifier such as 20120508120534.
type Version uint64

func (v Version) String() string {
	return strconv.FormatUint(uint64(v), 10)
}

// ParseVersion accepts exactly VersionLength decimal digits.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if len(s) != VersionLength {
		return 0, fmt.Errorf("%w: %q must have %d digits", ErrInvalidVersion, s, VersionLength)
	}

	for _, c := range s {
		if !unicode.IsDigit(c) {
			return 0, fmt.Errorf("%w: symbol %q is not allowed in %q", ErrInvalidVersion, c, s)
		}
	}

	v, err := strconv.ParseUint(s, 10, VersionBits)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidVersion, err)
	}

	return Version(v), nil
}

type Migration struct {
	Version Version
	Name    string
}

// ---

type Status uint

const (
	Pending Status = iota
	Applied
	Missing
)

func (s Status) String() string {
	switch s {
	case Applied:
		return "up"
	case Missing:
		return "missing"
	default:
		return "down"
	}
}

// ---

// Log is one row of the version log table.
type Log struct {
	Migration
	StartTime  time.Time
	EndTime    time.Time
	Breakpoint bool
}

// ---

type Description struct {
	Migration
	CanUndo bool
}

type State struct {
	Description
	Status     Status
	AppliedAt  time.Time
	Breakpoint bool
}

// ---

// Order selects how the version log is sorted when it is read back.
type Order int

const (
	CreationTime Order = iota
	ExecutionTime
)

func (o Order) String() string {
	if o == ExecutionTime {
		return "execution"
	}
	return "creation"
}

// ParseOrder maps a configuration value to an Order. An empty value means
// CreationTime.
func ParseOrder(value string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "creation", "creation_time":
		return CreationTime, nil
	case "execution", "execution_time":
		return ExecutionTime, nil
	default:
		return 0, fmt.Errorf("%w: %q (expected \"creation\" or \"execution\")", ErrInvalidOrder, value)
	}
}
