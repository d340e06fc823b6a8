package logging

import (
	"errors"
	"fmt"
	"strings"
)

// Severity is the Cloud Logging severity of an entry. Values received from the
// service are kept as-is, so a Severity may hold a token outside the constants.
type Severity string

// gcp cloud logging severity
const (
	SeverityDefault   Severity = "DEFAULT"   // The log entry has no assigned severity level.
	SeverityDebug     Severity = "DEBUG"     // Debug or trace information.
	SeverityInfo      Severity = "INFO"      // Routine information, such as ongoing status or performance.
	SeverityNotice    Severity = "NOTICE"    // Normal but significant events, such as start up, shut down, or a configuration change.
	SeverityWarning   Severity = "WARNING"   // Warning events might cause problems.
	SeverityError     Severity = "ERROR"     // Error events are likely to cause problems.
	SeverityCritical  Severity = "CRITICAL"  // Critical events cause more severe problems or outages.
	SeverityAlert     Severity = "ALERT"     // A person must take an action immediately.
	SeverityEmergency Severity = "EMERGENCY" // One or more systems are unusable.
)

// ErrInvalidLevel is returned when a logger level name is not recognized.
var ErrInvalidLevel = errors.New("invalid log level")

// Level is the six step scale of the Logger shim.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelUnknown
)

var levelSeverities = [...]Severity{
	LevelDebug:   SeverityDebug,
	LevelInfo:    SeverityInfo,
	LevelWarn:    SeverityWarning,
	LevelError:   SeverityError,
	LevelFatal:   SeverityCritical,
	LevelUnknown: SeverityDefault,
}

var levelNames = [...]string{
	LevelDebug:   "debug",
	LevelInfo:    "info",
	LevelWarn:    "warn",
	LevelError:   "error",
	LevelFatal:   "fatal",
	LevelUnknown: "unknown",
}

// Severity maps the level onto the service vocabulary. Levels outside the
// scale map to SeverityDefault.
func (l Level) Severity() Severity {
	if l < LevelDebug || l > LevelUnknown {
		return SeverityDefault
	}
	return levelSeverities[l]
}

func (l Level) String() string {
	if l < LevelDebug || l > LevelUnknown {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel reads one of debug, info, warn, error, fatal, unknown, ignoring case.
func ParseLevel(name string) (Level, error) {
	lower := strings.ToLower(strings.TrimSpace(name))
	for lvl, n := range levelNames {
		if n == lower {
			return Level(lvl), nil
		}
	}
	return LevelUnknown, fmt.Errorf("%w: %q", ErrInvalidLevel, name)
}

func (l *Level) UnmarshalText(text []byte) error {
	lvl, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = lvl
	return nil
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}
