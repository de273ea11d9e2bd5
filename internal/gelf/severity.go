package gelf

import "github.com/crimson-sun/flume/internal/model"

// Syslog severity values used by GELF.
const (
	SeverityError         = 3
	SeverityWarning       = 4
	SeverityInformational = 6
	SeverityDebug         = 7
)

// Severity maps a log level onto the syslog 0-7 scale. Total: every
// input maps to a defined output, unrecognized levels fall back to
// DEBUG rather than failing.
func Severity(l model.Level) int {
	switch l {
	case model.Fatal, model.Error:
		return SeverityError
	case model.Warn:
		return SeverityWarning
	case model.Info:
		return SeverityInformational
	case model.Debug, model.Trace:
		return SeverityDebug
	default:
		return SeverityDebug
	}
}
