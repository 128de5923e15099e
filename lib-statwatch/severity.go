package statwatch

const (
	// SeverityUnknown means the status text could not be understood.
	// It never outranks a known severity.
	SeverityUnknown Severity = iota

	// SeverityOperational means the service works normally.
	SeverityOperational

	// SeverityMaintenance means the service is under scheduled maintenance.
	SeverityMaintenance

	// SeverityDegraded means the service works but slower or partially.
	SeverityDegraded

	// SeverityOutage means the service, or a part of it, is down.
	SeverityOutage

	// SeverityMajorOutage means a wide outage. Only the overall status uses this level.
	SeverityMajorOutage
)

// Severity is the health level of the whole page or a component.
type Severity int8

// ParseSeverity parses the text form of Severity.
//
// If passed unsupported text, it will returns SeverityUnknown.
func ParseSeverity(raw string) Severity {
	switch raw {
	case "operational":
		return SeverityOperational
	case "maintenance":
		return SeverityMaintenance
	case "degraded":
		return SeverityDegraded
	case "outage":
		return SeverityOutage
	case "major_outage":
		return SeverityMajorOutage
	default:
		return SeverityUnknown
	}
}

// String returns text form of Severity.
func (s Severity) String() string {
	switch s {
	case SeverityOperational:
		return "operational"
	case SeverityMaintenance:
		return "maintenance"
	case SeverityDegraded:
		return "degraded"
	case SeverityOutage:
		return "outage"
	case SeverityMajorOutage:
		return "major_outage"
	default:
		return "unknown"
	}
}

// Rank returns the comparable weight of the severity.
// SeverityUnknown has the lowest rank.
func (s Severity) Rank() int {
	if s < SeverityOperational || s > SeverityMajorOutage {
		return -1
	}
	return int(s)
}

// WorseThan reports s is more severe than another.
func (s Severity) WorseThan(another Severity) bool {
	return s.Rank() > another.Rank()
}

// Known reports s is not SeverityUnknown.
func (s Severity) Known() bool {
	return s.Rank() >= 0
}

// Worst returns the most severe one in xs.
// It returns SeverityUnknown if xs is empty.
func Worst(xs ...Severity) Severity {
	worst := SeverityUnknown
	for _, x := range xs {
		if x.WorseThan(worst) {
			worst = x
		}
	}
	return worst
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
//
// This function always returns nil.
// Unsupported text parsed as SeverityUnknown instead of returns error.
func (s *Severity) UnmarshalText(text []byte) error {
	*s = ParseSeverity(string(text))
	return nil
}
