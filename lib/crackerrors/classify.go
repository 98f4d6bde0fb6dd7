package crackerrors

// Severity is how loudly an error is reported.
type Severity string

// Severity levels.
const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
	SeverityFatal    Severity = "fatal"
)

// Info contains information about an error Kind.
type Info struct {
	Kind        Kind
	Severity    Severity
	Fatal       bool // Fatal errors abort the whole run instead of a single target.
	Description string
}

// Classify returns reporting details for an error Kind.
func Classify(kind Kind) Info {
	switch kind {
	case KindNone:
		return Info{Kind: kind, Severity: SeverityInfo, Description: "no error"}
	case KindUnsupportedFormat:
		return Info{
			Kind:        kind,
			Severity:    SeverityWarning,
			Description: "file is not a supported encrypted container",
		}
	case KindCorrupt:
		return Info{
			Kind:        kind,
			Severity:    SeverityWarning,
			Description: "container could not be parsed",
		}
	case KindBackendUnavailable:
		return Info{
			Kind:        kind,
			Severity:    SeverityFatal,
			Fatal:       true,
			Description: "no backend for this format was compiled in",
		}
	case KindWorkerFailure:
		return Info{
			Kind:        kind,
			Severity:    SeverityCritical,
			Description: "unexpected fault while attacking the target",
		}
	case KindIOError:
		return Info{
			Kind:        kind,
			Severity:    SeverityCritical,
			Description: "file could not be read",
		}
	case KindNotFound:
		return Info{
			Kind:        kind,
			Severity:    SeverityCritical,
			Description: "file does not exist",
		}
	default:
		return Info{Kind: kind, Severity: SeverityCritical, Description: "unknown error"}
	}
}

// ClassifyError is Classify(KindOf(err)).
func ClassifyError(err error) Info {
	return Classify(KindOf(err))
}
