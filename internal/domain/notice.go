package domain

// Severity colours a transient notice.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
)

// Notice is a transient, dismissible banner shown after a user action.
type Notice struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// ErrorNotice builds an error notice from err.
func ErrorNotice(err error) Notice {
	return Notice{Severity: SeverityError, Message: err.Error()}
}

// SuccessNotice builds a success notice.
func SuccessNotice(msg string) Notice {
	return Notice{Severity: SeveritySuccess, Message: msg}
}

// InfoNotice builds an info notice.
func InfoNotice(msg string) Notice {
	return Notice{Severity: SeverityInfo, Message: msg}
}
