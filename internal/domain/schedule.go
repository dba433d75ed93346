package domain

import "time"

// ScheduleMethod tells how a post is expected to be published.
type ScheduleMethod string

const (
	MethodManual ScheduleMethod = "manual"
	MethodAuto   ScheduleMethod = "auto"
)

// ParseScheduleMethod defaults empty input to manual.
func ParseScheduleMethod(value string) (ScheduleMethod, error) {
	switch ScheduleMethod(value) {
	case "":
		return MethodManual, nil
	case MethodManual, MethodAuto:
		return ScheduleMethod(value), nil
	}
	return "", &ValidationError{Field: "method", Reason: "unknown value " + value}
}

// Schedule records the intent to publish a script at a time. Nothing in the
// process acts on it.
type Schedule struct {
	ID            string
	ScriptID      string
	ScheduledTime time.Time
	Method        ScheduleMethod
	IsPosted      bool
	CreatedAt     time.Time
}
