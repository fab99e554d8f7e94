package shipment

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"cmr/internal/pkg/errs"
)

// ExceptionStatus is the state of the exception sub-workflow.
//
//	Reported ──Followup──> Following ──Followup──> Following
//	    │                      │
//	    ├──Resolve/Continue────┴──> Resolved ──Report──> Reported (reopened)
//	    │                      │       │
//	    └──────Close───────────┴───────┴──> Closed (terminal)
type ExceptionStatus int

const (
	UnknownExceptionStatus ExceptionStatus = iota
	Reported
	Following
	Resolved
	Closed
)

var exceptionStatusNames = map[ExceptionStatus]string{
	Reported:  "Reported",
	Following: "Following",
	Resolved:  "Resolved",
	Closed:    "Closed",
}

func (s ExceptionStatus) Validate() error {
	if _, ok := exceptionStatusNames[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"exception status is invalid",
			fmt.Errorf("%d is not a valid exception status", s),
		)
	}
	return nil
}

func (s ExceptionStatus) String() string {
	if name, ok := exceptionStatusNames[s]; ok {
		return name
	}
	return "Unknown"
}

// IsLive reports whether the exception currently interrupts delivery.
func (s ExceptionStatus) IsLive() bool {
	return s == Reported || s == Following
}

// Followup moves a live exception to Following. Following → Following is allowed.
func (s ExceptionStatus) Followup() (ExceptionStatus, error) {
	if !s.IsLive() {
		return 0, fmt.Errorf("%w: cannot follow up a %s exception", ErrIllegalTransition, s)
	}
	return Following, nil
}

// Resolve moves a live exception to Resolved.
func (s ExceptionStatus) Resolve() (ExceptionStatus, error) {
	if !s.IsLive() {
		return 0, fmt.Errorf("%w: cannot resolve a %s exception", ErrIllegalTransition, s)
	}
	return Resolved, nil
}

// Close terminates the exception from any status except Closed.
func (s ExceptionStatus) Close() (ExceptionStatus, error) {
	if s == Closed || s.Validate() != nil {
		return 0, fmt.Errorf("%w: cannot close a %s exception", ErrIllegalTransition, s)
	}
	return Closed, nil
}

// ExceptionAction tags every audit record.
type ExceptionAction int

const (
	UnknownAction ExceptionAction = iota
	ActionReport
	ActionFollowup
	ActionResolve
	// ActionContinue has the same effect as ActionResolve. It exists so the audit
	// trail shows the operator resumed delivery rather than marked the issue done.
	ActionContinue
	ActionClose
)

var exceptionActionNames = map[ExceptionAction]string{
	ActionReport:   "Report",
	ActionFollowup: "Followup",
	ActionResolve:  "Resolve",
	ActionContinue: "Continue",
	ActionClose:    "Close",
}

func (a ExceptionAction) Validate() error {
	if _, ok := exceptionActionNames[a]; !ok {
		return errs.NewValueIsInvalidErrorWithCause(
			"exception action is invalid",
			fmt.Errorf("%d is not a valid exception action", a),
		)
	}
	return nil
}

func (a ExceptionAction) String() string {
	if name, ok := exceptionActionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// ParseExceptionAction accepts the action names case-insensitively.
func ParseExceptionAction(name string) (ExceptionAction, error) {
	for action, n := range exceptionActionNames {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return action, nil
		}
	}
	return UnknownAction, errs.NewValueIsInvalidErrorWithCause(
		"exception action is invalid",
		fmt.Errorf("%q is not one of Report, Followup, Resolve, Continue, Close", name),
	)
}

// ParseExceptionStatus is the inverse of ExceptionStatus.String, case-insensitive.
func ParseExceptionStatus(name string) (ExceptionStatus, error) {
	for status, n := range exceptionStatusNames {
		if strings.EqualFold(n, name) {
			return status, nil
		}
	}
	return UnknownExceptionStatus, errs.NewValueIsInvalidErrorWithCause(
		"exception status is invalid",
		fmt.Errorf("%q is not a valid exception status", name),
	)
}

// ExceptionRecord is one immutable entry of the exception audit trail.
type ExceptionRecord struct {
	action ExceptionAction
	note   string
	actor  string
	at     time.Time
}

// NewExceptionRecord builds an audit entry, used when restoring from storage.
func NewExceptionRecord(action ExceptionAction, note, actor string, at time.Time) (ExceptionRecord, error) {
	if err := action.Validate(); err != nil {
		return ExceptionRecord{}, err
	}
	at = normalizeTime(at)
	if at.IsZero() {
		return ExceptionRecord{}, errs.NewValueIsRequiredError("exception record timestamp")
	}
	return ExceptionRecord{action: action, note: note, actor: actor, at: at}, nil
}

func (r ExceptionRecord) Action() ExceptionAction { return r.action }
func (r ExceptionRecord) Note() string            { return r.note }
func (r ExceptionRecord) Actor() string           { return r.actor }
func (r ExceptionRecord) At() time.Time           { return r.at }

// ExceptionState is the single exception attached to a shipment. A resolved
// exception may be reported again; the new report reuses the same trail so that
// no record is ever dropped.
type ExceptionState struct {
	status     ExceptionStatus
	note       string
	reportedAt time.Time
	records    []ExceptionRecord
}

// RestoreExceptionState rebuilds an exception from storage.
func RestoreExceptionState(
	status ExceptionStatus,
	note string,
	reportedAt time.Time,
	records []ExceptionRecord,
) (*ExceptionState, error) {
	var problems []error
	if err := status.Validate(); err != nil {
		problems = append(problems, err)
	}
	if strings.TrimSpace(note) == "" {
		problems = append(problems, errs.NewValueIsRequiredError("exception note"))
	}
	if reportedAt.IsZero() {
		problems = append(problems, errs.NewValueIsRequiredError("exception reportedAt"))
	}
	if len(records) == 0 {
		problems = append(problems, errs.NewValueIsRequiredError("exception records"))
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	return &ExceptionState{
		status:     status,
		note:       note,
		reportedAt: normalizeTime(reportedAt),
		records:    slices.Clone(records),
	}, nil
}

func (e *ExceptionState) Status() ExceptionStatus { return e.status }
func (e *ExceptionState) Note() string            { return e.note }
func (e *ExceptionState) ReportedAt() time.Time   { return e.reportedAt }

// Records returns a copy of the audit trail, oldest first.
func (e *ExceptionState) Records() []ExceptionRecord {
	return slices.Clone(e.records)
}

// LastActivityAt is the timestamp of the newest audit record.
func (e *ExceptionState) LastActivityAt() time.Time {
	return e.records[len(e.records)-1].at
}

func (e *ExceptionState) clone() *ExceptionState {
	if e == nil {
		return nil
	}
	c := *e
	c.records = slices.Clone(e.records)
	return &c
}

func (e *ExceptionState) append(action ExceptionAction, note, actor string, at time.Time) {
	e.records = append(e.records, ExceptionRecord{action: action, note: note, actor: actor, at: at})
}
