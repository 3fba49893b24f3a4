// Package fsm defines the status state machine for job applications.
//
// Valid status graph:
//
//	submitted → followup_sent → phone_screen_complete → interview_scheduled
//	    → interview_complete → offer_received → offer_accepted
//
// Any non-terminal status may also move to rejected. offer_accepted and
// rejected are terminal states with no outgoing transitions.
package fsm

import (
	"fmt"
	"time"
)

// Status values mirror the text values stored in applications.status.
type Status string

const (
	StatusSubmitted           Status = "submitted"
	StatusFollowupSent        Status = "followup_sent"
	StatusPhoneScreenComplete Status = "phone_screen_complete"
	StatusInterviewScheduled  Status = "interview_scheduled"
	StatusInterviewComplete   Status = "interview_complete"
	StatusOfferReceived       Status = "offer_received"
	StatusOfferAccepted       Status = "offer_accepted"
	StatusRejected            Status = "rejected"
)

// Transition names the edges of the graph. These are the values accepted
// by POST /v1/applications/:id/transitions and recorded in status_changes.
type Transition string

const (
	TransitionSendFollowup        Transition = "send_followup"
	TransitionCompletePhoneScreen Transition = "complete_phone_screen"
	TransitionScheduleInterview   Transition = "schedule_interview"
	TransitionCompleteInterview   Transition = "complete_interview"
	TransitionReceiveOffer        Transition = "receive_offer"
	TransitionAcceptOffer         Transition = "accept_offer"
	TransitionReject              Transition = "reject"
)

// forward lists the linear progression edges. reject is handled
// separately because its source is any non-terminal status.
var forward = map[Transition]struct{ From, To Status }{
	TransitionSendFollowup:        {StatusSubmitted, StatusFollowupSent},
	TransitionCompletePhoneScreen: {StatusFollowupSent, StatusPhoneScreenComplete},
	TransitionScheduleInterview:   {StatusPhoneScreenComplete, StatusInterviewScheduled},
	TransitionCompleteInterview:   {StatusInterviewScheduled, StatusInterviewComplete},
	TransitionReceiveOffer:        {StatusInterviewComplete, StatusOfferReceived},
	TransitionAcceptOffer:         {StatusOfferReceived, StatusOfferAccepted},
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusSubmitted, StatusFollowupSent, StatusPhoneScreenComplete,
		StatusInterviewScheduled, StatusInterviewComplete,
		StatusOfferReceived, StatusOfferAccepted, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// ParseTransition converts a raw string to a Transition, returning an
// error for unknown values.
func ParseTransition(s string) (Transition, error) {
	tr := Transition(s)
	switch tr {
	case TransitionSendFollowup, TransitionCompletePhoneScreen,
		TransitionScheduleInterview, TransitionCompleteInterview,
		TransitionReceiveOffer, TransitionAcceptOffer, TransitionReject:
		return tr, nil
	}
	return "", fmt.Errorf("unknown transition %q", s)
}

// IsTerminal returns true when the status permits no further transitions.
func IsTerminal(s Status) bool {
	return s == StatusOfferAccepted || s == StatusRejected
}

// Allowed returns the transitions available from the given status, in
// progression order with reject last. Terminal statuses return nil.
func Allowed(from Status) []Transition {
	if IsTerminal(from) {
		return nil
	}
	var out []Transition
	for _, tr := range []Transition{
		TransitionSendFollowup, TransitionCompletePhoneScreen,
		TransitionScheduleInterview, TransitionCompleteInterview,
		TransitionReceiveOffer, TransitionAcceptOffer,
	} {
		if forward[tr].From == from {
			out = append(out, tr)
		}
	}
	return append(out, TransitionReject)
}

// IsAllowed returns true when the transition may fire from the given
// status, ignoring guards.
func IsAllowed(from Status, tr Transition) bool {
	if IsTerminal(from) {
		return false
	}
	if tr == TransitionReject {
		return true
	}
	edge, ok := forward[tr]
	return ok && edge.From == from
}

// IllegalTransitionError reports a transition attempted from a status it
// cannot fire from. The application status is left unchanged.
type IllegalTransitionError struct {
	From       Status
	Transition Transition
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("transition %s is not allowed from status %s", e.Transition, e.From)
}

// GuardError reports a transition whose guard rejected it, typically a
// date inconsistency. The application status is left unchanged.
type GuardError struct {
	Transition Transition
	Reason     string
}

func (e *GuardError) Error() string {
	return fmt.Sprintf("transition %s rejected: %s", e.Transition, e.Reason)
}

// Args carries the optional per-transition arguments supplied by callers.
type Args struct {
	// Reason is required for reject.
	Reason string
	// InterviewDate is required for schedule_interview.
	InterviewDate *time.Time
}

// Dates is the date context the transition guards check against.
type Dates struct {
	Submitted time.Time
	Interview *time.Time
}

// Outcome describes the status and field updates the caller must persist
// after a successful transition.
type Outcome struct {
	To          Status
	UpdatedDate time.Time

	// Set by schedule_interview.
	InterviewDate *time.Time

	// Set by reject.
	RejectedDate       *time.Time
	RejectedReason     string
	RejectedFromStatus Status
}

// day truncates a timestamp to its calendar date in UTC so that guards
// compare dates, not instants.
func day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Apply validates and executes a transition from the given status. It
// returns the resulting field updates, or an *IllegalTransitionError /
// *GuardError and no change.
func Apply(from Status, tr Transition, now time.Time, dates Dates, args Args) (Outcome, error) {
	if !IsAllowed(from, tr) {
		return Outcome{}, &IllegalTransitionError{From: from, Transition: tr}
	}

	today := day(now)

	if tr == TransitionReject {
		if args.Reason == "" {
			return Outcome{}, &GuardError{Transition: tr, Reason: "a rejection reason is required"}
		}
		if today.Before(day(dates.Submitted)) {
			return Outcome{}, &GuardError{Transition: tr, Reason: "rejection cannot predate submission"}
		}
		rd := today
		return Outcome{
			To:                 StatusRejected,
			UpdatedDate:        today,
			RejectedDate:       &rd,
			RejectedReason:     args.Reason,
			RejectedFromStatus: from,
		}, nil
	}

	switch tr {
	case TransitionScheduleInterview:
		if args.InterviewDate == nil {
			return Outcome{}, &GuardError{Transition: tr, Reason: "an interview date is required"}
		}
		if day(*args.InterviewDate).Before(today) {
			return Outcome{}, &GuardError{Transition: tr, Reason: "interview date cannot be in the past"}
		}
		iv := day(*args.InterviewDate)
		return Outcome{To: forward[tr].To, UpdatedDate: today, InterviewDate: &iv}, nil

	case TransitionCompleteInterview:
		if dates.Interview != nil && today.Before(day(*dates.Interview)) {
			return Outcome{}, &GuardError{Transition: tr, Reason: "interview cannot be completed before its scheduled date"}
		}
		return Outcome{To: forward[tr].To, UpdatedDate: today}, nil

	default:
		// send_followup, complete_phone_screen, receive_offer, accept_offer
		// share the same guard: nothing may predate submission.
		if today.Before(day(dates.Submitted)) {
			return Outcome{}, &GuardError{Transition: tr, Reason: "update cannot predate submission"}
		}
		return Outcome{To: forward[tr].To, UpdatedDate: today}, nil
	}
}
