package models

import (
	"fmt"
	"strings"

	dErrors "idcard/pkg/domain-errors"
)

// Status is the approval-lifecycle state of a citizen record.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{StatusWaiting, StatusPending, StatusApproved, StatusRejected}

func (s Status) IsValid() bool {
	switch s {
	case StatusWaiting, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// ParseStatus parses a status value case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid status: %q", raw))
	}
	return s, nil
}

// PrintStatus is the physical-card production state. It only moves while the
// record is approved, and its changes are not historized.
type PrintStatus string

const (
	PrintStatusUnprinted PrintStatus = "unprinted"
	PrintStatusPrinted   PrintStatus = "printed"
	PrintStatusDelivered PrintStatus = "delivered"
	PrintStatusFailed    PrintStatus = "failed"
)

// AllPrintStatuses lists every print status in production order.
var AllPrintStatuses = []PrintStatus{PrintStatusUnprinted, PrintStatusPrinted, PrintStatusDelivered, PrintStatusFailed}

func (p PrintStatus) IsValid() bool {
	switch p {
	case PrintStatusUnprinted, PrintStatusPrinted, PrintStatusDelivered, PrintStatusFailed:
		return true
	}
	return false
}

func (p PrintStatus) String() string { return string(p) }

// ParsePrintStatus parses a print status value case-insensitively.
func ParsePrintStatus(raw string) (PrintStatus, error) {
	p := PrintStatus(strings.ToLower(strings.TrimSpace(raw)))
	if !p.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("invalid print status: %q", raw))
	}
	return p, nil
}

// Action names the operator intent behind a status edge.
type Action string

const (
	ActionSend     Action = "send"
	ActionApprove  Action = "approve"
	ActionReject   Action = "reject"
	ActionResubmit Action = "resubmit"
)

// statusEdges is the legal transition table. Each target status is reachable
// by exactly one action, so the action can be derived from the target alone.
var statusEdges = map[Status]map[Status]Action{
	StatusWaiting:  {StatusPending: ActionSend},
	StatusPending:  {StatusApproved: ActionApprove, StatusRejected: ActionReject},
	StatusRejected: {StatusWaiting: ActionResubmit},
}

// ActionFor returns the action that moves a record into target.
func ActionFor(target Status) (Action, bool) {
	for _, edges := range statusEdges {
		if a, ok := edges[target]; ok {
			return a, true
		}
	}
	return "", false
}

// CanTransition reports whether from -> to is a legal status edge.
func CanTransition(from, to Status) bool {
	_, ok := statusEdges[from][to]
	return ok
}

// printEdges is the legal print transition table. Printing again from any
// state other than unprinted is a reprint and re-marks the card printed.
var printEdges = map[PrintStatus][]PrintStatus{
	PrintStatusUnprinted: {PrintStatusPrinted, PrintStatusFailed},
	PrintStatusPrinted:   {PrintStatusDelivered, PrintStatusPrinted},
	PrintStatusDelivered: {PrintStatusPrinted},
	PrintStatusFailed:    {PrintStatusUnprinted, PrintStatusPrinted},
}

// CanTransitionPrint reports whether from -> to is a legal print edge.
func CanTransitionPrint(from, to PrintStatus) bool {
	for _, allowed := range printEdges[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// IsReprint reports whether marking printed from the given state is a reprint.
func IsReprint(from PrintStatus) bool {
	return from != PrintStatusUnprinted
}
