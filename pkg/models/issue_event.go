package models

import (
	"fmt"
	"strings"
	"time"
)

// IssueEventType is the kind of lifecycle transition an IssueEvent records.
// The integer values are stored in the type column and must stay stable.
type IssueEventType int16

const (
	IssueEventCreated      IssueEventType = 0
	IssueEventUpdated      IssueEventType = 1
	IssueEventClosed       IssueEventType = 2
	IssueEventCommentAdded IssueEventType = 3
	IssueEventReopened     IssueEventType = 4
	IssueEventAssigned     IssueEventType = 5
	IssueEventResolved     IssueEventType = 6
)

var issueEventTypeNames = map[IssueEventType]string{
	IssueEventCreated:      "CREATED",
	IssueEventUpdated:      "UPDATED",
	IssueEventClosed:       "CLOSED",
	IssueEventCommentAdded: "COMMENT_ADDED",
	IssueEventReopened:     "REOPENED",
	IssueEventAssigned:     "ASSIGNED",
	IssueEventResolved:     "RESOLVED",
}

func (t IssueEventType) String() string {
	if name, ok := issueEventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("IssueEventType(%d)", int16(t))
}

// Valid reports whether t is a known event type.
func (t IssueEventType) Valid() bool {
	_, ok := issueEventTypeNames[t]
	return ok
}

// ParseIssueEventType converts a name such as "CLOSED" or "comment_added".
func ParseIssueEventType(name string) (IssueEventType, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for eventType, eventName := range issueEventTypeNames {
		if eventName == upper {
			return eventType, nil
		}
	}
	return 0, fmt.Errorf("unknown issue event type %q", name)
}

// IssueEventKey is the identity of an event as used by existence checks:
// (project, id, related_object_id).
type IssueEventKey struct {
	Project         Project
	ID              int64
	RelatedObjectID int64
}

// IssueEvent is an append-only record of an issue state transition.
type IssueEvent struct {
	Project Project `json:"project"`
	// ID is the id of the issue the event belongs to.
	ID int64 `json:"id"`
	// ParentID is the id of the parent issue, or 0 when there is no parent.
	ParentID int64 `json:"parent_id"`
	// RelatedObjectID separates events that share an issue id. It is 0 for the
	// issue's own lifecycle events and the comment id for COMMENT_ADDED.
	RelatedObjectID  int64          `json:"related_object_id"`
	Type             IssueEventType `json:"type"`
	AssigneeUsername string         `json:"assignee_username"`
	Timestamp        time.Time      `json:"timestamp"`
}

// Key returns the identity key of the event.
func (e *IssueEvent) Key() IssueEventKey {
	return IssueEventKey{Project: e.Project, ID: e.ID, RelatedObjectID: e.RelatedObjectID}
}
