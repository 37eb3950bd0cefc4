package topology

import (
	"fmt"
	"strings"

	"railio/internal/application"
)

// IssueKind classifies a connection problem found during resolution
type IssueKind string

const (
	IssueDuplicateID             IssueKind = "duplicate-id"
	IssueDuplicateTrack          IssueKind = "duplicate-track"
	IssueUnresolved              IssueKind = "unresolved"
	IssueNotReciprocal           IssueKind = "not-reciprocal"
	IssueConflict                IssueKind = "conflict"
	IssueSelfReference           IssueKind = "self-reference"
	IssueJunctionToJunction      IssueKind = "junction-to-junction"
	IssueSwitchWithoutConnection IssueKind = "switch-without-connection"
	IssueMissingEnd              IssueKind = "missing-end"
)

// Issue is one connection problem. ConnectionIDs names every declaration involved.
type Issue struct {
	Kind          IssueKind
	TrackID       string
	ConnectionIDs []string
	Message       string
}

func (i Issue) String() string {
	return fmt.Sprintf("%s: %s", i.Kind, i.Message)
}

// TopologyError lists every issue found in one resolution pass
type TopologyError struct {
	Issues []Issue
}

func (e *TopologyError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("topology has %d issue(s): %s", len(e.Issues), strings.Join(msgs, "; "))
}

func (e *TopologyError) Is(target error) bool {
	return target == application.ErrTopology
}

// ByKind returns the issues of one kind
func (e *TopologyError) ByKind(kind IssueKind) []Issue {
	var out []Issue
	for _, issue := range e.Issues {
		if issue.Kind == kind {
			out = append(out, issue)
		}
	}
	return out
}

// SwitchGeometryWarning reports a switch whose branch side or direction had to be assumed
type SwitchGeometryWarning struct {
	JunctionID string
	Detail     string
}

func (w *SwitchGeometryWarning) Code() string    { return "switch-geometry" }
func (w *SwitchGeometryWarning) Subject() string { return w.JunctionID }
func (w *SwitchGeometryWarning) Warning() string {
	return fmt.Sprintf("switch %s: %s", w.JunctionID, w.Detail)
}

// MacroscopicConflictWarning reports a macroscopic node whose members disagree on name or OCP
type MacroscopicConflictWarning struct {
	MacroID string
	NodeIDs []string
	Names   []string
	OCPRefs []string
}

func (w *MacroscopicConflictWarning) Code() string    { return "macroscopic-conflict" }
func (w *MacroscopicConflictWarning) Subject() string { return w.MacroID }
func (w *MacroscopicConflictWarning) Warning() string {
	return fmt.Sprintf("macroscopic node %s has conflicting declarations (nodes %s, names %q, ocpRefs %q)",
		w.MacroID, strings.Join(w.NodeIDs, ", "), w.Names, w.OCPRefs)
}
