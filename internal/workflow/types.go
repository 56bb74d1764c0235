// Package workflow runs the transcription stages for one input file
package workflow

import (
	"sync"
	"time"
)

// StageNode records the execution of one stage
type StageNode struct {
	Name       string
	Status     NodeStatus
	StartTime  time.Time
	EndTime    time.Time
	Outputs    map[string]string
	Metadata   map[string]interface{}
	Statistics map[string]interface{}
}

// Duration returns how long the stage ran, or zero if it never started
func (n *StageNode) Duration() time.Duration {
	if n.StartTime.IsZero() || n.EndTime.IsZero() {
		return 0
	}
	return n.EndTime.Sub(n.StartTime)
}

// WorkflowState represents the current state of a pipeline run
type WorkflowState struct {
	sync.RWMutex // Protects all fields below

	ID          string
	Name        string
	Input       string
	StartTime   time.Time
	EndTime     time.Time
	Status      WorkflowStatus
	CurrentNode string
	Nodes       []*StageNode
	History     []WorkflowEvent
}

// WorkflowEvent represents an event that occurred during the run
type WorkflowEvent struct {
	ID        string
	Timestamp time.Time
	NodeID    string
	Type      string
	Message   string
	Data      map[string]interface{}
}

// NodeStatus represents the current status of a stage
type NodeStatus string

const (
	NodeStatusPending  NodeStatus = "pending"
	NodeStatusRunning  NodeStatus = "running"
	NodeStatusComplete NodeStatus = "complete"
	NodeStatusFailed   NodeStatus = "failed"
	NodeStatusSkipped  NodeStatus = "skipped"
)

// WorkflowStatus represents the current status of the run
type WorkflowStatus string

const (
	WorkflowStatusPending  WorkflowStatus = "pending"
	WorkflowStatusRunning  WorkflowStatus = "running"
	WorkflowStatusComplete WorkflowStatus = "complete"
	WorkflowStatusFailed   WorkflowStatus = "failed"
)
