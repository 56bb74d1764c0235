package workflow

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/gnzdotmx/vidscribe/internal/utils"
)

func newState(id, input string, stages []string) *WorkflowState {
	state := &WorkflowState{
		ID:        id,
		Name:      "transcription",
		Input:     input,
		StartTime: time.Now(),
		Status:    WorkflowStatusRunning,
		History:   make([]WorkflowEvent, 0),
	}
	for _, name := range stages {
		state.Nodes = append(state.Nodes, &StageNode{Name: name, Status: NodeStatusPending})
	}
	return state
}

// AddEvent adds an event to the run history in a thread-safe manner
func (s *WorkflowState) AddEvent(nodeID, eventType, message string, data map[string]interface{}) {
	s.Lock()
	defer s.Unlock()
	s.History = append(s.History, WorkflowEvent{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		NodeID:    nodeID,
		Type:      eventType,
		Message:   message,
		Data:      data,
	})
}

// UpdateNodeStatus updates a stage's status in a thread-safe manner
func (s *WorkflowState) UpdateNodeStatus(nodeID string, status NodeStatus) {
	s.Lock()
	defer s.Unlock()
	node := s.node(nodeID)
	if node == nil {
		return
	}
	node.Status = status
	switch status {
	case NodeStatusRunning:
		node.StartTime = time.Now()
		s.CurrentNode = nodeID
	case NodeStatusComplete, NodeStatusFailed:
		node.EndTime = time.Now()
	}
}

// UpdateNodeResult stores a stage's outputs, metadata and statistics
func (s *WorkflowState) UpdateNodeResult(nodeID string, outputs map[string]string, metadata, statistics map[string]interface{}) {
	s.Lock()
	defer s.Unlock()
	if node := s.node(nodeID); node != nil {
		node.Outputs = outputs
		node.Metadata = metadata
		node.Statistics = statistics
	}
}

// GetNodeStatus gets a stage's status in a thread-safe manner
func (s *WorkflowState) GetNodeStatus(nodeID string) NodeStatus {
	s.RLock()
	defer s.RUnlock()
	if node := s.node(nodeID); node != nil {
		return node.Status
	}
	return NodeStatusPending
}

// Finish marks the run complete or failed
func (s *WorkflowState) Finish(err error) {
	s.Lock()
	defer s.Unlock()
	s.EndTime = time.Now()
	if err != nil {
		s.Status = WorkflowStatusFailed
		for _, n := range s.Nodes {
			if n.Status == NodeStatusPending {
				n.Status = NodeStatusSkipped
			}
		}
		return
	}
	s.Status = WorkflowStatusComplete
}

func (s *WorkflowState) node(nodeID string) *StageNode {
	for _, n := range s.Nodes {
		if n.Name == nodeID {
			return n
		}
	}
	return nil
}

// Table renders the per-stage summary shown at the end of a run
func (s *WorkflowState) Table() string {
	s.RLock()
	defer s.RUnlock()

	rows := make([][]string, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		duration := ""
		if d := n.Duration(); d > 0 {
			duration = d.Round(time.Millisecond).String()
		}
		rows = append(rows, []string{n.Name, string(n.Status), duration, formatStatistics(n.Statistics)})
	}
	return utils.RenderTable([]string{"Stage", "Status", "Duration", "Details"}, rows, 2)
}

func formatStatistics(stats map[string]interface{}) string {
	if len(stats) == 0 {
		return ""
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		switch v := stats[k].(type) {
		case float64:
			parts = append(parts, fmt.Sprintf("%s=%.1f", k, v))
		default:
			parts = append(parts, fmt.Sprintf("%s=%v", k, v))
		}
	}
	return strings.Join(parts, " ")
}

// SaveWorkflowState writes a YAML summary of the run to outputPath
func (s *WorkflowState) SaveWorkflowState(outputPath string) error {
	s.RLock()
	summary := map[string]interface{}{
		"id":          s.ID,
		"name":        s.Name,
		"input":       s.Input,
		"status":      string(s.Status),
		"startTime":   s.StartTime,
		"endTime":     s.EndTime,
		"currentNode": s.CurrentNode,
	}
	nodes := make([]map[string]interface{}, 0, len(s.Nodes))
	for _, n := range s.Nodes {
		nodes = append(nodes, map[string]interface{}{
			"name":       n.Name,
			"status":     string(n.Status),
			"duration":   n.Duration().String(),
			"outputs":    n.Outputs,
			"metadata":   n.Metadata,
			"statistics": n.Statistics,
		})
	}
	summary["nodes"] = nodes
	s.RUnlock()

	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal workflow state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write workflow state: %w", err)
	}

	return nil
}
