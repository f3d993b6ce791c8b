package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// EventType defines the category of the log event.
type EventType string

const (
	EventTypePlan      EventType = "plan"
	EventTypeStep      EventType = "step"
	EventTypePolicy    EventType = "policy_check"
	EventTypePersist   EventType = "persist"
	EventTypeHeartbeat EventType = "heartbeat"
	EventTypeLLM       EventType = "llm"
)

// Event represents a structured log entry.
type Event struct {
	Type      EventType `json:"type"`
	PlanID    string    `json:"plan_id,omitempty"`
	Stage     string    `json:"stage,omitempty"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// Logger handles structured logging.
type Logger struct {
	llmLogPath string
	maxSize    int64
}

func NewLogger() *Logger {
	return &Logger{
		llmLogPath: filepath.Join("logs", "llm.jsonl"),
		maxSize:    10 * 1024 * 1024, // 10MB
	}
}

// Log emits a structured JSON event to stdout.
func (l *Logger) Log(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	data, err := json.Marshal(evt)
	if err != nil {
		fmt.Printf("{\"error\": \"failed to marshal event: %v\"}\n", err)
		return
	}
	fmt.Println(string(data))

	if evt.Type == EventTypeLLM {
		l.writeToFile(data)
	}
}

func (l *Logger) writeToFile(data []byte) {
	if err := os.MkdirAll(filepath.Dir(l.llmLogPath), 0755); err != nil {
		log.Printf("failed to create log directory: %v", err)
		return
	}

	// Check size before writing
	info, err := os.Stat(l.llmLogPath)
	if err == nil && info.Size() > l.maxSize {
		l.rotateLogs()
	}

	f, err := os.OpenFile(l.llmLogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("failed to open log file: %v", err)
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("failed to write to log file: %v", err)
	}
}

func (l *Logger) rotateLogs() {
	// Simple rotation: keep one .old file
	oldPath := l.llmLogPath + ".old"
	_ = os.Remove(oldPath)
	_ = os.Rename(l.llmLogPath, oldPath)
}

// Helper methods for common events

func (l *Logger) LogPlanCreated(planID, name, goal string) {
	l.Log(Event{
		Type:   EventTypePlan,
		PlanID: planID,
		Data: map[string]string{
			"event": "created",
			"name":  name,
			"goal":  goal,
		},
	})
}

func (l *Logger) LogPlanFinished(planID, status, errText string) {
	l.Log(Event{
		Type:   EventTypePlan,
		PlanID: planID,
		Data: map[string]string{
			"event":  "finished",
			"status": status,
			"error":  errText,
		},
	})
}

func (l *Logger) LogStep(planID, stage string, step int, status string) {
	l.Log(Event{
		Type:   EventTypeStep,
		PlanID: planID,
		Stage:  stage,
		Data: map[string]any{
			"step":   step,
			"status": status,
		},
	})
}

func (l *Logger) LogPolicyCheck(goal, effect, reason string) {
	l.Log(Event{
		Type: EventTypePolicy,
		Data: map[string]string{
			"goal":   goal,
			"effect": effect,
			"reason": reason,
		},
	})
}

func (l *Logger) LogPersistWarning(planID string, err error) {
	l.Log(Event{
		Type:   EventTypePersist,
		PlanID: planID,
		Data: map[string]string{
			"warning": fmt.Sprintf("failed to persist results: %v", err),
		},
	})
}

func (l *Logger) LogHeartbeat() {
	l.Log(Event{
		Type: EventTypeHeartbeat,
		Data: map[string]string{"status": "alive"},
	})
}

func (l *Logger) LogLLM(planID, stage string, prompt any, response string) {
	l.Log(Event{
		Type:   EventTypeLLM,
		PlanID: planID,
		Stage:  stage,
		Data: map[string]any{
			"prompt":   prompt,
			"response": response,
		},
	})
}
