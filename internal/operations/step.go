package operations

import (
	"context"
	"sync"
	"time"

	"engcli/pkg/contracts/domain"
)

// Step represents a single step of a run
type Step interface {
	// ID returns the unique identifier for this step
	ID() string

	// Name returns the human-readable name for this step
	Name() string

	// Execute runs the step
	Execute(ctx context.Context, state *OperationState) error

	// GetDependencies returns the IDs of steps that must complete before this step
	GetDependencies() []string
}

// StepFunc is the body of a step built with NewStep
type StepFunc func(ctx context.Context, state *OperationState) error

// funcStep adapts a StepFunc to the Step interface
type funcStep struct {
	BaseStep
	fn StepFunc
}

// NewStep creates a step running fn
func NewStep(id, name string, dependencies []string, fn StepFunc) Step {
	return &funcStep{BaseStep: NewBaseStep(id, name, dependencies), fn: fn}
}

func (s *funcStep) Execute(ctx context.Context, state *OperationState) error {
	return s.fn(ctx, state)
}

// BaseStep provides the identity of Step implementations
type BaseStep struct {
	id           string
	name         string
	dependencies []string
}

// NewBaseStep creates a new base step
func NewBaseStep(id, name string, dependencies []string) BaseStep {
	if dependencies == nil {
		dependencies = []string{}
	}
	return BaseStep{
		id:           id,
		name:         name,
		dependencies: dependencies,
	}
}

// ID returns the step ID
func (b *BaseStep) ID() string {
	return b.id
}

// Name returns the step name
func (b *BaseStep) Name() string {
	return b.name
}

// GetDependencies returns the step dependencies
func (b *BaseStep) GetDependencies() []string {
	return b.dependencies
}

// StepState represents the runtime state of a step
type StepState struct {
	mu        sync.RWMutex
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Status    domain.StepStatus `json:"status"`
	StartTime *time.Time        `json:"start_time,omitempty"`
	EndTime   *time.Time        `json:"end_time,omitempty"`
	Message   string            `json:"message,omitempty"`
	Error     error             `json:"-"`
}

// NewStepState creates a new pending step state
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:     id,
		Name:   name,
		Status: domain.StepStatusPending,
	}
}

// Start marks the step as running and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = domain.StepStatusRunning
}

// Complete marks the step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = domain.StepStatusCompleted
}

// Fail marks the step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = domain.StepStatusFailed
	s.Error = err
}

// Skip marks the step as skipped with the given reason
func (s *StepState) Skip(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Status = domain.StepStatusSkipped
	s.Message = reason
}

// GetStatus returns the current status
func (s *StepState) GetStatus() domain.StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// Duration returns the duration of the step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}
