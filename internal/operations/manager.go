package operations

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"engcli/internal/infrastructure"
	"engcli/pkg/contracts/domain"
)

// Manager executes the steps of a registry in dependency order
type Manager struct {
	registry *Registry
	tracer   *OperationTracer
	logger   *slog.Logger
}

// NewManager creates a new manager
func NewManager(registry *Registry, telemetry *infrastructure.Telemetry, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		registry: registry,
		tracer:   NewOperationTracer(telemetry),
		logger:   logger,
	}
}

// GetRegistry returns the registry of the manager
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// Execute runs every registered step once, one at a time. The first step
// failure stops the run; the steps depending on it are marked skipped.
func (m *Manager) Execute(ctx context.Context, id string) (*OperationResponse, error) {
	state := NewOperationState(id)

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		err = fmt.Errorf("failed to get dependency order: %w", err)
		state.Fail(err)
		return m.createResponse(state), err
	}

	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}

	ctx, span := m.tracer.TraceOperationExecution(ctx, id, len(steps))
	m.logger.InfoContext(ctx, "Run started",
		slog.String("operation_id", id),
		slog.Int("step_count", len(steps)))

	err = m.executeSequential(ctx, state, steps)
	if err != nil {
		state.Fail(err)
		m.logger.ErrorContext(ctx, "Run failed",
			slog.String("operation_id", id),
			slog.Duration("duration", state.Duration()),
			slog.String("error", err.Error()))
	} else {
		state.Complete()
		m.logger.InfoContext(ctx, "Run completed",
			slog.String("operation_id", id),
			slog.Duration("duration", state.Duration()))
	}
	m.tracer.RecordOperationCompletion(span, state)

	return m.createResponse(state), err
}

func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		stepState := state.GetStep(step.ID())

		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "Run cancelled", slog.String("step", step.ID()))
			for _, rest := range steps[i:] {
				state.GetStep(rest.ID()).Skip("run cancelled")
			}
			return NewCancellationError(step.ID(), err)
		}

		if stepState.GetStatus() == domain.StepStatusSkipped {
			continue
		}

		if err := m.checkDependencies(state, step); err != nil {
			stepState.Skip(err.Error())
			m.logger.WarnContext(ctx, "Step skipped",
				slog.String("step", step.ID()),
				slog.String("reason", err.Error()))
			continue
		}

		m.logger.InfoContext(ctx, "Executing step",
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			m.skipDependentSteps(state, step.ID())
			return err
		}
	}
	return nil
}

func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	stepCtx, span := m.tracer.TraceStepExecution(ctx, state.ID, step)

	stepState.Start()
	start := time.Now()
	err := step.Execute(stepCtx, state)
	duration := time.Since(start)

	m.tracer.RecordStepCompletion(stepCtx, span, step.ID(), duration, err)

	if err != nil {
		stepState.Fail(err)
		m.logger.ErrorContext(ctx, "Step failed",
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return WrapError(err, step.ID(), "step execution failed")
	}

	stepState.Complete()
	m.logger.InfoContext(ctx, "Step completed",
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}

// skipDependentSteps marks every pending step that depends, directly or
// transitively, on failedID as skipped
func (m *Manager) skipDependentSteps(state *OperationState, failedID string) {
	for _, dependent := range m.registry.GetDependents(failedID) {
		stepState := state.GetStep(dependent.ID())
		if stepState != nil && stepState.GetStatus() == domain.StepStatusPending {
			stepState.Skip(fmt.Sprintf("dependency %s failed", failedID))
			m.skipDependentSteps(state, dependent.ID())
		}
	}
}

// checkDependencies verifies that all dependencies completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStep(dep)
		if depState == nil || depState.GetStatus() != domain.StepStatusCompleted {
			return NewDependencyError(step.ID(), dep)
		}
	}
	return nil
}

func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}
