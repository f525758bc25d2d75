// Package operations runs the processor pipeline as an ordered set of steps.
//
// Core Components:
//
// Step: one unit of work of a run, such as ingesting the log bundle or
// computing the maintenance forecast. Steps declare the IDs of the steps
// they depend on.
//
// Registry: holds the registered steps and orders them topologically,
// keeping registration order between independent steps.
//
// Manager: executes the steps of a registry one after another. Each step
// runs inside its own span and its duration is recorded as a metric. When a
// step fails, the steps depending on it are marked skipped and the run
// stops.
//
// State: tracks the status and timing of the run and of every step.
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	registry.Register(operations.NewStep(domain.StepIDIngest, domain.StepNameIngest, nil, ingest))
//	registry.Register(operations.NewStep(domain.StepIDMerge, domain.StepNameMerge,
//		[]string{domain.StepIDIngest}, merge))
//
//	manager := operations.NewManager(registry, telemetry, logger)
//	resp, err := manager.Execute(ctx, runID)
package operations
