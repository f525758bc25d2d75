package operations

import (
	"time"

	"engcli/pkg/contracts/domain"
)

// OperationResponse summarizes a finished run
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   domain.RunStatus      `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
