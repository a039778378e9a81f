package repository

import (
	"context"

	"ticket-marketplace/internal/domain/model"
)

// FailureLedger keeps dead-letter records of dropped fulfillment steps.
type FailureLedger interface {
	Record(ctx context.Context, f *model.FailedStep) error
}
