package application

import (
	"context"
	"log/slog"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/envelope"
	"github.com/dmehra2102/commerce-choreography/pkg/workflow"
)

const WorkflowProductAdded = "product-added"

// ProductAddedWorkflow initialises stock for a newly added product. The
// step is a blind overwrite, so duplicate triggers converge on the same row.
type ProductAddedWorkflow struct {
	log    *slog.Logger
	repo   InventoryRepository
	runner *workflow.Runner
}

func NewProductAddedWorkflow(log *slog.Logger, repo InventoryRepository, runner *workflow.Runner) *ProductAddedWorkflow {
	return &ProductAddedWorkflow{log: log, repo: repo, runner: runner}
}

// Handle starts one execution per trigger. Step failures are kept in the
// workflow history; only a failure to record history reaches the consumer.
func (w *ProductAddedWorkflow) Handle(ctx context.Context, env envelope.Envelope) error {
	var evt domain.ProductAdded
	if err := env.Decode(&evt); err != nil {
		return apperror.Deserialization(err)
	}
	if evt.ProductID == "" {
		return apperror.Validation("productId is required")
	}

	exec, err := w.runner.Execute(ctx, WorkflowProductAdded, evt.ProductID, func(ctx context.Context) error {
		return w.repo.InitializeItem(ctx, evt.ProductID)
	})
	if err != nil {
		return err
	}
	w.log.Info("product-added workflow finished", "product_id", evt.ProductID, "status", exec.Status, "attempts", exec.Attempts)
	return nil
}
