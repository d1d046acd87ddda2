package workflows

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// PositionImportInput is the input for the import workflow.
type PositionImportInput struct {
	NetworkID   string
	RequestedBy string
}

// PositionImportWorkflow runs a position import and then warms the read cache.
// Cache warming failures do not fail the workflow.
func PositionImportWorkflow(ctx workflow.Context, input PositionImportInput) (*domain.ImportReport, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting position import", "network", input.NetworkID, "requestedBy", input.RequestedBy)

	importCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        5 * time.Second,
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeUnsupportedCRS, ErrTypeMalformedRecord, ErrTypeNetworkNotFound},
		},
	})

	var report domain.ImportReport
	if err := workflow.ExecuteActivity(importCtx, "ImportPositions", input.NetworkID).Get(ctx, &report); err != nil {
		logger.Error("Position import failed", "network", input.NetworkID, "error", err)
		return nil, err
	}

	warmCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 1 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 2},
	})
	var warmed int
	if err := workflow.ExecuteActivity(warmCtx, "WarmPositionCache", input.NetworkID).Get(ctx, &warmed); err != nil {
		logger.Warn("Cache warm-up failed", "network", input.NetworkID, "error", err)
	}

	logger.Info("Position import complete",
		"importID", report.ImportID,
		"lines", report.LinesAttached,
		"danglingLines", report.DanglingLinesAttached,
		"skipped", len(report.Skipped))
	return &report, nil
}

// WorkflowStarter starts workflow executions; client.Client satisfies it.
type WorkflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// RequestHandler turns import requests into workflow executions. One execution per
// network runs at a time; a request for a network that is already importing joins
// the running execution.
type RequestHandler struct {
	starter   WorkflowStarter
	taskQueue string
}

// NewRequestHandler creates a RequestHandler starting workflows on taskQueue.
func NewRequestHandler(starter WorkflowStarter, taskQueue string) *RequestHandler {
	return &RequestHandler{starter: starter, taskQueue: taskQueue}
}

// WorkflowID returns the workflow id used for a network.
func WorkflowID(networkID string) string {
	return "position-import-" + networkID
}

// Handle starts the import workflow for req.
func (h *RequestHandler) Handle(ctx context.Context, req *domain.ImportRequest) error {
	run, err := h.starter.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        WorkflowID(req.NetworkID),
		TaskQueue: h.taskQueue,
	}, PositionImportWorkflow, PositionImportInput{NetworkID: req.NetworkID, RequestedBy: req.RequestedBy})
	if err != nil {
		return fmt.Errorf("start import workflow for %s: %w", req.NetworkID, err)
	}
	slog.InfoContext(ctx, "import workflow started",
		"network", req.NetworkID, "workflow_id", run.GetID(), "run_id", run.GetRunID())
	return nil
}
