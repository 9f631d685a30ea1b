package importer

import (
	"fmt"
	"strings"

	"github.com/dimkharitonov/quicksightsync/internal/model"
)

// Action represents the action taken on an asset during import.
type Action string

const (
	// ActionCreated indicates a new asset was created in the target.
	ActionCreated Action = "created"

	// ActionUpdated indicates an existing asset was updated in place.
	ActionUpdated Action = "updated"

	// ActionSkipped indicates an existing asset was left untouched.
	ActionSkipped Action = "skipped"

	// ActionFailed indicates an error occurred processing the asset.
	ActionFailed Action = "failed"

	// ActionPlanned indicates a dry run determined what would happen.
	ActionPlanned Action = "planned"
)

// AssetResult represents the outcome of importing a single asset.
type AssetResult struct {
	// Ref is the asset that was processed.
	Ref model.AssetRef

	// Action is the action that was taken.
	Action Action

	// TargetID is the asset's identifier in the target account.
	TargetID string

	// TargetARN is the asset's ARN in the target account (if known).
	TargetARN string

	// Message provides additional context about the action.
	Message string

	// Error contains any error that occurred during processing.
	Error error
}

// Success returns true if the asset was successfully processed.
func (ar *AssetResult) Success() bool {
	return ar.Action != ActionFailed
}

// Result contains the complete outcome of an import operation.
type Result struct {
	// TargetAccount is the account assets were imported into.
	TargetAccount string

	// TargetRegion is the region assets were imported into.
	TargetRegion string

	// Strategy is the conflict strategy used.
	Strategy Strategy

	// Assets contains the result for each processed asset, in import order.
	Assets []AssetResult

	// DryRun indicates if this was a dry run (no changes made).
	DryRun bool
}

// Created returns assets that were created.
func (r *Result) Created() []AssetResult {
	return r.filterByAction(ActionCreated)
}

// Updated returns assets that were updated.
func (r *Result) Updated() []AssetResult {
	return r.filterByAction(ActionUpdated)
}

// Skipped returns assets that were skipped.
func (r *Result) Skipped() []AssetResult {
	return r.filterByAction(ActionSkipped)
}

// Planned returns assets evaluated during a dry run.
func (r *Result) Planned() []AssetResult {
	return r.filterByAction(ActionPlanned)
}

// Failed returns assets that failed to import.
func (r *Result) Failed() []AssetResult {
	return r.filterByAction(ActionFailed)
}

// filterByAction returns assets with the given action.
func (r *Result) filterByAction(action Action) []AssetResult {
	var filtered []AssetResult
	for _, ar := range r.Assets {
		if ar.Action == action {
			filtered = append(filtered, ar)
		}
	}
	return filtered
}

// Success returns true if all assets were successfully processed.
func (r *Result) Success() bool {
	return len(r.Failed()) == 0
}

// TotalProcessed returns the total number of assets processed.
func (r *Result) TotalProcessed() int {
	return len(r.Assets)
}

// Summary returns a human-readable summary of the import result.
func (r *Result) Summary() string {
	var sb strings.Builder

	if r.DryRun {
		sb.WriteString("Dry run - no changes made\n")
	}

	sb.WriteString(fmt.Sprintf("Imported into account %s (%s) using %s strategy\n",
		r.TargetAccount, r.TargetRegion, r.Strategy))

	if r.DryRun {
		sb.WriteString(fmt.Sprintf("  Planned:   %d\n", len(r.Planned())))
	} else {
		sb.WriteString(fmt.Sprintf("  Created:   %d\n", len(r.Created())))
		sb.WriteString(fmt.Sprintf("  Updated:   %d\n", len(r.Updated())))
	}
	sb.WriteString(fmt.Sprintf("  Skipped:   %d\n", len(r.Skipped())))
	sb.WriteString(fmt.Sprintf("  Failed:    %d\n", len(r.Failed())))

	if !r.Success() {
		sb.WriteString("\nErrors:\n")
		for _, f := range r.Failed() {
			sb.WriteString(fmt.Sprintf("  - %s %s: %v\n", f.Ref.Type, f.Ref.ID, f.Error))
		}
	}

	return sb.String()
}
