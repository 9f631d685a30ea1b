// Package validation provides pre-import validation checks for bundles.
package validation

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/dimkharitonov/quicksightsync/internal/bundle"
	"github.com/dimkharitonov/quicksightsync/internal/model"
)

// Error represents a validation failure with context.
type Error struct {
	// Field is the name of the field or component that failed validation
	Field string
	// Message describes the validation failure
	Message string
	// Err is the underlying error (if any)
	Err error
}

// Error returns a formatted validation error message.
func (ve *Error) Error() string {
	if ve.Err != nil {
		return fmt.Sprintf("validation failed for %q: %s: %v", ve.Field, ve.Message, ve.Err)
	}
	return fmt.Sprintf("validation failed for %q: %s", ve.Field, ve.Message)
}

// Unwrap returns the underlying error for errors.Is/As.
func (ve *Error) Unwrap() error {
	return ve.Err
}

// Errors collects multiple validation errors.
type Errors []error

// Error returns a formatted error message for all validation failures.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(ve), errors.Join(ve...))
}

// Result contains the outcome of a validation check.
type Result struct {
	// Valid indicates whether all validations passed
	Valid bool
	// Warnings contains non-fatal validation issues
	Warnings []string
	// Errors contains validation failures that prevent the operation
	Errors []error
}

// AddError adds an error to the validation result.
func (r *Result) AddError(err error) {
	r.Valid = false
	r.Errors = append(r.Errors, err)
}

// AddWarning adds a warning to the validation result.
func (r *Result) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns the combined validation error message.
func (r *Result) Error() error {
	if !r.HasErrors() {
		return nil
	}
	if len(r.Errors) == 1 {
		return r.Errors[0]
	}
	return Errors(r.Errors)
}

// Summary returns a human-readable summary of the validation result.
func (r *Result) Summary() string {
	if r.Valid && len(r.Warnings) == 0 {
		return "All validations passed"
	}
	var msg string
	if r.Valid {
		msg = "Validation passed with warnings"
	} else {
		msg = "Validation failed"
	}
	if len(r.Warnings) > 0 {
		msg += fmt.Sprintf(" (%d warning(s))", len(r.Warnings))
	}
	return msg
}

// QuickSight resource IDs may contain word characters, hyphens and dots.
var idPattern = regexp.MustCompile(`^[\w\-.]+$`)

// ValidateBundle checks that a bundle is internally consistent before any
// import call is made. It verifies the analysis is present, every asset has
// a syntactically valid ID, IDs are unique (including against the dashboard
// ID derived from the analysis), every physical table declares input
// columns, and every cross-reference (dataset to data source, dataset to
// RLS dataset, analysis to dataset) points at an asset carried in the
// bundle.
func ValidateBundle(b *bundle.Bundle) *Result {
	result := &Result{Valid: true}

	if b == nil {
		result.AddError(&Error{Field: "bundle", Message: "bundle is nil"})
		return result
	}

	if b.Analysis.AnalysisID == "" {
		result.AddError(&Error{
			Field:   "analysis.AnalysisId",
			Message: "bundle has no analysis",
		})
	} else if b.Analysis.Definition == nil {
		result.AddError(&Error{
			Field:   "analysis.Definition",
			Message: "analysis has no definition",
		})
	}

	if b.Manifest.SourceAccount == "" {
		result.AddWarning("manifest has no source account")
	}

	validateIDs(b, result)
	validateSchemas(b, result)
	validateReferences(b, result)

	if len(b.Analysis.Permissions) == 0 {
		result.AddWarning("analysis has no permissions; imported analysis may be invisible")
	}

	return result
}

// validateIDs checks ID syntax and uniqueness across the bundle.
func validateIDs(b *bundle.Bundle, result *Result) {
	seen := make(map[string]model.AssetType)

	check := func(id string, typ model.AssetType) {
		field := fmt.Sprintf("%s %q", typ, id)
		if id == "" {
			result.AddError(&Error{
				Field:   string(typ),
				Message: "asset ID cannot be empty",
			})
			return
		}
		if !idPattern.MatchString(id) {
			result.AddError(&Error{
				Field:   field,
				Message: "asset ID contains invalid characters",
			})
		}
		if prev, dup := seen[id]; dup {
			result.AddError(&Error{
				Field:   field,
				Message: fmt.Sprintf("duplicate asset ID (already used by %s)", prev),
			})
			return
		}
		seen[id] = typ
	}

	for _, ds := range b.DataSources {
		check(ds.DataSourceID, model.TypeDataSource)
	}
	for _, th := range b.Themes {
		check(th.ThemeID, model.TypeTheme)
	}
	for _, d := range b.SecurityDatasets {
		check(d.DataSetID, model.TypeDataset)
	}
	for _, d := range b.AnalysisDatasets {
		check(d.DataSetID, model.TypeDataset)
	}
	if b.Analysis.AnalysisID != "" {
		check(b.Analysis.AnalysisID, model.TypeAnalysis)

		// The dashboard ID is derived from the analysis ID; any bundle
		// asset holding that ID would collide with it after suffixing.
		if prev, dup := seen[b.DashboardID()]; dup {
			result.AddError(&Error{
				Field:   fmt.Sprintf("%s %q", prev, b.DashboardID()),
				Message: "asset ID collides with the dashboard ID derived from the analysis",
			})
		}
	}
}

// validateSchemas checks that every physical table declares input columns.
// The Create API rejects column-less tables; catching it here names the
// dataset instead of failing mid-import.
func validateSchemas(b *bundle.Bundle, result *Result) {
	for _, d := range b.Datasets() {
		for key, table := range d.PhysicalTableMap {
			if table.InputColumnCount() == 0 {
				result.AddError(&Error{
					Field:   fmt.Sprintf("dataset %q", d.DataSetID),
					Message: fmt.Sprintf("physical table %q declares no input columns", key),
				})
			}
		}
	}
}

// validateReferences checks that every cross-reference resolves within the
// bundle. Theme references resolve against carried themes; a reference to
// an AWS starter theme is allowed through since it exists in every account.
func validateReferences(b *bundle.Bundle, result *Result) {
	sources := make(map[string]bool, len(b.DataSources))
	for _, ds := range b.DataSources {
		sources[ds.DataSourceID] = true
	}
	datasets := make(map[string]bool)
	for _, d := range b.Datasets() {
		datasets[d.DataSetID] = true
	}
	themes := make(map[string]bool, len(b.Themes))
	for _, th := range b.Themes {
		themes[th.ThemeID] = true
	}

	for _, d := range b.Datasets() {
		for _, srcID := range d.DataSourceIDs() {
			if !sources[srcID] {
				result.AddError(&Error{
					Field:   fmt.Sprintf("dataset %q", d.DataSetID),
					Message: fmt.Sprintf("references data source %q which is not in the bundle", srcID),
				})
			}
		}
		for _, dsID := range d.LogicalDatasetIDs() {
			if !datasets[dsID] {
				result.AddError(&Error{
					Field:   fmt.Sprintf("dataset %q", d.DataSetID),
					Message: fmt.Sprintf("joins dataset %q which is not in the bundle", dsID),
				})
			}
		}
	}

	for _, d := range b.AnalysisDatasets {
		if rls := d.RLSDatasetID(); rls != "" && !datasets[rls] {
			result.AddError(&Error{
				Field:   fmt.Sprintf("dataset %q", d.DataSetID),
				Message: fmt.Sprintf("row-level security references dataset %q which is not in the bundle", rls),
			})
		}
	}

	for _, dsID := range b.Analysis.DatasetIDs() {
		if !datasets[dsID] {
			result.AddError(&Error{
				Field:   fmt.Sprintf("analysis %q", b.Analysis.AnalysisID),
				Message: fmt.Sprintf("declares dataset %q which is not in the bundle", dsID),
			})
		}
	}

	if arn := b.Analysis.ThemeARN; arn != "" {
		themeID := model.IDFromARN(arn)
		if model.AccountFromARN(arn) == "aws" {
			// Starter theme, present in every account.
			return
		}
		if !themes[themeID] {
			result.AddError(&Error{
				Field:   fmt.Sprintf("analysis %q", b.Analysis.AnalysisID),
				Message: fmt.Sprintf("references theme %q which is not in the bundle", themeID),
			})
		}
	}
}
