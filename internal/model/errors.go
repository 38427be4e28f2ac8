package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ParseError represents unparseable document markup. Fatal to the
// affected document only.
type ParseError struct {
	File    string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error [%s]: %s (%v)", e.File, e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error [%s]: %s", e.File, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a new parse error.
func NewParseError(file, message string, cause error) *ParseError {
	return &ParseError{File: file, Message: message, Cause: cause}
}

// StructuralError represents a well-formed document missing a mandatory
// substructure. Fatal to the affected document only.
type StructuralError struct {
	File    string
	Element string
	Message string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("structural error [%s] %s: %s", e.File, e.Element, e.Message)
}

// NewStructuralError creates a new structural error.
func NewStructuralError(file, element, message string) *StructuralError {
	return &StructuralError{File: file, Element: element, Message: message}
}

// RateResolutionError means no bracket contains the revenue figure, or
// the figure is zero. Fatal to the period's credit computation; the rate
// must never silently default.
type RateResolutionError struct {
	Revenue decimal.Decimal
	Message string
}

func (e *RateResolutionError) Error() string {
	return fmt.Sprintf("rate resolution failed for revenue %s: %s", e.Revenue.String(), e.Message)
}

// NewRateResolutionError creates a new rate resolution error.
func NewRateResolutionError(revenue decimal.Decimal, message string) *RateResolutionError {
	return &RateResolutionError{Revenue: revenue, Message: message}
}

// ConsistencyError records aggregated totals diverging from declared
// totals beyond tolerance. Surfaced on the report, never aborts the run.
type ConsistencyError struct {
	Field     string
	Declared  decimal.Decimal
	Computed  decimal.Decimal
	Tolerance decimal.Decimal
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("consistency check failed on %s: declared %s, computed %s (tolerance %s)",
		e.Field, e.Declared.String(), e.Computed.String(), e.Tolerance.String())
}

// NewConsistencyError creates a new consistency error.
func NewConsistencyError(field string, declared, computed, tolerance decimal.Decimal) *ConsistencyError {
	return &ConsistencyError{Field: field, Declared: declared, Computed: computed, Tolerance: tolerance}
}

// ReferenceDataError means a reference table failed to load. Fatal to
// the run when the table is mandatory.
type ReferenceDataError struct {
	Table string
	Path  string
	Cause error
}

func (e *ReferenceDataError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("reference data %s unavailable [%s]: %v", e.Table, e.Path, e.Cause)
	}
	return fmt.Sprintf("reference data %s unavailable [%s]", e.Table, e.Path)
}

func (e *ReferenceDataError) Unwrap() error {
	return e.Cause
}

// NewReferenceDataError creates a new reference data error.
func NewReferenceDataError(table, path string, cause error) *ReferenceDataError {
	return &ReferenceDataError{Table: table, Path: path, Cause: cause}
}
