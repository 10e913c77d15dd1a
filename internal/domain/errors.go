package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a per-site or batch failure for reporting.
type ErrorKind string

const (
	KindMissingColumn    ErrorKind = "missing_column"
	KindEmptySeries      ErrorKind = "empty_series"
	KindDivisionByZero   ErrorKind = "division_by_zero"
	KindInvalidParameter ErrorKind = "invalid_parameter"
	KindInternal         ErrorKind = "internal"
)

var (
	// ErrNoSitesSucceeded is returned by a catalog build when every site failed.
	ErrNoSitesSucceeded = errors.New("no sites aggregated successfully")

	// ErrCatalogNotReady is returned by queries issued before a catalog is installed.
	ErrCatalogNotReady = errors.New("catalog not ready")
)

// MissingColumnError reports a required input column absent from a site's data.
type MissingColumnError struct {
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column %q", e.Column)
}

// EmptySeriesError reports a site with zero hourly samples.
type EmptySeriesError struct {
	SiteID string
}

func (e *EmptySeriesError) Error() string {
	if e.SiteID == "" {
		return "empty hourly series"
	}
	return fmt.Sprintf("site %s has an empty hourly series", e.SiteID)
}

// DivisionByZeroError reports a ratio whose denominator was zero.
type DivisionByZeroError struct {
	Op string
}

func (e *DivisionByZeroError) Error() string {
	return fmt.Sprintf("%s: division by zero", e.Op)
}

// InvalidParameterError reports an out-of-domain shared parameter.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// KindOf maps an error chain to its ErrorKind.
func KindOf(err error) ErrorKind {
	var (
		mc *MissingColumnError
		es *EmptySeriesError
		dz *DivisionByZeroError
		ip *InvalidParameterError
	)
	switch {
	case errors.As(err, &mc):
		return KindMissingColumn
	case errors.As(err, &es):
		return KindEmptySeries
	case errors.As(err, &dz):
		return KindDivisionByZero
	case errors.As(err, &ip):
		return KindInvalidParameter
	default:
		return KindInternal
	}
}

// SiteFailure records one site that could not be aggregated.
type SiteFailure struct {
	SiteID  string    `json:"site_id"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

// NewSiteFailure classifies err for the given site.
func NewSiteFailure(siteID string, err error) SiteFailure {
	return SiteFailure{
		SiteID:  siteID,
		Kind:    KindOf(err),
		Message: err.Error(),
		Err:     err,
	}
}

func (f SiteFailure) Error() string {
	return fmt.Sprintf("site %s: %s: %s", f.SiteID, f.Kind, f.Message)
}

func (f SiteFailure) Unwrap() error {
	return f.Err
}
