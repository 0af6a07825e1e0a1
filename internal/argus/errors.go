package argus

import (
	"strings"

	"github.com/tinyzimmer/go-gst/gst"
)

// ErrorCategory represents the classification of GStreamer errors for telemetry
type ErrorCategory int

const (
	// ErrCategorySensor indicates Argus daemon / sensor acquisition failures
	ErrCategorySensor ErrorCategory = iota
	// ErrCategoryNegotiation indicates caps/format negotiation failures
	ErrCategoryNegotiation
	// ErrCategoryResource indicates device busy / permission failures
	ErrCategoryResource
	// ErrCategoryUnknown indicates unclassified errors
	ErrCategoryUnknown
)

// String returns a human-readable string representation of the error category
func (e ErrorCategory) String() string {
	switch e {
	case ErrCategorySensor:
		return "sensor"
	case ErrCategoryNegotiation:
		return "negotiation"
	case ErrCategoryResource:
		return "resource"
	case ErrCategoryUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// ClassifyPipelineError analyzes a GStreamer error and categorizes it for telemetry
//
// This distinguishes between:
// - Sensor issues (nvargus daemon down, sensor not detected, capture timeout)
// - Negotiation issues (caps mismatch, missing plugin)
// - Resource issues (device busy, permissions)
// - Unknown issues (need investigation)
//
// Classification is based on error message heuristics. go-gst's GError does
// not expose Domain(), so we rely on string matching.
func ClassifyPipelineError(gerr *gst.GError) ErrorCategory {
	if gerr == nil {
		return ErrCategoryUnknown
	}
	return classifyMessage(gerr.Error(), gerr.DebugString())
}

func classifyMessage(errMsg, debugStr string) ErrorCategory {
	combined := strings.ToLower(errMsg) + " " + strings.ToLower(debugStr)

	// Priority 1: resource errors (most specific)
	if containsAny(combined,
		"busy",
		"permission",
		"denied",
		"could not open",
		"resource",
	) {
		return ErrCategoryResource
	}

	// Priority 2: sensor/Argus errors (most common on Jetson)
	if containsAny(combined,
		"argus",
		"nvargus",
		"sensor",
		"no cameras available",
		"camera",
		"timeout",
		"csi",
	) {
		return ErrCategorySensor
	}

	// Priority 3: caps/format negotiation errors
	if containsAny(combined,
		"not negotiated",
		"not-negotiated",
		"negotiation",
		"caps",
		"format",
		"nvvidconv",
		"missing plugin",
		"no such element",
		"link",
	) {
		return ErrCategoryNegotiation
	}

	return ErrCategoryUnknown
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
