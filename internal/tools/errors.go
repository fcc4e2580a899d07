package tools

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/tyson-swetnam/raws-mcp/internal/domain"
)

// Stable machine-readable error codes returned across the tool boundary.
const (
	CodeInvalidStationID = "INVALID_STATION_ID"
	CodeStationNotFound  = "STATION_NOT_FOUND"
	CodeInvalidLatitude  = "INVALID_LATITUDE"
	CodeInvalidLongitude = "INVALID_LONGITUDE"
	CodeInvalidRadius    = "INVALID_RADIUS"
	CodeInvalidStartTime = "INVALID_START_TIME"
	CodeInvalidEndTime   = "INVALID_END_TIME"
	CodeInvalidDateRange = "INVALID_DATE_RANGE"
	CodeNoData           = "NO_DATA"
	CodeInvalidTemp      = "INVALID_TEMPERATURE"
	CodeInvalidHumidity  = "INVALID_HUMIDITY"
	CodeInvalidWindSpeed = "INVALID_WIND_SPEED"
	CodeInvalidFuelMoist = "INVALID_FUEL_MOISTURE"
	CodeInvalidElevation = "INVALID_ELEVATION"
	CodeMissingField     = "MISSING_REQUIRED_FIELD"
	CodeFeatureDisabled  = "FEATURE_DISABLED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeUpstreamFailure  = "UPSTREAM_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ToolError is the structured failure every tool returns on any error path.
// Code is stable for programmatic handling, Message is human-readable, and
// Details carries the offending input so callers can self-diagnose.
type ToolError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Status  int            `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// invalidInput builds the 4xx-equivalent error used for all pre-upstream
// input validation failures.
func invalidInput(code, message string, details map[string]any) *ToolError {
	return &ToolError{
		Code:    code,
		Message: message,
		Status:  http.StatusBadRequest,
		Details: details,
	}
}

func featureDisabled(feature string) *ToolError {
	return &ToolError{
		Code:    CodeFeatureDisabled,
		Message: fmt.Sprintf("the %s feature is disabled on this server", feature),
		Status:  http.StatusForbidden,
		Details: map[string]any{"feature": feature},
	}
}

// fromUpstream maps a coordinator/provider failure onto the tool error
// contract. The original error text is preserved in the details so operators
// can trace which provider failed last.
func fromUpstream(err error, details map[string]any) *ToolError {
	if details == nil {
		details = map[string]any{}
	}
	details["cause"] = err.Error()

	switch {
	case errors.Is(err, domain.ErrStationNotFound):
		return &ToolError{
			Code:    CodeStationNotFound,
			Message: "no provider recognizes this station",
			Status:  http.StatusNotFound,
			Details: details,
		}
	case errors.Is(err, domain.ErrNoData):
		return &ToolError{
			Code:    CodeNoData,
			Message: "the station returned no data for this request",
			Status:  http.StatusNotFound,
			Details: details,
		}
	case errors.Is(err, domain.ErrRateLimited):
		return &ToolError{
			Code:    CodeRateLimited,
			Message: "upstream providers are rate limiting requests, try again later",
			Status:  http.StatusTooManyRequests,
			Details: details,
		}
	case errors.Is(err, domain.ErrBadRequest):
		return &ToolError{
			Code:    CodeUpstreamFailure,
			Message: "an upstream provider rejected the request",
			Status:  http.StatusBadGateway,
			Details: details,
		}
	default:
		var missing *domain.MissingFieldError
		if errors.As(err, &missing) {
			return &ToolError{
				Code:    CodeMissingField,
				Message: fmt.Sprintf("station data is missing the required %s field", missing.Field),
				Status:  http.StatusUnprocessableEntity,
				Details: details,
			}
		}
		return &ToolError{
			Code:    CodeUpstreamFailure,
			Message: "all upstream providers failed",
			Status:  http.StatusBadGateway,
			Details: details,
		}
	}
}
