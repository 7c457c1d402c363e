package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"unicode/utf8"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/quand/internal/errors"
	"github.com/hrygo/quand/plugin/ai/temporal"
	"github.com/hrygo/quand/server/internal/observability"
)

// maxInputRunes bounds the text accepted by the parse endpoint.
const maxInputRunes = 2000

// ParseTemporalRequest is the body of POST /api/v1/temporal/parse.
type ParseTemporalRequest struct {
	Input       string `json:"input"`
	Locale      string `json:"locale"`
	Validate    bool   `json:"validate"`
	AutoCorrect bool   `json:"autoCorrect"`
}

// TemporalResponse carries an interpretation and, on request, its validation.
type TemporalResponse struct {
	Result     *temporal.ParsedTemporalInput `json:"result,omitempty"`
	Validation *temporal.ValidationResult    `json:"validation,omitempty"`
}

// LocalesResponse lists the configured locales.
type LocalesResponse struct {
	Locales []string `json:"locales"`
	Default string   `json:"default"`
}

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseTemporal interprets a free-text scheduling request.
// POST /api/v1/temporal/parse
func (s *APIV1Service) ParseTemporal(c echo.Context) error {
	var req ParseTemporalRequest
	if err := c.Bind(&req); err != nil {
		return toHTTPError(errors.Wrap(err, errors.ErrCodeInvalidArgument, "malformed request body"))
	}
	if n := utf8.RuneCountInString(req.Input); n > maxInputRunes {
		return toHTTPError(errors.InvalidArgument("input too long").
			WithContext("runes", n).
			WithContext("max", maxInputRunes))
	}
	if req.Locale == "" {
		req.Locale = s.Profile.DefaultLocale
	}

	ctx := c.Request().Context()
	reqCtx := requestContext(c, s.Logger, "ParseTemporal")
	reqCtx.Locale = req.Locale

	result, err := s.TemporalService.Parse(ctx, req.Input, req.Locale)
	if err != nil {
		reqCtx.Warn("parse rejected", slog.String(observability.LogFieldErrorCode, string(errors.GetCodeFromError(err, ""))))
		return toHTTPError(err)
	}
	if req.AutoCorrect {
		result = s.Validator.AutoCorrect(result)
	}

	resp := TemporalResponse{Result: result}
	if req.Validate {
		v := s.validate(c, result)
		resp.Validation = &v
	}

	reqCtx.Info("temporal input parsed",
		slog.Int(observability.LogFieldInputLen, len(req.Input)),
		slog.String("type", string(result.Type)),
		slog.Int("allowed", len(result.AllowedDates)),
	)
	return c.JSON(http.StatusOK, resp)
}

// ValidateTemporal checks a previously returned interpretation. With
// ?autoCorrect=true the corrected interpretation is validated and returned.
// POST /api/v1/temporal/validate
func (s *APIV1Service) ValidateTemporal(c echo.Context) error {
	autoCorrect := false
	if raw := c.QueryParam("autoCorrect"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return toHTTPError(errors.InvalidArgument("autoCorrect must be a boolean").WithContext("value", raw))
		}
		autoCorrect = v
	}

	var input temporal.ParsedTemporalInput
	if err := c.Bind(&input); err != nil {
		return toHTTPError(errors.Wrap(err, errors.ErrCodeInvalidArgument, "malformed interpretation"))
	}

	resp := TemporalResponse{}
	target := &input
	if autoCorrect {
		target = s.Validator.AutoCorrect(target)
		resp.Result = target
	}
	v := s.validate(c, target)
	resp.Validation = &v

	requestContext(c, s.Logger, "ValidateTemporal").Debug("interpretation validated",
		slog.Bool("valid", v.IsValid),
		slog.Int("errors", len(v.Errors)),
	)
	return c.JSON(http.StatusOK, resp)
}

// ClearTemporalCache drops every memoized interpretation.
// DELETE /api/v1/temporal/cache
func (s *APIV1Service) ClearTemporalCache(c echo.Context) error {
	s.TemporalService.ClearCache()
	requestContext(c, s.Logger, "ClearTemporalCache").Info("result cache cleared")
	return c.NoContent(http.StatusNoContent)
}

// ListLocales returns the configured locale keys.
// GET /api/v1/temporal/locales
func (s *APIV1Service) ListLocales(c echo.Context) error {
	return c.JSON(http.StatusOK, LocalesResponse{
		Locales: s.TemporalService.Locales(),
		Default: s.Profile.DefaultLocale,
	})
}

func (s *APIV1Service) validate(c echo.Context, p *temporal.ParsedTemporalInput) temporal.ValidationResult {
	v := s.Validator.Validate(p)
	s.MetricsService.RecordValidation(c.Request().Context(), v.IsValid, len(v.Errors), len(v.Warnings))
	return v
}

// requestContext returns the request's logging context, creating one when
// the request logger middleware is not installed.
func requestContext(c echo.Context, logger *slog.Logger, operation string) *observability.RequestContext {
	if reqCtx, ok := observability.FromContext(c.Request().Context()); ok {
		reqCtx.Operation = operation
		return reqCtx
	}
	return observability.NewRequestContext(logger, operation)
}

// toHTTPError maps coded errors to HTTP statuses.
func toHTTPError(err error) *echo.HTTPError {
	code := errors.GetCodeFromError(err, "")
	status := http.StatusInternalServerError
	switch code {
	case errors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case errors.ErrCodeLocaleNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeRateLimitExceeded:
		status = http.StatusTooManyRequests
	case errors.ErrCodeGrammarUnavailable, errors.ErrCodePrecondition:
		status = http.StatusServiceUnavailable
	}

	resp := ErrorResponse{Code: string(code), Message: err.Error()}
	if coded, ok := errors.AsError(err); ok {
		resp.Message = coded.Message
	}
	if resp.Code == "" {
		resp.Code = "INTERNAL"
		resp.Message = "internal error"
	}
	return echo.NewHTTPError(status, resp).SetInternal(err)
}
