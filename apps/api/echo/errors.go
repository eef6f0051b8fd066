package echoapi

import (
	"fmt"
	"net/http"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/course"
	"github.com/trezcool/darasa/core/tenant"
	"github.com/trezcool/darasa/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// closed set of Postgres error codes surfaced to callers
var pqErrorCodes = map[pq.ErrorCode]struct {
	status  int
	message string
}{
	"23505": {http.StatusConflict, "a record with these values already exists"},   // unique_violation
	"23503": {http.StatusBadRequest, "a referenced record does not exist"},        // foreign_key_violation
	"23502": {http.StatusBadRequest, "a required value is missing"},               // not_null_violation
	"23514": {http.StatusBadRequest, "a value is outside of its allowed range"},   // check_violation
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that maps the
// internal error taxonomy to the stable external one. This is the only place
// deciding what the caller is allowed to see; the original error and its
// stack are exposed only in Debug mode.
// signalShutdown is called in order to gracefully shut down the Server
// whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message string

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = fmt.Sprintf("%v", origErr.Message)
		case validator.ValidationErrors:
			fldErrs := make([]string, 0, len(origErr))
			for _, vErr := range origErr {
				fldErrs = append(fldErrs, vErr.Field()+": "+vErr.Translate(translator))
			}
			code = http.StatusBadRequest
			message = strings.Join(fldErrs, "; ")
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make([]string, 0, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs = append(fldErrs, fErr.Field+": "+fErr.Error)
				}
				message = strings.Join(fldErrs, "; ")
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *user.ForbiddenError:
			code = http.StatusForbidden
			message = origErr.Error()
		case *tenant.PoolCreationError:
			code = http.StatusServiceUnavailable
			message = "tenant database unavailable"
			logger.Warn(message, origErr)
		case *pq.Error:
			known, ok := pqErrorCodes[origErr.Code]
			if !ok {
				code, message = serverError(err, ctx, logger, signalShutdown)
				break
			}
			code = known.status
			message = known.message
		default:
			switch origErr {
			case tenant.ErrIdentificationRequired:
				code = http.StatusBadRequest
				message = origErr.Error()
			case tenant.ErrNotFound:
				code = http.StatusNotFound
				message = "unknown tenant"
			case auth.ErrMissingCredential, auth.ErrTokenInvalid, auth.ErrTokenExpired:
				code = http.StatusUnauthorized
				message = origErr.Error()
			case user.ErrNotFound:
				code = http.StatusUnauthorized
				message = origErr.Error()
			case course.ErrNotFound:
				code = http.StatusNotFound
				message = origErr.Error()
			default: // any other error is a server error
				code, message = serverError(err, ctx, logger, signalShutdown)
			}
		}

		payload := echo.Map{"message": message}
		if ctx.Echo().Debug {
			payload["stack"] = fmt.Sprintf("%+v", err)
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, payload)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func serverError(err error, ctx echo.Context, logger core.Logger, signalShutdown func()) (int, string) {
	msg := http.StatusText(http.StatusInternalServerError)

	args := []interface{}{errors.Wrap(err, msg)}
	if p, pErr := getContextPrincipal(ctx); pErr == nil {
		args = append(args, p)
	}
	logger.Error(msg, args...)

	// shutting down...
	if core.IsShutdown(err) {
		signalShutdown()
	}
	return http.StatusInternalServerError, msg
}
