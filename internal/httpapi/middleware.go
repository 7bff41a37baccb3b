package httpapi

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/spigell/jobfinder/internal/logger"
)

type errorResponse struct {
	Error     string    `json:"error"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func newRequestID() string {
	return uuid.NewString()
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

func fail(c echo.Context, status int, kind, message string) error {
	return c.JSON(status, errorResponse{
		Error:     kind,
		Message:   message,
		RequestID: requestID(c),
		Timestamp: time.Now().UTC(),
	})
}

type structValidator struct {
	validate *validator.Validate
}

func newValidator() *structValidator {
	return &structValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *structValidator) Validate(i any) error {
	return v.validate.Struct(i)
}

// validationMessage flattens validator errors into one readable line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	return fmt.Sprintf("field %q failed on the %q rule", fe.Field(), fe.Tag())
}

func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:   true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			l := logger.WithRequestID(log, v.RequestID)
			if v.Error != nil {
				l.Warn("http request failed", append(fields, zap.Error(v.Error))...)
				return nil
			}
			l.Info("http request", fields...)
			return nil
		},
	})
}

// rateLimiter allows perSecond requests per client IP with a burst of the
// same size, rounded up.
func rateLimiter(perSecond float64) echo.MiddlewareFunc {
	burst := int(math.Ceil(perSecond))
	if burst < 1 {
		burst = 1
	}

	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(perSecond),
		Burst:     burst,
		ExpiresIn: 3 * time.Minute,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return fail(c, http.StatusForbidden, "client_unidentified", err.Error())
		},
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			return fail(c, http.StatusTooManyRequests, "rate_limited", "Too many requests")
		},
	})
}

func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		message := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			message = fmt.Sprint(he.Message)
		} else {
			logger.WithRequestID(log, requestID(c)).Error("unhandled http error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = fail(c, status, http.StatusText(status), message)
		}
		if err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}
