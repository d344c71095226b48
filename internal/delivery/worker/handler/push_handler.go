package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"accounts/config"
	deliverycontext "accounts/internal/delivery/context"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/entity"
	"accounts/internal/domain/repository"
	"accounts/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func newRetryableError(err error) error {
	return &retryableError{err: err}
}

func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// tokenValidator checks the OIDC token attached to a push request.
type tokenValidator func(ctx context.Context, token, audience string) (*idtoken.Payload, error)

// PushHandler consumes account events delivered as Pub/Sub push messages
type PushHandler struct {
	verifyPushAuth bool
	validateToken  tokenValidator
	logger         *slog.Logger
	accountRepo    repository.AccountRepository
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config      *config.Config
	Logger      *slog.Logger
	AccountRepo repository.AccountRepository
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Google pushes carry a signed token outside local development
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop &&
		params.Config.Env.Env != constants.EnvLocal

	return &PushHandler{
		verifyPushAuth: verifyPushAuth,
		validateToken:  idtoken.Validate,
		logger:         params.Logger,
		accountRepo:    params.AccountRepo,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	if h.verifyPushAuth {
		if err := h.verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	var event service.AccountEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse account event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Priority: message attributes > event field > existing context
	requestID := h.extractRequestID(ctx, &pushMsg, &event)
	reqLogger := h.logger.With(slog.String("request_id", requestID))
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing account event",
		slog.String("event_id", event.EventID),
		slog.String("event_type", event.Type),
		slog.String("account_id", event.AccountID),
	)

	if err := h.processEvent(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process account event",
			slog.String("event_id", event.EventID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		// 503 asks Pub/Sub to redeliver, 200 drops a poison message
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Account event processed", slog.String("event_id", event.EventID))

	return c.NoContent(http.StatusOK)
}

func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.AccountEvent) string {
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	if event.RequestID != "" {
		return event.RequestID
	}

	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	return uuid.New().String()
}

// processEvent confirms the account still exists and records the event.
func (h *PushHandler) processEvent(ctx context.Context, event *service.AccountEvent) error {
	logger := deliverycontext.GetLoggerOrDefault(ctx, h.logger)

	accountID, err := entity.ParseAccountID(event.AccountID)
	if err != nil {
		return errors.Wrapf(err, "event %s carries an invalid account id", event.EventID)
	}

	account, err := h.accountRepo.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return errors.Wrapf(err, "event %s references an unknown account", event.EventID)
		}

		return newRetryableError(errors.Wrap(err, "failed to load account for event"))
	}

	switch event.Type {
	case constants.EventAccountRegistered:
		logger.Info("[Worker] Account registered",
			slog.String("account_id", account.ID.String()),
			slog.String("email", account.Email),
			slog.Time("occurred_at", event.OccurredAt),
		)
	case constants.EventAccountPasswordChanged:
		logger.Info("[Worker] Account password changed",
			slog.String("account_id", account.ID.String()),
			slog.String("email", account.Email),
			slog.Time("occurred_at", event.OccurredAt),
		)
	default:
		logger.Warn("[Worker] Ignoring unknown event type",
			slog.String("event_id", event.EventID),
			slog.String("event_type", event.Type),
		)

		return nil
	}

	if event.Email != "" && !strings.EqualFold(event.Email, account.Email) {
		logger.Warn("[Worker] Event email differs from stored account",
			slog.String("event_id", event.EventID),
			slog.String("account_id", account.ID.String()),
		)
	}

	return nil
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func (h *PushHandler) verifyPubSubToken(req *http.Request) error {
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// The audience is the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http"
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	payload, err := h.validateToken(req.Context(), token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
