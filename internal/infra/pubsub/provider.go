package pubsub

import (
	"context"
	"log/slog"
	"net/url"

	"accounts/config"
	"accounts/internal/domain/constants"
	"accounts/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// noopPublisher drops events when no provider is configured.
type noopPublisher struct {
	logger *slog.Logger
}

func (p *noopPublisher) PublishAccountEvent(ctx context.Context, event *service.AccountEvent) error {
	p.logger.DebugContext(ctx, "[NoopPubSub] Dropping account event",
		slog.String("event_id", event.EventID),
		slog.String("event_type", event.Type),
		slog.String("account_id", event.AccountID),
	)

	return nil
}

func (p *noopPublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher builds the configured publisher and closes it on shutdown.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	publisher, err := newPublisher(params.Ctx, params.Config.PubSub, params.Logger)
	if err != nil {
		return nil, err
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			params.Logger.Info("Closing EventPublisher")

			return publisher.Close()
		},
	})

	return publisher, nil
}

func newPublisher(ctx context.Context, cfg *config.PubSubConfig, logger *slog.Logger) (service.EventPublisher, error) {
	if cfg == nil || cfg.Provider == "" {
		logger.Info("PubSub not configured, account events are dropped")

		return &noopPublisher{logger: logger}, nil
	}

	switch cfg.Provider {
	case constants.PubSubProviderLocal:
		if err := checkLocalEndpoint(cfg.LocalEndpoint); err != nil {
			return nil, err
		}
		logger.Info("Using local HTTP publisher for account events",
			slog.String("endpoint", cfg.LocalEndpoint),
		)

		return NewLocalHTTPPublisher(cfg.LocalEndpoint, logger), nil

	case constants.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required for google provider")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required for google provider")
		}

		return NewGooglePubSubPublisher(ctx, cfg.ProjectID, cfg.TopicID, logger)

	default:
		return nil, errors.Errorf("unknown pubsub provider: %s", cfg.Provider)
	}
}

// checkLocalEndpoint requires an absolute http(s) URL, normally the worker's /push.
func checkLocalEndpoint(endpoint string) error {
	if endpoint == "" {
		return errors.New("local endpoint is required for local provider")
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return errors.Wrap(err, "invalid local endpoint")
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("local endpoint must be an absolute http(s) URL: %s", endpoint)
	}

	return nil
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEventPublisher),
)
