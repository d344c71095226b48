package constants

// Pub/Sub providers accepted by pubsub.provider.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Account event types.
const (
	EventAccountRegistered      = "account.registered"
	EventAccountPasswordChanged = "account.password_changed"
)

// Deployment environments accepted by env.env.
const (
	EnvLocal   = "local"
	EnvDevelop = "develop"
)
