package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	DefaultHTTPTimeout = 10 * time.Second
	ShutdownTimeout    = 5 * time.Second
	HealthCheckTimeout = 5 * time.Second
)

const (
	ServiceName       = "console-service"
	DefaultEventTopic = "console.entity_changes"
	DefaultRelayGroup = "console-notification-relay"
)

const (
	DefaultLimit = 500
	MaxLimit     = 5000
)

const (
	StripeSyncLockKey     = "console:lock:stripe-sync"
	DefaultStripeBaseURL  = "https://api.stripe.com"
	DefaultStripePageSize = 100
	DefaultSyncInterval   = 15 * time.Minute
)

const (
	DefaultPresignTTL = 15 * time.Minute
)
