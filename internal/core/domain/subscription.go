package domain

// SubscriptionState is the lifecycle of one heading stream.
type SubscriptionState int32

const (
	// SubscriptionIdle is the state before Start.
	SubscriptionIdle SubscriptionState = iota

	// SubscriptionActive means a provider is started and forwarding.
	SubscriptionActive

	// SubscriptionDisposed is terminal. No further emissions happen.
	SubscriptionDisposed
)

// String returns the string representation.
func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionIdle:
		return "idle"
	case SubscriptionActive:
		return "active"
	case SubscriptionDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}
