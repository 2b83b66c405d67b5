package kafka

const (
	DefaultClientID = "num2int"
	DefaultInvalidationTopic = "num2int.catalog.invalidations"
	// InvalidationComponent names the per-worker consumer group of the invalidation listener.
	InvalidationComponent = "num2int-invalidation"
)
