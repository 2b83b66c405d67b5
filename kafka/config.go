package kafka

// Auth holds SASL/PLAIN credentials. Both fields must be set to enable authentication.
type Auth struct {
	Username string `mapstructure:"username" json:"username"`
	Password string `mapstructure:"password" json:"-"`
}

type Config struct {
	// A list of Kafka brokers in the form of "host:port"
	Brokers           []string `mapstructure:"brokers" json:"brokers"`
	InvalidationTopic string   `mapstructure:"invalidation_topic" json:"invalidation_topic"`
	// ResetToLatest starts a new consumer group at the end of its topics. Catalog
	// invalidations older than the process are of no interest to it.
	ResetToLatest  bool `mapstructure:"reset_to_latest" json:"reset_to_latest"`
	Authentication Auth `mapstructure:"authentication" json:"authentication"`
	// ClientID is sent to the brokers with every request.
	ClientID string `mapstructure:"client_id" json:"client_id"`
}

func DefaultConfig() Config {
	return Config{
		InvalidationTopic: DefaultInvalidationTopic,
		ResetToLatest:     true,
		ClientID:          DefaultClientID,
	}
}
