package metrics

import "time"

// Config controls the metrics HTTP endpoint.
type Config struct {
	Enabled           bool          `mapstructure:"enabled" json:"enabled" yaml:"enabled"`
	Namespace         string        `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	Path              string        `mapstructure:"path" json:"path" yaml:"path"`
	Host              string        `mapstructure:"host" json:"host" yaml:"host"`
	Port              int           `mapstructure:"port" json:"port" yaml:"port"`
	HttpTimeout       time.Duration `mapstructure:"http_timeout" json:"http_timeout" yaml:"http_timeout"`
	HttpHeaderTimeout time.Duration `mapstructure:"http_header_timeout" json:"http_header_timeout" yaml:"http_header_timeout"`
}

func DefaultConfig() Config {
	return Config{
		Enabled:           false,
		Namespace:         "num2int",
		Path:              defaultPath,
		Host:              "",
		Port:              defaultPort,
		HttpTimeout:       time.Minute,
		HttpHeaderTimeout: time.Minute,
	}
}
