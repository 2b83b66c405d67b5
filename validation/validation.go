// Package validation checks configuration values before any connection is attempted.
package validation

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/dora-network/num2int/errors"
)

// ValidateHostPorts checks that every address is a "host:port" pair.
func ValidateHostPorts(field string, addrs []string) error {
	for _, addr := range addrs {
		host, port, err := net.SplitHostPort(addr)
		if err != nil {
			return errors.Wrap(errors.InvalidInputError, err, field)
		}
		if host == "" {
			return errors.Newf(errors.InvalidInputError, "%s: address %q has no host", field, addr)
		}
		if err := ValidatePort(field, port); err != nil {
			return err
		}
	}
	return nil
}

func ValidatePort(field, port string) error {
	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return errors.Newf(errors.InvalidInputError, "%s: port %q must be between 1 and 65535", field, port)
	}
	return nil
}

// ValidateListenPort checks a port to listen on. Zero is allowed and lets the system
// pick a free port.
func ValidateListenPort(field string, port int) error {
	if port < 0 || port > 65535 {
		return errors.Newf(errors.InvalidInputError, "%s: port %d must be between 0 and 65535", field, port)
	}
	return nil
}

func ValidatePositiveDuration(field string, d time.Duration) error {
	if d <= 0 {
		return errors.Newf(errors.InvalidInputError, "%s must be positive, got %s", field, d)
	}
	return nil
}

// ValidateKeyPrefix rejects prefixes that would nest into other keys: empty ones, ones
// containing the ":" separator, and ones with whitespace.
func ValidateKeyPrefix(field, prefix string) error {
	if prefix == "" {
		return errors.Newf(errors.InvalidInputError, "%s must not be empty", field)
	}
	if strings.ContainsAny(prefix, ": \t\n") {
		return errors.Newf(errors.InvalidInputError, "%s %q must not contain ':' or whitespace", field, prefix)
	}
	return nil
}

// ValidateTopic checks a Kafka topic name against the broker's naming rules.
func ValidateTopic(field, topic string) error {
	if topic == "" || topic == "." || topic == ".." || len(topic) > 249 {
		return errors.Newf(errors.InvalidInputError, "%s %q is not a valid topic name", field, topic)
	}
	for _, r := range topic {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '_', r == '-':
		default:
			return errors.Newf(errors.InvalidInputError, "%s %q may only contain letters, digits, '.', '_' and '-'", field, topic)
		}
	}
	return nil
}
