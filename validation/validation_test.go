package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dora-network/num2int/errors"
	"github.com/dora-network/num2int/validation"
)

func TestValidateHostPorts(t *testing.T) {
	t.Run("Should accept host and port pairs", func(t *testing.T) {
		assert.NoError(t, validation.ValidateHostPorts("brokers", []string{"kafka:9092", "10.0.0.1:19092", "[::1]:9092"}))
		assert.NoError(t, validation.ValidateHostPorts("brokers", nil))
	})

	for _, addr := range []string{"kafka", ":9092", "kafka:0", "kafka:port", "kafka:70000"} {
		t.Run("Should reject "+addr, func(t *testing.T) {
			err := validation.ValidateHostPorts("brokers", []string{addr})
			assert.True(t, errors.Is(err, errors.InvalidInputError))
		})
	}
}

func TestValidateScalars(t *testing.T) {
	t.Run("Should require positive durations", func(t *testing.T) {
		assert.NoError(t, validation.ValidatePositiveDuration("timeout", time.Second))
		assert.Error(t, validation.ValidatePositiveDuration("timeout", 0))
	})

	t.Run("Should allow any listen port including zero", func(t *testing.T) {
		assert.NoError(t, validation.ValidateListenPort("metrics.port", 0))
		assert.NoError(t, validation.ValidateListenPort("metrics.port", 9100))
		assert.Error(t, validation.ValidateListenPort("metrics.port", -1))
		assert.Error(t, validation.ValidateListenPort("metrics.port", 65536))
	})

	t.Run("Should check key prefixes", func(t *testing.T) {
		assert.NoError(t, validation.ValidateKeyPrefix("prefix", "num2int"))
		assert.Error(t, validation.ValidateKeyPrefix("prefix", ""))
		assert.Error(t, validation.ValidateKeyPrefix("prefix", "a:b"))
		assert.Error(t, validation.ValidateKeyPrefix("prefix", "a b"))
	})

	t.Run("Should check topic names", func(t *testing.T) {
		assert.NoError(t, validation.ValidateTopic("topic", "num2int.catalog.invalidations"))
		assert.Error(t, validation.ValidateTopic("topic", ".."))
		assert.Error(t, validation.ValidateTopic("topic", "catalog/changes"))
		assert.Error(t, validation.ValidateTopic("topic", strings.Repeat("t", 250)))
	})
}
