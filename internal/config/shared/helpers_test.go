package shared

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BAD_INT", "forty-two")

	assert.Equal(t, 42, GetEnvAsInt("TEST_INT"))
	assert.Equal(t, 0, GetEnvAsInt("TEST_BAD_INT"))
	assert.Equal(t, 0, GetEnvAsInt("TEST_MISSING_INT"))
}

func TestGetEnvAsBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "false")
	t.Setenv("TEST_BAD_BOOL", "maybe")

	assert.False(t, GetEnvAsBool("TEST_BOOL", true))
	assert.True(t, GetEnvAsBool("TEST_BAD_BOOL", true))
	assert.True(t, GetEnvAsBool("TEST_MISSING_BOOL", true))
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "1h30m")

	assert.Equal(t, 90*time.Minute, GetEnvAsDuration("TEST_DURATION"))
	assert.Equal(t, time.Duration(0), GetEnvAsDuration("TEST_MISSING_DURATION"))
}

func TestConfigError(t *testing.T) {
	err := &ConfigError{Component: "service", Field: "name", Message: "is required"}
	assert.Equal(t, "service.name: is required", err.Error())

	err.Value = 3
	assert.Equal(t, "service.name: is required (got: 3)", err.Error())
}
