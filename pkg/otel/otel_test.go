package otel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigSampler(t *testing.T) {
	assert.Contains(t, Config{}.sampler().Description(), "AlwaysOnSampler")
	assert.Contains(t, Config{SampleRatio: 1.5}.sampler().Description(), "AlwaysOnSampler")
	assert.Contains(t, Config{SampleRatio: 0.25}.sampler().Description(), "TraceIDRatioBased{0.25}")
}
