package status

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlatformLister struct {
	platforms []string
}

func (f fakePlatformLister) SupportedPlatforms() []string {
	return f.platforms
}

func TestGetStatus_ReportsUptimeVersionAndExtractors(t *testing.T) {
	h := NewHandler(fakePlatformLister{platforms: []string{"tiktok", "instagram"}}, time.Now().Add(-5*time.Minute))

	out, err := h.GetStatus(context.Background(), &StatusInput{})

	require.NoError(t, err)
	assert.True(t, out.Body.Success)
	assert.Equal(t, "online", out.Body.Status)
	assert.Equal(t, []string{"tiktok", "instagram"}, out.Body.Extractors)
	assert.NotEmpty(t, out.Body.Uptime)
	assert.NotEmpty(t, out.Body.Version)
}

func TestGetHealth_ReturnsOkWithTimestamp(t *testing.T) {
	h := NewHandler(fakePlatformLister{}, time.Now())

	out, err := h.GetHealth(context.Background(), &HealthInput{})

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Body.Status)

	parsed, err := time.Parse(time.RFC3339, out.Body.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, 5*time.Second)
}
