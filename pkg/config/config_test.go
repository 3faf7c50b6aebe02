package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 15*time.Minute, cfg.MagicLink.TTL)
	assert.Equal(t, 2, cfg.MagicLink.DeliveryWorkers)
	assert.Equal(t, 30*time.Minute, cfg.Cache.AcademicTTL)
	assert.Equal(t, 500, cfg.Calendar.MaxEvents)
	assert.True(t, cfg.Cache.Enabled)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("MAGIC_LINK_TTL", "not-a-duration")
	v.Set("MAGIC_LINK_BASE_URL", "https://agenda.example.edu/callback/")
	v.Set("ALLOWED_ORIGINS", " https://a.example.edu, ,https://b.example.edu ")
	v.Set("CALENDAR_MAX_EVENTS", -3)

	cfg := fromViper(v)

	assert.Equal(t, 15*time.Minute, cfg.MagicLink.TTL)
	assert.Equal(t, "https://agenda.example.edu/callback", cfg.MagicLink.BaseURL)
	assert.Equal(t, []string{"https://a.example.edu", "https://b.example.edu"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 500, cfg.Calendar.MaxEvents)
}
