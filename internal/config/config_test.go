package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8085", cfg.Server.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.Offers.TTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Payment.IndependentSetter)
	assert.Equal(t, time.Duration(0), cfg.Offers.SweepInterval)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", ":9999")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("COUNTER_OFFER_TTL", "48h")
	t.Setenv("PAYMENT_INDEPENDENT_SETTER", "false")
	t.Setenv("OIDC_ISSUER", "http://auth.local/realms/tradein")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Port)
	assert.Len(t, cfg.Kafka.Brokers, 2)
	assert.Equal(t, 48*time.Hour, cfg.Offers.TTL)
	assert.False(t, cfg.Payment.IndependentSetter)
	assert.Equal(t, "http://auth.local/realms/tradein", cfg.Auth.OIDCIssuer)
}

func TestLoadRejectsNonPositiveOfferTTL(t *testing.T) {
	t.Setenv("COUNTER_OFFER_TTL", "0s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRecyclerEmails(t *testing.T) {
	t.Setenv("RECYCLER_EMAILS", "rec-1=ops@green.example,rec-2=desk@fix.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"rec-1": "ops@green.example",
		"rec-2": "desk@fix.example",
	}, cfg.Recyclers.Emails)
}
