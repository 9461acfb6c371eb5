package profile

import (
	"context"
	"testing"

	"github.com/angelmondragon/gearmart-backend/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigProviderServesConfiguredProfile(t *testing.T) {
	t.Parallel()

	provider, err := NewConfigProvider(config.ProfileConfig{
		CustomerName:     "Ana García",
		ShippingAddress:  "Calle 10 #20-30",
		DiscountEligible: true,
	})
	require.NoError(t, err)

	current, err := provider.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana García", current.CustomerName)
	assert.Equal(t, "Calle 10 #20-30", current.ShippingAddress)
	assert.True(t, current.DiscountEligible)
}

func TestNewConfigProviderAcceptsDefaultName(t *testing.T) {
	t.Parallel()

	// Mirrors the envconfig default so an unconfigured deployment boots.
	provider, err := NewConfigProvider(config.ProfileConfig{CustomerName: "Invitado"})
	require.NoError(t, err)

	current, err := provider.Current(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Invitado", current.CustomerName)
	assert.False(t, current.DiscountEligible)
}

func TestNewConfigProviderRejectsBlankName(t *testing.T) {
	t.Parallel()

	_, err := NewConfigProvider(config.ProfileConfig{})
	require.Error(t, err)
}
