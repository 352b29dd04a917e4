package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePresets(t *testing.T) {
	t.Run("valid catalog", func(t *testing.T) {
		reqs, err := ParsePresets([]byte(`[` + testRequestJSON + `]`))
		require.NoError(t, err)
		require.Len(t, reqs, 1)
		assert.Equal(t, "Chelyabinsk-like", reqs[0].Name)
	})

	t.Run("not an array", func(t *testing.T) {
		_, err := ParsePresets([]byte(`{}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse presets")
	})

	t.Run("entry missing a field", func(t *testing.T) {
		_, err := ParsePresets([]byte(`[{"name":"x","mass_kg":1}]`))
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), "preset 0")
	})

	t.Run("entry outside its region", func(t *testing.T) {
		_, err := ParsePresets([]byte(`[{"name":"Lost","mass_kg":1,"speed_km_s":20,"angle_degrees":45,"weather":"CLEAR","composition":"STONE","region":"Australia","geo":{"lat":48.8,"lon":2.3}}]`))
		require.ErrorIs(t, err, ErrInvalidInput)
		assert.Contains(t, err.Error(), `preset "Lost"`)
	})
}
