package brands_test

import (
	"testing"

	"github.com/jrsteele09/go-connectedcar/brands"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("known brand", func(t *testing.T) {
		b, ok := brands.Lookup("com.psa.mym.mypeugeot")
		require.True(t, ok)
		require.Equal(t, "clientsB2CPeugeot", b.Realm)
		require.Equal(t, "https://idpcvs.peugeot.com/am/oauth2/access_token", b.OAuthURL)
	})

	t.Run("unknown brand", func(t *testing.T) {
		b, ok := brands.Lookup("com.example.fake")
		require.False(t, ok)
		require.Empty(t, b)
	})
}

func TestIdentifiers(t *testing.T) {
	ids := brands.Identifiers()
	require.Equal(t, []string{
		"com.psa.mym.mycitroen",
		"com.psa.mym.myds",
		"com.psa.mym.myopel",
		"com.psa.mym.mypeugeot",
		"com.psa.mym.myvauxhall",
	}, ids)

	for _, id := range ids {
		b, ok := brands.Lookup(id)
		require.True(t, ok)
		require.NotEmpty(t, b.Realm)
		require.NotEmpty(t, b.OAuthURL)
	}
}
