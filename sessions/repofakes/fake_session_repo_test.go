package repofakes_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-connectedcar/sessions"
	"github.com/jrsteele09/go-connectedcar/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

func TestSavedSnapshotsAreIndependent(t *testing.T) {
	repo := repofakes.NewFakeSessionRepo()
	first := time.Unix(1700000000, 0)
	state := &sessions.State{}
	state.API.AccessToken = "access-1"
	state.API.TokenExpires = sessions.NewExpiry(first)
	require.NoError(t, repo.Save(state))

	state.API.AccessToken = "access-2"
	state.API.TokenExpires.Time = first.Add(time.Hour)

	last := repo.Last()
	require.Equal(t, "access-1", last.API.AccessToken)
	require.True(t, last.API.TokenExpires.Equal(first))

	last.API.TokenExpires.Time = first.Add(2 * time.Hour)
	loaded, err := repo.Load()
	require.NoError(t, err)
	require.True(t, loaded.API.TokenExpires.Equal(first))
	require.Equal(t, 1, repo.Saves())
}
