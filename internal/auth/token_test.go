package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fivetwenty-io/scheduler-client/internal/auth"
	"github.com/fivetwenty-io/scheduler-client/internal/constants"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenValidity(t *testing.T) {
	t.Parallel()

	now := time.Now()

	cases := map[string]struct {
		token *auth.Token
		valid bool
	}{
		"nil":                   {nil, false},
		"no access token":       {&auth.Token{TokenType: "bearer"}, false},
		"no expiry":             {&auth.Token{AccessToken: "scheduler-token"}, true},
		"expires in an hour":    {&auth.Token{AccessToken: "scheduler-token", ExpiresAt: now.Add(time.Hour)}, true},
		"expired a minute ago":  {&auth.Token{AccessToken: "scheduler-token", ExpiresAt: now.Add(-time.Minute)}, false},
		"inside expiry buffer":  {&auth.Token{AccessToken: "scheduler-token", ExpiresAt: now.Add(constants.TokenExpirationBuffer / 2)}, false},
		"outside expiry buffer": {&auth.Token{AccessToken: "scheduler-token", ExpiresAt: now.Add(constants.TokenExpirationBuffer + time.Minute)}, true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.valid, tc.token.Valid())
		})
	}
}

func TestTokenStore(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	require.Nil(t, store.Get())

	store.Set(&auth.Token{AccessToken: "first", TokenType: "bearer"})
	require.NotNil(t, store.Get())
	assert.Equal(t, "first", store.Get().AccessToken)

	store.Set(&auth.Token{AccessToken: "second"})
	assert.Equal(t, "second", store.Get().AccessToken)

	store.Clear()
	assert.Nil(t, store.Get())
}

func TestTokenStoreConcurrentUse(t *testing.T) {
	t.Parallel()

	store := auth.NewTokenStore()
	names := []string{"alpha", "beta", "gamma"}

	var wg sync.WaitGroup

	for _, name := range names {
		wg.Add(2)

		go func() {
			defer wg.Done()

			for range 50 {
				store.Set(&auth.Token{AccessToken: name})
			}
		}()

		go func() {
			defer wg.Done()

			for range 50 {
				_ = store.Get()
			}
		}()
	}

	wg.Wait()

	require.NotNil(t, store.Get())
	assert.Contains(t, names, store.Get().AccessToken)
}

func TestStaticTokenManager(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	manager := auth.NewStaticTokenManager("static-token")

	token, err := manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "static-token", token)

	require.ErrorIs(t, manager.RefreshToken(ctx), auth.ErrStaticTokenRefresh)

	manager.SetToken("replaced-token", time.Now().Add(time.Hour))

	token, err = manager.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "replaced-token", token)
}

func TestTokenURL(t *testing.T) {
	t.Parallel()

	for _, uaa := range []string{"https://uaa.sys.example.com", "https://uaa.sys.example.com/"} {
		assert.Equal(t, "https://uaa.sys.example.com/oauth/token", auth.TokenURL(uaa))
	}
}
