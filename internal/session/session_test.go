package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestState_SetTokensAndSnapshot(t *testing.T) {
	state := New(Config{UserAgent: "test-agent", Domain: "fr"})

	state.SetTokens(TokenUpdate{
		AccessToken:  strPtr("access-123"),
		RefreshToken: strPtr("refresh-456"),
		SessionToken: strPtr("sess-789"),
		AnonID:       strPtr("anon-abc"),
		DataDome:     strPtr("dd-xyz"),
	})

	snap := state.Snapshot()
	assert.Equal(t, "access-123", snap["access_token"])
	assert.Equal(t, "refresh-456", snap["refresh_token"])
	assert.Equal(t, "sess-789", snap["_vinted_fr_session"])
	assert.Equal(t, "anon-abc", snap["anon_id"])
	assert.Equal(t, "dd-xyz", snap["datadome"])
}

func TestState_SetTokens_OmittedFieldsUntouched(t *testing.T) {
	state := New(Config{UserAgent: "test-agent", Domain: "fr"})
	state.SetTokens(TokenUpdate{
		AccessToken:  strPtr("old-access"),
		RefreshToken: strPtr("old-refresh"),
	})

	// Only access token in the update; refresh must survive.
	state.SetTokens(TokenUpdate{AccessToken: strPtr("new-access")})

	assert.Equal(t, "new-access", state.AccessToken())
	assert.Equal(t, "old-refresh", state.RefreshToken())
}

func TestState_SetTokens_EmptyStringClears(t *testing.T) {
	state := New(Config{UserAgent: "test-agent", Domain: "fr"})
	state.SetTokens(TokenUpdate{AccessToken: strPtr("tok")})
	require.Equal(t, "tok", state.AccessToken())

	// Empty string is an overwrite, not an omission.
	state.SetTokens(TokenUpdate{AccessToken: strPtr("")})
	assert.Equal(t, "", state.AccessToken())
}

func TestState_SetCookies_MergeSemantics(t *testing.T) {
	state := New(Config{UserAgent: "test-agent", Domain: "de"})
	state.SetCookies(map[string]string{
		"access_token": "a1",
		"datadome":     "d1",
	})
	state.SetCookies(map[string]string{
		"access_token": "a2",
	})

	snap := state.Snapshot()
	assert.Equal(t, "a2", snap["access_token"])
	assert.Equal(t, "d1", snap["datadome"], "keys absent from the merge must survive")
}

func TestState_SnapshotRoundTrip(t *testing.T) {
	state := New(Config{UserAgent: "test-agent", Domain: "fr"})
	state.SetTokens(TokenUpdate{
		AccessToken:  strPtr("a"),
		RefreshToken: strPtr("r"),
		SessionToken: strPtr("s"),
		DataDome:     strPtr("d"),
	})

	snap := state.Snapshot()

	restored := New(Config{UserAgent: "test-agent", Domain: "fr"})
	restored.SetCookies(snap)

	assert.Equal(t, snap, restored.Snapshot())
}

func TestState_SnapshotIsACopy(t *testing.T) {
	state := New(Config{UserAgent: "test-agent"})
	state.SetTokens(TokenUpdate{AccessToken: strPtr("a")})

	snap := state.Snapshot()
	snap["access_token"] = "mutated"

	assert.Equal(t, "a", state.AccessToken())
}

func TestState_Authenticated(t *testing.T) {
	state := New(Config{UserAgent: "test-agent", Domain: "pl"})
	assert.False(t, state.Authenticated())

	state.SetTokens(TokenUpdate{AccessToken: strPtr("tok")})
	assert.False(t, state.Authenticated(), "access token alone is not enough")

	state.SetTokens(TokenUpdate{SessionToken: strPtr("sess")})
	assert.True(t, state.Authenticated())

	state.SetTokens(TokenUpdate{AccessToken: strPtr("")})
	assert.False(t, state.Authenticated())
}

func TestState_AntiBotCleared(t *testing.T) {
	state := New(Config{UserAgent: "test-agent"})
	assert.False(t, state.AntiBotCleared())

	state.SetCookies(map[string]string{"datadome": "clearance"})
	assert.True(t, state.AntiBotCleared())
}

func TestState_NewGeneratesAnonID(t *testing.T) {
	a := New(Config{UserAgent: "test-agent"})
	b := New(Config{UserAgent: "test-agent"})

	assert.NotEmpty(t, a.Cookie("anon_id"))
	assert.NotEqual(t, a.Cookie("anon_id"), b.Cookie("anon_id"))
}

func TestState_SessionCookieName(t *testing.T) {
	assert.Equal(t, "_vinted_fr_session", New(Config{Domain: "fr"}).SessionCookieName())
	assert.Equal(t, "_vinted_uk_session", New(Config{Domain: "co.uk"}).SessionCookieName())
	assert.Equal(t, "_vinted_us_session", New(Config{Domain: "com"}).SessionCookieName())
	// Default locale applies when none is configured.
	assert.Equal(t, "_vinted_fr_session", New(Config{}).SessionCookieName())
}

func TestState_ConcurrentReadersAndWriters(t *testing.T) {
	state := New(Config{UserAgent: "test-agent", Domain: "fr"})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				state.SetCookies(map[string]string{"access_token": "tok"})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = state.Snapshot()
				_ = state.Authenticated()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, "tok", state.AccessToken())
}

func TestState_ExclusiveRefreshSerializes(t *testing.T) {
	state := New(Config{UserAgent: "test-agent"})

	var inFlight, maxInFlight int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = state.ExclusiveRefresh(func() error {
				mu.Lock()
				inFlight++
				if inFlight > maxInFlight {
					maxInFlight = inFlight
				}
				mu.Unlock()

				state.SetCookies(map[string]string{"access_token": "fresh"})

				mu.Lock()
				inFlight--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInFlight, "refresh critical sections must not overlap")
}
