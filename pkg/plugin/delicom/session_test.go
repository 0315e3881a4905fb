package delicom_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/delicom/pkg/credstore"
	"github.com/tournevent/delicom/pkg/plugin"
	"github.com/tournevent/delicom/pkg/plugin/delicom"
)

const (
	testLiveURL  = "https://live.example.test/services/"
	testStageURL = "https://stage.example.test/services/"
)

func testSettings() delicom.Settings {
	return delicom.Settings{
		DelisID:     "sandbox1",
		Password:    "s3cret!",
		Server:      delicom.ServerStage,
		TimeLogging: false,
	}
}

type recordingObserver struct {
	mu      sync.Mutex
	lookups []string
	skipped int
}

func (o *recordingObserver) SessionLookup(result string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups = append(o.lookups, result)
}

func (o *recordingObserver) RecordsSkipped(n int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped += n
}

func newTestManager(api delicom.APIClient, store credstore.Store, obs delicom.Observer) *delicom.SessionManager {
	return delicom.NewSessionManager(delicom.SessionManagerConfig{
		Store:     store,
		API:       api,
		Endpoints: delicom.Endpoints{Live: testLiveURL, Stage: testStageURL},
		Observer:  obs,
	})
}

func TestSessionManager_ReusesMatchingSession(t *testing.T) {
	mockAPI := delicom.NewMockAPIClient()
	store := credstore.NewMemory()
	obs := &recordingObserver{}
	m := newTestManager(mockAPI, store, obs)
	ctx := context.Background()

	first, err := m.Session(ctx, testSettings())
	require.NoError(t, err)
	second, err := m.Session(ctx, testSettings())
	require.NoError(t, err)

	assert.Equal(t, 1, mockAPI.LoginCalls())
	assert.Equal(t, first.Token, second.Token)
	assert.Equal(t, []string{delicom.LookupMiss, delicom.LookupHit}, obs.lookups)

	cached, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.Token, cached.Token)
	assert.Equal(t, testStageURL, cached.Endpoint)
}

func TestSessionManager_SecretOnlyChangeReusesSession(t *testing.T) {
	mockAPI := delicom.NewMockAPIClient()
	m := newTestManager(mockAPI, nil, nil)
	ctx := context.Background()

	first, err := m.Session(ctx, testSettings())
	require.NoError(t, err)

	rotated := testSettings()
	rotated.Password = "another-secret"
	second, err := m.Session(ctx, rotated)
	require.NoError(t, err)

	assert.Equal(t, 1, mockAPI.LoginCalls(), "password is not part of the session comparison")
	assert.Equal(t, first.Token, second.Token)
}

func TestSessionManager_SettingsChangeReauthenticates(t *testing.T) {
	tests := []struct {
		name   string
		change func(s *delicom.Settings)
	}{
		{"delis id", func(s *delicom.Settings) { s.DelisID = "sandbox2" }},
		{"server", func(s *delicom.Settings) { s.Server = delicom.ServerLive }},
		{"time logging", func(s *delicom.Settings) { s.TimeLogging = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockAPI := delicom.NewMockAPIClient()
			store := credstore.NewMemory()
			obs := &recordingObserver{}
			m := newTestManager(mockAPI, store, obs)
			ctx := context.Background()

			first, err := m.Session(ctx, testSettings())
			require.NoError(t, err)

			changed := testSettings()
			tt.change(&changed)
			second, err := m.Session(ctx, changed)
			require.NoError(t, err)

			assert.Equal(t, 2, mockAPI.LoginCalls())
			assert.NotEqual(t, first.Token, second.Token)
			assert.Equal(t, []string{delicom.LookupMiss, delicom.LookupRefresh}, obs.lookups)

			cached, err := store.Get(ctx)
			require.NoError(t, err)
			assert.True(t, changed.Matches(cached))
			assert.Equal(t, second.Token, cached.Token)
		})
	}
}

func TestSessionManager_EndpointSelection(t *testing.T) {
	tests := []struct {
		server   int
		expected string
	}{
		{delicom.ServerLive, testLiveURL},
		{delicom.ServerStage, testStageURL},
		{7, testStageURL},
		{-1, testStageURL},
	}

	for _, tt := range tests {
		mockAPI := delicom.NewMockAPIClient()
		var endpoint string
		mockAPI.OnLogin = func(ctx context.Context, req *delicom.LoginRequest) (*delicom.LoginResponse, error) {
			endpoint = req.Endpoint
			return &delicom.LoginResponse{Token: "tok"}, nil
		}
		m := newTestManager(mockAPI, nil, nil)

		s := testSettings()
		s.Server = tt.server
		sess, err := m.Session(context.Background(), s)
		require.NoError(t, err)

		assert.Equal(t, tt.expected, endpoint, "server %d", tt.server)
		assert.Equal(t, tt.expected, sess.Endpoint)
	}
}

func TestEndpoints_Defaults(t *testing.T) {
	var e delicom.Endpoints
	assert.Equal(t, delicom.DefaultLiveURL, e.For(delicom.ServerLive))
	assert.Equal(t, delicom.DefaultStageURL, e.For(delicom.ServerStage))
	assert.NotEqual(t, e.For(delicom.ServerLive), e.For(delicom.ServerStage))
}

func TestSessionManager_AuthenticationError(t *testing.T) {
	mockAPI := delicom.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	store := credstore.NewMemory()
	obs := &recordingObserver{}
	m := newTestManager(mockAPI, store, obs)
	ctx := context.Background()

	_, err := m.Session(ctx, testSettings())
	require.Error(t, err)

	assert.True(t, errors.Is(err, plugin.ErrAuthenticationFailed))
	var authErr *plugin.AuthenticationError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, testStageURL, authErr.Endpoint)
	assert.Equal(t, "sandbox1", authErr.CredentialID)
	assert.NotContains(t, err.Error(), testSettings().Password)

	var apiErr *delicom.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "LOGIN_5", apiErr.Code)

	cached, err := store.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, cached)
	assert.Equal(t, []string{delicom.LookupError}, obs.lookups)
}

func TestSessionManager_Invalidate(t *testing.T) {
	mockAPI := delicom.NewMockAPIClient()
	m := newTestManager(mockAPI, nil, nil)
	ctx := context.Background()

	_, err := m.Session(ctx, testSettings())
	require.NoError(t, err)
	require.NoError(t, m.Invalidate(ctx))
	_, err = m.Session(ctx, testSettings())
	require.NoError(t, err)

	assert.Equal(t, 2, mockAPI.LoginCalls())
}

func TestSessionManager_TTL(t *testing.T) {
	mockAPI := delicom.NewMockAPIClient()
	m := delicom.NewSessionManager(delicom.SessionManagerConfig{
		API: mockAPI,
		TTL: 10 * time.Millisecond,
	})
	ctx := context.Background()

	_, err := m.Session(ctx, testSettings())
	require.NoError(t, err)
	_, err = m.Session(ctx, testSettings())
	require.NoError(t, err)
	assert.Equal(t, 1, mockAPI.LoginCalls())

	time.Sleep(20 * time.Millisecond)

	_, err = m.Session(ctx, testSettings())
	require.NoError(t, err)
	assert.Equal(t, 2, mockAPI.LoginCalls())
}

type brokenStore struct{}

func (brokenStore) Get(context.Context) (*credstore.Session, error) {
	return nil, errors.New("store unavailable")
}
func (brokenStore) Put(context.Context, *credstore.Session) error {
	return errors.New("store unavailable")
}
func (brokenStore) Clear(context.Context) error { return nil }

func TestSessionManager_StoreFailureFallsBackToLogin(t *testing.T) {
	mockAPI := delicom.NewMockAPIClient()
	m := newTestManager(mockAPI, brokenStore{}, nil)

	sess, err := m.Session(context.Background(), testSettings())
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, 1, mockAPI.LoginCalls())
}

func TestSessionManager_ConcurrentCallersShareOneLogin(t *testing.T) {
	mockAPI := delicom.NewMockAPIClient()
	mockAPI.SimulateLatency = 5 * time.Millisecond
	m := newTestManager(mockAPI, nil, nil)

	var wg sync.WaitGroup
	tokens := make([]string, 20)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := m.Session(context.Background(), testSettings())
			if err == nil {
				tokens[i] = sess.Token
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, mockAPI.LoginCalls())
	for _, tok := range tokens {
		assert.Equal(t, tokens[0], tok)
	}
}
