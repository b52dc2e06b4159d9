package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/syllabify/internal/client/api"
	"github.com/dmitrijs2005/syllabify/internal/client/models"
	"github.com/dmitrijs2005/syllabify/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/*************
 * Fakes
 *************/

type fakeAPI struct {
	mu sync.Mutex

	loginRet *models.LoginResult
	loginErr error

	setupErr error

	meRet   *models.User
	meBlock chan struct{}

	lastLoginUser string
	lastLoginPass string
	lastSetupTok  string
	lastSetupQs   []models.SecurityQuestion
	lastMeTok     string

	loginCalls int
	setupCalls int
	meCalls    atomic.Int32
}

func (f *fakeAPI) Login(_ context.Context, username, password string) (*models.LoginResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loginCalls++
	f.lastLoginUser = username
	f.lastLoginPass = password
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	r := *f.loginRet
	return &r, nil
}

func (f *fakeAPI) SecuritySetup(_ context.Context, token string, qs []models.SecurityQuestion) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setupCalls++
	f.lastSetupTok = token
	f.lastSetupQs = qs
	return f.setupErr
}

func (f *fakeAPI) Me(ctx context.Context, token string) *models.User {
	f.meCalls.Add(1)
	if f.meBlock != nil {
		select {
		case <-f.meBlock:
		case <-ctx.Done():
			return nil
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMeTok = token
	if f.meRet == nil {
		return nil
	}
	u := *f.meRet
	return &u
}

type fakeStore struct {
	mu sync.Mutex

	token string

	getErr   error
	setErr   error
	clearErr error

	setCalls   int
	clearCalls int
}

func (f *fakeStore) Get(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.token, nil
}

func (f *fakeStore) Set(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.setErr != nil {
		return f.setErr
	}
	f.token = token
	return nil
}

func (f *fakeStore) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clearCalls++
	if f.clearErr != nil {
		return f.clearErr
	}
	f.token = ""
	return nil
}

func (f *fakeStore) current() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token
}

func newService(a *fakeAPI, s *fakeStore) *AuthService {
	return NewAuthService(a, s, logging.Discard())
}

/*************
 * Restore tests
 *************/

func TestNewAuthService_StartsLoading(t *testing.T) {
	svc := newService(&fakeAPI{}, &fakeStore{})
	st := svc.State()

	require.Equal(t, PhaseLoading, st.Phase)
	require.True(t, st.IsLoading)
	require.True(t, st.SecuritySetupDone)
	require.Nil(t, st.User)
	require.Empty(t, st.Token)
}

func TestRestore_NoToken(t *testing.T) {
	a := &fakeAPI{}
	svc := newService(a, &fakeStore{})

	st := svc.Restore(context.Background())

	require.Equal(t, PhaseAnonymous, st.Phase)
	require.False(t, st.IsLoading)
	require.Nil(t, st.User)
	require.Empty(t, st.Token)
	require.EqualValues(t, 0, a.meCalls.Load(), "no profile fetch without a token")
}

func TestRestore_ValidToken(t *testing.T) {
	a := &fakeAPI{meRet: &models.User{Username: "alice", SecuritySetupDone: true}}
	s := &fakeStore{token: "T"}
	svc := newService(a, s)

	st := svc.Restore(context.Background())

	require.Equal(t, PhaseAuthenticated, st.Phase)
	require.False(t, st.IsLoading)
	require.Equal(t, &models.User{Username: "alice", SecuritySetupDone: true}, st.User)
	require.Equal(t, "T", st.Token)
	require.True(t, st.SecuritySetupDone)
	require.Equal(t, "T", a.lastMeTok)
	require.Equal(t, "T", s.current(), "persisted token is left in place")
}

func TestRestore_ValidTokenSetupPending(t *testing.T) {
	a := &fakeAPI{meRet: &models.User{Username: "bob", SecuritySetupDone: false}}
	svc := newService(a, &fakeStore{token: "T"})

	st := svc.Restore(context.Background())
	require.Equal(t, PhaseAuthenticated, st.Phase)
	require.False(t, st.SecuritySetupDone)
}

func TestRestore_InvalidTokenIsCleared(t *testing.T) {
	a := &fakeAPI{}
	s := &fakeStore{token: "stale"}
	svc := newService(a, s)

	st := svc.Restore(context.Background())

	require.Equal(t, PhaseAnonymous, st.Phase)
	require.False(t, st.IsLoading)
	require.Nil(t, st.User)
	require.Empty(t, st.Token)
	require.True(t, st.SecuritySetupDone)
	require.Empty(t, s.current())
	require.Equal(t, 1, s.clearCalls)
}

func TestRestore_StoreReadErrorEndsAnonymous(t *testing.T) {
	a := &fakeAPI{}
	svc := newService(a, &fakeStore{getErr: errors.New("disk")})

	st := svc.Restore(context.Background())
	require.Equal(t, PhaseAnonymous, st.Phase)
	require.False(t, st.IsLoading)
	require.EqualValues(t, 0, a.meCalls.Load())
}

func TestRestore_RunsOnce(t *testing.T) {
	a := &fakeAPI{meRet: &models.User{Username: "alice", SecuritySetupDone: true}}
	svc := newService(a, &fakeStore{token: "T"})

	var wg sync.WaitGroup
	states := make([]State, 8)
	for i := range states {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = svc.Restore(context.Background())
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 1, a.meCalls.Load())
	for _, st := range states {
		require.Equal(t, PhaseAuthenticated, st.Phase)
	}

	svc.Restore(context.Background())
	require.EqualValues(t, 1, a.meCalls.Load())
}

func TestRestore_ReadyIsClosed(t *testing.T) {
	svc := newService(&fakeAPI{}, &fakeStore{})

	select {
	case <-svc.Ready():
		t.Fatal("ready before restore")
	default:
	}

	svc.Restore(context.Background())

	select {
	case <-svc.Ready():
	case <-time.After(time.Second):
		t.Fatal("ready not closed")
	}
}

func TestRestore_CancelledKeepsPersistedToken(t *testing.T) {
	a := &fakeAPI{meBlock: make(chan struct{})}
	s := &fakeStore{token: "T"}
	svc := newService(a, s)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for a.meCalls.Load() == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	svc.Restore(ctx)
	<-svc.Ready()

	st := svc.State()
	require.Equal(t, PhaseAnonymous, st.Phase)
	require.False(t, st.IsLoading)
	require.Empty(t, st.Token)
	require.Equal(t, "T", s.current())
	require.Equal(t, 0, s.clearCalls)
}

func TestRestore_LoginDuringRestoreWins(t *testing.T) {
	a := &fakeAPI{
		meBlock:  make(chan struct{}),
		loginRet: &models.LoginResult{Token: "NEW", Username: "alice", SecuritySetupDone: true},
	}
	s := &fakeStore{token: "stale"}
	svc := newService(a, s)

	done := make(chan State)
	go func() { done <- svc.Restore(context.Background()) }()

	for a.meCalls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	_, err := svc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	close(a.meBlock)
	st := <-done

	require.Equal(t, PhaseAuthenticated, st.Phase)
	require.False(t, st.IsLoading)
	require.Equal(t, "NEW", st.Token)
	require.Equal(t, "NEW", s.current(), "stale restore must not wipe the new token")
}

/*************
 * Login tests
 *************/

func TestLogin_Success(t *testing.T) {
	a := &fakeAPI{loginRet: &models.LoginResult{Token: "T", Username: "alice", SecuritySetupDone: false}}
	s := &fakeStore{}
	svc := newService(a, s)
	svc.Restore(context.Background())

	done, err := svc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.False(t, done)

	require.Equal(t, "alice", a.lastLoginUser)
	require.Equal(t, "correct", a.lastLoginPass)

	st := svc.State()
	require.Equal(t, PhaseAuthenticated, st.Phase)
	require.Equal(t, "T", st.Token)
	require.Equal(t, &models.User{Username: "alice", SecuritySetupDone: false}, st.User)
	require.False(t, st.SecuritySetupDone)
	require.Equal(t, "T", s.current())
}

func TestLogin_APIErrorLeavesStateUnchanged(t *testing.T) {
	apiErr := &api.AuthError{Op: "login", Status: 401, Message: "bad credentials", Err: api.ErrUnauthorized}
	a := &fakeAPI{loginErr: apiErr}
	s := &fakeStore{}
	svc := newService(a, s)
	before := svc.Restore(context.Background())

	_, err := svc.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	require.Equal(t, "bad credentials", err.Error())
	require.ErrorIs(t, err, api.ErrUnauthorized)

	require.Equal(t, before, svc.State())
	require.Equal(t, 0, s.setCalls)
}

func TestLogin_OtherErrorsAreWrapped(t *testing.T) {
	boom := errors.New("boom")
	svc := newService(&fakeAPI{loginErr: boom}, &fakeStore{})

	_, err := svc.Login(context.Background(), "alice", "pw")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "login error")
}

func TestLogin_StoreFailureLeavesStateUnchanged(t *testing.T) {
	a := &fakeAPI{loginRet: &models.LoginResult{Token: "T", Username: "alice", SecuritySetupDone: true}}
	storeErr := errors.New("readonly")
	svc := newService(a, &fakeStore{setErr: storeErr})
	before := svc.Restore(context.Background())

	_, err := svc.Login(context.Background(), "alice", "correct")
	require.ErrorIs(t, err, storeErr)
	require.Equal(t, before, svc.State())
}

/*************
 * Logout tests
 *************/

func TestLogout_ResetsState(t *testing.T) {
	a := &fakeAPI{meRet: &models.User{Username: "alice", SecuritySetupDone: false}}
	s := &fakeStore{token: "T"}
	svc := newService(a, s)
	svc.Restore(context.Background())

	require.NoError(t, svc.Logout(context.Background()))

	st := svc.State()
	require.Equal(t, PhaseAnonymous, st.Phase)
	require.Nil(t, st.User)
	require.Empty(t, st.Token)
	require.True(t, st.SecuritySetupDone)
	require.Empty(t, s.current())
	require.Equal(t, 0, a.loginCalls+a.setupCalls, "logout makes no network call")
}

func TestLogout_StoreFailureStillResetsMemory(t *testing.T) {
	a := &fakeAPI{meRet: &models.User{Username: "alice", SecuritySetupDone: true}}
	s := &fakeStore{token: "T"}
	svc := newService(a, s)
	svc.Restore(context.Background())

	s.clearErr = errors.New("locked")
	err := svc.Logout(context.Background())
	require.EqualError(t, err, "locked")

	st := svc.State()
	require.Equal(t, PhaseAnonymous, st.Phase)
	require.Nil(t, st.User)
	require.Empty(t, st.Token)
}

/*************
 * Security setup tests
 *************/

func TestCompleteSecuritySetup_NoTokenIsNoop(t *testing.T) {
	a := &fakeAPI{}
	svc := newService(a, &fakeStore{})
	svc.Restore(context.Background())

	submitted, err := svc.CompleteSecuritySetup(context.Background(), []models.SecurityQuestion{{Question: "q", Answer: "a"}})
	require.NoError(t, err)
	require.False(t, submitted)
	require.Equal(t, 0, a.setupCalls)
}

func TestCompleteSecuritySetup_UsesMemoryToken(t *testing.T) {
	a := &fakeAPI{loginRet: &models.LoginResult{Token: "T", Username: "alice", SecuritySetupDone: false}}
	svc := newService(a, &fakeStore{})
	svc.Restore(context.Background())
	_, err := svc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	qs := []models.SecurityQuestion{{Question: "pet?", Answer: "rex"}}
	submitted, err := svc.CompleteSecuritySetup(context.Background(), qs)
	require.NoError(t, err)
	require.True(t, submitted)

	require.Equal(t, "T", a.lastSetupTok)
	require.Equal(t, qs, a.lastSetupQs)

	st := svc.State()
	require.True(t, st.SecuritySetupDone)
	require.True(t, st.User.SecuritySetupDone)
}

func TestCompleteSecuritySetup_FallsBackToStoredToken(t *testing.T) {
	a := &fakeAPI{}
	s := &fakeStore{}
	svc := newService(a, s)
	svc.Restore(context.Background())

	s.token = "PERSISTED"
	submitted, err := svc.CompleteSecuritySetup(context.Background(), nil)
	require.NoError(t, err)
	require.True(t, submitted)
	require.Equal(t, "PERSISTED", a.lastSetupTok)
}

func TestCompleteSecuritySetup_ErrorPropagates(t *testing.T) {
	setupErr := &api.AuthError{Op: "security-setup", Status: 400, Message: "need 3 questions", Err: api.ErrRejected}
	a := &fakeAPI{
		loginRet: &models.LoginResult{Token: "T", Username: "alice", SecuritySetupDone: false},
		setupErr: setupErr,
	}
	svc := newService(a, &fakeStore{})
	svc.Restore(context.Background())
	_, err := svc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	submitted, err := svc.CompleteSecuritySetup(context.Background(), nil)
	require.EqualError(t, err, "need 3 questions")
	require.False(t, submitted)
	require.False(t, svc.State().SecuritySetupDone)
}

/*************
 * Subscribe tests
 *************/

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	a := &fakeAPI{loginRet: &models.LoginResult{Token: "T", Username: "alice", SecuritySetupDone: true}}
	svc := newService(a, &fakeStore{})

	var (
		mu     sync.Mutex
		phases []Phase
	)
	unsubscribe := svc.Subscribe(func(st State) {
		mu.Lock()
		phases = append(phases, st.Phase)
		mu.Unlock()
	})

	svc.Restore(context.Background())
	_, err := svc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)

	unsubscribe()
	require.NoError(t, svc.Logout(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []Phase{PhaseAnonymous, PhaseAuthenticated}, phases)
}

func TestState_IsACopy(t *testing.T) {
	a := &fakeAPI{meRet: &models.User{Username: "alice", SecuritySetupDone: true}}
	svc := newService(a, &fakeStore{token: "T"})
	st := svc.Restore(context.Background())

	st.User.Username = "mallory"
	require.Equal(t, "alice", svc.State().User.Username)
}

func TestSubscribe_LastDeliveryMatchesFinalState(t *testing.T) {
	a := &fakeAPI{loginRet: &models.LoginResult{Token: "T", Username: "alice", SecuritySetupDone: true}}
	svc := newService(a, &fakeStore{})
	svc.Restore(context.Background())

	var (
		mu   sync.Mutex
		last State
		seen int
	)
	svc.Subscribe(func(st State) {
		mu.Lock()
		last = st
		seen++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, _ = svc.Login(context.Background(), "alice", "correct")
			} else {
				_ = svc.Logout(context.Background())
			}
		}(i)
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotZero(t, seen)
	require.Equal(t, svc.State(), last, "a stale snapshot must not be delivered after a newer one")
}

func TestSubscribe_CallbackMayReadState(t *testing.T) {
	a := &fakeAPI{loginRet: &models.LoginResult{Token: "T", Username: "alice", SecuritySetupDone: true}}
	svc := newService(a, &fakeStore{})
	svc.Restore(context.Background())

	var phases []Phase
	svc.Subscribe(func(State) {
		phases = append(phases, svc.State().Phase)
	})

	_, err := svc.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	require.Equal(t, []Phase{PhaseAuthenticated}, phases)
}
