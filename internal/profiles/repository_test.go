package profiles_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	apperrors "github.com/vytor/profilehub/internal/errors"
	"github.com/vytor/profilehub/internal/models"
	"github.com/vytor/profilehub/internal/profiles"
	"github.com/vytor/profilehub/internal/store"
	"github.com/vytor/profilehub/internal/testutil"
	"github.com/vytor/profilehub/internal/testutil/mocks"
)

type RepositorySuite struct {
	suite.Suite
	store *store.SQLStore
	repo  *profiles.Repository
	ctx   context.Context
}

func (s *RepositorySuite) SetupTest() {
	s.store = testutil.NewTestStore(s.T())
	s.repo = profiles.NewRepository(s.store)
	s.ctx = context.Background()
}

func (s *RepositorySuite) create(username string, age int, interest string, prefs ...models.MatchPreference) {
	_, err := s.repo.Create(username, age, interest, prefs)
	s.Require().NoError(err)
}

func (s *RepositorySuite) TestCreateThenFindIgnoresCase() {
	p, err := s.repo.Create("Alice", 29, "hiking", []models.MatchPreference{models.DefaultPreference})
	s.Require().NoError(err)
	s.Assert().Equal("Hiking", p.PrimaryInterest.Name)

	found, ok := s.repo.FindByUsername("aLiCe")
	s.Require().True(ok)
	s.Assert().Equal(p, found)
}

func (s *RepositorySuite) TestCreate_Validation() {
	tests := []struct {
		name     string
		username string
		age      int
		interest string
		wantCode string
	}{
		{"blank username", "   ", 20, "Hiking", apperrors.ErrCodeInvalidInput},
		{"unknown interest", "bob", 20, "Knitting", apperrors.ErrCodeInvalidInput},
		{"negative age", "bob", -1, "Hiking", apperrors.ErrCodeInvalidAge},
		{"age too high", "bob", 151, "Hiking", apperrors.ErrCodeInvalidAge},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.repo.Create(tt.username, tt.age, tt.interest, nil)
			s.Assert().True(apperrors.HasCode(err, tt.wantCode), "got %v", err)
		})
	}
	s.Assert().Zero(s.repo.Len())
}

func (s *RepositorySuite) TestCreate_AgeBoundsAccepted() {
	s.create("young", 0, "Gaming")
	s.create("old", 150, "Reading")
	s.Assert().Equal(2, s.repo.Len())
}

func (s *RepositorySuite) TestCreate_DuplicateIgnoresCase() {
	s.create("alice", 29, "Hiking")

	_, err := s.repo.Create("ALICE", 30, "Gaming", nil)
	s.Assert().True(apperrors.HasCode(err, apperrors.ErrCodeDuplicate))
	s.Assert().Equal(1, s.repo.Len())
}

func (s *RepositorySuite) TestCreate_ConcurrentDuplicates() {
	const n = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		dupes     int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "carol"
			if i%2 == 0 {
				name = strings.ToUpper(name)
			}
			_, err := s.repo.Create(name, 30, "Cooking", nil)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
			} else if apperrors.HasCode(err, apperrors.ErrCodeDuplicate) {
				dupes++
			}
		}(i)
	}
	wg.Wait()

	s.Assert().Equal(1, succeeded)
	s.Assert().Equal(n-1, dupes)
	s.Assert().Equal(1, s.repo.Len())
}

func (s *RepositorySuite) TestRename() {
	s.create("alice", 29, "Hiking")

	s.Require().NoError(s.repo.Rename("ALICE", "alicia"))
	_, ok := s.repo.FindByUsername("alice")
	s.Assert().False(ok)
	_, ok = s.repo.FindByUsername("alicia")
	s.Assert().True(ok)

	err := s.repo.Rename("nobody", "x")
	s.Assert().True(apperrors.HasCode(err, apperrors.ErrCodeNotFound))

	err = s.repo.Rename("alicia", "  ")
	s.Assert().True(apperrors.HasCode(err, apperrors.ErrCodeInvalidInput))
}

func (s *RepositorySuite) TestRename_DoesNotCheckUniqueness() {
	s.create("alice", 29, "Hiking")
	s.create("bob", 30, "Gaming")

	s.Require().NoError(s.repo.Rename("bob", "Alice"))

	names := []string{}
	for _, p := range s.repo.List() {
		names = append(names, p.Username)
	}
	s.Assert().Equal([]string{"alice", "Alice"}, names)
}

func (s *RepositorySuite) TestUpdateAge() {
	s.create("alice", 29, "Hiking")

	stored, err := s.repo.UpdateAge(s.ctx, "Alice", 31)
	s.Require().NoError(err)
	s.Assert().False(stored, "nothing saved yet")
	p, _ := s.repo.FindByUsername("alice")
	s.Assert().Equal(31, p.Age)

	_, err = s.repo.UpdateAge(s.ctx, "alice", 151)
	s.Assert().True(apperrors.HasCode(err, apperrors.ErrCodeInvalidAge))
	p, _ = s.repo.FindByUsername("alice")
	s.Assert().Equal(31, p.Age, "failed update must not mutate")

	_, err = s.repo.UpdateAge(s.ctx, "nobody", 20)
	s.Assert().True(apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func (s *RepositorySuite) TestUpdateAge_StoredRowFollowsMemory() {
	s.create("Alice", 29, "Hiking")
	s.create("bob", 40, "Gaming")
	s.Require().NoError(s.repo.Rename("bob", "alice"))
	s.Require().NoError(s.repo.Save(s.ctx))

	stored, err := s.repo.UpdateAge(s.ctx, "alice", 99)
	s.Require().NoError(err)
	s.Assert().True(stored)

	loaded, err := s.store.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(s.repo.List(), loaded)
	s.Assert().Equal(99, loaded[0].Age)
	s.Assert().Equal(40, loaded[1].Age)
}

func (s *RepositorySuite) TestDuplicateNamesKeepSaving() {
	s.create("alice", 29, "Hiking", models.DefaultPreference)
	s.create("bob", 30, "Gaming", models.MatchPreference{MinAge: 25, MaxAge: 40})
	s.create("carol", 33, "Reading")
	s.Require().NoError(s.repo.Rename("bob", "alice"))

	removed, err := s.repo.Delete(s.ctx, "carol")
	s.Require().NoError(err)
	s.Assert().True(removed)
	s.Require().NoError(s.repo.Save(s.ctx))

	stored, err := s.store.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Assert().Equal(s.repo.List(), stored)

	fresh := profiles.NewRepository(s.store)
	s.Require().NoError(fresh.Load(s.ctx))
	s.Assert().Equal(s.repo.List(), fresh.List())
}

func (s *RepositorySuite) TestList_IsIsolatedSnapshot() {
	s.create("alice", 29, "Hiking", models.DefaultPreference)

	snapshot := s.repo.List()
	snapshot[0].Preferences[0].MinAge = 99
	s.create("bob", 30, "Gaming")

	s.Assert().Len(snapshot, 1)
	p, _ := s.repo.FindByUsername("alice")
	s.Assert().Equal(20, p.Preferences[0].MinAge)
}

func (s *RepositorySuite) TestDelete_WritesThrough() {
	s.create("alice", 29, "Hiking")
	s.create("bob", 17, "Gaming")
	s.Require().NoError(s.repo.Save(s.ctx))

	removed, err := s.repo.Delete(s.ctx, "ALICE")
	s.Require().NoError(err)
	s.Assert().True(removed)

	stored, err := s.store.LoadAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(stored, 1)
	s.Assert().Equal("bob", stored[0].Username)

	removed, err = s.repo.Delete(s.ctx, "alice")
	s.Require().NoError(err)
	s.Assert().False(removed)
}

func (s *RepositorySuite) TestSaveThenLoad_RoundTrip() {
	s.create("alice", 29, "Hiking", models.DefaultPreference)
	s.create("bob", 17, "Gaming")
	s.Require().NoError(s.repo.Save(s.ctx))

	fresh := profiles.NewRepository(s.store)
	s.Require().NoError(fresh.Load(s.ctx))
	s.Assert().Equal(s.repo.List(), fresh.List())
}

func (s *RepositorySuite) TestFindMatches() {
	s.create("alice", 29, "Hiking", models.DefaultPreference)
	s.create("bob", 17, "Gaming")
	s.create("carol", 33, "Reading")

	got, err := s.repo.FindMatches("alice", 20, 35)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Assert().Equal("carol", got[0].Username)

	got, err = s.repo.FindMatches("bob", 25, 30)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Assert().Equal("alice", got[0].Username)

	bob, _ := s.repo.FindByUsername("bob")
	s.Assert().Equal([]models.MatchPreference{{MinAge: 25, MaxAge: 30}}, bob.Preferences)
}

func (s *RepositorySuite) TestFindMatches_RejectedRangeLeavesPreference() {
	s.create("sam", 25, "Fitness", models.DefaultPreference)

	_, err := s.repo.FindMatches("sam", 10, 30)
	s.Assert().True(apperrors.HasCode(err, apperrors.ErrCodeAgeRestriction))

	sam, _ := s.repo.FindByUsername("sam")
	s.Assert().Equal([]models.MatchPreference{models.DefaultPreference}, sam.Preferences)
}

func (s *RepositorySuite) TestFindMatches_UnknownSeeker() {
	_, err := s.repo.FindMatches("ghost", 20, 30)
	s.Assert().True(apperrors.HasCode(err, apperrors.ErrCodeNotFound))
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func TestLoad_FailureLeavesRepositoryEmpty(t *testing.T) {
	st := new(mocks.MockDurableStore)
	st.On("LoadAll", mock.Anything).Return([]models.Profile{testutil.Profile("alice", 29, "Hiking")}, nil).Once()
	st.On("LoadAll", mock.Anything).Return(nil, apperrors.NewTransientError("load profiles", errors.New("refused"))).Once()
	repo := profiles.NewRepository(st)
	ctx := context.Background()

	require.NoError(t, repo.Load(ctx))
	require.Equal(t, 1, repo.Len())

	err := repo.Load(ctx)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeTransient))
	assert.Zero(t, repo.Len())
	st.AssertExpectations(t)
}

func TestDelete_SaveFailureReportsRemoval(t *testing.T) {
	st := new(mocks.MockDurableStore)
	st.On("SaveAll", mock.Anything, []models.Profile{}).
		Return(apperrors.NewPersistenceError("save profiles", errors.New("disk full")))
	repo := profiles.NewRepository(st)
	_, err := repo.Create("alice", 29, "Hiking", nil)
	require.NoError(t, err)

	removed, err := repo.Delete(context.Background(), "alice")
	assert.True(t, removed)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodePersistence))
	assert.Zero(t, repo.Len())
	st.AssertExpectations(t)
}

func TestSave_SnapshotsCommitInOrder(t *testing.T) {
	st := new(mocks.MockDurableStore)
	var (
		mu    sync.Mutex
		sizes []int
	)
	st.On("SaveAll", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		defer mu.Unlock()
		sizes = append(sizes, len(args.Get(1).([]models.Profile)))
	}).Return(nil)
	repo := profiles.NewRepository(st)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		_, err := repo.Create(fmt.Sprintf("user%d", i), 20, "Gaming", nil)
		require.NoError(t, err)
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repo.Save(ctx))
		}()
	}
	wg.Wait()

	require.Len(t, sizes, 20)
	for i := 1; i < len(sizes); i++ {
		assert.GreaterOrEqual(t, sizes[i], sizes[i-1], "snapshots must reach the store in order")
	}
}

func TestUpdateAge_WaitsForInFlightSnapshot(t *testing.T) {
	st := new(mocks.MockDurableStore)
	entered := make(chan struct{})
	release := make(chan struct{})
	var (
		mu    sync.Mutex
		calls []string
	)
	record := func(call string) {
		mu.Lock()
		defer mu.Unlock()
		calls = append(calls, call)
	}
	st.On("SaveAll", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		close(entered)
		<-release
		record("SaveAll")
	}).Return(nil).Once()
	st.On("UpsertAge", mock.Anything, "alice", 40).Run(func(mock.Arguments) {
		record("UpsertAge")
	}).Return(true, nil).Once()

	repo := profiles.NewRepository(st)
	ctx := context.Background()
	_, err := repo.Create("alice", 29, "Hiking", nil)
	require.NoError(t, err)

	saveErr := make(chan error, 1)
	go func() { saveErr <- repo.Save(ctx) }()
	waitFor(t, entered, "snapshot save did not start")

	ageErr := make(chan error, 1)
	go func() {
		_, err := repo.UpdateAge(ctx, "ALICE", 40)
		ageErr <- err
	}()

	assert.Eventually(t, func() bool {
		p, _ := repo.FindByUsername("alice")
		return p.Age == 40
	}, time.Second, 5*time.Millisecond, "in-memory age is set while the save is pending")
	st.AssertNotCalled(t, "UpsertAge", mock.Anything, mock.Anything, mock.Anything)

	close(release)
	require.NoError(t, <-saveErr)
	require.NoError(t, <-ageErr)
	assert.Equal(t, []string{"SaveAll", "UpsertAge"}, calls)
	st.AssertExpectations(t)
}

func TestStoreWritesDoNotBlockReadersAndWriters(t *testing.T) {
	tests := []struct {
		name  string
		write func(context.Context, *profiles.Repository) error
	}{
		{"snapshot save", func(ctx context.Context, r *profiles.Repository) error {
			return r.Save(ctx)
		}},
		{"delete write-through", func(ctx context.Context, r *profiles.Repository) error {
			_, err := r.Delete(ctx, "alice")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st := new(mocks.MockDurableStore)
			entered := make(chan struct{})
			release := make(chan struct{})
			st.On("SaveAll", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
				close(entered)
				<-release
			}).Return(nil).Once()

			repo := profiles.NewRepository(st)
			ctx := context.Background()
			_, err := repo.Create("alice", 29, "Hiking", nil)
			require.NoError(t, err)
			_, err = repo.Create("bob", 30, "Gaming", nil)
			require.NoError(t, err)

			writeErr := make(chan error, 1)
			go func() { writeErr <- tt.write(ctx, repo) }()
			waitFor(t, entered, "store write did not start")

			done := make(chan struct{})
			go func() {
				defer close(done)
				_, err := repo.Create("carol", 33, "Reading", nil)
				assert.NoError(t, err)
				assert.NotEmpty(t, repo.List())
				_, ok := repo.FindByUsername("bob")
				assert.True(t, ok)
			}()
			waitFor(t, done, "repository blocked while a store write was in flight")

			close(release)
			require.NoError(t, <-writeErr)
			st.AssertExpectations(t)
		})
	}
}

func waitFor(t *testing.T, ch <-chan struct{}, msg string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal(msg)
	}
}
