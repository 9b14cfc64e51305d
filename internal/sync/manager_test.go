package sync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alcyxob/FitnessClient-sub001/internal/api"
	"github.com/alcyxob/FitnessClient-sub001/internal/cache/sqlite"
	"github.com/alcyxob/FitnessClient-sub001/internal/domain"
	"github.com/alcyxob/FitnessClient-sub001/internal/repository"
)

type fakeNet struct{ up bool }

func (f *fakeNet) Reachable() bool        { return f.up }
func (f *fakeNet) Subscribe() <-chan bool { return make(chan bool) }

type testEnv struct {
	manager     *Manager
	users       *repository.UserRepository
	exercises   *repository.ExerciseRepository
	workouts    *repository.WorkoutRepository
	assignments *repository.AssignmentRepository
	exStore     *sqlite.Store[domain.Exercise]
	userStore   *sqlite.Store[domain.User]
}

func newTestEnv(t *testing.T, handler http.Handler) *testEnv {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	db, err := sqlite.Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	token := func(ctx context.Context) (string, error) { return "test-token", nil }
	client := api.NewClient(server.URL, token, nil, nil)
	net := &fakeNet{up: true}

	userStore := sqlite.NewUserStore(db, nil)
	exStore := sqlite.NewExerciseStore(db, nil)
	workoutStore := sqlite.NewWorkoutStore(db, nil)
	assignmentStore := sqlite.NewAssignmentStore(db, nil)

	users := repository.NewUserRepository(client, domain.RoleClient, userStore, net, nil)
	exercises := repository.NewExerciseRepository(client, exStore, net, nil)
	workouts := repository.NewWorkoutRepository(client, workoutStore, net, nil)
	assignments := repository.NewAssignmentRepository(client, assignmentStore, net, nil)

	return &testEnv{
		manager:     NewManager(users, exercises, workouts, assignments, net, nil),
		users:       users,
		exercises:   exercises,
		workouts:    workouts,
		assignments: assignments,
		exStore:     exStore,
		userStore:   userStore,
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// collections builds the fake API mux. Every list route serves an empty
// collection unless the test overrides it; ServeMux rejects duplicate
// patterns, so overrides replace the defaults instead of stacking on top.
func collections(overrides map[string]http.HandlerFunc) *http.ServeMux {
	routes := map[string]http.HandlerFunc{
		"GET /users":              func(w http.ResponseWriter, r *http.Request) { writeJSON(w, []domain.User{}) },
		"GET /exercises":          func(w http.ResponseWriter, r *http.Request) { writeJSON(w, []domain.Exercise{}) },
		"GET /client/workouts":    func(w http.ResponseWriter, r *http.Request) { writeJSON(w, []domain.Workout{}) },
		"GET /client/assignments": func(w http.ResponseWriter, r *http.Request) { writeJSON(w, []domain.Assignment{}) },
	}
	for pattern, handler := range overrides {
		routes[pattern] = handler
	}
	mux := http.NewServeMux()
	for pattern, handler := range routes {
		mux.HandleFunc(pattern, handler)
	}
	return mux
}

func TestCycleDownloadsAllKindsInOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(path string) {
		mu.Lock()
		order = append(order, path)
		mu.Unlock()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		record("users")
		writeJSON(w, []domain.User{{ID: "u1", Name: "Ada", Role: domain.RoleClient}})
	})
	mux.HandleFunc("GET /exercises", func(w http.ResponseWriter, r *http.Request) {
		record("exercises")
		writeJSON(w, []domain.Exercise{{ID: "e1", Name: "Squat"}})
	})
	mux.HandleFunc("GET /client/workouts", func(w http.ResponseWriter, r *http.Request) {
		record("workouts")
		writeJSON(w, []domain.Workout{{ID: "w1", Name: "Day 1"}})
	})
	mux.HandleFunc("GET /client/assignments", func(w http.ResponseWriter, r *http.Request) {
		record("assignments")
		writeJSON(w, []domain.Assignment{{ID: "a1", Status: domain.StatusAssigned}})
	})

	env := newTestEnv(t, mux)
	require.True(t, env.manager.TrySync(context.Background()))

	report := env.manager.LastReport()
	require.NotNil(t, report)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, StateIdle, env.manager.State())

	assert.Equal(t, []string{"users", "exercises", "workouts", "assignments"}, order)

	cached, found, err := env.exStore.FetchByID(context.Background(), "e1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Squat", cached.Name)
}

func TestCycleFlushesPendingBeforeDownloading(t *testing.T) {
	var mu sync.Mutex
	var events []string

	mux := collections(map[string]http.HandlerFunc{
		"PUT /exercises/{id}": func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			events = append(events, "put")
			mu.Unlock()
			var e domain.Exercise
			require.NoError(t, json.NewDecoder(r.Body).Decode(&e))
			writeJSON(w, e)
		},
		"GET /exercises": func(w http.ResponseWriter, r *http.Request) {
			mu.Lock()
			events = append(events, "list")
			mu.Unlock()
			writeJSON(w, []domain.Exercise{})
		},
	})

	env := newTestEnv(t, mux)
	ctx := context.Background()
	_, err := env.exercises.Create(ctx, domain.Exercise{Name: "Pull-up"})
	require.NoError(t, err)

	require.True(t, env.manager.TrySync(ctx))

	report := env.manager.LastReport()
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Uploaded)
	assert.Empty(t, report.Warnings)
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, "put", events[0], "upload phase must run before download")
}

func TestConcurrentTriggerIsDropped(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	var once sync.Once
	mux := collections(map[string]http.HandlerFunc{
		"GET /users": func(w http.ResponseWriter, r *http.Request) {
			once.Do(func() {
				close(entered)
				<-release
			})
			writeJSON(w, []domain.User{})
		},
	})

	env := newTestEnv(t, mux)

	done := make(chan bool, 1)
	go func() { done <- env.manager.TrySync(context.Background()) }()

	<-entered
	// A trigger while the first cycle is mid-flight is a no-op.
	assert.False(t, env.manager.TrySync(context.Background()))
	close(release)
	assert.True(t, <-done)
}

func TestFailingKindDoesNotBlockLaterKinds(t *testing.T) {
	var assignmentsServed bool
	mux := collections(map[string]http.HandlerFunc{
		"GET /exercises": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "exercise listing broke", http.StatusInternalServerError)
		},
		"GET /client/assignments": func(w http.ResponseWriter, r *http.Request) {
			assignmentsServed = true
			writeJSON(w, []domain.Assignment{{ID: "a1", Status: domain.StatusAssigned}})
		},
	})

	env := newTestEnv(t, mux)
	require.True(t, env.manager.TrySync(context.Background()))

	report := env.manager.LastReport()
	require.NotNil(t, report)
	assert.Len(t, report.Warnings, 1)
	assert.True(t, assignmentsServed, "later kinds must still sync")
}

func TestPendingRecordsAggregatesKinds(t *testing.T) {
	env := newTestEnv(t, collections(nil))
	ctx := context.Background()

	_, err := env.exercises.Create(ctx, domain.Exercise{Name: "Plank"})
	require.NoError(t, err)
	require.NoError(t, env.users.UpdateProfile(ctx, domain.User{ID: "u1", Name: "Ada", Role: domain.RoleClient}))

	records, err := env.manager.PendingRecords(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)

	kinds := map[domain.Kind]bool{}
	for _, r := range records {
		kinds[r.Kind()] = true
	}
	assert.True(t, kinds[domain.KindUser])
	assert.True(t, kinds[domain.KindExercise])
}

func TestReportTimestamps(t *testing.T) {
	env := newTestEnv(t, collections(nil))
	start := time.Now().UTC()
	require.True(t, env.manager.TrySync(context.Background()))

	report := env.manager.LastReport()
	require.NotNil(t, report)
	assert.False(t, report.StartedAt.Before(start.Add(-time.Second)))
	assert.False(t, report.FinishedAt.Before(report.StartedAt))
}
