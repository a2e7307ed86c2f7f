package engine

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"studyquest/internal/auth"
	"studyquest/internal/quest"
	"studyquest/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type insertCall struct {
	cred storage.Credential
	rows []storage.QuestRow
}

type updateCall struct {
	questID string
	user    string
	tasks   []quest.Task
}

// fakeStore simulates the remote table. A non-nil gate holds every write
// until it is closed, standing in for network latency.
type fakeStore struct {
	mu        sync.Mutex
	rows      map[string][]quest.Quest
	selectErr error
	insertErr error
	updateErr error
	gate      chan struct{}

	selectStarted chan struct{}
	selectRelease chan struct{}

	selects int
	inserts []insertCall
	updates []updateCall
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: map[string][]quest.Quest{}}
}

func (f *fakeStore) SelectQuestsForUser(_ context.Context, _ storage.Credential, user string) ([]quest.Quest, error) {
	if f.selectStarted != nil {
		f.selectStarted <- struct{}{}
	}
	if f.selectRelease != nil {
		<-f.selectRelease
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects++
	if f.selectErr != nil {
		return nil, &storage.RemoteError{Op: "select quests", Err: f.selectErr}
	}
	return quest.CloneAll(f.rows[user]), nil
}

func (f *fakeStore) InsertQuests(_ context.Context, cred storage.Credential, rows []storage.QuestRow) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts = append(f.inserts, insertCall{cred: cred, rows: rows})
	if f.insertErr != nil {
		return &storage.RemoteError{Op: "insert quests", Err: f.insertErr}
	}
	for _, r := range rows {
		f.rows[r.UserID] = append(f.rows[r.UserID], r.Quest.Clone())
	}
	return nil
}

func (f *fakeStore) UpdateQuestTasks(_ context.Context, _ storage.Credential, questID, user string, tasks []quest.Task) error {
	if f.gate != nil {
		<-f.gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, updateCall{questID: questID, user: user, tasks: tasks})
	return f.updateErr
}

func (f *fakeStore) insertCalls() []insertCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]insertCall(nil), f.inserts...)
}

func (f *fakeStore) updateCalls() []updateCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]updateCall(nil), f.updates...)
}

type resultLog struct {
	mu      sync.Mutex
	results []Result
}

func (l *resultLog) Report(r Result) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.results = append(l.results, r)
}

func (l *resultLog) all() []Result {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Result(nil), l.results...)
}

func newTestEngine(t *testing.T, store storage.QuestStore, tokens auth.TokenSource) (*Engine, *resultLog) {
	t.Helper()
	log := &resultLog{}
	e := New(store, tokens, WithLogger(zaptest.NewLogger(t)), WithReporter(log))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, e.Wait(ctx))
	})
	return e, log
}

func waitAll(t *testing.T, e *Engine) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
}

func sampleQuest(id string) quest.Quest {
	return quest.Quest{
		ID:    id,
		Title: "Quest " + id,
		Tasks: []quest.Task{{Title: "a", XP: 100}, {Title: "b", XP: 50}},
	}
}

func TestLoadEmptyRemoteSeedsDefaultsAndInsertsOnce(t *testing.T) {
	store := newFakeStore()
	e, log := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()

	require.True(t, e.Loading())
	e.Load(ctx, "alice")
	require.False(t, e.Loading())

	if diff := cmp.Diff(quest.DefaultSeed(), e.Quests()); diff != "" {
		t.Fatalf("collection differs from seed (-want +got):\n%s", diff)
	}

	waitAll(t, e)
	inserts := store.insertCalls()
	require.Len(t, inserts, 1)
	require.Equal(t, storage.Credential("tok"), inserts[0].cred)
	require.Len(t, inserts[0].rows, len(quest.DefaultSeed()))
	for _, r := range inserts[0].rows {
		require.Equal(t, "alice", r.UserID)
	}

	results := log.all()
	require.Len(t, results, 2)
	require.Equal(t, OpLoad, results[0].Op)
	require.Equal(t, OpSeed, results[1].Op)
	require.Equal(t, Persisted, results[1].Status)
}

func TestLoadSeedFailureKeepsSeed(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("network down")
	e, log := newTestEngine(t, store, auth.Static("tok"))

	e.Load(context.Background(), "alice")
	waitAll(t, e)

	require.Len(t, e.Quests(), 3)
	results := log.all()
	require.Equal(t, PersistFailed, results[len(results)-1].Status)
	var re *storage.RemoteError
	require.ErrorAs(t, results[len(results)-1].Err, &re)
}

func TestLoadNonEmptyRemoteIsAuthoritative(t *testing.T) {
	store := newFakeStore()
	store.rows["bob"] = []quest.Quest{sampleQuest("x"), sampleQuest("y")}
	e, _ := newTestEngine(t, store, auth.Static("tok"))

	e.Load(context.Background(), "bob")
	waitAll(t, e)

	got := e.Quests()
	require.Len(t, got, 2)
	require.Equal(t, "x", got[0].ID)
	require.Equal(t, "y", got[1].ID)
	require.Empty(t, store.insertCalls())
	require.Equal(t, "bob", e.User())
}

func TestLoadFailureResolvesLoadingWithEmptyCollection(t *testing.T) {
	store := newFakeStore()
	store.selectErr = errors.New("401")
	e, log := newTestEngine(t, store, auth.Static("tok"))

	e.Load(context.Background(), "alice")
	require.False(t, e.Loading())
	require.Empty(t, e.Quests())
	require.Empty(t, store.insertCalls())

	results := log.all()
	require.Len(t, results, 1)
	require.Equal(t, PersistFailed, results[0].Status)
}

func TestLoadWithoutCredentialStaysLoading(t *testing.T) {
	store := newFakeStore()
	e, log := newTestEngine(t, store, auth.Static(""))

	e.Load(context.Background(), "alice")
	require.True(t, e.Loading())
	require.Zero(t, store.selects)

	results := log.all()
	require.Len(t, results, 1)
	require.Equal(t, Skipped, results[0].Status)
	require.ErrorIs(t, results[0].Err, ErrNoCredential)
}

func TestLoadSupersededByResetIsDiscarded(t *testing.T) {
	store := newFakeStore()
	store.rows["alice"] = []quest.Quest{sampleQuest("a1")}
	store.selectStarted = make(chan struct{})
	store.selectRelease = make(chan struct{})
	e, _ := newTestEngine(t, store, auth.Static("tok"))

	done := make(chan struct{})
	go func() {
		defer close(done)
		e.Load(context.Background(), "alice")
	}()
	<-store.selectStarted
	e.Reset()
	close(store.selectRelease)
	<-done

	require.Empty(t, e.Quests())
	require.Equal(t, "", e.User())
	require.True(t, e.Loading())
}

func TestLoadOtherUserResetsCollection(t *testing.T) {
	store := newFakeStore()
	store.rows["alice"] = []quest.Quest{sampleQuest("a1")}
	store.rows["bob"] = []quest.Quest{sampleQuest("b1"), sampleQuest("b2")}
	e, _ := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()

	e.Load(ctx, "alice")
	require.Len(t, e.Quests(), 1)
	e.Load(ctx, "bob")
	got := e.Quests()
	require.Len(t, got, 2)
	require.Equal(t, "b1", got[0].ID)
}

func TestReloadSameUserKeepsInFlightToggle(t *testing.T) {
	store := newFakeStore()
	e, _ := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()
	e.Load(ctx, "alice")
	waitAll(t, e)

	store.mu.Lock()
	store.gate = make(chan struct{})
	gate := store.gate
	selects := store.selects
	store.mu.Unlock()

	orig := e.Quests()[1].Tasks[0].Completed
	e.ToggleTask(ctx, "2", 0)
	require.Equal(t, !orig, e.Quests()[1].Tasks[0].Completed)

	e.Load(ctx, "alice")
	require.Equal(t, !orig, e.Quests()[1].Tasks[0].Completed)
	require.False(t, e.Loading())

	store.mu.Lock()
	require.Equal(t, selects, store.selects)
	store.mu.Unlock()

	close(gate)
	waitAll(t, e)
	require.Equal(t, !orig, e.Quests()[1].Tasks[0].Completed)
}

func TestReloadSameUserWithoutCredentialStaysLoaded(t *testing.T) {
	store := newFakeStore()
	store.rows["alice"] = []quest.Quest{sampleQuest("a1")}
	var calls atomic.Int32
	tokens := auth.Func(func(context.Context, string) (string, bool, error) {
		if calls.Add(1) == 1 {
			return "tok", true, nil
		}
		return "", false, nil
	})
	e, _ := newTestEngine(t, store, tokens)
	ctx := context.Background()

	e.Load(ctx, "alice")
	require.False(t, e.Loading())

	e.Load(ctx, "alice")
	require.False(t, e.Loading())
	require.Len(t, e.Quests(), 1)
}

func TestReloadAfterFailedLoadRetries(t *testing.T) {
	store := newFakeStore()
	store.selectErr = errors.New("offline")
	e, _ := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()

	e.Load(ctx, "alice")
	require.Empty(t, e.Quests())

	store.mu.Lock()
	store.selectErr = nil
	store.rows["alice"] = []quest.Quest{sampleQuest("a1")}
	store.mu.Unlock()

	e.Load(ctx, "alice")
	require.Len(t, e.Quests(), 1)
}

func TestAddQuestVisibleBeforeFailedRemoteWrite(t *testing.T) {
	store := newFakeStore()
	store.rows["alice"] = []quest.Quest{sampleQuest("existing")}
	e, log := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()
	e.Load(ctx, "alice")

	store.mu.Lock()
	store.gate = make(chan struct{})
	store.insertErr = errors.New("timeout")
	gate := store.gate
	store.mu.Unlock()

	snap, err := e.AddQuest(ctx, sampleQuest("new"))
	require.NoError(t, err)
	require.Len(t, snap, 2)
	require.Equal(t, "new", snap[1].ID)
	require.Len(t, e.Quests(), 2)
	require.Empty(t, store.insertCalls(), "remote write resolved before the gate opened")

	close(gate)
	waitAll(t, e)

	require.Len(t, e.Quests(), 2, "failed write rolled back local state")
	inserts := store.insertCalls()
	require.Len(t, inserts, 1)
	require.Equal(t, "alice", inserts[0].rows[0].UserID)
	require.Equal(t, "new", inserts[0].rows[0].ID)

	results := log.all()
	last := results[len(results)-1]
	require.Equal(t, OpAddQuest, last.Op)
	require.Equal(t, "new", last.QuestID)
	require.Equal(t, PersistFailed, last.Status)
}

func TestAddQuestRejectsDuplicateAndInvalid(t *testing.T) {
	store := newFakeStore()
	e, _ := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()
	e.Load(ctx, "alice")
	waitAll(t, e)

	_, err := e.AddQuest(ctx, quest.DefaultSeed()[0])
	var dup DuplicateQuestError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "1", dup.ID)

	_, err = e.AddQuest(ctx, quest.Quest{ID: "z"})
	require.ErrorIs(t, err, quest.ErrInvalidQuest)
	require.Len(t, e.Quests(), 3)
}

func TestAddQuestWithoutSessionIsLocalOnly(t *testing.T) {
	store := newFakeStore()
	e, log := newTestEngine(t, store, auth.Static("tok"))

	snap, err := e.AddQuest(context.Background(), sampleQuest("q"))
	require.NoError(t, err)
	require.Len(t, snap, 1)
	waitAll(t, e)
	require.Empty(t, store.insertCalls())

	results := log.all()
	require.Len(t, results, 1)
	require.Equal(t, Skipped, results[0].Status)
	require.ErrorIs(t, results[0].Err, ErrNoSession)
}

func TestAddProposalAppliesDefaults(t *testing.T) {
	store := newFakeStore()
	log := &resultLog{}
	e := New(store, auth.Static("tok"), WithReporter(log), WithIDFunc(func() string { return "generated" }))
	ctx := context.Background()
	e.Load(ctx, "alice")

	xp := 120
	q, snap, err := e.AddProposal(ctx, quest.Proposal{
		Title: "Algebra",
		Tasks: []quest.ProposedTask{{Title: "Ch1", XP: &xp}, {Title: " "}, {Title: "Ch2"}},
	})
	require.NoError(t, err)
	require.Equal(t, "generated", q.ID)
	require.Equal(t, quest.DefaultIcon, q.Icon)
	require.Equal(t, []quest.Task{{Title: "Ch1", XP: 120}, {Title: "Ch2", XP: 100}}, q.Tasks)
	require.Equal(t, "generated", snap[len(snap)-1].ID)

	waitAll(t, e)
	inserts := store.insertCalls()
	require.Equal(t, "generated", inserts[len(inserts)-1].rows[0].ID)
}

func TestToggleTaskTwiceRestoresOriginal(t *testing.T) {
	store := newFakeStore()
	e, _ := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()
	e.Load(ctx, "alice")
	waitAll(t, e)

	store.mu.Lock()
	store.gate = make(chan struct{})
	gate := store.gate
	store.mu.Unlock()

	orig := e.Quests()[1].Tasks[0].Completed

	first := e.ToggleTask(ctx, "2", 0)
	require.Equal(t, !orig, first[1].Tasks[0].Completed)
	require.Equal(t, !orig, e.Quests()[1].Tasks[0].Completed)

	second := e.ToggleTask(ctx, "2", 0)
	require.Equal(t, orig, second[1].Tasks[0].Completed)
	require.Equal(t, orig, e.Quests()[1].Tasks[0].Completed)
	require.Empty(t, store.updateCalls())

	close(gate)
	waitAll(t, e)

	updates := store.updateCalls()
	require.Len(t, updates, 2)
	seen := map[bool]bool{}
	for _, u := range updates {
		require.Equal(t, "2", u.questID)
		require.Equal(t, "alice", u.user)
		require.Len(t, u.tasks, 3)
		seen[u.tasks[0].Completed] = true
	}
	require.True(t, seen[true] && seen[false], "each toggle must carry its own full task list")
}

func TestToggleTaskFailureKeepsLocalState(t *testing.T) {
	store := newFakeStore()
	e, log := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()
	e.Load(ctx, "alice")
	waitAll(t, e)

	store.mu.Lock()
	store.updateErr = &storage.RemoteError{Op: "update quest tasks", Err: errors.New("503")}
	store.mu.Unlock()

	before := e.TotalXP()
	e.ToggleTask(ctx, "3", 2)
	waitAll(t, e)

	require.Equal(t, before+250, e.TotalXP())
	p, ok := e.Progress("3")
	require.True(t, ok)
	require.Equal(t, 33, p)

	results := log.all()
	last := results[len(results)-1]
	require.Equal(t, OpToggleTask, last.Op)
	require.Equal(t, PersistFailed, last.Status)
}

func TestToggleTaskUnknownIsNoop(t *testing.T) {
	store := newFakeStore()
	e, _ := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()
	e.Load(ctx, "alice")
	waitAll(t, e)
	before := e.Quests()

	require.Equal(t, before, e.ToggleTask(ctx, "missing", 0))
	require.Equal(t, before, e.ToggleTask(ctx, "1", 99))
	require.Equal(t, before, e.ToggleTask(ctx, "1", -1))
	waitAll(t, e)
	require.Empty(t, store.updateCalls())

	_, ok := e.Progress("missing")
	require.False(t, ok)
}

func TestSnapshotIsolation(t *testing.T) {
	store := newFakeStore()
	e, _ := newTestEngine(t, store, auth.Static("tok"))
	ctx := context.Background()
	e.Load(ctx, "alice")
	waitAll(t, e)

	snap := e.Snapshot()
	snap.Quests[0].Tasks[1].Completed = true
	require.False(t, e.Quests()[0].Tasks[1].Completed)
	require.Equal(t, 150, snap.TotalXP)
	require.Equal(t, "alice", snap.User)
	require.False(t, snap.Loading)
}

func TestBackgroundWriteOutlivesCallerContext(t *testing.T) {
	store := newFakeStore()
	e, log := newTestEngine(t, store, auth.Static("tok"))
	e.Load(context.Background(), "alice")
	waitAll(t, e)

	ctx, cancel := context.WithCancel(context.Background())
	e.ToggleTask(ctx, "1", 1)
	cancel()
	waitAll(t, e)

	results := log.all()
	require.Equal(t, Persisted, results[len(results)-1].Status)
}

func TestCloseWaitsAndResets(t *testing.T) {
	store := newFakeStore()
	e := New(store, auth.Static("tok"))
	e.Load(context.Background(), "alice")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.Close(ctx))
	require.Len(t, store.insertCalls(), 1)
	require.Empty(t, e.Quests())
	require.Equal(t, "", e.User())
}

func TestStatusString(t *testing.T) {
	require.Equal(t, "persisted", Persisted.String())
	require.Equal(t, "persist_failed", PersistFailed.String())
	require.Equal(t, "skipped", Skipped.String())
	require.Equal(t, "unknown", Status(0).String())
}
