package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tube_accounts/internal/assets"
	"github.com/Skotchmaster/tube_accounts/internal/events"
	"github.com/Skotchmaster/tube_accounts/internal/hash"
	"github.com/Skotchmaster/tube_accounts/internal/models"
	"github.com/Skotchmaster/tube_accounts/internal/repo"
	"github.com/Skotchmaster/tube_accounts/internal/search"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

type fakeAssets struct {
	mu      sync.Mutex
	uploads []string
	failOn  map[string]bool
}

func (f *fakeAssets) Upload(_ context.Context, localPath string) (*assets.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if localPath == "" {
		return nil, assets.ErrNoFile
	}
	_ = os.Remove(localPath)
	name := filepath.Base(localPath)
	if f.failOn[name] {
		return nil, errors.New("asset host down")
	}
	f.uploads = append(f.uploads, name)
	return &assets.UploadResult{
		URL:       "http://assets.test/" + name,
		Key:       name,
		CreatedAt: time.Now(),
	}, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, _ string, _ string, event any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if ev, ok := event.(events.UserEvent); ok {
		f.events = append(f.events, ev.Type)
	}
	return f.err
}

type fakeIndex struct {
	mu      sync.Mutex
	docs    map[string]search.ChannelDoc
	err     error
	queries []string
}

func (f *fakeIndex) IndexChannel(_ context.Context, doc search.ChannelDoc) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.err != nil {
		return f.err
	}
	f.docs[doc.ID] = doc
	return nil
}

func (f *fakeIndex) SearchChannels(_ context.Context, query string, _, _ int) (int64, []search.ChannelDoc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queries = append(f.queries, query)
	if f.err != nil {
		return 0, nil, f.err
	}
	out := make([]search.ChannelDoc, 0, len(f.docs))
	for _, d := range f.docs {
		out = append(out, d)
	}
	return int64(len(out)), out, nil
}

type testEnv struct {
	db      *gorm.DB
	repo    *repo.GormRepo
	tokens  *TokenService
	session *SessionService
	profile *ProfileService
	assets  *fakeAssets
	events  *fakePublisher
	index   *fakeIndex
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Subscription{}, &models.WatchHistoryEntry{}))

	r := repo.New(db)
	fa := &fakeAssets{failOn: map[string]bool{}}
	fp := &fakePublisher{}
	fi := &fakeIndex{docs: map[string]search.ChannelDoc{}}
	notify := &Notifier{Events: fp, Topic: "user_events", Index: fi}
	ts := NewTokenService(r, []byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 24*time.Hour)

	return &testEnv{
		db:      db,
		repo:    r,
		tokens:  ts,
		session: NewSessionService(r, ts, fa, notify),
		profile: NewProfileService(r, fa, notify),
		assets:  fa,
		events:  fp,
		index:   fi,
	}
}

func tempFile(t *testing.T, name string) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("image-bytes"), 0o600))
	return p
}

func (env *testEnv) register(t *testing.T, fullName, email, username, password string) *models.User {
	t.Helper()

	u, err := env.session.Register(context.Background(), RegisterInput{
		FullName:   fullName,
		Email:      email,
		Username:   username,
		Password:   password,
		AvatarPath: tempFile(t, username+"-avatar.png"),
	})
	require.NoError(t, err)
	return u
}
