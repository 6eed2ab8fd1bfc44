package v1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"uptime-config/models"
)

type countingStore struct {
	ConfigStore
	gets, puts int
	putErr     error
}

func (s *countingStore) Get(ctx context.Context) ([]byte, error) {
	s.gets++
	return s.ConfigStore.Get(ctx)
}

func (s *countingStore) Put(ctx context.Context, blob []byte) error {
	s.puts++
	if s.putErr != nil {
		return s.putErr
	}
	return s.ConfigStore.Put(ctx, blob)
}

type fakeMirror struct {
	file     MirrorFile
	readErr  error
	writeErr error

	reads, writes, creates int
	lastToken              string
	lastContent            []byte
}

func (m *fakeMirror) ReadCurrent(ctx context.Context, creds MirrorCredentials, path string) (MirrorFile, error) {
	m.reads++
	return m.file, m.readErr
}

func (m *fakeMirror) WriteIfMatch(ctx context.Context, creds MirrorCredentials, path string, content []byte, expectedToken, message string) error {
	m.writes++
	m.lastToken, m.lastContent = expectedToken, content
	return m.writeErr
}

func (m *fakeMirror) Create(ctx context.Context, creds MirrorCredentials, path string, content []byte, message string) error {
	m.creates++
	m.lastContent = content
	return m.writeErr
}

func (m *fakeMirror) calls() int { return m.reads + m.writes + m.creates }

func testDocument() models.ConfigurationDocument {
	return models.ConfigurationDocument{
		PageSettings: &models.PageSettings{Title: "S"},
		MonitorSettings: &models.MonitorSettings{Monitors: []models.MonitorTarget{
			{ID: "m1", Method: "HTTP", Target: "https://x"},
		}},
	}
}

func newTestCoordinator(store ConfigStore, mirror Mirror, createIfMissing bool) (*Coordinator, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := NewCoordinator(store, mirror, MirrorOptions{
		Path:            "uptime.config.ts",
		CommitMessage:   "Update uptime configuration",
		CreateIfMissing: createIfMissing,
	}, zap.New(core))
	return c, logs
}

func TestWriteWithoutCredentialsIsLocalOnly(t *testing.T) {
	store := &countingStore{ConfigStore: NewMemoryStore()}
	mirror := &fakeMirror{}
	c, _ := newTestCoordinator(store, mirror, false)

	res, err := c.Write(context.Background(), testDocument(), nil)
	require.NoError(t, err)
	assert.Equal(t, StateDone, res.State)
	assert.True(t, res.Partial)
	assert.False(t, res.Mirrored)
	assert.Equal(t, 1, store.puts)
	assert.Zero(t, mirror.calls())

	got, err := c.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, testDocument(), got)
}

func TestWriteStoreFailureSkipsMirror(t *testing.T) {
	store := &countingStore{ConfigStore: NewMemoryStore(), putErr: errors.New("dial tcp: connection refused")}
	mirror := &fakeMirror{}
	c, _ := newTestCoordinator(store, mirror, false)

	res, err := c.Write(context.Background(), testDocument(), &testCreds)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.Equal(t, StateStoreWriting, res.State)
	assert.Zero(t, mirror.calls())
}

func TestWriteMalformedTouchesNothing(t *testing.T) {
	store := &countingStore{ConfigStore: NewMemoryStore()}
	mirror := &fakeMirror{}
	c, _ := newTestCoordinator(store, mirror, false)

	doc := testDocument()
	doc.MonitorSettings.Monitors = append(doc.MonitorSettings.Monitors,
		models.MonitorTarget{ID: "dup", Method: "GET", Target: "https://a"},
		models.MonitorTarget{ID: "dup", Method: "GET", Target: "https://b"},
	)

	_, err := c.Write(context.Background(), doc, &testCreds)
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.Zero(t, store.puts)
	assert.Zero(t, store.gets)
	assert.Zero(t, mirror.calls())
}

func TestWriteMirrorsWithReadToken(t *testing.T) {
	store := &countingStore{ConfigStore: NewMemoryStore()}
	mirror := &fakeMirror{file: MirrorFile{Content: []byte("old"), Token: "sha-1"}}
	c, _ := newTestCoordinator(store, mirror, false)

	res, err := c.Write(context.Background(), testDocument(), &testCreds)
	require.NoError(t, err)
	assert.False(t, res.Partial)
	assert.True(t, res.Mirrored)
	assert.Equal(t, 1, mirror.writes)
	assert.Equal(t, "sha-1", mirror.lastToken)

	want, err := ToMirrorSource(testDocument())
	require.NoError(t, err)
	assert.Equal(t, want, mirror.lastContent)
}

func TestWriteMirrorUnchangedSkipsCommit(t *testing.T) {
	source, err := ToMirrorSource(testDocument())
	require.NoError(t, err)
	mirror := &fakeMirror{file: MirrorFile{Content: source, Token: "sha-1"}}
	c, _ := newTestCoordinator(NewMemoryStore(), mirror, false)

	res, err := c.Write(context.Background(), testDocument(), &testCreds)
	require.NoError(t, err)
	assert.True(t, res.Mirrored)
	assert.False(t, res.Partial)
	assert.Zero(t, mirror.writes)
}

func TestWriteMirrorFailuresAreAbsorbed(t *testing.T) {
	cases := map[string]*fakeMirror{
		"conflict":         {file: MirrorFile{Token: "sha-1"}, writeErr: &MirrorError{Op: "write", Kind: ErrMirrorConflict, StatusCode: 409}},
		"auth on write":    {file: MirrorFile{Token: "sha-1"}, writeErr: &MirrorError{Op: "write", Kind: ErrMirrorAuth, StatusCode: 401}},
		"unavailable":      {file: MirrorFile{Token: "sha-1"}, writeErr: &MirrorError{Op: "write", Kind: ErrMirrorUnavailable}},
		"auth on read":     {readErr: &MirrorError{Op: "read", Kind: ErrMirrorAuth, StatusCode: 403}},
		"read unavailable": {readErr: &MirrorError{Op: "read", Kind: ErrMirrorUnavailable}},
	}
	for name, mirror := range cases {
		t.Run(name, func(t *testing.T) {
			store := &countingStore{ConfigStore: NewMemoryStore()}
			c, logs := newTestCoordinator(store, mirror, false)

			res, err := c.Write(context.Background(), testDocument(), &testCreds)
			require.NoError(t, err)
			assert.Equal(t, StateDone, res.State)
			assert.True(t, res.Partial)
			assert.False(t, res.Mirrored)
			assert.NotEmpty(t, res.Warning)
			assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())

			got, err := c.Read(context.Background())
			require.NoError(t, err)
			assert.Equal(t, testDocument(), got)
		})
	}
}

func TestWriteMirrorMissingFile(t *testing.T) {
	missing := &MirrorError{Op: "read", Kind: ErrMirrorNotFound, StatusCode: 404}

	t.Run("update only", func(t *testing.T) {
		mirror := &fakeMirror{readErr: missing}
		c, logs := newTestCoordinator(NewMemoryStore(), mirror, false)

		res, err := c.Write(context.Background(), testDocument(), &testCreds)
		require.NoError(t, err)
		assert.True(t, res.Partial)
		assert.Contains(t, res.Warning, "does not exist")
		assert.Zero(t, mirror.writes+mirror.creates)
		assert.Equal(t, 1, logs.FilterMessage("mirror file missing, skipping mirror update").Len())
	})

	t.Run("create if missing", func(t *testing.T) {
		mirror := &fakeMirror{readErr: missing}
		c, _ := newTestCoordinator(NewMemoryStore(), mirror, true)

		res, err := c.Write(context.Background(), testDocument(), &testCreds)
		require.NoError(t, err)
		assert.False(t, res.Partial)
		assert.True(t, res.Mirrored)
		assert.Equal(t, 1, mirror.creates)
		assert.Zero(t, mirror.writes)
	})

	t.Run("create conflict", func(t *testing.T) {
		mirror := &fakeMirror{readErr: missing, writeErr: &MirrorError{Op: "create", Kind: ErrMirrorConflict, StatusCode: 422}}
		c, _ := newTestCoordinator(NewMemoryStore(), mirror, true)

		res, err := c.Write(context.Background(), testDocument(), &testCreds)
		require.NoError(t, err)
		assert.True(t, res.Partial)
	})
}

func TestReadNotConfigured(t *testing.T) {
	mirror := &fakeMirror{}
	c, _ := newTestCoordinator(NewMemoryStore(), mirror, false)

	_, err := c.Read(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Zero(t, mirror.calls())
}

func TestReadCorruptBlob(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), []byte(`{"pageSettings":`)))
	c, _ := newTestCoordinator(store, nil, false)

	_, err := c.Read(context.Background())
	assert.ErrorIs(t, err, ErrMalformedDocument)
}
