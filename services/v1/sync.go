package v1

import (
	"bytes"
	"context"
	"errors"

	"go.uber.org/zap"

	"uptime-config/models"
)

// SyncState is a step of a configuration write.
type SyncState string

const (
	StateIdle          SyncState = "idle"
	StateStoreWriting  SyncState = "store_writing"
	StateStoreWritten  SyncState = "store_written"
	StateMirrorReading SyncState = "mirror_reading"
	StateMirrorWriting SyncState = "mirror_writing"
	StateDone          SyncState = "done"
)

// SyncResult describes a write that reached the authoritative store. Partial is set whenever the
// mirror was not brought up to date, whether by choice or by failure.
type SyncResult struct {
	State    SyncState
	Partial  bool
	Mirrored bool
	Warning  string
}

type MirrorOptions struct {
	Path          string
	CommitMessage string
	// CreateIfMissing creates the mirror file when it does not exist yet; otherwise the mirror
	// step is skipped with a warning.
	CreateIfMissing bool
}

// Coordinator commits configuration documents to the authoritative store and then, best effort,
// to the mirror. It holds no state between calls.
type Coordinator struct {
	store  ConfigStore
	mirror Mirror
	opts   MirrorOptions
	logger *zap.Logger
}

func NewCoordinator(store ConfigStore, mirror Mirror, opts MirrorOptions, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{store: store, mirror: mirror, opts: opts, logger: logger}
}

// Read returns the authoritative document. The mirror is never consulted.
func (c *Coordinator) Read(ctx context.Context) (models.ConfigurationDocument, error) {
	blob, err := c.store.Get(ctx)
	if err != nil {
		return models.ConfigurationDocument{}, err
	}
	return FromStoreBlob(blob)
}

// Write validates doc, stores it, and mirrors it when creds is non-nil. Once the store write
// succeeds the returned error is always nil; mirror problems only show up in the result.
func (c *Coordinator) Write(ctx context.Context, doc models.ConfigurationDocument, creds *MirrorCredentials) (SyncResult, error) {
	res := SyncResult{State: StateIdle}

	if err := Validate(&doc); err != nil {
		return res, err
	}
	blob, err := ToStoreBlob(doc)
	if err != nil {
		return res, malformed("encode: %v", err)
	}

	c.transition(&res, StateStoreWriting)
	if err := c.store.Put(ctx, blob); err != nil {
		c.logger.Error("store write failed", zap.Error(err))
		if !errors.Is(err, ErrStoreUnavailable) {
			err = storeUnavailable("put", err)
		}
		return res, err
	}
	c.transition(&res, StateStoreWritten)

	if creds == nil || c.mirror == nil {
		c.logger.Debug("mirror not requested, stored locally only")
		return c.finish(res, true, ""), nil
	}

	return c.syncMirror(ctx, res, doc, *creds), nil
}

func (c *Coordinator) syncMirror(ctx context.Context, res SyncResult, doc models.ConfigurationDocument, creds MirrorCredentials) SyncResult {
	log := c.logger.With(
		zap.String("owner", creds.Owner),
		zap.String("repo", creds.Repo),
		zap.String("path", c.opts.Path),
	)

	source, err := ToMirrorSource(doc)
	if err != nil {
		log.Warn("mirror render failed", zap.Error(err))
		return c.finish(res, true, "mirror not updated: "+err.Error())
	}

	c.transition(&res, StateMirrorReading)
	current, err := c.mirror.ReadCurrent(ctx, creds, c.opts.Path)
	switch {
	case errors.Is(err, ErrMirrorNotFound) && c.opts.CreateIfMissing:
		c.transition(&res, StateMirrorWriting)
		if err := c.mirror.Create(ctx, creds, c.opts.Path, source, c.opts.CommitMessage); err != nil {
			log.Warn("mirror create failed", zap.Error(err))
			return c.finish(res, true, "mirror not updated: "+err.Error())
		}
		log.Info("mirror file created")
		res.Mirrored = true
		return c.finish(res, false, "")
	case errors.Is(err, ErrMirrorNotFound):
		log.Warn("mirror file missing, skipping mirror update", zap.Error(err))
		return c.finish(res, true, "mirror file "+c.opts.Path+" does not exist; mirror not updated")
	case err != nil:
		log.Warn("mirror read failed", zap.Error(err))
		return c.finish(res, true, "mirror not updated: "+err.Error())
	}

	if bytes.Equal(current.Content, source) {
		log.Debug("mirror already up to date")
		res.Mirrored = true
		return c.finish(res, false, "")
	}

	c.transition(&res, StateMirrorWriting)
	if err := c.mirror.WriteIfMatch(ctx, creds, c.opts.Path, source, current.Token, c.opts.CommitMessage); err != nil {
		log.Warn("mirror write failed", zap.String("expected_token", current.Token), zap.Error(err))
		return c.finish(res, true, "mirror not updated: "+err.Error())
	}
	log.Info("mirror updated", zap.String("previous_token", current.Token))
	res.Mirrored = true
	return c.finish(res, false, "")
}

func (c *Coordinator) transition(res *SyncResult, next SyncState) {
	c.logger.Debug("sync transition", zap.String("from", string(res.State)), zap.String("to", string(next)))
	res.State = next
}

func (c *Coordinator) finish(res SyncResult, partial bool, warning string) SyncResult {
	c.transition(&res, StateDone)
	res.Partial = partial
	res.Warning = warning
	return res
}
