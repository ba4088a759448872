// Package service provides the sync orchestrator: it decides, per
// operation, whether data flows through the remote store or only the
// on-device cache, and drives the session lifecycle.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/bganesh/bprogress/internal/auth"
	"github.com/bganesh/bprogress/internal/catalog"
	"github.com/bganesh/bprogress/internal/codec"
	"github.com/bganesh/bprogress/internal/localstore"
	"github.com/bganesh/bprogress/internal/merge"
	"github.com/bganesh/bprogress/internal/models"
	"github.com/bganesh/bprogress/internal/repository"
)

// Phase is the orchestrator's lifecycle state.
type Phase int

const (
	// PhaseUnauthenticated means no session is established.
	PhaseUnauthenticated Phase = iota
	// PhaseSessionResolving means the session is being looked up.
	PhaseSessionResolving
	// PhaseDocumentLoading means the session user's document (or the
	// supporter's master view) is being fetched.
	PhaseDocumentLoading
	// PhaseReady means a document is loaded and edits are accepted.
	PhaseReady
)

// DocumentStore defines the remote persistence operations required by
// the orchestrator. Nil means no remote is configured.
type DocumentStore interface {
	// GetDocument returns the encoded document for a user id, or
	// repository.ErrAbsent.
	GetDocument(ctx context.Context, userID string) (string, error)
	// PutDocument upserts the encoded document for a user id.
	PutDocument(ctx context.Context, userID, state string) error
	// ListDocuments returns every encoded document, in result-set
	// order. Used only by master-view aggregation.
	ListDocuments(ctx context.Context) ([]string, error)
}

// Orchestrator owns the session, the in-memory document and the
// write-through persistence path. There is exactly one writer per
// document (the owning user's client), so a single mutex serializing
// edits is all the coordination needed.
type Orchestrator struct {
	local    *localstore.Store
	remote   DocumentStore
	sessions auth.Service
	log      *zap.Logger

	// grace is how long after a load settles before autosave
	// suppression lifts on its own.
	grace time.Duration

	mu           sync.Mutex
	phase        Phase
	user         *models.User
	doc          *models.Document
	suppressSave bool
}

// New constructs an orchestrator. remote may be nil when no remote
// store is configured.
func New(local *localstore.Store, remote DocumentStore, sessions auth.Service, log *zap.Logger) *Orchestrator {
	return &Orchestrator{
		local:    local,
		remote:   remote,
		sessions: sessions,
		log:      log,
		grace:    500 * time.Millisecond,
		phase:    PhaseUnauthenticated,
	}
}

// CurrentPhase returns the current lifecycle state.
func (o *Orchestrator) CurrentPhase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

// CurrentUser returns the session user, or nil.
func (o *Orchestrator) CurrentUser() *models.User {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.user
}

// Document returns the loaded in-memory document, or nil before Ready.
func (o *Orchestrator) Document() *models.Document {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.doc
}

// ResolveSession looks up the current session and, when one exists,
// loads the matching document. Returns the session user, or nil when
// unauthenticated.
func (o *Orchestrator) ResolveSession(ctx context.Context) (*models.User, error) {
	o.setPhase(PhaseSessionResolving)

	user, err := o.sessions.CurrentSession(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		o.setPhase(PhaseUnauthenticated)
		return nil, nil
	}
	if err != nil {
		// Session resolution failures degrade to signed-out, never to
		// a hard error.
		o.log.Warn("session resolution failed", zap.Error(err))
		o.setPhase(PhaseUnauthenticated)
		return nil, nil
	}

	if err := o.Load(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Run consumes the auth-state change stream for the lifetime of ctx,
// re-resolving the session whenever it fires. Events that resolve to
// the already-loaded user id are dropped, so a redundant refresh never
// triggers a document reload.
func (o *Orchestrator) Run(ctx context.Context) {
	ch := o.sessions.Events()
	if ch == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			o.handleAuthEvent(ctx, ev)
		}
	}
}

// Load fetches the document for the given user and transitions the
// orchestrator to Ready. The supporter gets the merged master view;
// a friend gets their own document with the remote-then-local-then-
// default fallback chain. Never fails on remote unavailability.
func (o *Orchestrator) Load(ctx context.Context, user *models.User) error {
	o.mu.Lock()
	o.phase = PhaseDocumentLoading
	o.user = user
	o.suppressSave = true
	o.mu.Unlock()

	var doc *models.Document
	if user.Role == models.RoleAdmin {
		doc = o.loadMaster(ctx)
	} else {
		doc = o.loadUser(ctx, user.ID)
	}

	o.mu.Lock()
	o.doc = doc
	o.phase = PhaseReady
	o.mu.Unlock()

	// The write-through path stays suppressed until the load settles,
	// so a freshly fetched document is never re-persisted as if it
	// were a new edit. A genuine user mutation lifts the suppression
	// immediately.
	time.AfterFunc(o.grace, func() {
		o.mu.Lock()
		o.suppressSave = false
		o.mu.Unlock()
	})
	return nil
}

// Apply runs a user mutation against the in-memory document and, on
// success, persists the result write-through. It is the one entry
// point for edits, which keeps writes serialized.
func (o *Orchestrator) Apply(ctx context.Context, mutate func(doc *models.Document) error) error {
	o.mu.Lock()
	if o.phase != PhaseReady || o.doc == nil || o.user == nil {
		o.mu.Unlock()
		return fmt.Errorf("no document loaded")
	}
	if err := mutate(o.doc); err != nil {
		o.mu.Unlock()
		return err
	}
	// An actual edit ends the post-load grace period.
	o.suppressSave = false
	user := o.user
	doc := o.doc
	o.mu.Unlock()

	return o.Save(ctx, user.ID, doc)
}

// Save persists the document write-through: always to the local cache
// first, then best-effort to the remote store when the id is
// remote-backed. A remote write failure is logged, never surfaced.
// Saving is a no-op for the supporter, whose master view is synthetic
// and never persisted, and while autosave is suppressed after a load.
func (o *Orchestrator) Save(ctx context.Context, userID string, doc *models.Document) error {
	o.mu.Lock()
	if o.suppressSave {
		o.mu.Unlock()
		return nil
	}
	user := o.user
	o.mu.Unlock()

	if userID == "" || doc == nil {
		return nil
	}
	if user != nil && user.Role == models.RoleAdmin {
		return nil
	}

	if user != nil {
		owner := *user
		owner.Password = ""
		doc.Owner = &owner
	}

	encoded, err := codec.Encode(doc)
	if err != nil {
		return fmt.Errorf("save: %w", err)
	}

	if err := o.local.Put(localKey(userID), encoded); err != nil {
		return fmt.Errorf("save local: %w", err)
	}

	if o.remote != nil && !models.IsLocalID(userID) {
		if err := o.remote.PutDocument(ctx, userID, encoded); err != nil {
			o.log.Warn("remote mirror failed, local copy retained",
				zap.String("user", userID), zap.Error(err))
		}
	}
	return nil
}

// SignOut clears the session on every layer and drops in-memory state.
func (o *Orchestrator) SignOut(ctx context.Context) error {
	err := o.sessions.SignOut(ctx)

	o.mu.Lock()
	o.user = nil
	o.doc = nil
	o.phase = PhaseUnauthenticated
	o.mu.Unlock()

	return err
}

// loadUser fetches one user's document: remote first when configured
// and the id is remote-backed, then the local cache, then the default
// empty document. Every failure on the way down is swallowed.
func (o *Orchestrator) loadUser(ctx context.Context, userID string) *models.Document {
	if o.remote != nil && !models.IsLocalID(userID) {
		encoded, err := o.remote.GetDocument(ctx, userID)
		switch {
		case err == nil:
			if doc, derr := codec.Decode(encoded); derr == nil {
				return doc
			}
			o.log.Warn("remote document corrupt, using local cache", zap.String("user", userID))
		case errors.Is(err, repository.ErrAbsent):
			// New remote-backed user; fall through to the cache.
		default:
			o.log.Warn("remote fetch failed, using local cache",
				zap.String("user", userID), zap.Error(err))
		}
	}

	if encoded, ok, err := o.local.Get(localKey(userID)); err == nil && ok {
		if doc, derr := codec.Decode(encoded); derr == nil {
			return doc
		}
		o.log.Warn("local document corrupt, using default", zap.String("user", userID))
	}

	return merge.DefaultDocument()
}

// loadMaster aggregates every known per-user document into the
// supporter's master view. Fragment order is store-enumeration order.
func (o *Orchestrator) loadMaster(ctx context.Context) *models.Document {
	var fragments []*models.Document

	if o.remote != nil {
		encoded, err := o.remote.ListDocuments(ctx)
		if err == nil {
			for _, text := range encoded {
				doc, derr := codec.Decode(text)
				if derr != nil {
					o.log.Warn("skipping corrupt fragment in master view")
					continue
				}
				fragments = append(fragments, doc)
			}
			return merge.MergeAll(fragments)
		}
		o.log.Warn("remote scan failed, aggregating local cache", zap.Error(err))
	}

	keys, err := o.local.KeysWithPrefix(catalog.Namespace + "_")
	if err != nil {
		o.log.Warn("local enumeration failed", zap.Error(err))
		return merge.DefaultDocument()
	}
	for _, key := range keys {
		text, ok, gerr := o.local.Get(key)
		if gerr != nil || !ok {
			continue
		}
		doc, derr := codec.Decode(text)
		if derr != nil {
			o.log.Warn("skipping corrupt fragment in master view", zap.String("key", key))
			continue
		}
		fragments = append(fragments, doc)
	}
	return merge.MergeAll(fragments)
}

func (o *Orchestrator) handleAuthEvent(ctx context.Context, ev auth.Event) {
	o.mu.Lock()
	current := o.user
	o.mu.Unlock()

	if ev.User == nil {
		if current == nil {
			return
		}
		o.mu.Lock()
		o.user = nil
		o.doc = nil
		o.phase = PhaseUnauthenticated
		o.mu.Unlock()
		return
	}

	// Re-resolving to the same user must not re-trigger a reload.
	if current != nil && current.ID == ev.User.ID {
		return
	}
	if err := o.Load(ctx, ev.User); err != nil {
		o.log.Warn("reload on auth change failed", zap.Error(err))
	}
}

func (o *Orchestrator) setPhase(p Phase) {
	o.mu.Lock()
	o.phase = p
	o.mu.Unlock()
}

func localKey(userID string) string {
	return catalog.Namespace + "_" + userID
}
