package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"plexi/internal/domain"
)

// Watcher polls a set of namespaces and audits every newly published
// epoch. The audit core stays stateless; all cross-epoch memory lives
// here: the last audited digest per namespace, the equivocation store,
// and the persisted history.
type Watcher struct {
	Audit    *AuditEpoch
	Digests  DigestStore
	History  HistoryRepository
	Policy   AlertPolicy
	Logger   *zap.Logger
	Interval time.Duration

	// VerifyingKey, when set, is used for every namespace instead of
	// the key_id lookup against the auditor's published keys.
	VerifyingKey []byte

	mu    sync.RWMutex
	state map[string]*namespaceState
}

type namespaceState struct {
	lastEpoch  domain.Epoch
	lastDigest domain.Digest
	lastResult domain.AuditResult
	primed     bool
}

// Snapshot is the watcher's current view of one namespace, served by
// the status API.
type Snapshot struct {
	Namespace  string             `json:"namespace"`
	LastEpoch  domain.Epoch       `json:"last_epoch"`
	LastResult domain.AuditResult `json:"last_result"`
}

func NewWatcher(audit *AuditEpoch, digests DigestStore, history HistoryRepository, policy AlertPolicy, logger *zap.Logger, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Watcher{
		Audit:    audit,
		Digests:  digests,
		History:  history,
		Policy:   policy,
		Logger:   logger,
		Interval: interval,
		state:    make(map[string]*namespaceState),
	}
}

// Run polls the given namespaces until ctx is cancelled. One tick
// audits each namespace sequentially; a failing namespace never blocks
// the others past its own errors.
func (w *Watcher) Run(ctx context.Context, namespaces []string) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	w.tick(ctx, namespaces)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx, namespaces)
		}
	}
}

func (w *Watcher) tick(ctx context.Context, namespaces []string) {
	for _, ns := range namespaces {
		if err := w.Advance(ctx, ns); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			w.Logger.Warn("namespace audit pass failed",
				zap.String("namespace", ns),
				zap.Error(err))
		}
	}
}

// Advance audits every epoch published since the last pass, up to the
// namespace head. The first pass for a namespace starts at the root
// epoch, or at the last verified epoch recorded in history.
func (w *Watcher) Advance(ctx context.Context, namespace string) error {
	info, err := w.Audit.Transport.Namespace(ctx, namespace)
	if err != nil {
		return err
	}
	root, err := info.ParsedRoot()
	if err != nil {
		if info.Status == domain.NamespaceInitialization {
			w.Logger.Debug("namespace still initializing", zap.String("namespace", namespace))
			return nil
		}
		return err
	}

	st := w.ensureState(ctx, namespace, root.Epoch)
	head, err := w.Audit.Transport.LastVerifiedEpoch(ctx, namespace)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			head = root.Epoch
		} else {
			return err
		}
	}

	for epoch := st.lastEpoch; epoch <= head; epoch++ {
		if st.primed && epoch == st.lastEpoch {
			continue
		}
		if err := w.auditOne(ctx, namespace, epoch, st); err != nil {
			return err
		}
	}
	return nil
}

func (w *Watcher) auditOne(ctx context.Context, namespace string, epoch domain.Epoch, st *namespaceState) error {
	req := AuditRequest{Namespace: namespace, Epoch: epoch, VerifyingKey: w.VerifyingKey}
	if st.primed && epoch == st.lastEpoch+1 {
		prev := st.lastDigest
		req.PrevDigest = &prev
	}

	result, err := w.Audit.Execute(ctx, req)
	if err != nil && !errors.Is(err, domain.ErrMalformedRecord) {
		return err
	}
	malformed := err != nil

	equivocation := false
	if !malformed && w.Digests != nil {
		prior, obsErr := w.Digests.Observe(ctx, namespace, epoch, result.Digest)
		if errors.Is(obsErr, domain.ErrEquivocation) {
			equivocation = true
			w.Logger.Error("equivocation detected",
				zap.String("namespace", namespace),
				zap.String("epoch", epoch.String()),
				zap.String("seen", prior.String()),
				zap.String("now", result.Digest.String()))
		} else if obsErr != nil {
			w.Logger.Warn("digest store unavailable",
				zap.String("namespace", namespace),
				zap.Error(obsErr))
		}
	}

	if w.History != nil {
		if err := w.History.Append(ctx, result); err != nil {
			w.Logger.Warn("history append failed",
				zap.String("namespace", namespace),
				zap.Error(err))
		}
	}

	if w.Policy != nil {
		alert, reasons, err := w.Policy.Decide(ctx, result, equivocation)
		if err != nil {
			w.Logger.Warn("alert policy evaluation failed", zap.Error(err))
		} else if alert {
			w.Logger.Error("alert raised",
				zap.String("namespace", namespace),
				zap.String("epoch", epoch.String()),
				zap.Strings("reasons", reasons))
		}
	}

	w.Logger.Info("epoch audited",
		zap.String("namespace", namespace),
		zap.String("epoch", epoch.String()),
		zap.String("signature", string(result.Signature)),
		zap.String("proof", string(result.Proof)))

	w.mu.Lock()
	st.lastResult = result
	if !malformed && result.Valid() {
		st.lastEpoch = epoch
		st.lastDigest = result.Digest
		st.primed = true
	}
	w.mu.Unlock()
	return nil
}

// ensureState returns the tracking entry for a namespace, seeding the
// starting epoch from persisted history when available.
func (w *Watcher) ensureState(ctx context.Context, namespace string, rootEpoch domain.Epoch) *namespaceState {
	w.mu.Lock()
	st, ok := w.state[namespace]
	if !ok {
		st = &namespaceState{lastEpoch: rootEpoch}
		w.state[namespace] = st
	}
	w.mu.Unlock()
	if ok {
		return st
	}

	if w.History == nil {
		return st
	}
	last, err := w.History.LastVerified(ctx, namespace)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			w.Logger.Warn("history lookup failed",
				zap.String("namespace", namespace),
				zap.Error(err))
		}
		return st
	}
	w.mu.Lock()
	if last.Epoch > st.lastEpoch {
		st.lastEpoch = last.Epoch
		st.lastDigest = last.Digest
		st.primed = true
	}
	w.mu.Unlock()
	return st
}

// Snapshots returns the current per-namespace view for the status API.
func (w *Watcher) Snapshots() []Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]Snapshot, 0, len(w.state))
	for ns, st := range w.state {
		out = append(out, Snapshot{
			Namespace:  ns,
			LastEpoch:  st.lastEpoch,
			LastResult: st.lastResult,
		})
	}
	return out
}

// NamespaceSnapshot returns the view for one namespace.
func (w *Watcher) NamespaceSnapshot(namespace string) (Snapshot, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	st, ok := w.state[namespace]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{Namespace: namespace, LastEpoch: st.lastEpoch, LastResult: st.lastResult}, true
}
