package historydb

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"plexi/internal/domain"
)

var errDBUnavailable = errors.New("history database unavailable")

type AuditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(store *Store) *AuditRepository {
	if store == nil {
		return &AuditRepository{db: nil}
	}
	return &AuditRepository{db: store.DB}
}

func (r *AuditRepository) Append(ctx context.Context, result domain.AuditResult) error {
	if r.db == nil {
		return errDBUnavailable
	}
	model := AuditRecordModel{
		Namespace: result.Namespace,
		Epoch:     uint64(result.Epoch),
		Digest:    result.Digest.String(),
		Signature: string(result.Signature),
		Proof:     string(result.Proof),
		Reason:    result.Reason,
		CheckedAt: result.CheckedAt,
	}
	return r.db.WithContext(ctx).Create(&model).Error
}

func (r *AuditRepository) ListByNamespace(ctx context.Context, namespace string, limit int) ([]domain.AuditResult, error) {
	if r.db == nil {
		return nil, errDBUnavailable
	}
	query := r.db.WithContext(ctx).
		Where("namespace = ?", namespace).
		Order("epoch DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []AuditRecordModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]domain.AuditResult, 0, len(models))
	for _, m := range models {
		result, err := resultFromModel(m)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return out, nil
}

// LastVerified returns the highest epoch whose stored result is valid,
// or ErrNotFound when the namespace has no successful audits yet.
func (r *AuditRepository) LastVerified(ctx context.Context, namespace string) (domain.AuditResult, error) {
	if r.db == nil {
		return domain.AuditResult{}, errDBUnavailable
	}
	var model AuditRecordModel
	err := r.db.WithContext(ctx).
		Where("namespace = ? AND signature = ? AND proof IN ?",
			namespace, string(domain.OutcomePass),
			[]string{string(domain.OutcomePass), string(domain.OutcomeSkipped)}).
		Order("epoch DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.AuditResult{}, domain.ErrNotFound
		}
		return domain.AuditResult{}, err
	}
	return resultFromModel(model)
}

func resultFromModel(m AuditRecordModel) (domain.AuditResult, error) {
	// rows for undecodable records carry no digest.
	var digest domain.Digest
	if m.Digest != "" {
		var err error
		digest, err = domain.ParseDigest(m.Digest)
		if err != nil {
			return domain.AuditResult{}, err
		}
	}
	return domain.AuditResult{
		Namespace: m.Namespace,
		Epoch:     domain.Epoch(m.Epoch),
		Digest:    digest,
		Signature: domain.Outcome(m.Signature),
		Proof:     domain.Outcome(m.Proof),
		Reason:    m.Reason,
		CheckedAt: m.CheckedAt,
	}, nil
}
