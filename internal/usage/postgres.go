package usage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Ame-28/AI-Vision-Analyzer/internal/identity"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/models"
	"github.com/Ame-28/AI-Vision-Analyzer/internal/storage"
)

// Postgres is the durable Store. The conditional UPDATE makes the
// check-then-increment atomic: Postgres row locking serializes writers
// on the same identity row while leaving other identities untouched.
type Postgres struct {
	db *storage.Postgres
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *storage.Postgres) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Peek(ctx context.Context, id identity.Identity) (int64, error) {
	var rec models.UsageRecord
	err := p.db.DB.WithContext(ctx).
		Where("identity = ?", string(id)).
		First(&rec).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("usage: postgres peek: %w", err)
	}

	return rec.AnalysesUsed, nil
}

func (p *Postgres) TryConsume(ctx context.Context, id identity.Identity, limit int64) (Decision, error) {
	var decision Decision

	err := p.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Ensure the row exists; first request for an identity
		// creates it at zero.
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).
			Create(&models.UsageRecord{Identity: string(id)}).Error; err != nil {
			return err
		}

		q := tx.Model(&models.UsageRecord{}).
			Where("identity = ?", string(id))
		if limit != Unlimited {
			q = q.Where("analyses_used < ?", limit)
		}

		res := q.Update("analyses_used", gorm.Expr("analyses_used + 1"))
		if res.Error != nil {
			return res.Error
		}

		var rec models.UsageRecord
		if err := tx.Where("identity = ?", string(id)).First(&rec).Error; err != nil {
			return err
		}

		decision = Decision{
			Admitted: res.RowsAffected == 1,
			Used:     rec.AnalysesUsed,
		}
		return nil
	})

	if err != nil {
		return Decision{}, fmt.Errorf("usage: postgres consume: %w", err)
	}

	return decision, nil
}

func (p *Postgres) Reset(ctx context.Context, id identity.Identity) error {
	err := p.db.DB.WithContext(ctx).
		Model(&models.UsageRecord{}).
		Where("identity = ?", string(id)).
		Update("analyses_used", 0).Error

	if err != nil {
		return fmt.Errorf("usage: postgres reset: %w", err)
	}
	return nil
}
