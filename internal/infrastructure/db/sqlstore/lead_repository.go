package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/contactdesk/leadgate/internal/core/domain"
	"github.com/contactdesk/leadgate/internal/core/ports"
)

// LeadRepository implements ports.LeadRepository on gorm.
type LeadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) Create(ctx context.Context, l *domain.Lead) error {
	row := leadRowFrom(l)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("insert lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id string) (*domain.Lead, error) {
	var row leadRow
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find lead: %w", err)
	}
	return row.toDomain(), nil
}

// List returns leads newest first. The status filter is applied before
// sorting and paging.
func (r *LeadRepository) List(ctx context.Context, f ports.ListLeadsFilter) ([]*domain.Lead, int64, error) {
	scope := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&leadRow{})
		if f.Status != "" {
			q = q.Where("status = ?", string(f.Status))
		}
		return q
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	var rows []leadRow
	err := scope().Order("created_at DESC").Order("id DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}

	leads := make([]*domain.Lead, 0, len(rows))
	for _, row := range rows {
		leads = append(leads, row.toDomain())
	}
	return leads, total, nil
}

// UpdateStatus writes status and updated_at in one statement.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id string, status domain.LeadStatus, updatedAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&leadRow{}).
		Where("id = ?", id).
		UpdateColumns(map[string]any{
			"status":     string(status),
			"updated_at": updatedAt.UTC(),
		})
	if res.Error != nil {
		return fmt.Errorf("update lead status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&leadRow{})
	if res.Error != nil {
		return fmt.Errorf("delete lead: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) CountByStatus(ctx context.Context) (map[domain.LeadStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&leadRow{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("count leads by status: %w", err)
	}

	counts := make(map[domain.LeadStatus]int64, len(rows))
	for _, row := range rows {
		counts[domain.LeadStatus(row.Status)] = row.Count
	}
	return counts, nil
}
