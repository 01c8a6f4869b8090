package sqlstore

import (
	"time"

	"github.com/contactdesk/leadgate/internal/core/domain"
)

type userRow struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"size:16;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRow) TableName() string { return "users" }

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           formatUint(r.ID),
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		Role:         domain.Role(r.Role),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type leadRow struct {
	ID          string    `gorm:"primaryKey;size:36"`
	FullName    string    `gorm:"size:100;not null"`
	Company     string    `gorm:"size:255"`
	Email       string    `gorm:"size:255;not null"`
	Phone       string    `gorm:"size:64"`
	RequestType string    `gorm:"size:16;not null"`
	Message     string    `gorm:"type:text;not null"`
	Status      string    `gorm:"size:16;not null;index:idx_leads_status_created,priority:1"`
	CreatedAt   time.Time `gorm:"not null;index:idx_leads_status_created,priority:2;index"`
	UpdatedAt   time.Time `gorm:"not null"`
}

func (leadRow) TableName() string { return "leads" }

func leadRowFrom(l *domain.Lead) leadRow {
	return leadRow{
		ID:          l.ID,
		FullName:    l.FullName,
		Company:     l.Company,
		Email:       l.Email,
		Phone:       l.Phone,
		RequestType: string(l.RequestType),
		Message:     l.Message,
		Status:      string(l.Status),
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func (r leadRow) toDomain() *domain.Lead {
	return &domain.Lead{
		ID:          r.ID,
		FullName:    r.FullName,
		Company:     r.Company,
		Email:       r.Email,
		Phone:       r.Phone,
		RequestType: domain.RequestType(r.RequestType),
		Message:     r.Message,
		Status:      domain.LeadStatus(r.Status),
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}
