package proposal

import (
	"context"
	"time"

	"gorm.io/gorm"

	entity "bizdash/model/entity"
)

// ListItem is a proposal with its most recent customer response, if any.
type ListItem struct {
	entity.Proposal
	LastResponseType *string    `gorm:"column:last_response_type" json:"last_response_type,omitempty"`
	LastResponseDate *time.Time `gorm:"column:last_response_date" json:"last_response_date,omitempty"`
}

// Input carries the editable proposal fields.
type Input struct {
	Title         string
	Description   string
	Price         *float64
	Duration      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
}

type ProposalRepository struct {
	db *gorm.DB
}

func NewProposalRepository(db *gorm.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

func (r *ProposalRepository) Create(ctx context.Context, in Input) (*entity.Proposal, error) {
	p := &entity.Proposal{
		Title:         in.Title,
		Description:   in.Description,
		Price:         in.Price,
		Duration:      in.Duration,
		CustomerName:  in.CustomerName,
		CustomerEmail: in.CustomerEmail,
		CustomerPhone: in.CustomerPhone,
		IsActive:      true,
	}
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// All returns every proposal, newest first, joined with its latest response.
func (r *ProposalRepository) All(ctx context.Context) ([]ListItem, error) {
	var items []ListItem
	err := r.db.WithContext(ctx).
		Table("proposals AS p").
		Select("p.*, pr.response_type AS last_response_type, pr.created_at AS last_response_date").
		Joins(`LEFT JOIN proposal_responses pr ON pr.proposal_id = p.id
			AND pr.id = (SELECT id FROM proposal_responses WHERE proposal_id = p.id ORDER BY created_at DESC, id DESC LIMIT 1)`).
		Order("p.created_at DESC, p.id DESC").
		Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// FindByID returns gorm.ErrRecordNotFound when the proposal does not exist.
func (r *ProposalRepository) FindByID(ctx context.Context, id uint) (*entity.Proposal, error) {
	var p entity.Proposal
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProposalRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.db.WithContext(ctx).Model(&entity.Proposal{}).Where("id = ?", id).Update("is_active", active).Error
}

// Update rewrites the proposal and clears its responses, since they answered the old terms.
func (r *ProposalRepository) Update(ctx context.Context, id uint, in Input) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&entity.ProposalResponse{}).Error; err != nil {
			return err
		}
		res := tx.Model(&entity.Proposal{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":          in.Title,
			"description":    in.Description,
			"price":          in.Price,
			"duration":       in.Duration,
			"customer_name":  in.CustomerName,
			"customer_email": in.CustomerEmail,
			"customer_phone": in.CustomerPhone,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete removes the proposal and its responses. Returns the number of proposals deleted.
func (r *ProposalRepository) Delete(ctx context.Context, id uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("proposal_id = ?", id).Delete(&entity.ProposalResponse{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&entity.Proposal{}, id)
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}

func (r *ProposalRepository) AddResponse(ctx context.Context, proposalID uint, responseType, message string) (*entity.ProposalResponse, error) {
	resp := &entity.ProposalResponse{ProposalID: proposalID, ResponseType: responseType, Message: message}
	if err := r.db.WithContext(ctx).Create(resp).Error; err != nil {
		return nil, err
	}
	return resp, nil
}

// Responses returns the responses of a proposal, newest first.
func (r *ProposalRepository) Responses(ctx context.Context, proposalID uint) ([]entity.ProposalResponse, error) {
	var out []entity.ProposalResponse
	err := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

func (r *ProposalRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&entity.Proposal{}).Count(&n).Error
	return n, err
}
