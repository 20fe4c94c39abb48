package entity

import "time"

type Proposal struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title         string    `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description   string    `gorm:"column:description;type:text" json:"description"`
	Price         *float64  `gorm:"column:price" json:"price,omitempty"`
	Duration      string    `gorm:"column:duration;type:varchar(128)" json:"duration"`
	CustomerName  string    `gorm:"column:customer_name;type:varchar(255);not null" json:"customer_name"`
	CustomerEmail string    `gorm:"column:customer_email;type:varchar(255);not null" json:"customer_email"`
	CustomerPhone string    `gorm:"column:customer_phone;type:varchar(64)" json:"customer_phone"`
	IsActive      bool      `gorm:"column:is_active;not null;default:true" json:"is_active"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`

	Responses []ProposalResponse `gorm:"foreignKey:ProposalID" json:"-"`
}

func (Proposal) TableName() string {
	return "proposals"
}

// Response types a customer can send back.
const (
	ResponseAccepted = "accepted"
	ResponseRejected = "rejected"
	ResponseQuestion = "question"
)

type ProposalResponse struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProposalID   uint      `gorm:"column:proposal_id;not null;index" json:"proposal_id"`
	ResponseType string    `gorm:"column:response_type;type:varchar(32);not null" json:"response_type"`
	Message      string    `gorm:"column:message;type:text" json:"message"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (ProposalResponse) TableName() string {
	return "proposal_responses"
}
