package models

import "time"

type Recipient struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	ChatID    int64     `gorm:"uniqueIndex;not null" json:"chatID"`
	Active    bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt time.Time `json:"createdAt"`
}

type RecipientDto struct {
	ChatID int64 `json:"chatID"`
	Active bool  `json:"active"`
}

func (r *Recipient) ToDto() RecipientDto {
	return RecipientDto{ChatID: r.ChatID, Active: r.Active}
}
