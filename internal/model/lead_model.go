package model

import (
	"time"

	"github.com/google/uuid"
)

type Lead struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId   string    `gorm:"type:varchar(128);index"`
	Name        string    `gorm:"type:varchar(255);not null"`
	Email       string    `gorm:"type:varchar(255);not null"`
	Company     string    `gorm:"type:varchar(255)"`
	ProjectIdea string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Lead) TableName() string {
	return "leads"
}
