package db

import (
	"time"

	"gorm.io/datatypes"
)

type Event struct {
	ID         uint           `gorm:"primaryKey"`
	LobbyID    uint           `gorm:"index;not null"`
	PlayerID   *uint          `gorm:"index"`
	QuestionID *uint          `gorm:"index"`
	Type       string         `gorm:"size:64;not null"`
	Payload    datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"not null"`
}
