package db

import "time"

type Answer struct {
	ID         uint      `gorm:"primaryKey"`
	PublicID   string    `gorm:"size:36;uniqueIndex;not null"`
	LobbyID    uint      `gorm:"index;not null"`
	QuestionID uint      `gorm:"index;not null"`
	PlayerID   uint      `gorm:"index;not null"`
	Text       string    `gorm:"size:1000;not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
