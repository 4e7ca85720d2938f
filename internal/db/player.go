package db

import "time"

type Player struct {
	ID        uint      `gorm:"primaryKey"`
	PublicID  string    `gorm:"size:36;uniqueIndex;not null"`
	Name      string    `gorm:"size:100;not null"`
	LobbyID   *uint     `gorm:"index"`
	JoinedAt  time.Time `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Answers   []Answer
}
