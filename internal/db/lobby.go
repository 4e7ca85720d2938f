package db

import "time"

type Lobby struct {
	ID            uint       `gorm:"primaryKey"`
	PublicID      string     `gorm:"size:36;uniqueIndex;not null"`
	Name          string     `gorm:"size:100;not null"`
	JoinCode      string     `gorm:"size:16;uniqueIndex;not null"`
	Status        string     `gorm:"size:10;not null"`
	MaxPlayers    int        `gorm:"not null"`
	SecurityToken string     `gorm:"size:16;uniqueIndex;not null"`
	GameStartedAt *time.Time `gorm:""`
	FinishedAt    *time.Time `gorm:""`
	CreatedAt     time.Time  `gorm:"not null"`
	UpdatedAt     time.Time  `gorm:"not null"`
	Players       []Player
	Questions     []LobbyQuestion
	Answers       []Answer
	Events        []Event
}
