package db

import "time"

type Question struct {
	ID        uint      `gorm:"primaryKey"`
	PublicID  string    `gorm:"size:36;uniqueIndex;not null"`
	Text      string    `gorm:"size:1000;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// LobbyQuestion records a question served to a lobby. The unique index is
// what makes the served-set monotonic at the storage layer.
type LobbyQuestion struct {
	ID         uint      `gorm:"primaryKey"`
	LobbyID    uint      `gorm:"index;not null;uniqueIndex:idx_lobby_questions_pair"`
	QuestionID uint      `gorm:"index;not null;uniqueIndex:idx_lobby_questions_pair"`
	Round      int       `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null"`
}
