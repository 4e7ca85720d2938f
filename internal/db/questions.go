package db

import (
	"encoding/csv"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type questionRecord struct {
	Text string
}

// LoadQuestionLibrary reads questions from a CSV and upserts them into the
// questions table. Rows may be a single column of text or a header row
// followed by text in the second column.
func LoadQuestionLibrary(conn *gorm.DB, path string) (int, error) {
	if conn == nil {
		return 0, nil
	}
	records, err := readQuestions(path)
	if err != nil {
		return 0, err
	}
	inserted := 0
	for _, record := range records {
		entry := Question{
			PublicID: uuid.NewString(),
			Text:     record.Text,
		}
		if err := conn.Where(Question{Text: entry.Text}).FirstOrCreate(&entry).Error; err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

func readQuestions(path string) ([]questionRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	var records []questionRecord
	for i, row := range rows {
		if i == 0 && len(row) > 1 {
			continue
		}
		if len(row) == 0 {
			continue
		}
		text := ""
		if len(row) >= 2 {
			text = strings.TrimSpace(row[1])
		} else {
			text = strings.TrimSpace(row[0])
		}
		if text == "" {
			continue
		}
		records = append(records, questionRecord{Text: text})
	}
	return records, nil
}
