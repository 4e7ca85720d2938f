package server

import (
	"fmt"
	"strings"
)

const (
	maxNameLength     = 100
	maxQuestionLength = 1000
	maxAnswerLength   = 1000
	maxLobbyPlayers   = 100
)

func validateName(name string) (string, error) {
	return validateText("name", name, maxNameLength)
}

func validateQuestionText(text string) (string, error) {
	return validateText("question", text, maxQuestionLength)
}

func validateAnswerText(text string) (string, error) {
	return validateText("answer", text, maxAnswerLength)
}

func validateText(label, text string, maxLen int) (string, error) {
	trimmed := normalizeText(text)
	if trimmed == "" {
		return "", fmt.Errorf("%w: %s is required", ErrMalformedRequest, label)
	}
	if len(trimmed) > maxLen {
		return "", fmt.Errorf("%w: %s must be %d characters or fewer", ErrMalformedRequest, label, maxLen)
	}
	return trimmed, nil
}

func normalizeText(text string) string {
	fields := strings.Fields(strings.TrimSpace(text))
	return strings.Join(fields, " ")
}
