package utils

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/spatocode/s3html/internal/log"
)

func FileExists(path string) bool {
	if _, err := os.Stat(path); err == nil {
		return true
	}
	return false
}

// ReadPromptInput prints prompt and reads one trimmed line from r.
// Reaching EOF without a newline returns what was read. Pass the same
// *bufio.Reader across prompts so buffered lines are not lost.
func ReadPromptInput(prompt string, r io.Reader) (string, error) {
	if prompt != "" {
		log.PrintInfo(prompt)
	}
	reader, ok := r.(*bufio.Reader)
	if !ok {
		reader = bufio.NewReader(r)
	}
	value, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(value), nil
}

// PromptDefault is ReadPromptInput that falls back to def on an empty answer.
func PromptDefault(prompt, def string, r io.Reader) (string, error) {
	if def != "" {
		prompt = prompt + " (default: " + def + ")"
	}
	value, err := ReadPromptInput(prompt, r)
	if err != nil {
		return "", err
	}
	if value == "" {
		return def, nil
	}
	return value, nil
}
