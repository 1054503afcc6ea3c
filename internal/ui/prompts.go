// Package ui holds the interactive prompts. Prompts are written to stderr so
// stdout stays clean for the shell that consumes it.
package ui

import (
	"errors"
	"fmt"
	"os"

	"github.com/manifoldco/promptui"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("cancelled")

// AskSelect prompts for a single selection.
func AskSelect(prompt string, choices []string) (int, string, error) {
	if len(choices) == 0 {
		return -1, "", fmt.Errorf("nothing to select")
	}

	s := promptui.Select{
		Label:  prompt,
		Items:  choices,
		Size:   10,
		Stdout: stderrCloser{},
	}

	index, value, err := s.Run()
	if err != nil {
		return -1, "", promptError(err)
	}

	return index, value, nil
}

// AskConfirm prompts for yes/no confirmation
func AskConfirm(prompt string) (bool, error) {
	p := promptui.Prompt{
		Label:     prompt,
		IsConfirm: true,
		Stdout:    stderrCloser{},
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, promptui.ErrAbort) {
			return false, nil
		}
		return false, promptError(err)
	}

	return true, nil
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return ErrCancelled
	}
	return err
}

// stderrCloser lets promptui write to stderr without closing it.
type stderrCloser struct{}

func (stderrCloser) Write(p []byte) (int, error) {
	return os.Stderr.Write(p)
}

func (stderrCloser) Close() error {
	return nil
}
