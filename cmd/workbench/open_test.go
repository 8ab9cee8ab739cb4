package main

import (
	"errors"
	"testing"

	"github.com/cristianoliveira/workbench/internal/settings"
	"github.com/cristianoliveira/workbench/internal/tui/app"
	"github.com/stretchr/testify/assert"
)

type fakeAppClient struct {
	initial []settings.TUIState
	saved   int
}

func (f *fakeAppClient) LoadSettings() (*settings.Settings, error) {
	return settings.DefaultSettings(), nil
}

func (f *fakeAppClient) SaveSettings(s *settings.Settings) error {
	f.saved++
	return nil
}

func (f *fakeAppClient) CreateModel(initial settings.TUIState) (app.Model, error) {
	f.initial = append(f.initial, initial)
	return nil, errors.New("server unreachable")
}

func (f *fakeAppClient) RunProgram(model app.Model) error {
	return nil
}

func TestOpenCmd(t *testing.T) {
	client := &fakeAppClient{}

	_, err := execute(t, NewOpenCmd(client), "7")
	assert.EqualError(t, err, "server unreachable")
	if assert.Len(t, client.initial, 1) {
		assert.Equal(t, 7, client.initial[0].WorkflowID)
	}
	assert.Zero(t, client.saved)

	_, err = execute(t, NewOpenCmd(client))
	assert.ErrorIs(t, err, app.ErrNoWorkflow)

	_, err = execute(t, NewOpenCmd(client), "seven")
	assert.EqualError(t, err, `invalid workflow id "seven": must be a positive integer`)
	assert.Len(t, client.initial, 1)
}
