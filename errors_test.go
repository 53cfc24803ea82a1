package disko_test

import (
	"errors"
	"testing"

	"github.com/Belalaskaik/Simple-File-System"
	"github.com/stretchr/testify/assert"
)

func TestDiskoErrorWithMessage(t *testing.T) {
	newErr := disko.ErrBusy.WithMessage("disk already mounted")
	assert.Equal(
		t, "device or resource busy: disk already mounted", newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, disko.ErrBusy)
}

func TestDiskoErrorWrap(t *testing.T) {
	originalErr := errors.New("short write")
	newErr := disko.ErrIOFailed.Wrap(originalErr)
	expectedMessage := "input/output error: short write"

	assert.EqualValues(t, expectedMessage, newErr.Error(), "error message is wrong")
	assert.ErrorIs(t, newErr, originalErr, "original error not set as parent")
	assert.ErrorIs(t, newErr, disko.ErrIOFailed, "disko error not set as parent")
}

func TestDiskoErrorsAreDistinct(t *testing.T) {
	assert.NotErrorIs(t, disko.ErrBusy, disko.ErrNotFound)
}
