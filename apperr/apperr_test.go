package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestWrapClassifiesGormErrors(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Equal(t, KindNotFound, KindOf(Wrap(gorm.ErrRecordNotFound, "missing")))
	assert.Equal(t, KindConflict, KindOf(Wrap(fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), "dup")))

	err := Wrap(errors.New("connection reset"), "Failed to fetch batch!")
	assert.Equal(t, KindUnexpected, KindOf(err))
	assert.Equal(t, "Failed to fetch batch!", Message(err))
	assert.Equal(t, "Failed to fetch batch!: connection reset", err.Error())
}

func TestWrapKeepsClassifiedErrors(t *testing.T) {
	sentinel := Forbidden("nope")
	wrapped := Wrap(sentinel, "outer")
	assert.ErrorIs(t, wrapped, sentinel)
	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.Equal(t, "nope", Message(wrapped))
}

func TestKindOfPlainErrors(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, KindUnexpected, KindOf(plain))
	assert.Equal(t, "boom", Message(plain))

	f := Fields("Validation failed!", map[string]string{"title": "required"})
	assert.Equal(t, KindValidation, KindOf(fmt.Errorf("ctx: %w", f)))
	assert.Equal(t, "validation", KindValidation.String())
}
