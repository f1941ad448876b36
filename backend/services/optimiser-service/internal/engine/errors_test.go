package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(newError(KindNotFound, "gone")))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", newError(KindInvalidInput, "bad"))
	assert.Equal(t, KindInvalidInput, KindOf(wrapped))
}

func TestIsRejection(t *testing.T) {
	assert.True(t, IsRejection(newError(KindNotFound, "gone")))
	assert.True(t, IsRejection(newError(KindInvalidOperation, "no")))
	assert.True(t, IsRejection(newError(KindInvalidInput, "bad")))
	assert.False(t, IsRejection(newError(KindInternal, "bug")))
	assert.False(t, IsRejection(errors.New("plain")))
}

func TestErrorString(t *testing.T) {
	err := newError(KindInvalidOperation, "device %q is not shiftable", "Oven")
	assert.Equal(t, `invalid_operation: device "Oven" is not shiftable`, err.Error())
}
