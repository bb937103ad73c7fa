package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorPassesTypedErrorsThrough(t *testing.T) {
	typed := Clone(ErrConflict, "course code already exists")
	wrapped := fmt.Errorf("create course: %w", typed)

	got := FromError(wrapped)

	require.NotNil(t, got)
	assert.Equal(t, ErrConflict.Code, got.Code)
	assert.Equal(t, "course code already exists", got.Message)
}

func TestFromErrorHidesUnknownErrors(t *testing.T) {
	got := FromError(stderrors.New("pq: connection refused"))

	require.NotNil(t, got)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, ErrInternal.Message, got.Message)
}

func TestCloneComparesEqualToSentinel(t *testing.T) {
	err := Clone(ErrNotFound, "report job not found")

	assert.True(t, stderrors.Is(err, ErrNotFound))
	assert.False(t, stderrors.Is(err, ErrForbidden))
}

func TestWrapUnwrapsToCause(t *testing.T) {
	cause := stderrors.New("row scan failed")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to load student")

	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "failed to load student")
	assert.Contains(t, err.Error(), "row scan failed")
}
