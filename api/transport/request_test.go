package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todos/domain"
)

func TestTodoRequest_ToInput(t *testing.T) {
	var req TodoRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Buy milk","deadline":"2025-04-01","categoryId":" work ","priority":"HIGH"}`), &req))

	in, err := req.ToInput()
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", in.Title)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), *in.Deadline)
	assert.Equal(t, domain.CategoryID("work"), in.CategoryID)
	assert.Equal(t, domain.PriorityHigh, in.Priority)

	_, err = TodoRequest{Title: "x", Priority: "urgent"}.ToInput()
	assert.ErrorIs(t, err, domain.ErrInvalidPriority)
	_, err = TodoRequest{Title: "x", Deadline: "soon"}.ToInput()
	assert.ErrorIs(t, err, domain.ErrInvalidDeadline)
}

func TestTodoPatchRequest_ToPatch(t *testing.T) {
	var req TodoPatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"completed":true,"deadline":"","categoryId":"","priority":"low"}`), &req))

	patch, err := req.ToPatch()
	require.NoError(t, err)
	assert.Nil(t, patch.Title)
	assert.True(t, *patch.Completed)
	assert.True(t, patch.ClearDeadline)
	require.NotNil(t, patch.CategoryID)
	assert.True(t, patch.CategoryID.IsZero())
	assert.Equal(t, domain.PriorityLow, *patch.Priority)

	empty, err := TodoPatchRequest{}.ToPatch()
	require.NoError(t, err)
	assert.True(t, empty.IsEmpty())
}

func TestEnvelope_String(t *testing.T) {
	assert.Equal(t, `{"status":"success","data":1}`, NewSuccess(1, nil).String())
	assert.Equal(t, `{"status":"error","code":"NOT_FOUND","error":"todo not found"}`, NewError("NOT_FOUND", "todo not found", nil).String())
}

func TestFromError(t *testing.T) {
	env := FromError(fmt.Errorf("load: %w", domain.ErrTodoNotFound))
	assert.Equal(t, StatusError, env.Status)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "load: todo not found", env.Error)

	assert.Equal(t, "INTERNAL", FromError(errors.New("boom")).Code)
}
