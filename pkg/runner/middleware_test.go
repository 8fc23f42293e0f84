package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockIOHandler struct {
	messages []string
	input    func() (string, error)
}

func (m *mockIOHandler) Render(ctx context.Context, snap *domain.Snapshot) error { return nil }

func (m *mockIOHandler) Input(ctx context.Context) (string, error) {
	if m.input != nil {
		return m.input()
	}
	return "", nil
}

func (m *mockIOHandler) SystemOutput(ctx context.Context, msg string) error {
	m.messages = append(m.messages, msg)
	return nil
}

func TestConfirmationMiddleware(t *testing.T) {
	snap := tourSnapshot(domain.ViewTour, 0)
	del := Command{Name: CmdDelete, Args: []string{"a"}}

	tests := []struct {
		answer string
		want   bool
	}{
		{"y", true},
		{"YES", true},
		{"n", false},
		{"", false},
	}
	for _, tt := range tests {
		mock := &mockIOHandler{input: func() (string, error) { return tt.answer, nil }}
		allowed, err := ConfirmationMiddleware(mock)(context.Background(), del, snap)
		require.NoError(t, err)
		assert.Equal(t, tt.want, allowed, "answer %q", tt.answer)
		assert.Equal(t, []string{`Delete step "First" (a)? [y/N]`}, mock.messages)
	}
}

func TestConfirmationMiddleware_SkipsSafeCommands(t *testing.T) {
	mock := &mockIOHandler{input: func() (string, error) { t.Fatal("should not prompt"); return "", nil }}
	allowed, err := ConfirmationMiddleware(mock)(context.Background(), Command{Name: CmdNext}, &domain.Snapshot{})
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Empty(t, mock.messages)
}

func TestConfirmationMiddleware_InputError(t *testing.T) {
	boom := errors.New("closed")
	mock := &mockIOHandler{input: func() (string, error) { return "", boom }}
	allowed, err := ConfirmationMiddleware(mock)(context.Background(), Command{Name: CmdDelete, Args: []string{"x"}}, &domain.Snapshot{})
	assert.False(t, allowed)
	assert.ErrorIs(t, err, boom)
}

func TestMultiInterceptor(t *testing.T) {
	var calls int
	counting := func(ctx context.Context, cmd Command, snap *domain.Snapshot) (bool, error) {
		calls++
		return true, nil
	}
	deny := func(ctx context.Context, cmd Command, snap *domain.Snapshot) (bool, error) {
		return false, nil
	}

	allowed, err := MultiInterceptor(counting, AutoApproveMiddleware(), counting)(context.Background(), Command{}, nil)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2, calls)

	allowed, err = MultiInterceptor(deny, counting)(context.Background(), Command{}, nil)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 2, calls, "chain stops at the first veto")
}
