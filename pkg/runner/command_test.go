package runner

import (
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		line string
		want Command
	}{
		{"start", Command{Name: CmdStart, Args: []string{}}},
		{"  N ", Command{Name: CmdNext, Args: []string{}}},
		{"exit", Command{Name: CmdQuit, Args: []string{}}},
		{"set title Hello  world", Command{Name: CmdSet, Args: []string{"title", "Hello  world"}}},
		{`set Description a\nb`, Command{Name: CmdSet, Args: []string{"description", "a\nb"}}},
		{"set image", Command{Name: CmdSet, Args: []string{"image", ""}}},
		{"template Feature Spotlight", Command{Name: CmdTemplate, Args: []string{"Feature Spotlight"}}},
		{"move 1 3", Command{Name: CmdMove, Args: []string{"1", "3"}}},
		{"rm 17", Command{Name: CmdDelete, Args: []string{"17"}}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := ParseCommand(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	_, err := ParseCommand("dance")
	assert.ErrorIs(t, err, ErrUnknownCommand)

	for _, line := range []string{"set", "template", "delete", "move 1", "goto"} {
		_, err := ParseCommand(line)
		assert.Error(t, err, line)
	}
}

func TestCommand_IntentAndPosition(t *testing.T) {
	cmd, err := ParseCommand("prev")
	require.NoError(t, err)
	intent, ok := cmd.Intent()
	assert.True(t, ok)
	assert.Equal(t, domain.IntentPrevStep, intent)

	cmd, err = ParseCommand("goto 2")
	require.NoError(t, err)
	_, ok = cmd.Intent()
	assert.False(t, ok)
	i, err := cmd.Position(0)
	require.NoError(t, err)
	assert.Equal(t, 1, i)

	assert.True(t, Command{Name: CmdDelete}.Destructive())
	assert.False(t, Command{Name: CmdReset}.Destructive())
}
