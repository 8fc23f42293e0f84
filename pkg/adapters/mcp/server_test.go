package mcp

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/adapters/memory"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/runner"
	"github.com/aretw0/waypoint/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := waypoint.New(
		waypoint.WithTransitionDelay(0),
		waypoint.WithSubmitDelay(0),
		waypoint.WithStarterTour(),
	)
	require.NoError(t, err)
	mgr := session.NewManager(eng, memory.NewStore())
	t.Cleanup(mgr.Shutdown)
	return NewServer(mgr, eng.Templates())
}

func TestServer_GetStateStartsSession(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	resp, err := s.handleGetState(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "agent-1"})
	require.NoError(t, err)
	assert.Equal(t, "agent-1", resp.State.SessionID)
	assert.Equal(t, domain.ViewHero, resp.State.ViewState.View)
	assert.Nil(t, resp.Current, "no current step outside the tour")

	_, err = s.handleGetState(ctx, mcp.CallToolRequest{}, sessionArgs{})
	assert.Error(t, err)
}

func TestServer_IntentFlow(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleGetState(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "a"})
	require.NoError(t, err)

	out, err := s.handleIntent(ctx, mcp.CallToolRequest{}, intentArgs{SessionID: "a", Intent: "startDemo", Wait: true})
	require.NoError(t, err)
	assert.True(t, out.Changed)
	assert.Equal(t, domain.ViewTour, out.State.ViewState.View)

	_, err = s.handleIntent(ctx, mcp.CallToolRequest{}, intentArgs{SessionID: "a", Intent: "startDemo"})
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = s.handleIntent(ctx, mcp.CallToolRequest{}, intentArgs{SessionID: "a", Intent: "jump"})
	assert.ErrorIs(t, err, domain.ErrUnknownIntent)

	_, err = s.handleIntent(ctx, mcp.CallToolRequest{}, intentArgs{SessionID: "missing", Intent: "nextStep"})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	state, err := s.handleGetState(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "a"})
	require.NoError(t, err)
	require.NotNil(t, state.Current)
	assert.Equal(t, state.State.Steps[0].ID, state.Current.ID)
}

func TestServer_AuthoringTools(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleGetState(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "a"})
	require.NoError(t, err)

	resp, err := s.handleSelectTemplate(ctx, mcp.CallToolRequest{}, templateArgs{SessionID: "a", Name: "welcome"})
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryOnboarding, resp.State.Draft.Category)

	_, err = s.handleSelectTemplate(ctx, mcp.CallToolRequest{}, templateArgs{SessionID: "a", Name: "nope"})
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)

	resp, err = s.handleUpdateDraft(ctx, mcp.CallToolRequest{}, draftArgs{SessionID: "a", Field: "title", Value: "Agent\tstep"})
	require.NoError(t, err)
	assert.Equal(t, "Agent step", resp.State.Draft.Title)

	_, err = s.handleUpdateDraft(ctx, mcp.CallToolRequest{}, draftArgs{SessionID: "a", Field: "title", Value: strings.Repeat("x", runner.MaxInputSize()+1)})
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)

	out, err := s.handleIntent(ctx, mcp.CallToolRequest{}, intentArgs{SessionID: "a", Intent: "submit", Wait: true})
	require.NoError(t, err)
	require.NotNil(t, out.Step)
	assert.Equal(t, "Agent step", out.Step.Title)
	require.Len(t, out.State.Steps, 4)

	resp, err = s.handleReorder(ctx, mcp.CallToolRequest{}, reorderArgs{SessionID: "a", From: 3, To: 0})
	require.NoError(t, err)
	assert.Equal(t, out.Step.ID, resp.State.Steps[0].ID)

	_, err = s.handleReorder(ctx, mcp.CallToolRequest{}, reorderArgs{SessionID: "a", From: 0, To: 4})
	assert.ErrorIs(t, err, domain.ErrIndexOutOfRange)

	resp, err = s.handleDeleteStep(ctx, mcp.CallToolRequest{}, deleteArgs{SessionID: "a", StepID: out.Step.ID})
	require.NoError(t, err)
	assert.Len(t, resp.State.Steps, 3)
}

func TestServer_StructuredHandlerBindsArguments(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleGetState(ctx, mcp.CallToolRequest{}, sessionArgs{SessionID: "a"})
	require.NoError(t, err)

	req := mcp.CallToolRequest{}
	req.Params.Name = "reorder_steps"
	req.Params.Arguments = map[string]any{"session_id": "a", "from": 2, "to": 0}
	result, err := mcp.NewStructuredToolHandler(s.handleReorder)(ctx, req)
	require.NoError(t, err)
	assert.False(t, result.IsError)

	resp, ok := result.StructuredContent.(StateResponse)
	require.True(t, ok)
	assert.Equal(t, "Power-user tip", resp.State.Steps[0].Title)

	req.Params.Arguments = map[string]any{"session_id": "a", "from": 0, "to": 9}
	result, err = mcp.NewStructuredToolHandler(s.handleReorder)(ctx, req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestServer_Tools(t *testing.T) {
	s := newTestServer(t)
	tools := s.MCPServer().ListTools()
	for _, name := range []string{"get_state", "intent", "update_draft", "select_template", "delete_step", "reorder_steps", "list_templates"} {
		assert.Contains(t, tools, name)
	}
}
