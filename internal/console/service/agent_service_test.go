package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/activity"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
	"github.com/xela07ax/dashboard-daddy/internal/registry"
	"github.com/xela07ax/dashboard-daddy/internal/status"
)

type fakeRegistry struct {
	reg         *registry.Registry
	err         error
	invalidated int
}

func (f *fakeRegistry) Load() (*registry.Registry, error) { return f.reg, f.err }
func (f *fakeRegistry) Invalidate()                       { f.invalidated++ }

type captureSink struct {
	mu     sync.Mutex
	events []activity.Event
}

func (c *captureSink) Record(e activity.Event) {
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

type capturePublisher struct {
	statuses []domain.AgentStatus
}

func (c *capturePublisher) PublishStatus(_ context.Context, _ string, st domain.AgentStatus) error {
	c.statuses = append(c.statuses, st)
	return nil
}

func testRegistry() *fakeRegistry {
	return &fakeRegistry{reg: &registry.Registry{
		Agents: map[string]domain.AgentDefinition{
			"claude-code": {Name: "Claude Code", Enabled: true, Command: "claude"},
			"codex":       {Name: "Codex", Enabled: true, Command: "codex"},
			"aider":       {Name: "Aider", Enabled: false, Command: "aider"},
		},
		Order:    []string{"claude-code", "codex", "aider"},
		Defaults: domain.RegistryDefaults{PreferredAgent: "claude-code"},
	}}
}

func newAgentService(reg RegistryProvider) (*AgentService, *captureSink) {
	sink := &captureSink{}
	return NewAgentService(reg, status.NewStore(), nil, sink, zap.NewNop()), sink
}

func TestListFollowsRegistryOrder(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	agents, defaults, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 3)
	require.Equal(t, "claude-code", agents[0].ID)
	require.Equal(t, "codex", agents[1].ID)
	require.Equal(t, "aider", agents[2].ID)
	require.Equal(t, "claude-code", defaults.PreferredAgent)

	for _, a := range agents {
		require.Equal(t, domain.StatusStopped, a.Status)
	}
}

func TestListPropagatesRegistryFailure(t *testing.T) {
	svc, _ := newAgentService(&fakeRegistry{err: &domain.ConfigLoadError{Paths: []string{"x"}}})

	_, _, err := svc.List(context.Background())
	var cfgErr *domain.ConfigLoadError
	require.ErrorAs(t, err, &cfgErr)
}

func TestGetUnknownAgent(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	_, err := svc.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStartAssignsJobAndRuns(t *testing.T) {
	svc, sink := newAgentService(testRegistry())

	agent, err := svc.Start(context.Background(), "claude-code")
	require.NoError(t, err)
	require.Equal(t, domain.StatusRunning, agent.Status)
	require.NotEmpty(t, agent.CurrentJobID)
	require.NotNil(t, agent.StartedAt)

	require.Len(t, sink.events, 1)
	require.Equal(t, activity.KindAgentStarted, sink.events[0].Kind)
	require.Equal(t, "claude-code", sink.events[0].AgentID)
}

func TestStartDisabledAgent(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	_, err := svc.Start(context.Background(), "aider")
	require.ErrorIs(t, err, domain.ErrAgentDisabled)
}

func TestStartBusyAgent(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	_, err := svc.Start(context.Background(), "codex")
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), "codex")
	require.ErrorIs(t, err, domain.ErrAgentBusy)
}

func TestStopClearsJobBinding(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	started, err := svc.Start(context.Background(), "codex")
	require.NoError(t, err)
	require.NotEmpty(t, started.CurrentJobID)

	stopped, err := svc.Stop(context.Background(), "codex")
	require.NoError(t, err)
	require.Equal(t, domain.StatusStopped, stopped.Status)
	require.Empty(t, stopped.CurrentJobID)
	require.NotNil(t, stopped.StartedAt, "last run timestamp survives stop")
}

func TestStopIdleAgent(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	_, err := svc.Stop(context.Background(), "codex")
	require.ErrorIs(t, err, domain.ErrAgentNotRunning)
}

func TestStartPublishesStatusSignals(t *testing.T) {
	pub := &capturePublisher{}
	svc := NewAgentService(testRegistry(), status.NewStore(), pub, activity.NopSink{}, zap.NewNop())

	_, err := svc.Start(context.Background(), "claude-code")
	require.NoError(t, err)
	require.Equal(t, []domain.AgentStatus{domain.StatusStarting, domain.StatusRunning}, pub.statuses)
}

func TestFleetStats(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	_, err := svc.Start(context.Background(), "claude-code")
	require.NoError(t, err)

	stats, err := svc.FleetStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.Known)
	require.Equal(t, 2, stats.Enabled)
	require.Equal(t, 1, stats.Running)
}

func TestInvalidateRegistryRecordsEvent(t *testing.T) {
	reg := testRegistry()
	svc, sink := newAgentService(reg)

	svc.InvalidateRegistry()
	require.Equal(t, 1, reg.invalidated)
	require.Len(t, sink.events, 1)
	require.Equal(t, activity.KindRegistryReload, sink.events[0].Kind)
}

func TestExists(t *testing.T) {
	svc, _ := newAgentService(testRegistry())

	ok, err := svc.Exists("codex")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Exists("ghost")
	require.NoError(t, err)
	require.False(t, ok)
}
