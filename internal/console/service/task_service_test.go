package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xela07ax/dashboard-daddy/internal/activity"
	"github.com/xela07ax/dashboard-daddy/internal/domain"
)

type fakeTaskRepo struct {
	tasks      map[string]*domain.Task
	listStatus domain.TaskStatus
	failAll    bool
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: make(map[string]*domain.Task)}
}

func (f *fakeTaskRepo) CreateTask(_ context.Context, t *domain.Task) error {
	if f.failAll {
		return errors.New("connection refused")
	}
	f.tasks[t.ID] = t
	return nil
}

func (f *fakeTaskRepo) GetTask(_ context.Context, id string) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (f *fakeTaskRepo) ListTasks(_ context.Context, status domain.TaskStatus) ([]*domain.Task, error) {
	if f.failAll {
		return nil, errors.New("connection refused")
	}
	f.listStatus = status
	out := make([]*domain.Task, 0)
	for _, t := range f.tasks {
		if status == "" || t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) TransitionTask(_ context.Context, id string, next domain.TaskStatus, taskErr string, now time.Time) (*domain.Task, error) {
	t, ok := f.tasks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if err := t.ApplyTransition(next, now); err != nil {
		return nil, err
	}
	if next == domain.TaskFailed {
		t.Error = taskErr
	}
	return t, nil
}

func (f *fakeTaskRepo) TaskCounts(_ context.Context) (domain.TaskCounts, error) {
	if f.failAll {
		return domain.TaskCounts{}, errors.New("connection refused")
	}
	var c domain.TaskCounts
	for _, t := range f.tasks {
		c.Total++
		switch t.Status {
		case domain.TaskPending:
			c.Pending++
		case domain.TaskInProgress:
			c.InProgress++
		case domain.TaskCompleted:
			c.Completed++
		case domain.TaskFailed:
			c.Failed++
		case domain.TaskCancelled:
			c.Cancelled++
		}
	}
	return c, nil
}

func newTaskService(repo TaskRepository) (*TaskService, *captureSink) {
	sink := &captureSink{}
	return NewTaskService(repo, sink, zap.NewNop()), sink
}

func TestCreateAppliesDefaults(t *testing.T) {
	svc, sink := newTaskService(newFakeTaskRepo())

	task, err := svc.Create(context.Background(), CreateInput{Title: "Call the vet"})
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	require.Equal(t, domain.TaskPending, task.Status)
	require.Equal(t, domain.PriorityMedium, task.Priority)
	require.False(t, task.CreatedAt.IsZero())
	require.Nil(t, task.StartedAt)
	require.Nil(t, task.CompletedAt)

	require.Len(t, sink.events, 1)
	require.Equal(t, activity.KindTaskCreated, sink.events[0].Kind)
}

func TestCreateRequiresTitle(t *testing.T) {
	svc, _ := newTaskService(newFakeTaskRepo())

	_, err := svc.Create(context.Background(), CreateInput{})
	require.Error(t, err)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	svc, _ := newTaskService(newFakeTaskRepo())

	_, err := svc.Create(context.Background(), CreateInput{Title: "x", Status: "paused"})
	require.Error(t, err)
}

func TestCreateNonPendingStampsStartedAt(t *testing.T) {
	svc, _ := newTaskService(newFakeTaskRepo())

	task, err := svc.Create(context.Background(), CreateInput{Title: "x", Status: domain.TaskInProgress})
	require.NoError(t, err)
	require.NotNil(t, task.StartedAt)
	require.Nil(t, task.CompletedAt)
}

func TestCreateWrapsRepoFailure(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.failAll = true
	svc, _ := newTaskService(repo)

	_, err := svc.Create(context.Background(), CreateInput{Title: "x"})
	var upErr *domain.UpstreamError
	require.ErrorAs(t, err, &upErr)
	require.Equal(t, "tasks", upErr.Source)
}

func TestListMapsBoardVocabulary(t *testing.T) {
	repo := newFakeTaskRepo()
	svc, _ := newTaskService(repo)

	_, err := svc.List(context.Background(), "review")
	require.NoError(t, err)
	require.Equal(t, domain.TaskInProgress, repo.listStatus)

	_, err = svc.List(context.Background(), "backlog")
	require.NoError(t, err)
	require.Equal(t, domain.TaskPending, repo.listStatus)

	_, err = svc.List(context.Background(), "done")
	require.NoError(t, err)
	require.Equal(t, domain.TaskCompleted, repo.listStatus)

	_, err = svc.List(context.Background(), "bogus")
	require.Error(t, err)
}

func TestTransitionRecordsEvent(t *testing.T) {
	repo := newFakeTaskRepo()
	svc, sink := newTaskService(repo)

	task, err := svc.Create(context.Background(), CreateInput{Title: "x"})
	require.NoError(t, err)

	got, err := svc.Transition(context.Background(), task.ID, domain.TaskInProgress, "")
	require.NoError(t, err)
	require.Equal(t, domain.TaskInProgress, got.Status)

	require.Len(t, sink.events, 2)
	require.Equal(t, activity.KindTaskTransition, sink.events[1].Kind)
}

func TestTransitionFailedKeepsError(t *testing.T) {
	repo := newFakeTaskRepo()
	svc, _ := newTaskService(repo)

	task, err := svc.Create(context.Background(), CreateInput{Title: "x", Status: domain.TaskInProgress})
	require.NoError(t, err)

	got, err := svc.Transition(context.Background(), task.ID, domain.TaskFailed, "agent crashed")
	require.NoError(t, err)
	require.Equal(t, "agent crashed", got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestCountsDegradesToZeros(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.failAll = true
	svc, _ := newTaskService(repo)

	c := svc.Counts(context.Background())
	require.Zero(t, c.Total)
}
