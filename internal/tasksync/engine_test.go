package tasksync_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/local"
	"tasksync/internal/service"
	"tasksync/internal/tasksync"
	"tasksync/internal/testutil"
)

const (
	listID       = "local-list"
	remoteListID = testutil.DefaultListID
)

func reconcile(t *testing.T, fake *testutil.FakeService, tasks []local.Task) tasksync.Result {
	t.Helper()
	remote, err := fake.ListTasks(context.Background(), remoteListID)
	require.NoError(t, err)

	engine := tasksync.NewEngine(fake, nil)
	return engine.Reconcile(context.Background(), tasksync.Input{
		ListID:       listID,
		RemoteListID: remoteListID,
		LocalTasks:   tasks,
		RemoteTasks:  remote,
	})
}

func TestReconcile_NewerRemoteWins(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Title: "New Title", Updated: "2024-06-01T00:00:00Z"})

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "Old Title", LastModified: "2024-01-01T00:00:00Z", RemoteID: "g1"},
	})

	require.True(t, res.Success)
	require.Len(t, res.LocalTasksToUpsert, 1)
	got := res.LocalTasksToUpsert[0]
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, "New Title", got.Title)
	assert.Equal(t, "g1", got.RemoteID)
	assert.Equal(t, "2024-06-01T00:00:00Z", got.LastModified)
	assert.Equal(t, tasksync.Counts{Updated: 1}, res.Counts)
	assert.Empty(t, fake.Calls())
}

func TestReconcile_NewerLocalWins(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Updated: "2024-01-01T00:00:00Z"})

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "Local Title", LastModified: "2024-06-01T00:00:00Z", RemoteID: "g1"},
	})

	require.True(t, res.Success)
	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "updateTask", calls[0].Op)
	assert.Equal(t, "g1", calls[0].TaskID)
	assert.Equal(t, "Local Title", calls[0].Payload.Title)
	assert.Empty(t, res.LocalTasksToUpsert)
	assert.Empty(t, res.LocalTasksToMarkDeleted)
	assert.Equal(t, tasksync.Counts{Updated: 1}, res.Counts)
}

func TestReconcile_EqualTimestampsIsNoOp(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Title: "Remote", Updated: "2024-03-01T10:00:00.000Z"})

	// Same instant, different representation and different content.
	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "Local", LastModified: "2024-03-01T11:00:00+01:00", RemoteID: "g1"},
	})

	assert.True(t, res.Success)
	assert.Zero(t, res.Counts.Total())
	assert.Empty(t, res.LocalTasksToUpsert)
	assert.Empty(t, fake.Calls())
}

func TestReconcile_IdenticalContentIsNoOp(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Title: "Same", Updated: "2024-06-01T00:00:00Z"})

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "Same", LastModified: "2024-01-01T00:00:00Z", RemoteID: "g1"},
	})

	assert.Zero(t, res.Counts.Total())
	assert.Empty(t, res.LocalTasksToUpsert)
}

func TestReconcile_RemoteOnlyBecomesLocal(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g7", Title: "From phone", Notes: "details", Status: service.StatusCompleted, Updated: "2024-05-01T00:00:00Z"})

	res := reconcile(t, fake, nil)

	require.Len(t, res.LocalTasksToUpsert, 1)
	got := res.LocalTasksToUpsert[0]
	assert.Equal(t, local.Task{
		ID:           "g7",
		ListID:       listID,
		Title:        "From phone",
		Description:  "details",
		IsCompleted:  true,
		CreatedAt:    "2024-05-01T00:00:00Z",
		LastModified: "2024-05-01T00:00:00Z",
		RemoteID:     "g7",
	}, got)
	assert.Equal(t, tasksync.Counts{Added: 1}, res.Counts)
}

func TestReconcile_RemoteOnlyWithTakenLocalID(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "x", Title: "Remote", Updated: "2024-05-01T00:00:00Z"})

	tasks := []local.Task{{ID: "x", ListID: listID, Title: "Unrelated", LastModified: "2024-05-01T00:00:00Z", RemoteID: "other"}}
	fake.AddTask(remoteListID, service.Task{ID: "other", Title: "Unrelated", Updated: "2024-05-01T00:00:00Z"})

	first := reconcile(t, fake, tasks)
	second := reconcile(t, fake, tasks)

	require.Len(t, first.LocalTasksToUpsert, 1)
	assert.NotEqual(t, "x", first.LocalTasksToUpsert[0].ID)
	assert.Equal(t, first.LocalTasksToUpsert[0].ID, second.LocalTasksToUpsert[0].ID, "derived id must be stable")
}

func TestReconcile_UnsyncedLocalIsUploaded(t *testing.T) {
	fake := testutil.NewFakeService()

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "X", LastModified: "2024-01-01T00:00:00Z"},
	})

	creates := fake.CallsOf("createTask")
	require.Len(t, creates, 1)
	assert.Equal(t, "X", creates[0].Payload.Title)
	assert.Equal(t, []tasksync.Binding{{LocalID: "a", RemoteID: creates[0].TaskID}}, res.Bindings)
	assert.Equal(t, tasksync.Counts{Added: 1}, res.Counts)
}

func TestReconcile_UploadFailureIsSkipped(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.CreateTaskErr["bad"] = testutil.ErrUnavailable

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "good one"},
		{ID: "b", ListID: listID, Title: "bad"},
		{ID: "c", ListID: listID, Title: "good two"},
	})

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.PartialFailures)
	assert.Equal(t, 2, res.Counts.Added)
	require.Len(t, res.Bindings, 2)
	assert.Equal(t, "a", res.Bindings[0].LocalID)
	assert.Equal(t, "c", res.Bindings[1].LocalID)
}

func TestReconcile_RemoteDeletionDetected(t *testing.T) {
	fake := testutil.NewFakeService()

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "gone", RemoteID: "g1"},
	})

	assert.Equal(t, []string{"a"}, res.LocalTasksToMarkDeleted)
	assert.Equal(t, tasksync.Counts{Deleted: 1}, res.Counts)
	assert.Empty(t, fake.Calls())
}

func TestReconcile_LocalDeletionPropagates(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Title: "doomed", Updated: "2024-01-01T00:00:00Z"})

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "doomed", RemoteID: "g1", IsDeleted: true, LastModified: "2024-02-01T00:00:00Z"},
	})

	deletes := fake.CallsOf("deleteTask")
	require.Len(t, deletes, 1)
	assert.Equal(t, remoteListID, deletes[0].ListID)
	assert.Equal(t, "g1", deletes[0].TaskID)
	assert.Equal(t, tasksync.Counts{Deleted: 1}, res.Counts)
	assert.Equal(t, []string{"a"}, res.LocalTasksToPurge)
	assert.Empty(t, fake.CallsOf("updateTask"), "tombstones are never patched")
}

func TestReconcile_LocalDeletionFailureKeepsTombstone(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Title: "doomed"})
	fake.DeleteTaskErr["g1"] = testutil.ErrUnavailable

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, RemoteID: "g1", IsDeleted: true},
	})

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.PartialFailures)
	assert.Zero(t, res.Counts.Deleted)
	assert.Empty(t, res.LocalTasksToPurge)
}

func TestReconcile_TombstonesWithoutRemoteTwinArePurged(t *testing.T) {
	fake := testutil.NewFakeService()

	res := reconcile(t, fake, []local.Task{
		{ID: "never-synced", ListID: listID, IsDeleted: true},
		{ID: "already-gone", ListID: listID, RemoteID: "g9", IsDeleted: true},
	})

	assert.ElementsMatch(t, []string{"never-synced", "already-gone"}, res.LocalTasksToPurge)
	assert.Zero(t, res.Counts.Total())
	assert.Empty(t, fake.Calls())
}

func TestReconcile_PatchFailureIsSkipped(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Updated: "2024-01-01T00:00:00Z"})
	fake.UpdateTaskErr["g1"] = testutil.ErrUnavailable

	res := reconcile(t, fake, []local.Task{
		{ID: "a", ListID: listID, Title: "Local Title", LastModified: "2024-06-01T00:00:00Z", RemoteID: "g1"},
		{ID: "b", ListID: listID, Title: "new"},
	})

	assert.True(t, res.Success)
	assert.Equal(t, 1, res.PartialFailures)
	assert.Equal(t, tasksync.Counts{Added: 1}, res.Counts)
}

func TestReconcile_Idempotent(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddTask(remoteListID, service.Task{ID: "g1", Title: "remote newer", Updated: "2024-06-01T00:00:00Z"})
	fake.AddTask(remoteListID, service.Task{ID: "g2", Updated: "2024-01-01T00:00:00Z"})
	fake.AddTask(remoteListID, service.Task{ID: "g3", Title: "remote only", Updated: "2024-02-01T00:00:00Z"})
	fake.AddTask(remoteListID, service.Task{ID: "g4", Title: "deleted locally", Updated: "2024-02-01T00:00:00Z"})

	tasks := []local.Task{
		{ID: "a", ListID: listID, Title: "stale", LastModified: "2024-01-01T00:00:00Z", RemoteID: "g1"},
		{ID: "b", ListID: listID, Title: "local newer", DueDate: "2024-08-01", LastModified: "2024-06-01T00:00:00Z", RemoteID: "g2"},
		{ID: "c", ListID: listID, Title: "unsynced", Description: "notes", LastModified: "2024-03-01T00:00:00Z"},
		{ID: "d", ListID: listID, Title: "deleted locally", RemoteID: "g4", IsDeleted: true},
		{ID: "e", ListID: listID, Title: "deleted remotely", RemoteID: "g5"},
	}

	first := reconcile(t, fake, tasks)
	require.True(t, first.Success)
	assert.Equal(t, tasksync.Counts{Added: 2, Updated: 2, Deleted: 2}, first.Counts)

	tasks = testutil.ApplyResult(tasks, first)
	fake.ResetCalls()

	second := reconcile(t, fake, tasks)
	assert.True(t, second.Success)
	assert.Zero(t, second.Counts.Total())
	assert.Empty(t, second.LocalTasksToUpsert)
	assert.Empty(t, second.LocalTasksToMarkDeleted)
	assert.Empty(t, second.Bindings)
	assert.Empty(t, fake.Calls())
}
