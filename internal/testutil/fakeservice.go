// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"tasksync/internal/local"
	"tasksync/internal/service"
)

// DefaultListID is the ID used for the default list.
const DefaultListID = "default-list"

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = &service.APIError{StatusCode: http.StatusNotFound, Body: "not found"}

// ErrUnavailable is a generic transient failure for error injection.
var ErrUnavailable = &service.APIError{StatusCode: http.StatusServiceUnavailable, Body: "backend unavailable"}

// Call records one mutating call made against the fake.
type Call struct {
	Op      string // "createList", "createTask", "updateTask", "deleteTask", "deleteList"
	ListID  string
	TaskID  string
	Payload service.TaskPayload
}

// FakeService is an in-memory implementation of service.Service for testing.
// Every write stamps "updated" from Clock, which advances one second per write.
type FakeService struct {
	mu     sync.RWMutex
	lists  []service.TaskList
	tasks  map[string][]service.Task // listID -> tasks
	nextID int
	calls  []Call

	// Clock is the next "updated" stamp handed out.
	Clock time.Time

	// Error injection for testing
	DefaultListErr error
	ListListsErr   error
	CreateListErr  error
	DeleteListErr  error
	ListTasksErr   map[string]error // listID -> error
	CreateTaskErr  map[string]error // task title -> error
	UpdateTaskErr  map[string]error // taskID -> error
	DeleteTaskErr  map[string]error // taskID -> error
}

// NewFakeService creates a new FakeService with a default list.
func NewFakeService() *FakeService {
	fs := NewFakeServiceWithoutDefault()
	fs.lists = []service.TaskList{
		{ID: DefaultListID, Title: "My Tasks", IsDefault: true},
	}
	fs.tasks[DefaultListID] = nil
	return fs
}

// NewFakeServiceWithoutDefault creates a FakeService whose account has no default list.
func NewFakeServiceWithoutDefault() *FakeService {
	return &FakeService{
		tasks:         make(map[string][]service.Task),
		Clock:         time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		ListTasksErr:  make(map[string]error),
		CreateTaskErr: make(map[string]error),
		UpdateTaskErr: make(map[string]error),
		DeleteTaskErr: make(map[string]error),
	}
}

// AddList adds a list to the fake service.
func (f *FakeService) AddList(id, title string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, service.TaskList{ID: id, Title: title, IsDefault: false})
	if f.tasks[id] == nil {
		f.tasks[id] = nil
	}
}

// AddTask seeds a task without recording a call.
func (f *FakeService) AddTask(listID string, task service.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if task.Status == "" {
		task.Status = service.StatusNeedsAction
	}
	f.tasks[listID] = append(f.tasks[listID], task)
}

// RemoveTask drops a task without recording a call, as another client would.
func (f *FakeService) RemoveTask(listID, taskID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks[listID] = removeTask(f.tasks[listID], taskID)
}

// Tasks returns a copy of a list's tasks.
func (f *FakeService) Tasks(listID string) []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks[listID]))
	copy(out, f.tasks[listID])
	return out
}

// Lists returns a copy of all lists.
func (f *FakeService) Lists() []service.TaskList {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.TaskList, len(f.lists))
	copy(out, f.lists)
	return out
}

// Calls returns the mutating calls made so far.
func (f *FakeService) Calls() []Call {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsOf returns the recorded calls with the given op.
func (f *FakeService) CallsOf(op string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls forgets recorded calls.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

// tick must be called with f.mu held.
func (f *FakeService) tick() string {
	f.Clock = f.Clock.Add(time.Second)
	return local.FormatTime(f.Clock)
}

// DefaultList implements service.Service.
func (f *FakeService) DefaultList(ctx context.Context) (service.TaskList, error) {
	if f.DefaultListErr != nil {
		return service.TaskList{}, f.DefaultListErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, l := range f.lists {
		if l.IsDefault {
			return l, nil
		}
	}
	return service.TaskList{}, ErrNotFound
}

// ListLists implements service.Service.
func (f *FakeService) ListLists(ctx context.Context) ([]service.TaskList, error) {
	if f.ListListsErr != nil {
		return nil, f.ListListsErr
	}
	return f.Lists(), nil
}

// CreateList implements service.Service.
func (f *FakeService) CreateList(ctx context.Context, title string) (service.TaskList, error) {
	if f.CreateListErr != nil {
		return service.TaskList{}, f.CreateListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	list := service.TaskList{
		ID:      fmt.Sprintf("list-%d", f.nextID),
		Title:   title,
		Updated: f.tick(),
	}
	f.lists = append(f.lists, list)
	f.tasks[list.ID] = nil
	f.calls = append(f.calls, Call{Op: "createList", ListID: list.ID})
	return list, nil
}

// DeleteList implements service.Service.
func (f *FakeService) DeleteList(ctx context.Context, listID string) error {
	if f.DeleteListErr != nil {
		return f.DeleteListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, l := range f.lists {
		if l.ID == listID {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			delete(f.tasks, listID)
			f.calls = append(f.calls, Call{Op: "deleteList", ListID: listID})
			return nil
		}
	}
	return ErrNotFound
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, listID string) ([]service.Task, error) {
	if err := f.ListTasksErr[listID]; err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	tasks, ok := f.tasks[listID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	return out, nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, listID string, payload service.TaskPayload) (service.Task, error) {
	if err := f.CreateTaskErr[payload.Title]; err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tasks[listID]; !ok {
		return service.Task{}, ErrNotFound
	}

	f.nextID++
	task := service.Task{
		ID:      fmt.Sprintf("remote-%d", f.nextID),
		Title:   payload.Title,
		Notes:   payload.Notes,
		Status:  payload.Status,
		Due:     payload.Due,
		Updated: f.tick(),
	}
	f.tasks[listID] = append(f.tasks[listID], task)
	f.calls = append(f.calls, Call{Op: "createTask", ListID: listID, TaskID: task.ID, Payload: payload})
	return task, nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, listID, taskID string, payload service.TaskPayload) (service.Task, error) {
	if err := f.UpdateTaskErr[taskID]; err != nil {
		return service.Task{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, t := range f.tasks[listID] {
		if t.ID != taskID {
			continue
		}
		t.Title = payload.Title
		t.Notes = payload.Notes
		t.Status = payload.Status
		t.Due = payload.Due
		t.Updated = f.tick()
		f.tasks[listID][i] = t
		f.calls = append(f.calls, Call{Op: "updateTask", ListID: listID, TaskID: taskID, Payload: payload})
		return t, nil
	}
	return service.Task{}, ErrNotFound
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, listID, taskID string) error {
	if err := f.DeleteTaskErr[taskID]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Op: "deleteTask", ListID: listID, TaskID: taskID})
	before := len(f.tasks[listID])
	f.tasks[listID] = removeTask(f.tasks[listID], taskID)
	if len(f.tasks[listID]) == before {
		return ErrNotFound
	}
	return nil
}

func removeTask(tasks []service.Task, taskID string) []service.Task {
	out := tasks[:0]
	for _, t := range tasks {
		if t.ID != taskID {
			out = append(out, t)
		}
	}
	return out
}

