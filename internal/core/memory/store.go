// Package memory provides an in-memory ShadowStore with the same semantics
// as the postgres repositories. It backs tests and the "memory" store driver.
package memory

import (
	"context"
	"sort"
	"sync"

	"go-procflow/internal/domain"

	"github.com/google/uuid"
)

// Store is an in-memory ShadowStore.
type Store struct {
	mu sync.RWMutex

	instances  map[uuid.UUID]domain.WorkflowInstance
	byExternal map[string]uuid.UUID
	order      []uuid.UUID // insertion order

	assignments map[uuid.UUID]domain.TaskAssignment
	taskOrder   []uuid.UUID
}

func NewStore() *Store {
	return &Store{
		instances:   make(map[uuid.UUID]domain.WorkflowInstance),
		byExternal:  make(map[string]uuid.UUID),
		assignments: make(map[uuid.UUID]domain.TaskAssignment),
	}
}

// InsertWorkflowInstance does not write when the external id is already
// tracked; the caller's instance is overwritten with the stored row instead.
func (s *Store) InsertWorkflowInstance(_ context.Context, instance *domain.WorkflowInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, exists := s.byExternal[instance.ExternalInstanceID]; exists {
		*instance = s.instances[id]
		return nil
	}
	if instance.ID == uuid.Nil {
		instance.ID = uuid.New()
	}
	if instance.Version == 0 {
		instance.Version = 1
	}

	s.instances[instance.ID] = *instance
	s.byExternal[instance.ExternalInstanceID] = instance.ID
	s.order = append(s.order, instance.ID)
	return nil
}

func (s *Store) UpdateWorkflowInstance(_ context.Context, instance *domain.WorkflowInstance) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.instances[instance.ID]
	if !exists || existing.Version != instance.Version {
		return domain.ErrVersionConflict
	}

	// Only lifecycle columns are mutable.
	existing.Status = instance.Status
	existing.CompletedAt = instance.CompletedAt
	existing.Version++
	s.instances[instance.ID] = existing

	instance.Version = existing.Version
	return nil
}

func (s *Store) ListAllWorkflowInstances(_ context.Context) ([]domain.WorkflowInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.WorkflowInstance, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.instances[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartedAt.Before(out[j].StartedAt)
	})
	return out, nil
}

func (s *Store) FindWorkflowInstanceByExternalID(_ context.Context, externalID string) (*domain.WorkflowInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, exists := s.byExternal[externalID]
	if !exists {
		return nil, nil
	}
	inst := s.instances[id]
	return &inst, nil
}

func (s *Store) FindWorkflowInstancesByBusinessKey(_ context.Context, businessKey string) ([]domain.WorkflowInstance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.WorkflowInstance
	for _, id := range s.order {
		inst := s.instances[id]
		if inst.BusinessKey != nil && *inst.BusinessKey == businessKey {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (s *Store) InsertTaskAssignment(_ context.Context, assignment *domain.TaskAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if assignment.ID == uuid.Nil {
		assignment.ID = uuid.New()
	}
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	s.assignments[assignment.ID] = *assignment
	s.taskOrder = append(s.taskOrder, assignment.ID)
	return nil
}

func (s *Store) UpdateTaskAssignment(_ context.Context, assignment *domain.TaskAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.assignments[assignment.ID]
	if !exists || existing.Version != assignment.Version {
		return domain.ErrVersionConflict
	}

	existing.Status = assignment.Status
	existing.Version++
	s.assignments[assignment.ID] = existing

	assignment.Version = existing.Version
	return nil
}

func (s *Store) FindTaskAssignmentsByAssigneeAndStatus(_ context.Context, assignee string, status domain.TaskStatus) ([]domain.TaskAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TaskAssignment
	for _, id := range s.taskOrder {
		a := s.assignments[id]
		if a.Assignee == assignee && a.Status == status {
			out = append(out, a)
		}
	}
	return out, nil
}

// TaskAssignments returns every row for taskID in insertion order.
func (s *Store) TaskAssignments(taskID string) []domain.TaskAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TaskAssignment
	for _, id := range s.taskOrder {
		if a := s.assignments[id]; a.TaskID == taskID {
			out = append(out, a)
		}
	}
	return out
}
