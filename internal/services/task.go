package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/diewo77/go-board/internal/metrics"
	"github.com/diewo77/go-board/internal/models"
	"github.com/diewo77/go-board/validation"
	"gorm.io/gorm"
)

// TaskInput is the editable part of a task as submitted by a form.
type TaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
}

// TaskService manages the shared task list and its status lifecycle.
type TaskService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db, now: time.Now}
}

func validateTask(in TaskInput) error {
	v := make(validation.Violations)
	validation.Required("title", in.Title, v)
	validation.MaxLen("title", strings.TrimSpace(in.Title), models.MaxTaskTitleLen, v)
	validation.Required("status", string(in.Status), v)
	if !v.Has("status") && !in.Status.Valid() {
		v.Add("status", "invalid_choice")
		return invalid(v, ErrInvalidStatus)
	}
	return invalid(v, nil)
}

// stamp applies the completion rule: every save into completed records now.
func (s *TaskService) stamp(t *models.Task) {
	if t.Status == models.TaskCompleted {
		now := s.now()
		t.CompletedAt = &now
	}
}

func (s *TaskService) Create(ctx context.Context, in TaskInput) (*models.Task, error) {
	if err := validateTask(in); err != nil {
		return nil, err
	}
	t := &models.Task{
		Title:       strings.TrimSpace(in.Title),
		Description: strings.TrimSpace(in.Description),
		Status:      in.Status,
	}
	s.stamp(t)
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	metrics.TaskTransitions.WithLabelValues(string(t.Status)).Inc()
	return t, nil
}

func (s *TaskService) Get(ctx context.Context, id uint) (*models.Task, error) {
	var t models.Task
	if err := s.db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Update replaces title, description and status of task id.
func (s *TaskService) Update(ctx context.Context, id uint, in TaskInput) (*models.Task, error) {
	if err := validateTask(in); err != nil {
		return nil, err
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Title = strings.TrimSpace(in.Title)
	t.Description = strings.TrimSpace(in.Description)
	t.Status = in.Status
	s.stamp(t)
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, err
	}
	metrics.TaskTransitions.WithLabelValues(string(t.Status)).Inc()
	return t, nil
}

// SetStatus moves task id to status. Leaving completed keeps CompletedAt.
func (s *TaskService) SetStatus(ctx context.Context, id uint, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Status = status
	s.stamp(t)
	if err := s.db.WithContext(ctx).Save(t).Error; err != nil {
		return nil, err
	}
	metrics.TaskTransitions.WithLabelValues(string(t.Status)).Inc()
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Task{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns tasks newest first. A filter that is not a valid status is
// ignored.
func (s *TaskService) List(ctx context.Context, statusFilter string) ([]models.Task, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if st := models.TaskStatus(statusFilter); st.Valid() {
		q = q.Where("status = ?", st)
	}
	var tasks []models.Task
	if err := q.Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
