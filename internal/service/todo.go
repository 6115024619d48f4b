package service

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lunara-app/backend/internal/models"
)

var ErrEmptyTitle = errors.New("title is required")

type TodoService struct {
	db *gorm.DB
}

func NewTodoService(db *gorm.DB) *TodoService {
	return &TodoService{db: db}
}

func (s *TodoService) List(userID uuid.UUID) ([]models.Todo, error) {
	var todos []models.Todo
	err := s.db.Where("user_id = ?", userID).
		Order("is_completed, created_at DESC").
		Find(&todos).Error
	return todos, err
}

func (s *TodoService) Create(userID uuid.UUID, title, description string, dueDate *time.Time) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	todo := models.Todo{
		UserID:      userID,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
	}
	if err := s.db.Create(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

func (s *TodoService) Update(userID, todoID uuid.UUID, title, description string, dueDate *time.Time) (*models.Todo, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	var todo models.Todo
	if err := s.db.Where("id = ? AND user_id = ?", todoID, userID).First(&todo).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	todo.Title = title
	todo.Description = description
	todo.DueDate = dueDate
	if err := s.db.Save(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// Toggle flips the completion flag; toggling twice restores the original state.
func (s *TodoService) Toggle(userID, todoID uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", todoID, userID).First(&todo).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		todo.IsCompleted = !todo.IsCompleted
		return tx.Save(&todo).Error
	})
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func (s *TodoService) Delete(userID, todoID uuid.UUID) error {
	res := s.db.Where("id = ? AND user_id = ?", todoID, userID).Delete(&models.Todo{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
