package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/common"
	"github.com/dmitrijs2005/statusboard/internal/timex"
	"github.com/google/uuid"
)

type CommentService interface {
	List(ctx context.Context, actionID int64) ([]models.Comment, error)
	Add(ctx context.Context, c models.Comment) (models.Comment, error)
	Delete(ctx context.Context, actionID int64, id string) error
}

type commentService struct {
	repos *Router
	now   timex.Clock
}

func NewCommentService(repos *Router, now timex.Clock) CommentService {
	return &commentService{repos: repos, now: now.Or()}
}

func (s *commentService) List(ctx context.Context, actionID int64) ([]models.Comment, error) {
	return read(ctx, s.repos, func(r *Repositories) ([]models.Comment, error) {
		return r.Comments.List(ctx, actionID)
	})
}

func (s *commentService) Add(ctx context.Context, c models.Comment) (models.Comment, error) {
	if err := c.Validate(); err != nil {
		return models.Comment{}, err
	}
	_, err := read(ctx, s.repos, func(r *Repositories) (models.Action, error) {
		return r.Actions.GetByID(ctx, c.ActionID)
	})
	if errors.Is(err, common.ErrorNotFound) {
		return models.Comment{}, common.ErrActionNotFound
	}
	if err != nil {
		return models.Comment{}, err
	}

	c.ID = uuid.NewString()
	c.CreatedAt = s.now()
	if err := write(ctx, s.repos, func(r *Repositories) error { return r.Comments.Add(ctx, c) }); err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

func (s *commentService) Delete(ctx context.Context, actionID int64, id string) error {
	list, err := s.List(ctx, actionID)
	if err != nil {
		return err
	}
	found := false
	for _, c := range list {
		if c.ID == id {
			found = true
			break
		}
	}
	if !found {
		return common.ErrCommentNotFound
	}
	return write(ctx, s.repos, func(r *Repositories) error { return r.Comments.Delete(ctx, actionID, id) })
}
