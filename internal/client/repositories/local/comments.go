package local

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/statusboard/internal/client/models"
	"github.com/dmitrijs2005/statusboard/internal/client/securestore"
	"github.com/dmitrijs2005/statusboard/internal/common"
)

// CommentStore keeps the comments of every action under its own key.
type CommentStore struct {
	mu    sync.Mutex
	store *securestore.Store
}

func NewCommentStore(store *securestore.Store) *CommentStore {
	return &CommentStore{store: store}
}

func commentsKey(actionID int64) string {
	return common.CommentsKeyPrefix + strconv.FormatInt(actionID, 10)
}

func (s *CommentStore) List(ctx context.Context, actionID int64) ([]models.Comment, error) {
	var out []models.Comment
	s.store.GetSecureItem(ctx, commentsKey(actionID), &out)
	return out, nil
}

func (s *CommentStore) Add(ctx context.Context, c models.Comment) error {
	return s.update(ctx, c.ActionID, func(list []models.Comment) []models.Comment {
		return append(list, c)
	})
}

// Delete removes one comment. An unknown id is a no-op.
func (s *CommentStore) Delete(ctx context.Context, actionID int64, id string) error {
	return s.update(ctx, actionID, func(list []models.Comment) []models.Comment {
		kept := list[:0]
		for _, c := range list {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		return kept
	})
}

// DeleteAll drops every comment of an action.
func (s *CommentStore) DeleteAll(ctx context.Context, actionID int64) error {
	s.store.RemoveSecureItem(ctx, commentsKey(actionID))
	return nil
}

func (s *CommentStore) update(ctx context.Context, actionID int64, fn func([]models.Comment) []models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := commentsKey(actionID)
	var list []models.Comment
	tok, _, err := s.store.GetSecureItemToken(ctx, key, &list)
	if err != nil {
		return errSave(err)
	}

	list = fn(list)
	if list == nil {
		list = []models.Comment{}
	}
	if err := s.store.SwapSecureItem(ctx, key, tok, list); err != nil {
		return errSave(err)
	}
	return nil
}

func errSave(err error) error {
	return fmt.Errorf("%w: %w", common.ErrSaveFailed, err)
}
