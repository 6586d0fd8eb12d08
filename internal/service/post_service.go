package service

import (
	"context"

	"go.uber.org/zap"

	"socialmarket-backend/internal/cache"
	"socialmarket-backend/internal/model"
	"socialmarket-backend/internal/repository/interfaces"
	"socialmarket-backend/internal/util"
)

// PostService 处理帖子、评论与点赞的业务逻辑。
// 读路径全部经过缓存，写路径成功后按族失效。
type PostService struct {
	postRepo interfaces.PostRepository
	cache    *cache.Cache
}

// NewPostService 创建一个新的 PostService 实例
func NewPostService(postRepo interfaces.PostRepository, c *cache.Cache) *PostService {
	return &PostService{postRepo: postRepo, cache: c}
}

type postListPage struct {
	Posts []*model.Post
	Total int
}

func (s *PostService) CreatePost(ctx context.Context, post *model.Post) error {
	if err := s.postRepo.Create(ctx, post); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyPosts)
	util.Logger.Info("帖子创建成功", zap.String("post_id", post.ID), zap.String("visibility", post.Visibility))
	return nil
}

func (s *PostService) GetPost(ctx context.Context, id, viewerID string) (*model.Post, error) {
	key := cache.PostKey(id, viewerID)
	if v, ok := s.cache.Get(key); ok {
		return v.(*model.Post), nil
	}
	post, err := s.postRepo.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, post, cache.TTLEntity)
	return post, nil
}

func (s *PostService) ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error) {
	communityID := filter.CommunityID
	key := cache.PostListKey(filter.Visibility, communityID, filter.ViewerID, filter.Page, filter.Limit)
	if v, ok := s.cache.Get(key); ok {
		page := v.(postListPage)
		return page.Posts, page.Total, nil
	}
	posts, total, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	s.cache.Set(key, postListPage{Posts: posts, Total: total}, cache.TTLList)
	return posts, total, nil
}

func (s *PostService) UpdatePost(ctx context.Context, id, userID string, upd *model.PostUpdate) (*model.Post, error) {
	post, err := s.postRepo.Update(ctx, id, userID, upd)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateFamily(cache.FamilyPosts)
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id, userID string) error {
	if err := s.postRepo.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyPosts)
	util.Logger.Info("帖子已删除", zap.String("post_id", id))
	return nil
}

func (s *PostService) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	liked, count, err := s.postRepo.ToggleLike(ctx, postID, userID)
	if err != nil {
		return false, 0, err
	}
	s.cache.InvalidateFamily(cache.FamilyPosts)
	return liked, count, nil
}

func (s *PostService) AddComment(ctx context.Context, comment *model.Comment) error {
	if err := s.postRepo.CreateComment(ctx, comment); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyPosts)
	return nil
}

func (s *PostService) ListComments(ctx context.Context, postID string, page, limit int) ([]*model.Comment, error) {
	key := cache.CommentListKey(postID, page, limit)
	if v, ok := s.cache.Get(key); ok {
		return v.([]*model.Comment), nil
	}
	comments, err := s.postRepo.ListComments(ctx, postID, page, limit)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, comments, cache.TTLList)
	return comments, nil
}

func (s *PostService) DeleteComment(ctx context.Context, id, userID string) error {
	if err := s.postRepo.DeleteComment(ctx, id, userID); err != nil {
		return err
	}
	s.cache.InvalidateFamily(cache.FamilyPosts)
	return nil
}

// PostServiceInterface 定义帖子服务的方法集合
type PostServiceInterface interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPost(ctx context.Context, id, viewerID string) (*model.Post, error)
	ListPosts(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error)
	UpdatePost(ctx context.Context, id, userID string, upd *model.PostUpdate) (*model.Post, error)
	DeletePost(ctx context.Context, id, userID string) error
	ToggleLike(ctx context.Context, postID, userID string) (bool, int, error)
	AddComment(ctx context.Context, comment *model.Comment) error
	ListComments(ctx context.Context, postID string, page, limit int) ([]*model.Comment, error)
	DeleteComment(ctx context.Context, id, userID string) error
}

// 确保 PostService 实现了 PostServiceInterface
var _ PostServiceInterface = (*PostService)(nil)
