// Package supabase 通过 PostgREST 适配器实现各资源的存储库接口。
// 所有权校验与变更在同一次后端调用内完成（user_id 过滤直接挂在
// PATCH/DELETE 上），避免先查后改的竞态窗口。
package supabase

import (
	"context"
	"net/http"

	apperrors "socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/model"
	sb "socialmarket-backend/internal/supabase"
)

// 帖子读路径的嵌入查询：作者资料、评论（含评论者资料）、聚合计数，
// 一次往返拿全，替代逐帖 N+1 扇出。
const postSelect = "*,profiles(*),comments(*,profiles(*)),like_count:likes(count),comment_count:comments(count)"

type countRow struct {
	Count int `json:"count"`
}

type postRow struct {
	model.Post
	LikeCount    []countRow `json:"like_count"`
	CommentCount []countRow `json:"comment_count"`
}

func (r postRow) toModel() *model.Post {
	p := r.Post
	if len(r.LikeCount) > 0 {
		p.Count.Likes = r.LikeCount[0].Count
	}
	if len(r.CommentCount) > 0 {
		p.Count.Comments = r.CommentCount[0].Count
	}
	if p.Comments == nil {
		p.Comments = []*model.Comment{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Visibility == model.VisibilityAnonymous {
		p.Anonymize()
	}
	return &p
}

// PostRepository 帖子存储库的 PostgREST 实现
type PostRepository struct {
	client *sb.Client
}

func NewPostRepository(client *sb.Client) *PostRepository {
	return &PostRepository{client}
}

func (r *PostRepository) Create(ctx context.Context, post *model.Post) error {
	payload := map[string]any{
		"user_id":    post.UserID,
		"content":    post.Content,
		"images":     post.Images,
		"visibility": post.Visibility,
	}
	if post.CommunityID != nil {
		payload["community_id"] = *post.CommunityID
	}

	resp, err := r.client.From("posts").Select(postSelect).Insert(ctx, payload)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create post", err)
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create post", err)
	}

	var rows []postRow
	if err := resp.JSON(&rows); err != nil || len(rows) == 0 {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create post", err)
	}
	*post = *rows[0].toModel()
	return nil
}

func (r *PostRepository) GetByID(ctx context.Context, id, viewerID string) (*model.Post, error) {
	resp, err := r.client.From("posts").
		Select(postSelect).
		Eq("id", id).
		Single().
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get post", err)
	}
	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.New(apperrors.ErrPostNotFound, "Post not found")
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get post", err)
	}

	var row postRow
	if err := resp.JSON(&row); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get post", err)
	}
	post := row.toModel()

	if viewerID != "" {
		liked, err := r.likedSet(ctx, viewerID, []string{post.ID})
		if err == nil {
			post.UserLiked = liked[post.ID]
		}
	}
	return post, nil
}

func (r *PostRepository) List(ctx context.Context, filter model.PostFilter) ([]*model.Post, int, error) {
	q := r.client.From("posts").
		Select(postSelect).
		Eq("visibility", filter.Visibility).
		Order("created_at", false).
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Count()
	if filter.CommunityID != "" {
		q = q.Eq("community_id", filter.CommunityID)
	}

	resp, err := q.Execute(ctx)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list posts", err)
	}
	if err := resp.Err(); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list posts", err)
	}

	var rows []postRow
	if err := resp.JSON(&rows); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list posts", err)
	}

	posts := make([]*model.Post, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		p := row.toModel()
		posts = append(posts, p)
		ids = append(ids, p.ID)
	}

	// 单次批量查询补齐当前用户的点赞状态
	if filter.ViewerID != "" && len(ids) > 0 {
		liked, err := r.likedSet(ctx, filter.ViewerID, ids)
		if err == nil {
			for _, p := range posts {
				p.UserLiked = liked[p.ID]
			}
		}
	}

	return posts, resp.Total(), nil
}

// likedSet 查出 viewer 在给定帖子集合中点过赞的帖子ID
func (r *PostRepository) likedSet(ctx context.Context, viewerID string, postIDs []string) (map[string]bool, error) {
	resp, err := r.client.From("likes").
		Select("post_id").
		Eq("user_id", viewerID).
		In("post_id", postIDs).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	if err := resp.Err(); err != nil {
		return nil, err
	}

	var rows []struct {
		PostID string `json:"post_id"`
	}
	if err := resp.JSON(&rows); err != nil {
		return nil, err
	}

	liked := make(map[string]bool, len(rows))
	for _, row := range rows {
		liked[row.PostID] = true
	}
	return liked, nil
}

func (r *PostRepository) Update(ctx context.Context, id, userID string, upd *model.PostUpdate) (*model.Post, error) {
	resp, err := r.client.From("posts").
		Select(postSelect).
		Eq("id", id).
		Eq("user_id", userID).
		Update(ctx, upd)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update post", err)
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update post", err)
	}

	var rows []postRow
	if err := resp.JSON(&rows); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to update post", err)
	}
	if len(rows) == 0 {
		return nil, r.ownershipError(ctx, id)
	}
	return rows[0].toModel(), nil
}

func (r *PostRepository) Delete(ctx context.Context, id, userID string) error {
	resp, err := r.client.From("posts").
		Eq("id", id).
		Eq("user_id", userID).
		Delete(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete post", err)
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete post", err)
	}

	var rows []model.Post
	if err := resp.JSON(&rows); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete post", err)
	}
	if len(rows) == 0 {
		return r.ownershipError(ctx, id)
	}
	return nil
}

// ownershipError 把条件更新的空结果归类为 404 或 403
func (r *PostRepository) ownershipError(ctx context.Context, id string) error {
	resp, err := r.client.From("posts").Select("id").Eq("id", id).Limit(1).Execute(ctx)
	if err != nil || resp.Err() != nil {
		return apperrors.New(apperrors.ErrPostNotFound, "Post not found")
	}
	var rows []struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&rows); err != nil || len(rows) == 0 {
		return apperrors.New(apperrors.ErrPostNotFound, "Post not found")
	}
	return apperrors.New(apperrors.ErrForbidden, "Not authorized to modify this post")
}

// ToggleLike 原子化的点赞开关：先尝试删除，删不到就插入（忽略重复）。
// (post_id, user_id) 的点赞行数在顺序调用下永不超过 1。
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID string) (bool, int, error) {
	resp, err := r.client.From("likes").
		Eq("post_id", postID).
		Eq("user_id", userID).
		Delete(ctx)
	if err != nil {
		return false, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to toggle like", err)
	}
	if err := resp.Err(); err != nil {
		return false, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to toggle like", err)
	}

	var deleted []model.Like
	if err := resp.JSON(&deleted); err != nil {
		return false, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to toggle like", err)
	}

	liked := false
	if len(deleted) == 0 {
		ins, err := r.client.From("likes").
			Upsert().
			Insert(ctx, map[string]any{"post_id": postID, "user_id": userID})
		if err != nil {
			return false, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to toggle like", err)
		}
		if err := ins.Err(); err != nil {
			// 外键失败说明帖子不存在
			if exists, _ := r.postExists(ctx, postID); !exists {
				return false, 0, apperrors.New(apperrors.ErrPostNotFound, "Post not found")
			}
			return false, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to toggle like", err)
		}
		liked = true
	}

	count, err := r.likeCount(ctx, postID)
	if err != nil {
		return liked, 0, nil // 计数失败不影响开关结果
	}
	return liked, count, nil
}

func (r *PostRepository) postExists(ctx context.Context, id string) (bool, error) {
	resp, err := r.client.From("posts").Select("id").Eq("id", id).Limit(1).Execute(ctx)
	if err != nil {
		return false, err
	}
	var rows []struct {
		ID string `json:"id"`
	}
	if err := resp.JSON(&rows); err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

func (r *PostRepository) likeCount(ctx context.Context, postID string) (int, error) {
	resp, err := r.client.From("likes").
		Select("id").
		Eq("post_id", postID).
		Limit(1).
		Count().
		Execute(ctx)
	if err != nil {
		return 0, err
	}
	if err := resp.Err(); err != nil {
		return 0, err
	}
	return resp.Total(), nil
}

func (r *PostRepository) CreateComment(ctx context.Context, comment *model.Comment) error {
	// 评论写路径同时取回帖子可见性，匿名帖的评论不回传作者资料
	resp, err := r.client.From("comments").
		Select("*,profiles(*),posts(visibility)").
		Insert(ctx, map[string]any{
			"post_id": comment.PostID,
			"user_id": comment.UserID,
			"content": comment.Content,
		})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create comment", err)
	}
	if err := resp.Err(); err != nil {
		if exists, _ := r.postExists(ctx, comment.PostID); !exists {
			return apperrors.New(apperrors.ErrPostNotFound, "Post not found")
		}
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create comment", err)
	}

	var rows []struct {
		model.Comment
		Post struct {
			Visibility string `json:"visibility"`
		} `json:"posts"`
	}
	if err := resp.JSON(&rows); err != nil || len(rows) == 0 {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create comment", err)
	}
	*comment = rows[0].Comment
	if rows[0].Post.Visibility == model.VisibilityAnonymous {
		comment.Profile = nil
		comment.UserID = ""
	}
	return nil
}

func (r *PostRepository) ListComments(ctx context.Context, postID string, page, limit int) ([]*model.Comment, error) {
	post, err := r.postVisibility(ctx, postID)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.From("comments").
		Select("*,profiles(*)").
		Eq("post_id", postID).
		Order("created_at", true).
		Limit(limit).
		Offset((page - 1) * limit).
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list comments", err)
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list comments", err)
	}

	var comments []*model.Comment
	if err := resp.JSON(&comments); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list comments", err)
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	if post == model.VisibilityAnonymous {
		for _, c := range comments {
			c.Profile = nil
			c.UserID = ""
		}
	}
	return comments, nil
}

func (r *PostRepository) postVisibility(ctx context.Context, postID string) (string, error) {
	resp, err := r.client.From("posts").
		Select("visibility").
		Eq("id", postID).
		Single().
		Execute(ctx)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrBackend, "Failed to get post", err)
	}
	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		return "", apperrors.New(apperrors.ErrPostNotFound, "Post not found")
	}
	if err := resp.Err(); err != nil {
		return "", apperrors.Wrap(apperrors.ErrBackend, "Failed to get post", err)
	}

	var row struct {
		Visibility string `json:"visibility"`
	}
	if err := resp.JSON(&row); err != nil {
		return "", apperrors.Wrap(apperrors.ErrBackend, "Failed to get post", err)
	}
	return row.Visibility, nil
}

func (r *PostRepository) DeleteComment(ctx context.Context, id, userID string) error {
	resp, err := r.client.From("comments").
		Eq("id", id).
		Eq("user_id", userID).
		Delete(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete comment", err)
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete comment", err)
	}

	var rows []model.Comment
	if err := resp.JSON(&rows); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to delete comment", err)
	}
	if len(rows) > 0 {
		return nil
	}

	check, err := r.client.From("comments").Select("id").Eq("id", id).Limit(1).Execute(ctx)
	if err != nil || check.Err() != nil {
		return apperrors.New(apperrors.ErrResourceNotFound, "Comment not found")
	}
	var found []struct {
		ID string `json:"id"`
	}
	if err := check.JSON(&found); err != nil || len(found) == 0 {
		return apperrors.New(apperrors.ErrResourceNotFound, "Comment not found")
	}
	return apperrors.New(apperrors.ErrForbidden, "Not authorized to delete this comment")
}
