package supabase

import (
	"context"
	"net/http"

	apperrors "socialmarket-backend/internal/errors"
	"socialmarket-backend/internal/model"
	sb "socialmarket-backend/internal/supabase"
)

// CommunityRepository 社区存储库的 PostgREST 实现。
// 成员计数通过数据库侧 RPC 原子增减，避免读改写竞态。
type CommunityRepository struct {
	client *sb.Client
}

func NewCommunityRepository(client *sb.Client) *CommunityRepository {
	return &CommunityRepository{client}
}

func (r *CommunityRepository) List(ctx context.Context, page, limit int) ([]*model.Community, int, error) {
	resp, err := r.client.From("communities").
		Select("*").
		Order("member_count", false).
		Limit(limit).
		Offset((page - 1) * limit).
		Count().
		Execute(ctx)
	if err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list communities", err)
	}
	if err := resp.Err(); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list communities", err)
	}

	var communities []*model.Community
	if err := resp.JSON(&communities); err != nil {
		return nil, 0, apperrors.Wrap(apperrors.ErrBackend, "Failed to list communities", err)
	}
	if communities == nil {
		communities = []*model.Community{}
	}
	return communities, resp.Total(), nil
}

func (r *CommunityRepository) GetByID(ctx context.Context, id string) (*model.Community, error) {
	resp, err := r.client.From("communities").
		Select("*").
		Eq("id", id).
		Single().
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get community", err)
	}
	if resp.StatusCode == http.StatusNotAcceptable || resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.New(apperrors.ErrCommunityNotFound, "Community not found")
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get community", err)
	}

	var community model.Community
	if err := resp.JSON(&community); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to get community", err)
	}
	return &community, nil
}

// Create 建社区并把创建者写成管理员成员，member_count 初始为 1
func (r *CommunityRepository) Create(ctx context.Context, community *model.Community) error {
	resp, err := r.client.From("communities").Select("*").Insert(ctx, map[string]any{
		"name":         community.Name,
		"description":  community.Description,
		"creator_id":   community.CreatorID,
		"member_count": 1,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create community", err)
	}
	if resp.StatusCode == http.StatusConflict {
		return apperrors.New(apperrors.ErrResourceExists, "Community name already taken")
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create community", err)
	}

	var rows []model.Community
	if err := resp.JSON(&rows); err != nil || len(rows) == 0 {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create community", err)
	}
	*community = rows[0]

	mresp, err := r.client.From("community_members").Insert(ctx, map[string]any{
		"community_id": community.ID,
		"user_id":      community.CreatorID,
		"role":         model.RoleAdmin,
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create community", err)
	}
	if err := mresp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to create community", err)
	}
	return nil
}

// Join 幂等插入成员行，重复加入返回已是成员；成功后原子加一
func (r *CommunityRepository) Join(ctx context.Context, communityID, userID string) error {
	resp, err := r.client.From("community_members").
		Select("*").
		Upsert().
		Insert(ctx, map[string]any{
			"community_id": communityID,
			"user_id":      userID,
			"role":         model.RoleMember,
		})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to join community", err)
	}
	if err := resp.Err(); err != nil {
		if _, gerr := r.GetByID(ctx, communityID); gerr != nil {
			return gerr
		}
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to join community", err)
	}

	var rows []model.Membership
	if err := resp.JSON(&rows); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to join community", err)
	}
	if len(rows) == 0 {
		// 忽略重复时空结果意味着成员行已存在
		return apperrors.New(apperrors.ErrAlreadyMember, "Already a member of this community")
	}

	rpcResp, err := r.client.RPC(ctx, "increment_member_count", map[string]any{"cid": communityID})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to join community", err)
	}
	if err := rpcResp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to join community", err)
	}
	return nil
}

// Leave 删除成员行，删不到说明本来就不是成员；成功后原子减一
func (r *CommunityRepository) Leave(ctx context.Context, communityID, userID string) error {
	resp, err := r.client.From("community_members").
		Eq("community_id", communityID).
		Eq("user_id", userID).
		Delete(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to leave community", err)
	}
	if err := resp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to leave community", err)
	}

	var rows []model.Membership
	if err := resp.JSON(&rows); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to leave community", err)
	}
	if len(rows) == 0 {
		if _, gerr := r.GetByID(ctx, communityID); gerr != nil {
			return gerr
		}
		return apperrors.New(apperrors.ErrResourceNotFound, "Not a member of this community")
	}

	rpcResp, err := r.client.RPC(ctx, "decrement_member_count", map[string]any{"cid": communityID})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to leave community", err)
	}
	if err := rpcResp.Err(); err != nil {
		return apperrors.Wrap(apperrors.ErrBackend, "Failed to leave community", err)
	}
	return nil
}

func (r *CommunityRepository) Members(ctx context.Context, communityID string, page, limit int) ([]*model.Membership, error) {
	resp, err := r.client.From("community_members").
		Select("*,profiles(*)").
		Eq("community_id", communityID).
		Order("joined_at", true).
		Limit(limit).
		Offset((page - 1) * limit).
		Execute(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list members", err)
	}
	if err := resp.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list members", err)
	}

	var members []*model.Membership
	if err := resp.JSON(&members); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrBackend, "Failed to list members", err)
	}
	if members == nil {
		members = []*model.Membership{}
	}
	return members, nil
}
