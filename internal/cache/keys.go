package cache

import (
	"fmt"
	"time"
)

// 资源族：键统一带族前缀，写操作按族失效
const (
	FamilyPosts       = "posts"
	FamilyMarketplace = "marketplace"
	FamilyProfiles    = "profiles"
	FamilyCommunities = "communities"
	FamilyMessages    = "messages"
)

// TTL 按数据波动程度分级
const (
	TTLDynamic = 45 * time.Second // 消息列表、会话
	TTLList    = 2 * time.Minute  // 列表端点
	TTLEntity  = 5 * time.Minute  // 单实体读取
)

// 缓存键统一在这里构造，避免散落在各个服务里

func PostListKey(visibility, communityID, viewerID string, page, limit int) string {
	return fmt.Sprintf("%s:list:%s:%s:%s:%d:%d", FamilyPosts, visibility, communityID, viewerID, page, limit)
}

func PostKey(id, viewerID string) string {
	return fmt.Sprintf("%s:id:%s:%s", FamilyPosts, id, viewerID)
}

func CommentListKey(postID string, page, limit int) string {
	return fmt.Sprintf("%s:comments:%s:%d:%d", FamilyPosts, postID, page, limit)
}

func ItemListKey(params string) string {
	return fmt.Sprintf("%s:list:%s", FamilyMarketplace, params)
}

func ItemKey(id string) string {
	return fmt.Sprintf("%s:id:%s", FamilyMarketplace, id)
}

func SellerItemsKey(sellerID string, page, limit int) string {
	return fmt.Sprintf("%s:seller:%s:%d:%d", FamilyMarketplace, sellerID, page, limit)
}

func ProfileKey(id string) string {
	return fmt.Sprintf("%s:id:%s", FamilyProfiles, id)
}

func ProfileByUsernameKey(username string) string {
	return fmt.Sprintf("%s:username:%s", FamilyProfiles, username)
}

func CommunityListKey(page, limit int) string {
	return fmt.Sprintf("%s:list:%d:%d", FamilyCommunities, page, limit)
}

func CommunityKey(id string) string {
	return fmt.Sprintf("%s:id:%s", FamilyCommunities, id)
}

func MemberListKey(communityID string, page, limit int) string {
	return fmt.Sprintf("%s:members:%s:%d:%d", FamilyCommunities, communityID, page, limit)
}

func ConversationListKey(userID string) string {
	return fmt.Sprintf("%s:conversations:%s", FamilyMessages, userID)
}

func ThreadKey(conversationID string, page, limit int) string {
	return fmt.Sprintf("%s:thread:%s:%d:%d", FamilyMessages, conversationID, page, limit)
}
