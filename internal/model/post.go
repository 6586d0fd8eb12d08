package model

import "time"

// 帖子可见性
const (
	VisibilityPublic    = "public"
	VisibilityAnonymous = "anonymous"
)

// Post 帖子模型。匿名板块的帖子在读路径上不携带作者资料。
type Post struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	Content     string     `json:"content"`
	Images      []string   `json:"images"`
	Visibility  string     `json:"visibility"`
	CommunityID *string    `json:"community_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Profile     *Profile   `json:"profiles"`
	Comments    []*Comment `json:"comments"`
	Count       PostCount  `json:"_count"`
	UserLiked   bool       `json:"userLiked"`
}

// PostCount 帖子的聚合计数
type PostCount struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

// PostFilter 帖子列表的过滤条件
type PostFilter struct {
	Visibility  string
	CommunityID string
	ViewerID    string
	Page        int
	Limit       int
}

// PostUpdate 帖子可修改的字段
type PostUpdate struct {
	Content *string   `json:"content,omitempty"`
	Images  *[]string `json:"images,omitempty"`
}

// Comment 评论模型，属于且仅属于一个帖子和一个作者
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Profile   *Profile  `json:"profiles"`
}

// Like 点赞记录，(post_id, user_id) 唯一
type Like struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Anonymize 抹去帖子及其评论上的作者身份（资料和用户ID）。
// 匿名帖对任何读者（包括作者本人）都不暴露身份。
func (p *Post) Anonymize() {
	p.Profile = nil
	p.UserID = ""
	for _, c := range p.Comments {
		c.Profile = nil
		c.UserID = ""
	}
}
