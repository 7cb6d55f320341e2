package resource

import (
	"time"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

// RecentCommentsWindow is how far back "Recent comments only" reaches.
const RecentCommentsWindow = 7 * 24 * time.Hour

func NewCommentDescriptor(deps Deps) *Descriptor[*models.Comment] {
	return &Descriptor[*models.Comment]{
		name: "comments",
		Fields: []Field{
			{Name: "post_id", Label: "Post", Kind: KindRelation, Relation: "posts", Required: true},
			{Name: "user_id", Label: "User", Kind: KindRelation, Relation: "users", Required: true},
			{Name: "body", Label: "Comment Text", Kind: KindTextarea, Required: true},
		},
		Columns: []Column[*models.Comment]{
			{Name: "body", Label: "Comment", Limit: textLimit, Searchable: true},
			{Name: "user.name", Label: "User"},
			{Name: "post.content", Label: "Post", Limit: textLimit},
			{Name: "created_at", Label: "Created At", DateTime: true, Sortable: true},
		},
		Filters: []listing.Filter{
			listing.Toggle("recent", "Recent comments only", func() listing.Condition {
				return listing.Condition{
					Field: "created_at",
					Op:    listing.OpGte,
					Value: deps.now().Add(-RecentCommentsWindow),
				}
			}),
			listing.Equals("post_location", "By Post Location", "location", "post.location"),
		},
	}
}
