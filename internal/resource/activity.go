package resource

import (
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/models"
)

const ActivityPostCreated = "Post created"

// NewActivityDescriptor describes the dashboard's recent activity table,
// which lists posts relabelled as activity entries.
func NewActivityDescriptor(deps Deps) *Descriptor[*models.Post] {
	return &Descriptor[*models.Post]{
		name: "activity",
		Columns: []Column[*models.Post]{
			{Name: "activity", Label: "Activity", State: func(*models.Post) string { return ActivityPostCreated }},
			{Name: "content", Label: "Content", Limit: textLimit, Searchable: true},
			{Name: "user.name", Label: "Author", Searchable: true},
			{Name: "location", Label: "Location"},
			{Name: "created_at", Label: "Created At", DateTime: true, Searchable: true},
		},
		Filters: []listing.Filter{
			listing.Equals("location", "By Location", "location", "location"),
		},
	}
}
