package resource

import (
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/media"
	"github.com/VitaminP8/postery-admin/models"
)

const textLimit = 50

func NewPostDescriptor(deps Deps) *Descriptor[*models.Post] {
	return &Descriptor[*models.Post]{
		name: "posts",
		Fields: []Field{
			{Name: "user_id", Label: "Author", Kind: KindRelation, Relation: "users", Required: true},
			{Name: "content", Label: "Content", Kind: KindTextarea, Required: true},
			{
				Name:          "image",
				Label:         "Image",
				Kind:          KindFile,
				MaxSizeKB:     media.MaxSizeKB,
				AcceptedTypes: media.AcceptedTypes,
				Directory:     media.DirPosts,
				Helper:        imageHelper,
			},
			{Name: "location", Label: "Location", Kind: KindSelect, Required: true, Options: locationOptions(deps.Locations)},
			{Name: "is_approved", Label: "Approved", Kind: KindToggle, Default: false},
		},
		Columns: []Column[*models.Post]{
			{Name: "content", Label: "Content", Limit: textLimit, Searchable: true},
			{Name: "user.name", Label: "Author"},
			{Name: "image", Label: "Image", Image: true},
			{Name: "location", Label: "Location", Searchable: true},
			{Name: "created_at", Label: "Created At", DateTime: true, Sortable: true},
			{Name: "comments_count", Label: "Comments Count", Sortable: true},
			{Name: "is_approved", Label: "Is Approved", Toggle: true, Sortable: true},
		},
		Filters: []listing.Filter{
			listing.Toggle("with_images", "With Images", func() listing.Condition {
				return listing.Condition{Field: "image", Op: listing.OpNotNull}
			}),
			listing.Equals("location", "By Location", "location", "location"),
			listing.EqualsID("user", "By User", "user_id", "user_id"),
		},
	}
}
