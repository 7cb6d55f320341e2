package resource

import (
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/media"
	"github.com/VitaminP8/postery-admin/models"
)

const imageHelper = "Upload an avatar image (max size: 2MB; formats: jpeg, png)."

func NewUserDescriptor(deps Deps) *Descriptor[*models.User] {
	return &Descriptor[*models.User]{
		name: "users",
		Fields: []Field{
			{Name: "name", Label: "Name", Kind: KindText, Required: true},
			{Name: "email", Label: "Email", Kind: KindEmail, Required: true},
			{
				Name:          "avatar",
				Label:         "Avatar",
				Kind:          KindFile,
				MaxSizeKB:     media.MaxSizeKB,
				AcceptedTypes: media.AcceptedTypes,
				Directory:     media.DirAvatars,
				Helper:        imageHelper,
			},
			{Name: "location", Label: "Location", Kind: KindSelect, Required: true, Options: locationOptions(deps.Locations)},
		},
		Columns: []Column[*models.User]{
			{Name: "name", Label: "Name", Searchable: true, Sortable: true},
			{Name: "email", Label: "Email", Searchable: true, Sortable: true},
			{Name: "avatar", Label: "Avatar", Image: true},
			{Name: "location", Label: "Location", Searchable: true},
		},
		Filters: []listing.Filter{
			listing.Equals("location", "By Location", "location", "location"),
			listing.Toggle("has_posts", "Has Posts", func() listing.Condition {
				return listing.Condition{Field: "posts", Op: listing.OpHas}
			}),
		},
	}
}
