package server

import (
	"net/http"

	"github.com/spf13/afero"

	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/comment"
	"github.com/VitaminP8/postery-admin/internal/config"
	"github.com/VitaminP8/postery-admin/internal/dashboard"
	"github.com/VitaminP8/postery-admin/internal/export"
	"github.com/VitaminP8/postery-admin/internal/post"
	"github.com/VitaminP8/postery-admin/internal/user"
	"github.com/VitaminP8/postery-admin/models"
)

// Resolver служит корневой точкой для всех обработчиков.
// Сюда внедряются сервисы ресурсов, дашборд и экспорт.
type Resolver struct {
	Users     *user.Service
	Posts     *post.Service
	Comments  *comment.Service
	Dashboard *dashboard.Dashboard
	Exporter  *export.Exporter
	Locations *config.Locations
	// Media - публичный диск с аватарами и картинками постов
	Media  afero.Fs
	Secret string
}

// Handler собирает маршруты админки. Staff id из Bearer токена попадает в
// context, каждый запрос получает X-Request-ID.
func (r *Resolver) Handler() http.Handler {
	mux := http.NewServeMux()

	register[*models.User](mux, "users", r.Users)
	register[*models.Post](mux, "posts", r.Posts)
	register[*models.Comment](mux, "comments", r.Comments)

	handle(mux, "POST /api/login", r.login)
	handle(mux, "PATCH /api/posts/{id}/approval", r.setApproval)
	handle(mux, "POST /api/users/export", r.exportUsers)

	handle(mux, "GET /api/users/options", r.userOptions)
	handle(mux, "GET /api/posts/options", r.postOptions)
	handle(mux, "GET /api/locations", r.locations)

	handle(mux, "GET /api/dashboard/stats", r.stats)
	handle(mux, "GET /api/dashboard/activity", r.activity)
	handle(mux, "GET /api/schema/activity", r.activitySchema)

	handle(mux, "GET /exports/{file}", r.download)
	if r.Media != nil {
		handle(mux, "GET /storage/{path...}", r.media)
	}

	return auth.Middleware(r.Secret, requestID(mux))
}
