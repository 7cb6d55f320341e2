package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/VitaminP8/postery-admin/internal/auth"
	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/resource"
	"github.com/VitaminP8/postery-admin/models"
)

var exportFile = regexp.MustCompile(`^users-[0-9]+\.csv$`)

type approvalRequest struct {
	IsApproved *bool `json:"is_approved"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type exportResponse struct {
	Export *models.Export `json:"export"`
	URL    string         `json:"url"`
}

func (r *Resolver) login(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := decodeJSON(req, &body); err != nil {
		writeError(w, req, err)
		return
	}

	staff, err := r.Users.Authenticate(req.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, req, err)
		return
	}

	token, err := auth.IssueToken(r.Secret, staff.ID, staff.Name, time.Now())
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (r *Resolver) setApproval(w http.ResponseWriter, req *http.Request) {
	id, err := pathID(req)
	if err != nil {
		writeError(w, req, err)
		return
	}

	var body approvalRequest
	if err := decodeJSON(req, &body); err != nil {
		writeError(w, req, err)
		return
	}
	if body.IsApproved == nil {
		writeError(w, req, &badRequest{msg: "is_approved is required"})
		return
	}

	if err := r.Posts.SetApproval(req.Context(), id, *body.IsApproved); err != nil {
		writeError(w, req, err)
		return
	}

	post, err := r.Posts.Get(req.Context(), id)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (r *Resolver) exportUsers(w http.ResponseWriter, req *http.Request) {
	var body bulkRequest
	if err := decodeJSON(req, &body); err != nil {
		writeError(w, req, err)
		return
	}

	export, err := r.Exporter.Run(req.Context(), body.IDs)
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusCreated, exportResponse{
		Export: export,
		URL:    "/exports/" + export.FileName,
	})
}

func (r *Resolver) userOptions(w http.ResponseWriter, req *http.Request) {
	options, err := r.Users.Options(req.Context(), req.URL.Query().Get("search"))
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (r *Resolver) postOptions(w http.ResponseWriter, req *http.Request) {
	options, err := r.Posts.Options(req.Context(), req.URL.Query().Get("search"))
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, options)
}

func (r *Resolver) locations(w http.ResponseWriter, req *http.Request) {
	locations := r.Locations.Options()
	options := make([]resource.Option, 0, len(locations))
	for _, l := range locations {
		options = append(options, resource.Option{Value: l.Code, Label: l.Label})
	}
	writeJSON(w, http.StatusOK, options)
}

func (r *Resolver) stats(w http.ResponseWriter, req *http.Request) {
	stats, err := r.Dashboard.Stats(req.Context())
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (r *Resolver) activity(w http.ResponseWriter, req *http.Request) {
	page, err := r.Dashboard.RecentActivity(req.Context(), listing.ParseRequest(req.URL.Query()))
	if err != nil {
		writeError(w, req, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (r *Resolver) activitySchema(w http.ResponseWriter, req *http.Request) {
	writeJSON(w, http.StatusOK, r.Dashboard.Descriptor().Describe())
}

// download отдает готовый CSV экспорта
func (r *Resolver) download(w http.ResponseWriter, req *http.Request) {
	name := req.PathValue("file")
	if !exportFile.MatchString(name) {
		http.NotFound(w, req)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	serveFile(w, req, r.Exporter.Fs(), name)
}

func (r *Resolver) media(w http.ResponseWriter, req *http.Request) {
	name := strings.TrimPrefix(path.Clean("/"+req.PathValue("path")), "/")
	if name == "" {
		http.NotFound(w, req)
		return
	}
	serveFile(w, req, r.Media, name)
}

func serveFile(w http.ResponseWriter, req *http.Request, fs afero.Fs, name string) {
	f, err := fs.Open(name)
	if errors.Is(err, os.ErrNotExist) {
		w.Header().Del("Content-Disposition")
		http.NotFound(w, req)
		return
	}
	if err != nil {
		writeError(w, req, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		writeError(w, req, err)
		return
	}
	if info.IsDir() {
		http.NotFound(w, req)
		return
	}
	http.ServeContent(w, req, path.Base(name), info.ModTime(), f)
}
