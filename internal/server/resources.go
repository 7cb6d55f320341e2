package server

import (
	"context"
	"net/http"

	"github.com/VitaminP8/postery-admin/internal/listing"
	"github.com/VitaminP8/postery-admin/internal/resource"
)

// service - общий контракт сервисов users/posts/comments
type service[T listing.Resolver] interface {
	Descriptor() *resource.Descriptor[T]
	List(ctx context.Context, req listing.Request) (listing.Page[T], error)
	Get(ctx context.Context, id uint) (T, error)
	Create(ctx context.Context, in resource.Input) (T, error)
	Update(ctx context.Context, id uint, in resource.Input) (T, error)
	Delete(ctx context.Context, id uint) error
	DeleteMany(ctx context.Context, ids []uint) (int, error)
}

// listResponse carries the raw records plus their formatted table cells.
type listResponse[T any] struct {
	listing.Page[T]
	Rows []map[string]string `json:"rows"`
}

type bulkRequest struct {
	IDs []uint `json:"ids"`
}

func register[T listing.Resolver](mux *http.ServeMux, name string, svc service[T]) {
	base := "/api/" + name
	h := resourceHandler[T]{svc: svc}

	handle(mux, "GET "+base, h.list)
	handle(mux, "POST "+base, h.create)
	handle(mux, "GET "+base+"/{id}", h.get)
	handle(mux, "PUT "+base+"/{id}", h.update)
	handle(mux, "DELETE "+base+"/{id}", h.delete)
	handle(mux, "POST "+base+"/bulk-delete", h.deleteMany)
	handle(mux, "GET /api/schema/"+name, h.schema)
}

type resourceHandler[T listing.Resolver] struct {
	svc service[T]
}

func (h resourceHandler[T]) list(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.List(r.Context(), listing.ParseRequest(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}

	d := h.svc.Descriptor()
	resp := listResponse[T]{Page: page, Rows: make([]map[string]string, 0, len(page.Items))}
	for _, item := range page.Items {
		row, err := d.Row(item)
		if err != nil {
			writeError(w, r, err)
			return
		}
		resp.Rows = append(resp.Rows, row)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h resourceHandler[T]) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h resourceHandler[T]) create(w http.ResponseWriter, r *http.Request) {
	in, err := readInput(r, h.svc.Descriptor().Fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.svc.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (h resourceHandler[T]) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	in, err := readInput(r, h.svc.Descriptor().Fields)
	if err != nil {
		writeError(w, r, err)
		return
	}

	record, err := h.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h resourceHandler[T]) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h resourceHandler[T]) deleteMany(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	n, err := h.svc.DeleteMany(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}

func (h resourceHandler[T]) schema(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Descriptor().Describe())
}
