package user

import (
	"net/http"

	dto "github.com/dropDatabas3/authgate/internal/http/dto"
	"github.com/dropDatabas3/authgate/internal/http/helpers"
	svc "github.com/dropDatabas3/authgate/internal/http/services/user"
)

// ProfileController maneja GET/PUT/DELETE /user/{id}. Sólo el propio usuario.
type ProfileController struct {
	service svc.Service
}

func NewProfileController(service svc.Service) *ProfileController {
	return &ProfileController{service: service}
}

func (c *ProfileController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := selfID(w, r)
	if !ok {
		return
	}
	p, err := c.service.Get(r.Context(), id)
	if err != nil {
		writeUserError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, p)
}

func (c *ProfileController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := selfID(w, r)
	if !ok {
		return
	}
	var req dto.UpdateProfileRequest
	if !helpers.ReadJSON(w, r, &req) {
		return
	}
	p, err := c.service.Update(r.Context(), id, req)
	if err != nil {
		writeUserError(w, err)
		return
	}
	helpers.WriteJSON(w, http.StatusOK, p)
}

func (c *ProfileController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := selfID(w, r)
	if !ok {
		return
	}
	if err := c.service.Delete(r.Context(), id); err != nil {
		writeUserError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
