package controllers

import (
	"net/http"

	"confernet/internal/delivery/http/helpers"
	"confernet/internal/delivery/http/views"
	"confernet/internal/domain"
)

// MsgUsersUnavailable is shown when the directory cannot load.
const MsgUsersUnavailable = "Failed to load users."

type PeopleController struct {
	*Base
	Service domain.PeopleService
}

func NewPeopleController(base *Base, svc domain.PeopleService) *PeopleController {
	return &PeopleController{Base: base, Service: svc}
}

// Directory lists users, optionally filtered by ?role=, a page at a time.
func (c *PeopleController) Directory(w http.ResponseWriter, r *http.Request) {
	var role domain.Role
	if s := r.URL.Query().Get("role"); s != "" {
		role = domain.ParseRole(s)
	}
	data := views.PeopleData{Role: role, Roles: domain.Roles}
	users, err := c.Service.Directory(r.Context(), role)
	if err != nil {
		c.logFailure(r, err)
		n := domain.ErrorNotice(errString(MsgUsersUnavailable))
		c.renderNotice(w, r, http.StatusOK, "people", "People", data, &n)
		return
	}
	data.Users, data.Meta = helpers.Paginate(users, helpers.ParsePagination(r))
	c.render(w, r, http.StatusOK, "people", "People", data)
}
