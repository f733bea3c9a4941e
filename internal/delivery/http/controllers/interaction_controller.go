package controllers

import (
	"net/http"
	"strings"
	"time"

	"confernet/internal/delivery/http/views"
	"confernet/internal/domain"
)

const (
	MsgQuestionSubmitted = "Question submitted!"
	MsgFeedbackSubmitted = "Feedback submitted. Thank you!"
)

// InteractionController serves the live session Q&A. Questions live on the app instance only.
type InteractionController struct {
	*Base
	now func() time.Time
}

func NewInteractionController(base *Base) *InteractionController {
	return &InteractionController{Base: base, now: time.Now}
}

func (c *InteractionController) Page(w http.ResponseWriter, r *http.Request) {
	var data views.InteractionData
	if inst, _ := session(r); inst != nil {
		data.Questions = inst.Questions()
	}
	c.render(w, r, http.StatusOK, "interaction", "Session Interaction", data)
}

// Submit handles both forms of the page. A blank question is ignored without a notice.
func (c *InteractionController) Submit(w http.ResponseWriter, r *http.Request) {
	inst, _ := session(r)
	var notice *domain.Notice
	switch strings.TrimSpace(r.PostFormValue("kind")) {
	case "feedback":
		n := domain.InfoNotice(MsgFeedbackSubmitted)
		notice = &n
	default:
		if inst != nil && inst.AskQuestion(r.PostFormValue("text"), c.now()) {
			notice = success(MsgQuestionSubmitted)
		}
	}
	c.done(w, r, "/session-interaction", notice)
}
