package controllers

import (
	"net/http"
	"strings"
	"time"

	"confernet/internal/delivery/http/helpers"
	"confernet/internal/delivery/http/views"
	"confernet/internal/domain"
)

// Polling intervals of the inbox and an open thread.
const (
	InboxPollInterval  = 5 * time.Second
	ThreadPollInterval = 3 * time.Second
)

type MessageController struct {
	*Base
	Service domain.MessageService
}

func NewMessageController(base *Base, svc domain.MessageService) *MessageController {
	return &MessageController{Base: base, Service: svc}
}

// InboxEntry is one conversation in the inbox JSON.
type InboxEntry struct {
	PartnerID   string    `json:"partnerId"`
	PartnerName string    `json:"partnerName"`
	LastMessage string    `json:"lastMessage"`
	Timestamp   time.Time `json:"timestamp"`
}

// InboxSuccessResponse is the success response envelope for GET /api/messages/inbox.
type InboxSuccessResponse struct {
	Data  []InboxEntry      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// HistorySuccessResponse is the success response envelope for the chat history endpoints.
type HistorySuccessResponse struct {
	Data  []*domain.Message `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// SendMessageRequest is the body of POST /api/messages/{partnerID}.
type SendMessageRequest struct {
	Message string `json:"message"`
}

// Validate implements helpers.Validator.
func (s SendMessageRequest) Validate() []string {
	if strings.TrimSpace(s.Message) == "" {
		return []string{"message is required"}
	}
	return nil
}

func (c *MessageController) InboxPage(w http.ResponseWriter, r *http.Request) {
	data := views.MessagesData{PollMillis: InboxPollInterval.Milliseconds()}
	convs, err := c.Service.Inbox(r.Context(), viewerID(r))
	if err != nil {
		c.logFailure(r, err)
		n := domain.ErrorNotice(err)
		c.renderNotice(w, r, http.StatusOK, "messages", "Messages", data, &n)
		return
	}
	data.Conversations = convs
	c.render(w, r, http.StatusOK, "messages", "Messages", data)
}

func (c *MessageController) ThreadPage(w http.ResponseWriter, r *http.Request) {
	t, err := c.Service.Thread(r.Context(), viewerID(r), r.PathValue("partnerID"))
	if err != nil {
		c.fail(w, r, "/home/messages", err)
		return
	}
	data := views.ThreadData{Thread: t, ViewerID: viewerID(r), PollMillis: ThreadPollInterval.Milliseconds()}
	c.render(w, r, http.StatusOK, "thread", t.Partner.DisplayName(), data)
}

// Send posts the chat form and returns to the thread.
func (c *MessageController) Send(w http.ResponseWriter, r *http.Request) {
	partnerID := r.PathValue("partnerID")
	back := "/home/messages/" + partnerID
	if _, err := c.Service.Send(r.Context(), viewerID(r), partnerID, r.PostFormValue("message")); err != nil {
		c.fail(w, r, back, err)
		return
	}
	c.done(w, r, back, nil)
}

// Inbox godoc
// @Summary List the viewer's conversations
// @Description Returns one entry per chat partner with the partner's display name and the last message. Polled by the inbox page every 5 seconds.
// @Tags messages
// @Produce json
// @Success 200 {object} controllers.InboxSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/messages/inbox [get]
func (c *MessageController) Inbox(w http.ResponseWriter, r *http.Request) {
	convs, err := c.Service.Inbox(r.Context(), viewerID(r))
	if err != nil {
		c.logFailure(r, err)
		helpers.WriteServiceError(w, err)
		return
	}
	out := make([]InboxEntry, 0, len(convs))
	for _, cv := range convs {
		out = append(out, InboxEntry{
			PartnerID:   cv.PartnerID,
			PartnerName: cv.PartnerName,
			LastMessage: cv.LastMessage,
			Timestamp:   cv.Timestamp,
		})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// History godoc
// @Summary Get the chat history with one partner
// @Description Returns the messages between the viewer and partnerID, oldest first. Polled by the thread page when the websocket is unavailable.
// @Tags messages
// @Produce json
// @Param partnerID path string true "Partner user ID"
// @Success 200 {object} controllers.HistorySuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/messages/{partnerID}/history [get]
func (c *MessageController) History(w http.ResponseWriter, r *http.Request) {
	msgs, err := c.Service.History(r.Context(), viewerID(r), r.PathValue("partnerID"))
	if err != nil {
		c.logFailure(r, err)
		helpers.WriteServiceError(w, err)
		return
	}
	if msgs == nil {
		msgs = []*domain.Message{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, msgs)
}

// SendJSON godoc
// @Summary Send a message
// @Description Sends a message to partnerID and returns the re-fetched chat history.
// @Tags messages
// @Accept json
// @Produce json
// @Param partnerID path string true "Partner user ID"
// @Param body body controllers.SendMessageRequest true "Message text"
// @Success 201 {object} controllers.HistorySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /api/messages/{partnerID} [post]
func (c *MessageController) SendJSON(w http.ResponseWriter, r *http.Request) {
	var req SendMessageRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	msgs, err := c.Service.Send(r.Context(), viewerID(r), r.PathValue("partnerID"), req.Message)
	if err != nil {
		c.logFailure(r, err)
		helpers.WriteServiceError(w, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, msgs)
}
