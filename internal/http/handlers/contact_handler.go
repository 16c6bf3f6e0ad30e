// Contact relay handler.
//
//   - POST /api/contact
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/resume-gate/internal/domain"
	"github.com/tbourn/resume-gate/internal/services"
)

// ContactBody is the contact-form payload. Either message or purpose is
// required; purpose and company come from the resume variant of the form.
type ContactBody struct {
	Name    string `json:"name"    binding:"max=255"  example:"Jane Doe"`
	Email   string `json:"email"   binding:"max=320"  example:"jane@example.com"`
	Subject string `json:"subject" binding:"max=255"  example:"Hello"`
	Message string `json:"message" binding:"max=10000" example:"Loved your portfolio!"`
	Company string `json:"company" binding:"max=255"  example:"Acme Corp"`
	Purpose string `json:"purpose" binding:"max=255"  example:"networking"`
}

// SendContact godoc
// @ID          sendContact
// @Summary     Send a contact message
// @Description Relays the message to the site owner with Reply-To set to the visitor. When mail is not configured the message is accepted but not delivered.
// @Tags        Contact
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.ContactBody  true  "Contact form"
// @Success     200   {object}  handlers.MessageResponse
// @Failure     400   {object}  handlers.ErrorResponse  "Missing fields"
// @Failure     500   {object}  handlers.ErrorResponse  "Mail transport failure"
// @Router      /api/contact [post]
func (h *Handlers) SendContact(c *gin.Context) {
	var body ContactBody
	if !bindJSON(c, &body) {
		return
	}

	res, err := h.contactSvc.Send(c.Request.Context(), domain.ContactMessage{
		Name:    body.Name,
		Email:   body.Email,
		Subject: body.Subject,
		Message: body.Message,
		Company: body.Company,
		Purpose: body.Purpose,
	})
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Name, email, and message are required")
		return
	case err != nil:
		fail(c, http.StatusInternalServerError, ErrCodeSendFailed, "Failed to send message")
		return
	}

	msg := "Message sent successfully"
	if !res.Delivered {
		msg = "Information received successfully (email not configured)"
	}
	ok(c, http.StatusOK, MessageResponse{Success: true, Message: msg})
}
