package handlers

import (
	"net/http"

	"github.com/Hadidomena/inqwheel/message_auth"
	"github.com/Hadidomena/inqwheel/validation"
)

// SendHandler encodes the message and mails the codes to every recipient.
// The plaintext never leaves the server.
func (h *HandlerContext) SendHandler(w http.ResponseWriter, r *http.Request) {
	if h.Mailer == nil {
		writeJSON(w, http.StatusServiceUnavailable, ErrorResponse{Message: "Email delivery is not configured"})
		return
	}

	var req SendRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateRecipients(req.Recipients); err != nil {
		h.writeError(w, err, "")
		return
	}
	if err := validation.ValidateMessage(req.Message); err != nil {
		h.writeError(w, err, "")
		return
	}

	ws, err := h.resolveWheels(r.Context(), req.CodecRequest)
	if err != nil {
		h.writeError(w, err, "")
		return
	}

	res, err := ws.Encode(req.Message, h.codecOptions(req.Strict)...)
	if err != nil {
		h.writeError(w, err, res.Text)
		return
	}

	var tag string
	if len(h.SigningSecret) > 0 {
		mac, err := message_auth.GenerateMessageMAC(req.Message, h.SigningSecret)
		if err != nil {
			h.writeError(w, err, "")
			return
		}
		tag = message_auth.ShortTag(mac)
	}

	subject := req.Subject
	if subject == "" {
		subject = "Encoded message"
	}
	if err := h.Mailer.SendEncoded(req.Recipients, subject, res.Text, tag); err != nil {
		h.logger().Error("failed to send encoded message", "recipients", len(req.Recipients), "err", err)
		writeJSON(w, http.StatusBadGateway, ErrorResponse{Message: "Failed to send message"})
		return
	}

	h.logger().Info("encoded message sent", "recipients", len(req.Recipients), "skipped", len(res.Skipped))
	writeJSON(w, http.StatusOK, SendResponse{Sent: len(req.Recipients), Tag: tag})
}
