package routes

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"invoicehub/internal/mailer"
)

const gmailHelpLink = "https://support.google.com/accounts/answer/185833"

type EmailRoutes struct {
	server ServerInterface
}

func NewEmailRoutes(server ServerInterface) *EmailRoutes {
	return &EmailRoutes{server: server}
}

func (er *EmailRoutes) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/send-email", er.sendEmailHandler)
}

// sendEmailHandler relays an invoice email through the configured SMTP
// account. Field validation happens before the attachment is written
// anywhere, and the temp copy is removed on every path.
func (er *EmailRoutes) sendEmailHandler(c *gin.Context) {
	to := c.PostForm("to")
	from := c.PostForm("from")
	subject := c.PostForm("subject")
	message := c.PostForm("message")

	if to == "" || from == "" || subject == "" || message == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields"})
		return
	}

	m := er.server.GetMailer()
	if m == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Email service is not configured",
			"details": "SMTP_APP_PASSWORD is not set",
			"link":    gmailHelpLink,
		})
		return
	}

	msg := mailer.Message{To: to, From: from, Subject: subject, Body: message}

	if file, err := c.FormFile("attachment"); err == nil {
		// Unique per request; concurrent sends with the same filename must
		// not share (or delete) each other's copy.
		tmp, err := os.CreateTemp("", "attachment-*")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachment", "details": err.Error()})
			return
		}
		tmpPath := tmp.Name()
		tmp.Close()
		defer os.Remove(tmpPath)
		if err := c.SaveUploadedFile(file, tmpPath); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save attachment", "details": err.Error()})
			return
		}
		msg.AttachmentPath = tmpPath
		msg.AttachmentName = filepath.Base(file.Filename)
	}

	if err := m.Send(c.Request.Context(), msg); err != nil {
		er.server.GetLogger().Warn("email send failed", zap.String("to", to), zap.Error(err))
		if mailer.IsAuthError(err) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "SMTP authentication failed",
				"details": err.Error(),
				"link":    gmailHelpLink,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to send email",
			"details": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email sent successfully"})
}
