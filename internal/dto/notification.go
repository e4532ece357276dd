package dto

// ── email / notification DTOs ──

// SendEmailRequest POST /email
type SendEmailRequest struct {
	To      []string `json:"to"      binding:"required,min=1,max=50,dive,email"`
	Subject string   `json:"subject" binding:"required,max=200"`
	HTML    string   `json:"html"`
	Text    string   `json:"text"`
}

// TestEmailRequest POST /email/test
type TestEmailRequest struct {
	To string `json:"to" binding:"required,email"`
}

// EmailSentResponse acknowledgement of a direct send.
type EmailSentResponse struct {
	Sent       bool `json:"sent"`
	Recipients int  `json:"recipients"`
}

// DailyNotificationResult summary of one daily notification run.
type DailyNotificationResult struct {
	Date   string `json:"date"`
	Total  int    `json:"total"`
	Sent   int    `json:"sent"`
	Failed int    `json:"failed"`
}
