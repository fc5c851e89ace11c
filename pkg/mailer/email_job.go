package mailer

// EmailJob is the JSON payload queued for the email worker.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}
