package graph

// EmailRequest is the inbound send-email request accepted by the HTTP API.
type EmailRequest struct {
	// FromEmail is the sender mailbox (app-only mode). When empty the
	// configured default sender is used.
	FromEmail string `json:"from_email,omitempty"`

	// To is the list of TO addresses. At least one non-blank address is
	// required.
	To []string `json:"to"`

	// Cc is the optional list of CC addresses.
	Cc []string `json:"cc,omitempty"`

	// Subject is the plain-text subject line.
	Subject string `json:"subject"`

	// BodyHTML is the message body as HTML.
	BodyHTML string `json:"body_html"`

	// Importance is one of "high", "normal" or "low". Anything else is
	// coerced to "normal".
	Importance string `json:"importance,omitempty"`

	// Attachments is the optional list of file attachments.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// Attachment is a base64-encoded file attachment in an EmailRequest.
type Attachment struct {
	Name          string `json:"name"`
	ContentBase64 string `json:"content_base64"`

	// ContentType is the MIME type; defaults to application/octet-stream.
	ContentType string `json:"content_type,omitempty"`
}

// Microsoft Graph sendMail wire schema, v1.0.
// https://learn.microsoft.com/graph/api/user-sendmail

// SendMailRequest is the JSON body POSTed to the sendMail endpoint.
type SendMailRequest struct {
	Message         Message `json:"message"`
	SaveToSentItems bool    `json:"saveToSentItems"`
}

// Message is the Graph message object.
type Message struct {
	Subject      string           `json:"subject"`
	Importance   string           `json:"importance"`
	Body         ItemBody         `json:"body"`
	ToRecipients []Recipient      `json:"toRecipients"`
	CcRecipients []Recipient      `json:"ccRecipients,omitempty"`
	Attachments  []FileAttachment `json:"attachments,omitempty"`
}

// ItemBody is the message body with its content type.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Recipient wraps an email address the way Graph expects it.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// EmailAddress is a single address.
type EmailAddress struct {
	Address string `json:"address"`
}

// FileAttachment is a Graph fileAttachment descriptor. ODataType must be
// "#microsoft.graph.fileAttachment".
type FileAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}
