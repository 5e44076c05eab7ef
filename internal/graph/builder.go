package graph

import "strings"

const (
	importanceHigh   = "high"
	importanceNormal = "normal"
	importanceLow    = "low"

	defaultContentType = "application/octet-stream"

	fileAttachmentType = "#microsoft.graph.fileAttachment"
)

// BuildSendMailRequest maps an EmailRequest onto the Graph sendMail schema.
// It is a pure function: lenient about importance and blank addresses,
// strict about nothing. Address syntax is not validated; the downstream API
// owns that.
func BuildSendMailRequest(req *EmailRequest) *SendMailRequest {
	msg := Message{
		Subject:      req.Subject,
		Importance:   normalizeImportance(req.Importance),
		Body:         ItemBody{ContentType: "HTML", Content: req.BodyHTML},
		ToRecipients: buildRecipients(req.To),
	}

	// ccRecipients is omitted entirely when nothing survives filtering; an
	// empty list is not the same thing to a strict client.
	if cc := buildRecipients(req.Cc); len(cc) > 0 {
		msg.CcRecipients = cc
	}

	for _, att := range req.Attachments {
		contentType := att.ContentType
		if contentType == "" {
			contentType = defaultContentType
		}
		msg.Attachments = append(msg.Attachments, FileAttachment{
			ODataType:    fileAttachmentType,
			Name:         att.Name,
			ContentType:  contentType,
			ContentBytes: att.ContentBase64,
		})
	}

	return &SendMailRequest{
		Message:         msg,
		SaveToSentItems: true,
	}
}

// normalizeImportance lowercases the value and coerces anything outside the
// Graph enum to "normal". Deliberate leniency: callers sending "urgent" get
// a normal-importance mail, not an error.
func normalizeImportance(importance string) string {
	switch strings.ToLower(importance) {
	case importanceHigh:
		return importanceHigh
	case importanceLow:
		return importanceLow
	default:
		return importanceNormal
	}
}

// buildRecipients trims each address and drops blank entries silently.
func buildRecipients(addrs []string) []Recipient {
	var recipients []Recipient
	for _, addr := range addrs {
		addr = strings.TrimSpace(addr)
		if addr == "" {
			continue
		}
		recipients = append(recipients, Recipient{
			EmailAddress: EmailAddress{Address: addr},
		})
	}
	return recipients
}

// HasRecipients reports whether at least one non-blank TO address remains
// after trimming. The endpoint layer uses this for request validation.
func HasRecipients(addrs []string) bool {
	for _, addr := range addrs {
		if strings.TrimSpace(addr) != "" {
			return true
		}
	}
	return false
}
