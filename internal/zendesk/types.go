package zendesk

// Ticket is a helpdesk ticket.
type Ticket struct {
	ID          int64  `json:"id"`
	URL         string `json:"url,omitempty"`
	Subject     string `json:"subject"`
	RawSubject  string `json:"raw_subject"`
	Description string `json:"description"`
	Status      string `json:"status,omitempty"`
	RequesterID int64  `json:"requester_id,omitempty"`
}

// Title returns the raw subject, falling back to the rendered one.
func (t Ticket) Title() string {
	if t.RawSubject != "" {
		return t.RawSubject
	}
	return t.Subject
}

// Attachment is a file attached to a ticket comment.
type Attachment struct {
	ID          int64  `json:"id"`
	FileName    string `json:"file_name"`
	ContentURL  string `json:"content_url"`
	ContentType string `json:"content_type,omitempty"`
	Size        int64  `json:"size,omitempty"`
}

// Comment is one entry of a ticket conversation.
type Comment struct {
	ID          int64        `json:"id"`
	Body        string       `json:"body"`
	PlainBody   string       `json:"plain_body"`
	Public      bool         `json:"public"`
	AuthorID    int64        `json:"author_id,omitempty"`
	Attachments []Attachment `json:"attachments"`
}

// Text returns the plain body, falling back to the formatted one.
func (c Comment) Text() string {
	if c.PlainBody != "" {
		return c.PlainBody
	}
	return c.Body
}

// TicketUpdate is one entry of a bulk update request.
type TicketUpdate struct {
	ID      int64         `json:"id"`
	Comment *CommentInput `json:"comment,omitempty"`
}

// CommentInput is a comment to add through an update.
type CommentInput struct {
	Body   string `json:"body"`
	Public bool   `json:"public"`
}

type jobStatus struct {
	ID       string      `json:"id"`
	URL      string      `json:"url"`
	Status   string      `json:"status"`
	Total    int         `json:"total"`
	Progress int         `json:"progress"`
	Message  string      `json:"message"`
	Results  []jobResult `json:"results"`
}

type jobResult struct {
	ID      int64  `json:"id"`
	Index   *int   `json:"index"`
	Success *bool  `json:"success"`
	Status  string `json:"status"`
	Action  string `json:"action"`
	Error   string `json:"error"`
	Errors  string `json:"errors"`
	Details string `json:"details"`
}
