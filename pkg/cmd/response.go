package cmd

// Status classifies a response for rendering.
type Status int

const (
	StatusNone Status = iota
	StatusSuccess
	StatusError
)

// Response is what a handler hands back to the transport.
type Response struct {
	Content   string
	Ephemeral bool
	Status    Status
	// Update asks the transport to edit the message the interaction came
	// from instead of sending a new one.
	Update bool
	// Payload carries transport specific extras such as message components.
	Payload any
}

// Reply is a plain public response.
func Reply(text string) Response {
	return Response{Content: text}
}

// Success is a response rendered as a success notice.
func Success(text string) Response {
	return Response{Content: text, Status: StatusSuccess}
}

// Failure is an ephemeral response rendered as an error notice.
func Failure(text string) Response {
	return Response{Content: text, Status: StatusError, Ephemeral: true}
}

// WithPayload returns a copy of r carrying p.
func (r Response) WithPayload(p any) Response {
	r.Payload = p
	return r
}

// AsUpdate returns a copy of r that edits the originating message.
func (r Response) AsUpdate() Response {
	r.Update = true
	return r
}

// ButtonStyle is the visual weight of a Button.
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonDanger
)

// Button is a clickable control whose press arrives as an Interaction
// carrying ID.
type Button struct {
	ID    string
	Label string
	Style ButtonStyle
}

// WithButtons returns a copy of r whose payload is one row of buttons.
func (r Response) WithButtons(buttons ...Button) Response {
	r.Payload = buttons
	return r
}

// Buttons returns the buttons attached with WithButtons.
func (r Response) Buttons() []Button {
	b, _ := r.Payload.([]Button)
	return b
}
