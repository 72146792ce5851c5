package broker

import "github.com/dbros-oss/lss-broker/pkg/document"

// RequestHandler answers one inbound request: it reads req and writes its
// reply into resp, returning false to signal failure (spec.md §4.4).
type RequestHandler func(req, resp *document.Document) bool

// SubscribeHook produces the reply body for a successful /subscribe call.
// It is invoked with a nil request document and the response document to
// populate.
type SubscribeHook func(req, resp *document.Document) bool

// RequestHook synthesizes the outbound publish payload when a publish call
// supplies no message of its own.
type RequestHook func(doc *document.Document) bool

// ResponseHook consumes a subscriber's non-empty JSON response to a
// delivery.
type ResponseHook func(resp *document.Document) bool

// Hooks is the per-topic triple of optional callbacks a publisher registers
// via RegisterPublishHandler (spec.md §4.3). A nil field is simply absent;
// RegisterPublishHandler only overwrites the fields it is given.
type Hooks struct {
	Subscribe SubscribeHook
	Request   RequestHook
	Response  ResponseHook
}

// Request is the minimal inbound-request abstraction the dispatcher
// consumes; the HTTP-over-UDS transport satisfies it (spec.md §1, out of
// scope: "The broker consumes a minimal request object abstraction").
type Request interface {
	Method() string
	Path() string
	Body() []byte
	Respond(status int, body []byte)
}
