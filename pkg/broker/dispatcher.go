package broker

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/dbros-oss/lss-broker/pkg/document"
	lsserrors "github.com/dbros-oss/lss-broker/pkg/errors"
	"github.com/dbros-oss/lss-broker/pkg/logging"
	"github.com/dbros-oss/lss-broker/pkg/worker"
)

// RequestDispatcher routes inbound requests to handlers on the handler
// executor, implementing spec.md §4.4's algorithm exactly.
type RequestDispatcher struct {
	registry *HandlerRegistry
	pool     *worker.Pool
	logger   *logging.Logger
}

// NewRequestDispatcher returns a dispatcher that looks handlers up in
// registry and runs them on pool.
func NewRequestDispatcher(registry *HandlerRegistry, pool *worker.Pool, logger *logging.Logger) *RequestDispatcher {
	return &RequestDispatcher{registry: registry, pool: pool, logger: logger}
}

// Dispatch runs the §4.4 algorithm against req, a one-shot respond()
// call being its only output.
func (d *RequestDispatcher) Dispatch(req Request) {
	var reqDoc *document.Document

	if req.Method() == http.MethodPost && len(req.Body()) > 0 {
		doc, err := document.Parse(req.Body())
		if err != nil {
			req.Respond(lsserrors.StatusCode(lsserrors.ErrInvalidInput), nil)
			return
		}
		reqDoc = doc
	} else {
		reqDoc = document.Empty()
	}

	handler, ok := d.registry.Lookup(req.Path())
	if !ok {
		req.Respond(lsserrors.StatusCode(lsserrors.ErrNotFound), nil)
		return
	}

	path := req.Path()
	d.pool.Submit(func() {
		respDoc := document.Empty()
		ok := handler(reqDoc, respDoc)
		switch {
		case ok && respDoc.IsObject():
			req.Respond(lsserrors.StatusCode(nil), respDoc.Bytes())
		case ok:
			req.Respond(http.StatusNoContent, nil)
		default:
			d.logger.Warn(logging.ComponentDispatch, "handler returned failure", zap.String("path", path))
			req.Respond(lsserrors.StatusCode(lsserrors.ErrInternal), nil)
		}
	})
}
