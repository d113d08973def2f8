package chatstream

import "context"

// Backend opens a streaming exchange with the conversational service.
// Implementations return a *TransportError when the response is not OK or
// has no body; no Stream is produced in that case. The signal, when
// non-nil, is observed before every pull from the response body.
type Backend interface {
	Stream(ctx context.Context, req Request, signal *Signal) (Stream, error)
}
