package mongostore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"

	"authd/internal/store"
)

// authFailedCode is the server error code for failed authentication.
const authFailedCode = 18

// classify converts a driver connect error into a store.Error.
func classify(err error) *store.Error {
	var se *store.Error
	if errors.As(err, &se) {
		return se
	}
	var cmd mongo.CommandError
	if errors.As(err, &cmd) && cmd.Code == authFailedCode {
		return &store.Error{Msg: "authentication failed", Code: store.CodeAuth, Reason: cmd.Message, Err: err}
	}
	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return &store.Error{Msg: "connect timed out", Code: store.CodeTimeout, Reason: err.Error(), Err: err}
	}
	return &store.Error{Msg: "connect failed", Code: store.CodeUnreachable, Reason: err.Error(), Err: err}
}
