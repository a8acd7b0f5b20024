package db

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Sentinel errors let callers classify storage failures without inspecting
// Firestore internals. Handlers map these onto HTTP statuses.
var (
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("already exists")
	ErrUnavailable = errors.New("storage unavailable")
)

// classify translates gRPC status codes coming out of the Firestore client
// into the sentinel errors above. Unknown codes pass through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}
	switch status.Code(err) {
	case codes.NotFound:
		return ErrNotFound
	case codes.AlreadyExists:
		return ErrConflict
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	}
	return err
}
