package node

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/noded-go/engine/graph"
)

var (
	// ErrUnexpectedNode reports a node of the wrong variant behind a typed reference.
	// It means a connection bypassed type-flag checking.
	ErrUnexpectedNode  = errors.New("unexpected node variant")
	ErrNodeNotFound    = errors.New("node not found")
	ErrInputOutOfRange = errors.New("input index out of range")
	ErrUnknownKind     = errors.New("unknown node kind")
	ErrMissingPayload  = errors.New("node payload missing for kind")
)

func unexpected(id graph.NodeID, want string, got *Node) error {
	gotName := "nothing"
	if got != nil {
		gotName = got.Kind.String()
	}
	return fmt.Errorf("%w: node %s: want %s, got %s", ErrUnexpectedNode, id, want, gotName)
}

func inputOutOfRange(kind Kind, input int) error {
	return fmt.Errorf("%w: %s has no input %d", ErrInputOutOfRange, kind, input)
}
