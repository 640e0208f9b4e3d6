package fhe

import (
	"context"
	"errors"
)

var (
	ErrMalformedHandle = errors.New("fhe: malformed ciphertext handle")
	ErrUnknownHandle   = errors.New("fhe: unknown ciphertext handle")
	ErrTypeMismatch    = errors.New("fhe: ciphertext type mismatch")
	ErrUnknownRequest  = errors.New("fhe: unknown decryption request")
	ErrNotClientInput  = errors.New("fhe: ciphertext is not a client input")
	ErrHandleConsumed  = errors.New("fhe: ciphertext already consumed")
)

// RequestToken identifies an outstanding threshold-decryption request.
type RequestToken string

// Service is the confidential-compute collaborator. Arithmetic happens over handles only;
// plaintext leaves the service solely through a completed decryption request.
type Service interface {
	// EncryptUint64 and EncryptBool are used by bet-placing clients.
	EncryptUint64(ctx context.Context, v uint64) (Handle, error)
	EncryptBool(ctx context.Context, v bool) (Handle, error)

	// Consume binds client inputs to a single use. It fails without consuming anything when
	// a handle was derived by the service or has already been consumed.
	Consume(ctx context.Context, handles ...Handle) error

	// Zero returns a fresh encryption of 0.
	Zero(ctx context.Context) (Handle, error)
	// Add returns an encryption of a+b, saturating at 2^64-1.
	Add(ctx context.Context, a, b Handle) (Handle, error)
	// Select returns an encryption of ifTrue when cond holds, otherwise of ifFalse.
	Select(ctx context.Context, cond, ifTrue, ifFalse Handle) (Handle, error)

	// RequestDecrypt submits handles for threshold decryption and returns immediately.
	RequestDecrypt(ctx context.Context, handles ...Handle) (RequestToken, error)
	// PollDecrypt never blocks. ready is false until the network has produced the plaintexts,
	// which are returned in the order the handles were submitted. Booleans decrypt to 0 or 1.
	PollDecrypt(ctx context.Context, token RequestToken) (values []uint64, ready bool, err error)
}
