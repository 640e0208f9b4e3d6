package models

import "errors"

var (
	ErrRecordNotFound = errors.New("record not found")

	ErrMarketNotFound         = errors.New("market not found")
	ErrMarketStillOpen        = errors.New("market is still open")
	ErrMarketClosed           = errors.New("market is closed for betting")
	ErrAlreadySettled         = errors.New("market is already settled")
	ErrMarketNotSettled       = errors.New("market is not settled")
	ErrDecryptionNotRequested = errors.New("decryption has not been requested")
	ErrDecryptionNotReady     = errors.New("decryption result is not ready")
	ErrStateCorrupted         = errors.New("market state is corrupted")

	ErrInvalidQuestion  = errors.New("invalid market question")
	ErrInvalidCloseTime = errors.New("invalid close time")
	ErrInvalidFeeBps    = errors.New("fee must be between 0 and 10000 basis points")

	ErrBetNotFound       = errors.New("bet not found")
	ErrInvalidEscrow     = errors.New("escrow amount must be a positive integer")
	ErrInvalidCiphertext = errors.New("invalid ciphertext handle")
	ErrInvalidAddress    = errors.New("invalid address")
	ErrNotBetOwner       = errors.New("caller does not own this bet")
	ErrAlreadyWithdrawn  = errors.New("bet payout already withdrawn")
	ErrNoPayout          = errors.New("bet has no payout")
	ErrBetDidNotWin      = errors.New("bet did not win")

	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInvalidTransferAmount = errors.New("invalid transfer amount")

	ErrUnauthorized = errors.New("unauthorized")

	ErrDatabaseCredentialNotConfigured = errors.New("database credentials not configured")
	ErrUnsupportedDatabaseDriver       = errors.New("unsupported database driver")

	ErrInvalidMarketDuration = errors.New("invalid market duration limits")
	ErrInvalidQuestionLimits = errors.New("invalid question length limits")
	ErrInvalidRevealFanOut   = errors.New("reveal fan-out must be positive")
	ErrInvalidPollRate       = errors.New("poll rate must be positive")
	ErrInvalidLockTTL        = errors.New("lock ttl must be positive")
	ErrInvalidSymmetricKey   = errors.New("symmetric key must be exactly 32 characters")
	ErrInvalidTokenDuration  = errors.New("token duration must be positive")
)
