package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joefazee/veilbet/internal/cache"
	"github.com/joefazee/veilbet/internal/logger"
	"github.com/joefazee/veilbet/internal/security"
	"github.com/joefazee/veilbet/models"
)

// LoginMessage is what a wallet signs to open a session.
func LoginMessage(nonce string) string {
	return "veilbet login: " + nonce
}

type service struct {
	challenges cache.Cache[string]
	tokenMaker security.Maker
	config     *Config
	log        logger.Logger
	now        func() time.Time
}

// NewService creates a new auth service
func NewService(challenges cache.Cache[string], tokenMaker security.Maker, config *Config, log logger.Logger) Service {
	return &service{
		challenges: challenges,
		tokenMaker: tokenMaker,
		config:     config,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func challengeKey(address models.Address) string {
	return "challenge:" + strings.ToLower(address.Hex())
}

func (s *service) IssueChallenge(ctx context.Context, req *ChallengeRequest) (*ChallengeResponse, error) {
	address, err := models.ParseAddress(req.Address)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	nonce := hex.EncodeToString(buf)

	if err := s.challenges.Set(ctx, challengeKey(address), nonce, s.config.ChallengeTTL); err != nil {
		return nil, fmt.Errorf("failed to store challenge: %w", err)
	}

	return &ChallengeResponse{
		Address:   address,
		Nonce:     nonce,
		Message:   LoginMessage(nonce),
		ExpiresAt: s.now().Add(s.config.ChallengeTTL),
	}, nil
}

// CreateSession consumes the pending challenge and issues a token when the signature
// recovers to the claimed address.
func (s *service) CreateSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error) {
	address, err := models.ParseAddress(req.Address)
	if err != nil {
		return nil, err
	}

	key := challengeKey(address)
	nonce, err := s.challenges.Get(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, fmt.Errorf("%w: no pending challenge", models.ErrUnauthorized)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load challenge: %w", err)
	}
	if err := s.challenges.Delete(ctx, key); err != nil {
		s.log.Warn("failed to delete used challenge", map[string]interface{}{
			"address": address.Hex(),
			"error":   err.Error(),
		})
	}

	signer, err := RecoverSigner(LoginMessage(nonce), req.Signature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUnauthorized, err)
	}
	if signer != address {
		return nil, fmt.Errorf("%w: signature does not match address", models.ErrUnauthorized)
	}

	token, payload, err := s.tokenMaker.CreateToken(address, s.config.TokenDuration, security.TokenScopeSession)
	if err != nil {
		return nil, fmt.Errorf("failed to create token: %w", err)
	}

	s.log.Info("session created", map[string]interface{}{
		"address":    address.Hex(),
		"expires_at": payload.ExpiredAt,
	})

	return &SessionResponse{
		AccessToken: token,
		Address:     address,
		ExpiresAt:   payload.ExpiredAt,
	}, nil
}

// RecoverSigner returns the address behind an EIP-191 personal_sign signature.
func RecoverSigner(message, signature string) (models.Address, error) {
	if !strings.HasPrefix(signature, "0x") {
		signature = "0x" + signature
	}
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return models.Address{}, fmt.Errorf("malformed signature: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return models.Address{}, fmt.Errorf("signature must be %d bytes", crypto.SignatureLength)
	}

	// wallets send v as 27/28
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return models.Address{}, fmt.Errorf("failed to recover signer: %w", err)
	}
	return models.Address(crypto.PubkeyToAddress(*pub)), nil
}
