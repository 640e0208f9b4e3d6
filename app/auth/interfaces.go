package auth

import "context"

// Service signs wallets in
type Service interface {
	IssueChallenge(ctx context.Context, req *ChallengeRequest) (*ChallengeResponse, error)
	CreateSession(ctx context.Context, req *SessionRequest) (*SessionResponse, error)
}
