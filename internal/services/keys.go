package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adamfranco/private-feed-keys/internal/metrics"
	"github.com/adamfranco/private-feed-keys/internal/models"
	"github.com/adamfranco/private-feed-keys/internal/store"
	"github.com/adamfranco/private-feed-keys/internal/util"
)

var (
	// ErrInvalidIssueContext signals a programming error: Issue was called
	// without a resolved site or authenticated user. Never issue a token
	// for an undefined identity.
	ErrInvalidIssueContext = errors.New("feed key issuance requires a resolved site and user")

	// ErrNotAllowed is returned when the acting user may not manage the
	// subject account's keys.
	ErrNotAllowed = errors.New("not allowed to manage this account's feed keys")
)

// KeyWithSite combines a feed key and its owning site for display
type KeyWithSite struct {
	models.FeedKey
	SiteName string
	SiteURL  string
}

// RevokeResult reports the outcome of a revocation request. Zero deletions
// against a non-empty selection is a soft, user-visible inconsistency, not
// a request failure.
type RevokeResult struct {
	Requested int
	Deleted   int64
}

// Failed reports the store-inconsistency case: keys were selected but no
// rows were deleted.
func (r *RevokeResult) Failed() bool {
	return r.Requested > 0 && r.Deleted == 0
}

// KeyService implements feed key issuance, resolution, listing and
// revocation on top of the store.
type KeyService struct {
	store   *store.Store
	metrics metrics.Recorder
}

func NewKeyService(s *store.Store, m metrics.Recorder) *KeyService {
	return &KeyService{
		store:   s,
		metrics: m,
	}
}

// Issue returns the feed key token for a (site, user) pair, creating and
// persisting one on first call. Repeated calls never rotate the token. The
// insert is the single point of truth for uniqueness: when a concurrent
// first issuance wins the race, the losing call re-reads and returns the
// winner's token.
func (s *KeyService) Issue(ctx context.Context, siteID, userID int64) (string, error) {
	if siteID <= 0 || userID <= 0 {
		return "", ErrInvalidIssueContext
	}

	existing, err := s.store.GetFeedKey(siteID, userID)
	if err == nil {
		s.metrics.RecordKeyIssued("existing", 0)
		return existing.Token, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		s.metrics.RecordKeyIssued("error", 0)
		return "", fmt.Errorf("failed to look up feed key: %w", err)
	}

	user, err := s.store.GetUserByID(userID)
	if err != nil {
		s.metrics.RecordKeyIssued("error", 0)
		return "", fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}

	start := time.Now()
	token, err := util.FeedKeyToken(siteID, user.Login)
	if err != nil {
		s.metrics.RecordKeyIssued("error", 0)
		return "", fmt.Errorf("failed to generate feed key token: %w", err)
	}

	key := &models.FeedKey{
		SiteID: siteID,
		UserID: userID,
		Token:  token,
	}
	if err := s.store.CreateFeedKey(key); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			// Lost the insert race: the record now exists, return it.
			winner, err := s.store.GetFeedKey(siteID, userID)
			if err != nil {
				s.metrics.RecordKeyIssued("error", 0)
				return "", fmt.Errorf("failed to re-fetch feed key after conflict: %w", err)
			}
			s.metrics.RecordKeyIssued("existing", 0)
			return winner.Token, nil
		}
		// Never hand out a token that was not persisted; the feed link
		// would be permanently unresolvable.
		s.metrics.RecordKeyIssued("error", 0)
		return "", fmt.Errorf("failed to persist feed key: %w", err)
	}

	s.metrics.RecordKeyIssued("created", time.Since(start))
	return token, nil
}

// Authenticate resolves a presented token within a site. An unknown token
// is not an error: it returns (nil, false) and the request proceeds exactly
// as if no token had been supplied. On success the key's usage metadata is
// updated best-effort; a bookkeeping failure never reverses the
// authentication already granted.
func (s *KeyService) Authenticate(ctx context.Context, siteID int64, token string) (*models.FeedKey, bool) {
	key, err := s.store.GetFeedKeyByToken(siteID, token)
	if err != nil {
		// Unknown token and store failure alike fail open: no distinct
		// response that would let a caller probe token validity.
		if !errors.Is(err, store.ErrRecordNotFound) {
			log.Printf("feed key lookup failed for site %d: %v", siteID, err)
		}
		s.metrics.RecordKeyAuth("unknown")
		return nil, false
	}

	if err := s.store.TouchFeedKey(siteID, key.UserID); err != nil {
		log.Printf("feed key bookkeeping failed for site %d user %d: %v", siteID, key.UserID, err)
		s.metrics.RecordBookkeepingError()
	}

	s.metrics.RecordKeyAuth("success")
	return key, true
}

// ListKeys returns the subject's used feed keys with site display data,
// least recently accessed first.
func (s *KeyService) ListKeys(ctx context.Context, userID int64) ([]KeyWithSite, error) {
	keys, err := s.store.ListUsedFeedKeysByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feed keys: %w", err)
	}

	siteIDs := make([]int64, 0, len(keys))
	for i := range keys {
		siteIDs = append(siteIDs, keys[i].SiteID)
	}
	sites, err := s.store.GetSitesByIDs(siteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load sites for feed keys: %w", err)
	}

	result := make([]KeyWithSite, 0, len(keys))
	for i := range keys {
		kw := KeyWithSite{FeedKey: keys[i]}
		if site, ok := sites[keys[i].SiteID]; ok {
			kw.SiteName = site.Name
			kw.SiteURL = site.URL()
		}
		result = append(result, kw)
	}
	return result, nil
}

// Revoke deletes the subject's keys for the selected sites. The acting user
// must be the subject or an admin. Revoked pairs receive a freshly
// generated token if re-issued later.
func (s *KeyService) Revoke(
	ctx context.Context,
	actor *models.User,
	subjectID int64,
	siteIDs []int64,
) (*RevokeResult, error) {
	if actor == nil || !actor.CanEdit(subjectID) {
		return nil, ErrNotAllowed
	}

	deleted, err := s.store.DeleteFeedKeys(subjectID, siteIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to delete feed keys: %w", err)
	}
	if deleted > 0 {
		s.metrics.RecordKeyRevoked(deleted)
	}

	return &RevokeResult{
		Requested: len(siteIDs),
		Deleted:   deleted,
	}, nil
}
