package waitlist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/osiahq/founding-circle-api/databases"
	"github.com/osiahq/founding-circle-api/models"
)

// MaxFoundingMembers caps the number of activated founding members. The cap
// shapes signup messaging and the remaining-slots statistic only; joining the
// queue itself is unbounded.
const MaxFoundingMembers = 150

// Notifier delivers transactional email. Implementations must return
// immediately and absorb their own failures; a lost email never fails the
// operation that requested it.
type Notifier interface {
	NotifyWelcomeWithCode(email, code string, queueNumber int)
	NotifyApprovalWithCode(email, code string, queueNumber int)
}

// Service owns the waitlist admission, approval, activation and removal
// workflows. It holds no member state between calls; the member collection is
// the single source of truth.
type Service struct {
	Members  databases.MemberDatabase
	Counter  databases.CounterDatabase
	Notifier Notifier
}

// NewService wires the service with its store and notifier dependencies
func NewService(members databases.MemberDatabase, counter databases.CounterDatabase, notifier Notifier) *Service {
	return &Service{
		Members:  members,
		Counter:  counter,
		Notifier: notifier,
	}
}

// NormalizeEmail lowercases and trims an email so all comparisons and stored
// values agree
func NormalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// JoinWaitlist admits an applicant into the queue. Joining twice with the same
// email is idempotent: the existing queue number and access code are returned
// and no second member is created.
func (s *Service) JoinWaitlist(ctx context.Context, email, referralSource string) (*models.JoinWaitlistResponse, error) {
	email = NormalizeEmail(email)

	existing, err := s.Members.FindOne(ctx, bson.M{"email": email})
	if err == nil {
		return joinResponse(existing.QueueNumber, existing.AccessCode), nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("failed to look up member by email: %w", err)
	}

	// Reserve the next queue number server-side. A plain count-then-insert
	// can hand the same number to two concurrent joins.
	queueNumber, err := s.Counter.NextQueueNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to reserve queue number: %w", err)
	}

	code, err := GenerateAccessCode()
	if err != nil {
		return nil, err
	}

	member := models.Member{
		ID:          primitive.NewObjectID(),
		Email:       email,
		QueueNumber: queueNumber,
		AccessCode:  code,
		Status:      models.StatusPending,
		SignedUpAt:  time.Now(),
		Metadata:    models.MemberMetadata{ReferralSource: referralSource},
	}

	_, err = s.Members.InsertOne(ctx, member)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// lost a race against a concurrent join with the same email;
			// give the reserved number back and answer idempotently. The
			// release only lands if no newer reservation exists; otherwise
			// the number is left as a gap for the next renumber pass.
			if relErr := s.Counter.ReleaseOne(ctx, queueNumber); relErr != nil {
				zap.S().Errorw("failed to release queue number after duplicate join",
					"email", email,
					"error", relErr,
				)
			}
			winner, findErr := s.Members.FindOne(ctx, bson.M{"email": email})
			if findErr != nil {
				return nil, fmt.Errorf("failed to load member after duplicate join: %w", findErr)
			}
			return joinResponse(winner.QueueNumber, winner.AccessCode), nil
		}
		return nil, fmt.Errorf("failed to create member: %w", err)
	}

	s.Notifier.NotifyWelcomeWithCode(email, code, queueNumber)

	return joinResponse(queueNumber, code), nil
}

func joinResponse(queueNumber int, code string) *models.JoinWaitlistResponse {
	resp := &models.JoinWaitlistResponse{
		QueueNumber: queueNumber,
		AccessCode:  code,
	}
	if queueNumber <= MaxFoundingMembers {
		resp.Message = fmt.Sprintf("You're founding member #%d! Your access code is %s.", queueNumber, code)
	} else {
		resp.Message = fmt.Sprintf("You're #%d in line. The founding circle is full right now, but we'll email you when a spot opens.", queueNumber)
	}
	return resp
}

// ApproveMember promotes a pending member to approved and issues a fresh
// access code. Re-approval is rejected rather than made idempotent: rotating
// the code of an already-approved member could strand someone mid-activation.
func (s *Service) ApproveMember(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	member, err := s.Members.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrMemberNotFound
		}
		return nil, fmt.Errorf("failed to find member: %w", err)
	}
	return s.approve(ctx, member)
}

// BulkApprove promotes up to count pending members, oldest queue number
// first. Members are processed independently: one failure is logged and
// skipped, and only the successfully approved members are returned.
func (s *Service) BulkApprove(ctx context.Context, count int) ([]models.Member, error) {
	if count <= 0 {
		return []models.Member{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "queueNumber", Value: 1}}).
		SetLimit(int64(count))
	pending, err := s.Members.Find(ctx, bson.M{"status": models.StatusPending}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending members: %w", err)
	}

	approved := make([]models.Member, 0, len(pending))
	for i := range pending {
		member, err := s.approve(ctx, &pending[i])
		if err != nil {
			zap.S().Errorw("failed to approve member during bulk approve",
				"memberId", pending[i].ID.Hex(),
				"queueNumber", pending[i].QueueNumber,
				"error", err,
			)
			continue
		}
		approved = append(approved, *member)
	}
	return approved, nil
}

func (s *Service) approve(ctx context.Context, member *models.Member) (*models.Member, error) {
	if member.Status != models.StatusPending {
		return nil, ErrInvalidTransition
	}

	code, err := GenerateAccessCode()
	if err != nil {
		return nil, err
	}
	now := time.Now()

	// the status filter makes the transition safe against a concurrent
	// approval of the same member
	res, err := s.Members.UpdateOne(ctx,
		bson.M{"_id": member.ID, "status": models.StatusPending},
		bson.M{"$set": bson.M{
			"status":     models.StatusApproved,
			"accessCode": code,
			"approvedAt": now,
		}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update member status: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrInvalidTransition
	}

	member.Status = models.StatusApproved
	member.AccessCode = code
	member.ApprovedAt = &now

	s.Notifier.NotifyApprovalWithCode(member.Email, code, member.QueueNumber)

	return member, nil
}

// ValidateAndActivate checks a presented (code, email) pair and performs the
// one-way approved -> activated transition. Re-presenting the credential after
// activation succeeds identically, so a page refresh during downstream signup
// never locks a member out.
func (s *Service) ValidateAndActivate(ctx context.Context, accessCode, email string) (*models.ValidateCodeResponse, error) {
	email = NormalizeEmail(email)

	member, err := s.Members.FindOne(ctx, bson.M{"accessCode": accessCode, "email": email})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// a code bound to a different email is indistinguishable from no
			// code at all
			return &models.ValidateCodeResponse{Valid: false}, nil
		}
		return nil, fmt.Errorf("failed to look up access code: %w", err)
	}

	switch member.Status {
	case models.StatusActivated:
		return &models.ValidateCodeResponse{
			Valid:       true,
			Email:       member.Email,
			QueueNumber: member.QueueNumber,
		}, nil
	case models.StatusPending:
		return nil, &ValidationError{Reason: ReasonNotYetApproved}
	case models.StatusApproved:
		now := time.Now()
		res, err := s.Members.UpdateOne(ctx,
			bson.M{"_id": member.ID, "status": models.StatusApproved},
			bson.M{"$set": bson.M{
				"status":      models.StatusActivated,
				"activatedAt": now,
			}},
		)
		if err != nil {
			return nil, fmt.Errorf("failed to activate member: %w", err)
		}
		// MatchedCount of zero means a concurrent activation beat this one;
		// either way the member is activated now
		_ = res
		return &models.ValidateCodeResponse{
			Valid:       true,
			Email:       member.Email,
			QueueNumber: member.QueueNumber,
		}, nil
	default:
		return nil, &ValidationError{Reason: ReasonWrongState}
	}
}

// GetStats aggregates member counts by status and the remaining founding
// member capacity. Read-only.
func (s *Service) GetStats(ctx context.Context) (*models.WaitlistStats, error) {
	total, err := s.Members.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to count members: %w", err)
	}
	pending, err := s.Members.CountDocuments(ctx, bson.M{"status": models.StatusPending})
	if err != nil {
		return nil, fmt.Errorf("failed to count pending members: %w", err)
	}
	approved, err := s.Members.CountDocuments(ctx, bson.M{"status": models.StatusApproved})
	if err != nil {
		return nil, fmt.Errorf("failed to count approved members: %w", err)
	}
	activated, err := s.Members.CountDocuments(ctx, bson.M{"status": models.StatusActivated})
	if err != nil {
		return nil, fmt.Errorf("failed to count activated members: %w", err)
	}

	remaining := int64(MaxFoundingMembers) - activated
	if remaining < 0 {
		remaining = 0
	}

	return &models.WaitlistStats{
		Total:          total,
		Pending:        pending,
		Approved:       approved,
		Activated:      activated,
		RemainingSlots: remaining,
	}, nil
}

// RemoveMember deletes a member and compacts the queue so the remaining
// numbers run 1..N with no gaps. Removing an unknown id is a no-op.
func (s *Service) RemoveMember(ctx context.Context, id primitive.ObjectID) error {
	member, err := s.Members.FindOne(ctx, bson.M{"_id": id})
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return fmt.Errorf("failed to find member: %w", err)
	}

	if _, err := s.Members.DeleteOne(ctx, bson.M{"_id": member.ID}); err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}

	count, err := s.renumber(ctx)
	if err != nil {
		return err
	}

	// The sequence is re-derived from the compacted count: with no concurrent
	// joins the counter sits at count+1 and drops to count. A join that
	// reserved in between leaves the counter untouched; its number stays
	// unique and the gap heals on the next removal.
	if err := s.Counter.ReleaseOne(ctx, count+1); err != nil {
		zap.S().Errorw("failed to release queue number after removal",
			"memberId", member.ID.Hex(),
			"error", err,
		)
	}
	return nil
}

// renumber re-derives every member's queue number from its current rank and
// returns the member count. Each patch is keyed on the number being replaced,
// so an interrupted run can be retried safely: already-correct rows match
// nothing and are skipped.
func (s *Service) renumber(ctx context.Context) (int, error) {
	opts := options.Find().SetSort(bson.D{{Key: "queueNumber", Value: 1}})
	members, err := s.Members.Find(ctx, bson.M{}, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to list members for renumbering: %w", err)
	}

	for i := range members {
		want := i + 1
		if members[i].QueueNumber == want {
			continue
		}
		_, err := s.Members.UpdateOne(ctx,
			bson.M{"_id": members[i].ID, "queueNumber": members[i].QueueNumber},
			bson.M{"$set": bson.M{"queueNumber": want}},
		)
		if err != nil {
			return 0, fmt.Errorf("failed to renumber member %s: %w", members[i].ID.Hex(), err)
		}
	}
	return len(members), nil
}

// GetAllMembers lists every member in queue order
func (s *Service) GetAllMembers(ctx context.Context) ([]models.Member, error) {
	opts := options.Find().SetSort(bson.D{{Key: "queueNumber", Value: 1}})
	members, err := s.Members.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}
