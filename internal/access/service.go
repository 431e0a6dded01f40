package access

import (
	"context"
	"strings"

	"vinestore-be/internal/apperr"
	"vinestore-be/internal/logger"
	"vinestore-be/internal/user"

	"go.uber.org/zap"
)

// Provisioner creates the staff account for an approved request.
type Provisioner interface {
	ProvisionUser(ctx context.Context, email string) (*user.User, string, error)
}

// Mailer is the slice of the mail client this workflow needs.
type Mailer interface {
	SendAccessRequestNotification(ctx context.Context, requesterEmail, fullName, reason string) error
	SendCredentials(ctx context.Context, to, temporaryPassword string) error
	SendRejection(ctx context.Context, to string) error
}

type SubmitParams struct {
	Email    string
	FullName string
	Reason   *string
}

type Service interface {
	Submit(ctx context.Context, params SubmitParams) (*AccessRequest, error)
	List(ctx context.Context) ([]*AccessRequest, error)
	Review(ctx context.Context, id, action string, adminNotes *string) (*ReviewResult, error)
}

type service struct {
	repo        Repository
	provisioner Provisioner
	mailer      Mailer
}

func NewService(repo Repository, provisioner Provisioner, mailer Mailer) Service {
	return &service{repo: repo, provisioner: provisioner, mailer: mailer}
}

// Submit records the application and notifies the admin. The notification is
// best-effort: a mail outage must not block the request itself.
func (s *service) Submit(ctx context.Context, params SubmitParams) (*AccessRequest, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "SubmitAccessRequest"),
	)

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperr.New(apperr.Validation, "a valid email is required")
	}
	fullName := strings.TrimSpace(params.FullName)
	if fullName == "" {
		return nil, apperr.New(apperr.Validation, "full name is required")
	}

	req, err := s.repo.Create(ctx, email, fullName, params.Reason)
	if err != nil {
		return nil, err
	}

	reason := ""
	if params.Reason != nil {
		reason = *params.Reason
	}
	if err := s.mailer.SendAccessRequestNotification(ctx, email, fullName, reason); err != nil {
		log.Warn("admin notification failed", zap.Error(err))
	}

	log.Info("SubmitAccessRequest success", zap.String("request_id", req.ID))
	return req, nil
}

func (s *service) List(ctx context.Context) ([]*AccessRequest, error) {
	return s.repo.List(ctx)
}

func (s *service) Review(ctx context.Context, id, action string, adminNotes *string) (*ReviewResult, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ReviewAccessRequest"),
		zap.String("request_id", id),
	)

	if id == "" {
		return nil, apperr.New(apperr.Validation, "request ID is required")
	}

	switch action {
	case ActionApprove, ActionReject:
	default:
		return nil, apperr.Newf(apperr.Validation, "invalid action %q", action)
	}

	req, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, apperr.New(apperr.State, "this request has already been reviewed")
	}

	if action == ActionReject {
		reviewed, err := s.repo.MarkReviewed(ctx, id, StatusRejected, adminNotes)
		if err != nil {
			return nil, err
		}
		if err := s.mailer.SendRejection(ctx, req.Email); err != nil {
			log.Warn("rejection email failed", zap.Error(err))
		}
		log.Info("access request rejected")
		return &ReviewResult{Request: reviewed, Message: "request rejected"}, nil
	}

	// Approval provisions the account before the status flips: a failed
	// provision leaves the request pending and retryable, never approved
	// without an account behind it.
	_, password, err := s.provisioner.ProvisionUser(ctx, req.Email)
	if err != nil {
		log.Error("account provisioning failed", zap.Error(err))
		return nil, err
	}

	reviewed, err := s.repo.MarkReviewed(ctx, id, StatusApproved, adminNotes)
	if err != nil {
		return nil, err
	}

	if err := s.mailer.SendCredentials(ctx, req.Email, password); err != nil {
		log.Error("credentials email failed", zap.Error(err))
		return &ReviewResult{
			Request:           reviewed,
			Message:           "request approved, but the credentials email could not be sent; share the temporary password manually",
			EmailFailed:       true,
			TemporaryPassword: password,
		}, nil
	}

	log.Info("access request approved")
	return &ReviewResult{Request: reviewed, Message: "request approved"}, nil
}
