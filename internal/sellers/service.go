package sellers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/internal/ledger"
	"github.com/angelmondragon/bazaar-backend/internal/users"
	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
	"github.com/angelmondragon/bazaar-backend/pkg/metrics"
	"github.com/angelmondragon/bazaar-backend/pkg/security"
)

type commissionLedger interface {
	AccrueCommission(ctx context.Context, tx *gorm.DB, referrerSellerID, referredUserID uuid.UUID) (*ledger.CommissionDTO, error)
	Referral(ctx context.Context, sellerUserID uuid.UUID) (*ledger.ReferralSummary, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes seller onboarding and review operations.
type Service interface {
	Apply(ctx context.Context, input ApplyInput) (*SellerDTO, error)
	Decide(ctx context.Context, input DecideInput) (*SellerDTO, error)
	Profile(ctx context.Context, userID uuid.UUID) (*SellerDTO, error)
	ListApplications(ctx context.Context, status *enums.SellerStatus) ([]SellerDTO, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error)
	Referral(ctx context.Context, userID uuid.UUID) (*ledger.ReferralSummary, error)
}

// ApplyInput is a seller application from an authenticated identity.
type ApplyInput struct {
	UserID       uuid.UUID
	AccountEmail string
	AccountName  string
	ShopName     string
	OwnerName    string
	Email        string
	Phone        string
	Address      *string
	Description  *string
	LogoURL      *string
	ReferralCode string
}

// DecideInput is an admin decision on a pending application.
type DecideInput struct {
	UserID uuid.UUID
	Action enums.SellerDecision
}

type service struct {
	repo     Repository
	users    users.Repository
	ledger   commissionLedger
	tx       txRunner
	cfg      config.CommerceConfig
	logg     *logger.Logger
	metrics  *metrics.Marketplace
	now      func() time.Time
	generate func(length int) (string, error)
}

// NewService builds the seller service.
func NewService(repo Repository, usersRepo users.Repository, ledgerSvc commissionLedger, tx txRunner, cfg config.CommerceConfig, logg *logger.Logger, m *metrics.Marketplace) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("seller repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if ledgerSvc == nil {
		return nil, fmt.Errorf("ledger service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if cfg.ReferralCodeLength <= 0 {
		return nil, fmt.Errorf("referral code length must be positive")
	}
	if m == nil {
		m = metrics.NewMarketplace(nil)
	}
	return &service{
		repo:     repo,
		users:    usersRepo,
		ledger:   ledgerSvc,
		tx:       tx,
		cfg:      cfg,
		logg:     logg,
		metrics:  m,
		now:      time.Now,
		generate: security.NewReferralCode,
	}, nil
}

var errCodeTaken = errors.New("referral code taken")

// Apply records a pending seller application with a fresh referral code.
func (s *service) Apply(ctx context.Context, input ApplyInput) (*SellerDTO, error) {
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity required")
	}
	seller, err := s.applicationFromInput(input)
	if err != nil {
		return nil, err
	}
	code := security.NormalizeReferralCode(input.ReferralCode)
	if code != "" && !security.IsReferralCode(code, s.cfg.ReferralCodeLength) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid referral code")
	}

	if _, err := s.repo.FindByUserID(ctx, input.UserID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller application already submitted")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
	}

	if code != "" {
		referrer, err := s.repo.FindByReferralCode(ctx, code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referrer")
		}
		if referrer == nil || !referrer.IsApproved() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid referral code")
		}
		referredBy := referrer.UserID
		seller.ReferredBy = &referredBy
	}

	attempts := s.cfg.ReferralCodeAttempts
	if attempts <= 0 {
		attempts = 1
	}
	for attempt := 0; attempt < attempts; attempt++ {
		ownCode, err := s.freshReferralCode(ctx)
		if errors.Is(err, errCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		seller.ID = uuid.Nil
		seller.ReferralCode = ownCode

		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			user := &models.User{
				ID:    input.UserID,
				Email: strings.TrimSpace(input.AccountEmail),
				Name:  strings.TrimSpace(input.AccountName),
				Role:  enums.UserRoleCustomer,
			}
			if user.Email == "" {
				user.Email = seller.Email
			}
			if err := s.users.WithTx(tx).Upsert(ctx, user); err != nil {
				return err
			}
			return s.repo.WithTx(tx).Create(ctx, seller)
		})
		switch {
		case err == nil:
			s.logApplied(ctx, seller)
			return FromModel(seller), nil
		case db.IsUniqueViolation(err, "referral_code"):
			continue
		case db.IsUniqueViolation(err, "user_id"):
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "seller application already submitted")
		default:
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert seller")
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeInternal, "could not allocate a referral code")
}

func (s *service) freshReferralCode(ctx context.Context) (string, error) {
	code, err := s.generate(s.cfg.ReferralCodeLength)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate referral code")
	}
	exists, err := s.repo.ReferralCodeExists(ctx, code)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check referral code")
	}
	if exists {
		return "", errCodeTaken
	}
	return code, nil
}

func (s *service) applicationFromInput(input ApplyInput) (*models.Seller, error) {
	seller := &models.Seller{
		UserID:      input.UserID,
		ShopName:    strings.TrimSpace(input.ShopName),
		OwnerName:   strings.TrimSpace(input.OwnerName),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		Address:     trimmedOrNil(input.Address),
		Description: trimmedOrNil(input.Description),
		LogoURL:     trimmedOrNil(input.LogoURL),
		Status:      enums.SellerStatusPending,
	}
	if seller.Email == "" {
		seller.Email = strings.TrimSpace(input.AccountEmail)
	}
	if seller.OwnerName == "" {
		seller.OwnerName = strings.TrimSpace(input.AccountName)
	}
	switch {
	case seller.ShopName == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shop_name is required")
	case seller.OwnerName == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner_name is required")
	case seller.Email == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	case seller.Phone == "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	return seller, nil
}

func (s *service) logApplied(ctx context.Context, seller *models.Seller) {
	fields := map[string]any{
		"seller_id":     seller.ID.String(),
		"referral_code": seller.ReferralCode,
	}
	if seller.ReferredBy != nil {
		fields["referred_by"] = seller.ReferredBy.String()
	}
	logCtx := s.logg.WithUserID(ctx, seller.UserID.String())
	s.logg.Info(s.logg.WithFields(logCtx, fields), "seller.applied")
}

// Decide approves or rejects a pending application. Approval elevates the
// user to seller and credits the referrer, if any, in the same transaction.
func (s *service) Decide(ctx context.Context, input DecideInput) (*SellerDTO, error) {
	var status enums.SellerStatus
	switch input.Action {
	case enums.SellerDecisionApprove:
		status = enums.SellerStatusApproved
	case enums.SellerDecisionReject:
		status = enums.SellerStatusRejected
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "action must be approve or reject")
	}

	var decided *models.Seller
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		seller, err := txRepo.FindByUserID(ctx, input.UserID)
		if err != nil {
			return mapSellerErr(err)
		}
		at := s.now().UTC()
		ok, err := txRepo.UpdateDecision(ctx, seller.ID, status, at)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update seller status")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "seller application already decided").
				WithDetails(map[string]any{"status": seller.Status})
		}
		seller.Status = status
		seller.DecidedAt = &at

		if status == enums.SellerStatusApproved {
			if err := s.users.WithTx(tx).UpdateRole(ctx, seller.UserID, enums.UserRoleSeller); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "elevate user role")
			}
			if err := s.creditReferrer(ctx, tx, txRepo, seller); err != nil {
				return err
			}
		}
		decided = seller
		return nil
	}); err != nil {
		return nil, pkgerrors.Passthrough(err, "decide seller")
	}

	s.metrics.IncSellerDecision(string(status))
	logCtx := s.logg.WithSellerID(ctx, decided.ID.String())
	s.logg.Info(s.logg.WithField(logCtx, "status", string(status)), "seller.decided")
	return FromModel(decided), nil
}

func (s *service) creditReferrer(ctx context.Context, tx *gorm.DB, txRepo Repository, seller *models.Seller) error {
	if seller.ReferredBy == nil {
		return nil
	}
	referrer, err := txRepo.FindByUserID(ctx, *seller.ReferredBy)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logg.Warn(s.logg.WithField(ctx, "referred_by", seller.ReferredBy.String()), "seller.referrer_missing")
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load referrer")
	}
	_, err = s.ledger.AccrueCommission(ctx, tx, referrer.ID, seller.UserID)
	return err
}

// Profile returns the caller's seller record.
func (s *service) Profile(ctx context.Context, userID uuid.UUID) (*SellerDTO, error) {
	seller, err := s.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return FromModel(seller), nil
}

// ListApplications returns the admin review queue.
func (s *service) ListApplications(ctx context.Context, status *enums.SellerStatus) ([]SellerDTO, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seller status")
	}
	rows, err := s.repo.ListByStatus(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list sellers")
	}
	return fromModels(rows), nil
}

// FindByUserID resolves the seller owned by an identity.
func (s *service) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	seller, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, mapSellerErr(err)
	}
	return seller, nil
}

// Referral returns the caller's referral code and commission ledger.
func (s *service) Referral(ctx context.Context, userID uuid.UUID) (*ledger.ReferralSummary, error) {
	return s.ledger.Referral(ctx, userID)
}

func mapSellerErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "seller not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load seller")
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
