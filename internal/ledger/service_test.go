package ledger

import (
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/db/dbtest"
	"github.com/angelmondragon/bazaar-backend/pkg/db/models"
	"github.com/angelmondragon/bazaar-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/bazaar-backend/pkg/errors"
	"github.com/angelmondragon/bazaar-backend/pkg/logger"
)

type dbSellerLoader struct {
	db *gorm.DB
}

func (l dbSellerLoader) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.Seller, error) {
	var seller models.Seller
	if err := l.db.WithContext(ctx).First(&seller, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &seller, nil
}

func testCommerce() config.CommerceConfig {
	return config.CommerceConfig{
		ReferralCommission: decimal.NewFromInt(250),
		MinWithdrawal:      decimal.NewFromInt(200),
	}
}

func newTestService(t *testing.T) (*service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(NewRepository(conn), client, dbSellerLoader{db: conn}, testCommerce(), logg, nil)
	require.NoError(t, err)
	return svc.(*service), conn
}

func mustCreateSeller(t *testing.T, conn *gorm.DB, status enums.SellerStatus) *models.Seller {
	t.Helper()
	user := &models.User{ID: uuid.New(), Email: fmt.Sprintf("%s@example.com", uuid.NewString()), Name: "Ledger", Role: enums.UserRoleSeller}
	require.NoError(t, conn.Create(user).Error)
	seller := &models.Seller{
		UserID:       user.ID,
		ShopName:     "Ledger Shop",
		OwnerName:    "Ledger",
		Email:        user.Email,
		Phone:        "01700000000",
		Status:       status,
		ReferralCode: uuid.NewString()[:8],
	}
	require.NoError(t, conn.Create(seller).Error)
	return seller
}

func accrue(t *testing.T, svc *service, conn *gorm.DB, sellerID uuid.UUID, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := svc.AccrueCommission(context.Background(), conn, sellerID, uuid.New())
		require.NoError(t, err)
	}
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, testCommerce(), nil, nil)
	assert.Error(t, err)
}

func TestAccrueCommissionAndReferralSummary(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateSeller(t, conn, enums.SellerStatusApproved)

	accrue(t, svc, conn, seller.ID, 2)

	summary, err := svc.Referral(ctx, seller.UserID)
	require.NoError(t, err)
	assert.Equal(t, seller.ReferralCode, summary.ReferralCode)
	require.Len(t, summary.Commissions, 2)
	assert.True(t, summary.Total.Equal(decimal.NewFromInt(500)))
	assert.True(t, summary.Pending.Equal(decimal.NewFromInt(500)))
	assert.True(t, summary.Approved.IsZero())

	_, err = svc.ApproveCommission(ctx, summary.Commissions[0].ID)
	require.NoError(t, err)

	summary, err = svc.Referral(ctx, seller.UserID)
	require.NoError(t, err)
	assert.True(t, summary.Pending.Equal(decimal.NewFromInt(250)))
	assert.True(t, summary.Approved.Equal(decimal.NewFromInt(250)))
}

func TestAccrueCommissionRequiresTransaction(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.AccrueCommission(context.Background(), nil, uuid.New(), uuid.New())
	assertCode(t, err, pkgerrors.CodeInternal)
}

func TestApproveCommissionTwiceIsStateConflict(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateSeller(t, conn, enums.SellerStatusApproved)
	commission, err := svc.AccrueCommission(ctx, conn, seller.ID, uuid.New())
	require.NoError(t, err)

	_, err = svc.ApproveCommission(ctx, commission.ID)
	require.NoError(t, err)
	_, err = svc.ApproveCommission(ctx, commission.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.ApproveCommission(ctx, uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestReferralUnknownSeller(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Referral(context.Background(), uuid.New())
	assertCode(t, err, pkgerrors.CodeNotFound)
}

func TestRequestWithdrawalValidation(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateSeller(t, conn, enums.SellerStatusApproved)
	accrue(t, svc, conn, seller.ID, 4)

	cases := []struct {
		name  string
		input WithdrawalInput
	}{
		{"below minimum", WithdrawalInput{Amount: decimal.NewFromInt(199), Method: enums.PayoutMethodBkash, Number: "017"}},
		{"unknown method", WithdrawalInput{Amount: decimal.NewFromInt(300), Method: "paypal", Number: "017"}},
		{"blank number", WithdrawalInput{Amount: decimal.NewFromInt(300), Method: enums.PayoutMethodNagad, Number: "  "}},
		{"sub-paisa amount", WithdrawalInput{Amount: decimal.RequireFromString("300.005"), Method: enums.PayoutMethodBkash, Number: "017"}},
		{"over balance", WithdrawalInput{Amount: decimal.NewFromInt(1001), Method: enums.PayoutMethodBank, Number: "017"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.RequestWithdrawal(ctx, seller.UserID, tc.input)
			assertCode(t, err, pkgerrors.CodeValidation)
		})
	}

	ledger, err := svc.Withdrawals(ctx, seller.UserID)
	require.NoError(t, err)
	assert.Empty(t, ledger.Withdrawals)
	assert.True(t, ledger.Available.Equal(decimal.NewFromInt(1000)))
}

func TestRequestWithdrawalAcceptsTrailingZeroScale(t *testing.T) {
	svc, conn := newTestService(t)
	seller := mustCreateSeller(t, conn, enums.SellerStatusApproved)
	accrue(t, svc, conn, seller.ID, 2)

	got, err := svc.RequestWithdrawal(context.Background(), seller.UserID, WithdrawalInput{
		Amount: decimal.RequireFromString("250.500"), Method: enums.PayoutMethodBkash, Number: "01712345678",
	})
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.RequireFromString("250.5")))
}

func TestRequestWithdrawalRequiresApprovedSeller(t *testing.T) {
	svc, conn := newTestService(t)
	seller := mustCreateSeller(t, conn, enums.SellerStatusPending)
	_, err := svc.RequestWithdrawal(context.Background(), seller.UserID, WithdrawalInput{
		Amount: decimal.NewFromInt(200), Method: enums.PayoutMethodBkash, Number: "017",
	})
	assertCode(t, err, pkgerrors.CodeForbidden)
}

func TestRequestWithdrawalConsumesPendingBalance(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	seller := mustCreateSeller(t, conn, enums.SellerStatusApproved)
	accrue(t, svc, conn, seller.ID, 2)

	first, err := svc.RequestWithdrawal(ctx, seller.UserID, WithdrawalInput{
		Amount: decimal.NewFromInt(300), Method: enums.PayoutMethodBkash, Number: " 01711111111 ",
	})
	require.NoError(t, err)
	assert.Equal(t, enums.WithdrawalStatusPending, first.Status)
	assert.Equal(t, "01711111111", first.AccountNumber)

	_, err = svc.RequestWithdrawal(ctx, seller.UserID, WithdrawalInput{
		Amount: decimal.NewFromInt(201), Method: enums.PayoutMethodBkash, Number: "01711111111",
	})
	assertCode(t, err, pkgerrors.CodeValidation)

	second, err := svc.RequestWithdrawal(ctx, seller.UserID, WithdrawalInput{
		Amount: decimal.NewFromInt(200), Method: enums.PayoutMethodRocket, Number: "01711111111",
	})
	require.NoError(t, err)

	ledger, err := svc.Withdrawals(ctx, seller.UserID)
	require.NoError(t, err)
	require.Len(t, ledger.Withdrawals, 2)
	assert.True(t, ledger.Available.IsZero())

	// Rejecting frees the pending amount again.
	_, err = svc.DecideWithdrawal(ctx, second.ID, enums.WithdrawalStatusRejected)
	require.NoError(t, err)
	ledger, err = svc.Withdrawals(ctx, seller.UserID)
	require.NoError(t, err)
	assert.True(t, ledger.Available.Equal(decimal.NewFromInt(200)))
}

func TestDecideWithdrawal(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	decidedAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return decidedAt }
	seller := mustCreateSeller(t, conn, enums.SellerStatusApproved)
	accrue(t, svc, conn, seller.ID, 1)

	w, err := svc.RequestWithdrawal(ctx, seller.UserID, WithdrawalInput{
		Amount: decimal.NewFromInt(250), Method: enums.PayoutMethodBank, Number: "AC-1",
	})
	require.NoError(t, err)

	_, err = svc.DecideWithdrawal(ctx, w.ID, enums.WithdrawalStatusPending)
	assertCode(t, err, pkgerrors.CodeValidation)

	decided, err := svc.DecideWithdrawal(ctx, w.ID, enums.WithdrawalStatusApproved)
	require.NoError(t, err)
	assert.Equal(t, enums.WithdrawalStatusApproved, decided.Status)
	require.NotNil(t, decided.DecidedAt)
	assert.True(t, decided.DecidedAt.Equal(decidedAt))

	_, err = svc.DecideWithdrawal(ctx, w.ID, enums.WithdrawalStatusRejected)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.DecideWithdrawal(ctx, uuid.New(), enums.WithdrawalStatusApproved)
	assertCode(t, err, pkgerrors.CodeNotFound)
}
