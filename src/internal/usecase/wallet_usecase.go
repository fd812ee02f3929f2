package usecase

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"member-service/src/internal/entity"
	"member-service/src/internal/gateway/messaging"
	"member-service/src/internal/gateway/payout"
	"member-service/src/internal/model"
	"member-service/src/internal/model/converter"
	"member-service/src/internal/repository"
	"member-service/src/pkg/databases/mysql"
	httpError "member-service/src/pkg/http-error"
	"member-service/src/pkg/log"
	"member-service/src/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const (
	refPrefixPayment    = "TXN_"
	refPrefixTopup      = "TOP_"
	refPrefixTransfer   = "TRF_"
	refPrefixWithdrawal = "WTH_"
	refPrefixCommission = "COM_"

	// TaskProcessWithdrawal is handled by the asynq worker; the payload
	// carries only the ledger reference.
	TaskProcessWithdrawal = "wallet:process-withdrawal"
)

type WithdrawalTaskPayload struct {
	Reference string `json:"reference"`
}

type WalletUseCase struct {
	Log                   log.Log
	Validate              *validator.Validate
	Config                *viper.Viper
	DB                    mysql.DBInterface
	MemberRepository      *repository.MemberRepository
	TransactionRepository *repository.TransactionRepository
	AsynqClient           *asynq.Client
	MemberProducer        *messaging.MemberProducer
	Payout                payout.Gateway
}

func NewWalletUseCase(
	logger log.Log,
	validate *validator.Validate,
	cfg *viper.Viper,
	db mysql.DBInterface,
	memberRepository *repository.MemberRepository,
	transactionRepository *repository.TransactionRepository,
	asynqClient *asynq.Client,
	memberProducer *messaging.MemberProducer,
	payoutGateway payout.Gateway,
) *WalletUseCase {
	return &WalletUseCase{
		Log:                   logger,
		Validate:              validate,
		Config:                cfg,
		DB:                    db,
		MemberRepository:      memberRepository,
		TransactionRepository: transactionRepository,
		AsynqClient:           asynqClient,
		MemberProducer:        memberProducer,
		Payout:                payoutGateway,
	}
}

func newReference(prefix string) string {
	return prefix + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:20]
}

func (c *WalletUseCase) currency() string {
	if cur := c.Config.GetString("wallet.currency"); cur != "" {
		return cur
	}
	return "TZS"
}

func (c *WalletUseCase) minimum(key string, fallback int64) decimal.Decimal {
	if c.Config.IsSet(key) {
		return decimal.NewFromInt(c.Config.GetInt64(key))
	}
	return decimal.NewFromInt(fallback)
}

func (c *WalletUseCase) Balance(ctx context.Context, memberID uint64) utils.Result {
	var result utils.Result

	member, err := c.MemberRepository.FindByID(ctx, memberID)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "member not found"
		result.Error = errObj
		return result
	}

	ledger, err := c.TransactionRepository.SumCompletedByMember(ctx, memberID)
	if err != nil {
		c.Log.Error("wallet-usecase", err.Error(), "Balance", utils.ConvertString(memberID))
		result.Error = httpError.NewInternalServerError()
		return result
	}

	result.Data = &model.BalanceResponse{
		Balance:       member.CommissionBalance,
		LedgerBalance: ledger,
		Currency:      c.currency(),
	}
	return result
}

// Pay debits the wallet for an order. The balance check and the debit run
// under a row lock so two concurrent payments cannot both pass the check.
func (c *WalletUseCase) Pay(ctx context.Context, request *model.PayRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	min := c.minimum("wallet.payment_minimum", 100)
	if request.Amount.LessThan(min) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = fmt.Sprintf("Minimum payment amount is %s %s.", min.String(), c.currency())
		result.Error = errObj
		return result
	}

	db, err := c.DB.GetDB()
	if err != nil {
		result.Error = httpError.NewInternalServerError()
		return result
	}

	reference := newReference(refPrefixPayment)
	var remaining decimal.Decimal

	txErr := mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		member, err := c.MemberRepository.FindByIDForUpdate(ctx, tx, request.MemberID)
		if err != nil {
			return err
		}
		if member.CommissionBalance.LessThan(request.Amount) {
			errObj := httpError.NewUnprocessableEntity()
			errObj.Message = "Insufficient wallet balance."
			return errObj
		}

		if err := c.MemberRepository.AdjustBalanceTx(ctx, tx, member.ID, request.Amount.Neg()); err != nil {
			return err
		}
		remaining = member.CommissionBalance.Sub(request.Amount)

		now := time.Now()
		return c.TransactionRepository.CreateTx(ctx, tx, &entity.Transaction{
			MemberID:    member.ID,
			Type:        entity.TxnTypePayment,
			Amount:      request.Amount.Neg(),
			Status:      entity.TxnStatusCompleted,
			Reference:   reference,
			Description: sql.NullString{String: fmt.Sprintf("Payment for order %s: %s", request.OrderID, request.Description), Valid: true},
			ProcessedAt: &now,
		})
	})
	if txErr != nil {
		result.Error = c.mapTxError(txErr, "Pay", reference)
		return result
	}

	c.publishTransaction(request.MemberID, reference, entity.TxnTypePayment, request.Amount.Neg(), entity.TxnStatusCompleted)

	result.Data = &model.WalletMutationResponse{
		TransactionID:    reference,
		RemainingBalance: remaining,
	}
	return result
}

func (c *WalletUseCase) AddFunds(ctx context.Context, request *model.AddFundsRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	min := c.minimum("wallet.topup_minimum", 1000)
	if request.Amount.LessThan(min) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = fmt.Sprintf("Minimum top-up amount is %s %s.", min.String(), c.currency())
		result.Error = errObj
		return result
	}

	db, err := c.DB.GetDB()
	if err != nil {
		result.Error = httpError.NewInternalServerError()
		return result
	}

	reference := newReference(refPrefixTopup)
	var remaining decimal.Decimal

	txErr := mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		member, err := c.MemberRepository.FindByIDForUpdate(ctx, tx, request.MemberID)
		if err != nil {
			return err
		}

		if err := c.MemberRepository.AdjustBalanceTx(ctx, tx, member.ID, request.Amount); err != nil {
			return err
		}
		remaining = member.CommissionBalance.Add(request.Amount)

		now := time.Now()
		return c.TransactionRepository.CreateTx(ctx, tx, &entity.Transaction{
			MemberID:      member.ID,
			Type:          entity.TxnTypeTopup,
			Amount:        request.Amount,
			PaymentMethod: sql.NullString{String: request.PaymentMethod, Valid: true},
			Status:        entity.TxnStatusCompleted,
			Reference:     reference,
			Description:   sql.NullString{String: "Wallet top-up", Valid: true},
			ProcessedAt:   &now,
		})
	})
	if txErr != nil {
		result.Error = c.mapTxError(txErr, "AddFunds", reference)
		return result
	}

	c.publishTransaction(request.MemberID, reference, entity.TxnTypeTopup, request.Amount, entity.TxnStatusCompleted)

	result.Data = &model.WalletMutationResponse{
		TransactionID:    reference,
		RemainingBalance: remaining,
	}
	return result
}

// Transfer moves funds between two members. The recipient is resolved and
// validated before any mutation so a bad recipient never costs the sender
// anything. Both ledger rows share the same base reference; the inbound leg
// carries an -IN suffix.
func (c *WalletUseCase) Transfer(ctx context.Context, request *model.TransferRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	min := c.minimum("wallet.transfer_minimum", 100)
	if request.Amount.LessThan(min) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = fmt.Sprintf("Minimum transfer amount is %s %s.", min.String(), c.currency())
		result.Error = errObj
		return result
	}

	recipient, err := c.MemberRepository.FindByPhone(ctx, request.RecipientPhone)
	if err != nil {
		errObj := httpError.NewNotFound()
		errObj.Message = "Recipient not found."
		result.Error = errObj
		return result
	}
	if recipient.ID == request.MemberID {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "You cannot transfer funds to yourself."
		result.Error = errObj
		return result
	}
	if recipient.AccountStatus != entity.StatusActive {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = "Recipient account is not active."
		result.Error = errObj
		return result
	}

	db, err := c.DB.GetDB()
	if err != nil {
		result.Error = httpError.NewInternalServerError()
		return result
	}

	reference := newReference(refPrefixTransfer)
	var remaining decimal.Decimal

	txErr := mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		sender, err := c.MemberRepository.FindByIDForUpdate(ctx, tx, request.MemberID)
		if err != nil {
			return err
		}
		if sender.CommissionBalance.LessThan(request.Amount) {
			errObj := httpError.NewUnprocessableEntity()
			errObj.Message = "Insufficient wallet balance."
			return errObj
		}

		if err := c.MemberRepository.AdjustBalanceTx(ctx, tx, sender.ID, request.Amount.Neg()); err != nil {
			return err
		}
		remaining = sender.CommissionBalance.Sub(request.Amount)

		description := request.Description
		if description == "" {
			description = "Wallet transfer"
		}
		now := time.Now()
		if err := c.TransactionRepository.CreateTx(ctx, tx, &entity.Transaction{
			MemberID:    sender.ID,
			Type:        entity.TxnTypeTransferOut,
			Amount:      request.Amount.Neg(),
			Status:      entity.TxnStatusCompleted,
			Reference:   reference,
			Description: sql.NullString{String: fmt.Sprintf("%s to %s", description, recipient.FullName), Valid: true},
			ProcessedAt: &now,
		}); err != nil {
			return err
		}

		if err := c.MemberRepository.AdjustBalanceTx(ctx, tx, recipient.ID, request.Amount); err != nil {
			return err
		}
		return c.TransactionRepository.CreateTx(ctx, tx, &entity.Transaction{
			MemberID:    recipient.ID,
			Type:        entity.TxnTypeTransferIn,
			Amount:      request.Amount,
			Status:      entity.TxnStatusCompleted,
			Reference:   reference + "-IN",
			Description: sql.NullString{String: fmt.Sprintf("%s from %s", description, sender.FullName), Valid: true},
			ProcessedAt: &now,
		})
	})
	if txErr != nil {
		result.Error = c.mapTxError(txErr, "Transfer", reference)
		return result
	}

	c.publishTransaction(request.MemberID, reference, entity.TxnTypeTransferOut, request.Amount.Neg(), entity.TxnStatusCompleted)
	c.publishTransaction(recipient.ID, reference+"-IN", entity.TxnTypeTransferIn, request.Amount, entity.TxnStatusCompleted)

	result.Data = &model.WalletMutationResponse{
		TransactionID:    reference,
		RemainingBalance: remaining,
	}
	return result
}

// Withdraw reserves the amount immediately: the balance is debited and a
// pending ledger row written in one transaction, then the disbursement runs
// asynchronously. A failed disbursement credits the amount back.
func (c *WalletUseCase) Withdraw(ctx context.Context, request *model.WithdrawRequest) utils.Result {
	var result utils.Result

	if err := c.Validate.Struct(request); err != nil {
		errObj := httpError.NewBadRequest()
		errObj.Message = fmt.Sprintf("validation error: %v", err.Error())
		result.Error = errObj
		return result
	}

	min := c.minimum("wallet.withdrawal_minimum", 1000)
	if request.Amount.LessThan(min) {
		errObj := httpError.NewUnprocessableEntity()
		errObj.Message = fmt.Sprintf("Minimum withdrawal amount is %s %s.", min.String(), c.currency())
		result.Error = errObj
		return result
	}

	db, err := c.DB.GetDB()
	if err != nil {
		result.Error = httpError.NewInternalServerError()
		return result
	}

	reference := newReference(refPrefixWithdrawal)
	var remaining decimal.Decimal

	txErr := mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		member, err := c.MemberRepository.FindByIDForUpdate(ctx, tx, request.MemberID)
		if err != nil {
			return err
		}
		if member.CommissionBalance.LessThan(request.Amount) {
			errObj := httpError.NewUnprocessableEntity()
			errObj.Message = "Insufficient wallet balance."
			return errObj
		}

		if err := c.MemberRepository.AdjustBalanceTx(ctx, tx, member.ID, request.Amount.Neg()); err != nil {
			return err
		}
		remaining = member.CommissionBalance.Sub(request.Amount)

		return c.TransactionRepository.CreateTx(ctx, tx, &entity.Transaction{
			MemberID:      member.ID,
			Type:          entity.TxnTypeWithdrawal,
			Amount:        request.Amount.Neg(),
			PaymentMethod: sql.NullString{String: request.PaymentMethod, Valid: true},
			Status:        entity.TxnStatusPending,
			Reference:     reference,
			Description:   sql.NullString{String: fmt.Sprintf("Withdrawal to %s", request.AccountNumber), Valid: true},
		})
	})
	if txErr != nil {
		result.Error = c.mapTxError(txErr, "Withdraw", reference)
		return result
	}

	if c.AsynqClient != nil {
		payload, _ := json.Marshal(WithdrawalTaskPayload{Reference: reference})
		task := asynq.NewTask(TaskProcessWithdrawal, payload)
		if _, err := c.AsynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(5), asynq.Timeout(2*time.Minute)); err != nil {
			c.Log.Error("wallet-usecase", fmt.Sprintf("failed to enqueue withdrawal: %v", err), "Withdraw", reference)
		}
	}

	c.publishTransaction(request.MemberID, reference, entity.TxnTypeWithdrawal, request.Amount.Neg(), entity.TxnStatusPending)

	result.Data = &model.WalletMutationResponse{
		TransactionID:    reference,
		RemainingBalance: remaining,
	}
	return result
}

func (c *WalletUseCase) Transactions(ctx context.Context, memberID uint64, limit int) utils.Result {
	var result utils.Result

	txns, err := c.TransactionRepository.ListByMember(ctx, memberID, limit)
	if err != nil {
		c.Log.Error("wallet-usecase", err.Error(), "Transactions", utils.ConvertString(memberID))
		result.Error = httpError.NewInternalServerError()
		return result
	}

	responses := make([]model.TransactionResponse, 0, len(txns))
	for i := range txns {
		responses = append(responses, converter.TransactionToResponse(&txns[i]))
	}
	result.Data = responses
	return result
}

// CreditCommission is called from the order-completed consumer; it credits
// the upline and writes a completed commission entry.
func (c *WalletUseCase) CreditCommission(ctx context.Context, memberID uint64, orderID string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("commission amount must be positive, got %s", amount.String())
	}

	db, err := c.DB.GetDB()
	if err != nil {
		return err
	}

	reference := newReference(refPrefixCommission)
	err = mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		member, err := c.MemberRepository.FindByIDForUpdate(ctx, tx, memberID)
		if err != nil {
			return err
		}

		if err := c.MemberRepository.AdjustBalanceTx(ctx, tx, member.ID, amount); err != nil {
			return err
		}

		now := time.Now()
		return c.TransactionRepository.CreateTx(ctx, tx, &entity.Transaction{
			MemberID:    member.ID,
			Type:        entity.TxnTypeCommission,
			Amount:      amount,
			Status:      entity.TxnStatusCompleted,
			Reference:   reference,
			Description: sql.NullString{String: fmt.Sprintf("Commission for order %s", orderID), Valid: true},
			ProcessedAt: &now,
		})
	})
	if err != nil {
		return err
	}

	c.publishTransaction(memberID, reference, entity.TxnTypeCommission, amount, entity.TxnStatusCompleted)
	c.Log.Info("wallet-usecase", "commission credited", "CreditCommission", reference)
	return nil
}

// ProcessWithdrawal is the asynq handler for TaskProcessWithdrawal. It is
// idempotent: a reference already out of pending is skipped.
func (c *WalletUseCase) ProcessWithdrawal(ctx context.Context, task *asynq.Task) error {
	var payload WithdrawalTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid withdrawal payload: %w", err)
	}

	txn, err := c.TransactionRepository.FindByReference(ctx, payload.Reference)
	if err != nil {
		return fmt.Errorf("withdrawal %s not found: %w", payload.Reference, err)
	}
	if txn.Status != entity.TxnStatusPending {
		c.Log.Warn("wallet-usecase", "withdrawal already processed", "ProcessWithdrawal", payload.Reference)
		return nil
	}

	method := txn.PaymentMethod.String
	account := ""
	if txn.Description.Valid {
		account = strings.TrimPrefix(txn.Description.String, "Withdrawal to ")
	}

	disburseErr := c.Payout.Disburse(ctx, txn.Reference, txn.Amount.Abs(), method, account)

	db, err := c.DB.GetDB()
	if err != nil {
		return err
	}

	err = mysql.WithTransaction(ctx, db, func(tx *sqlx.Tx) error {
		locked, err := c.TransactionRepository.FindByReferenceForUpdate(ctx, tx, payload.Reference)
		if err != nil {
			return err
		}
		if locked.Status != entity.TxnStatusPending {
			return nil
		}

		if disburseErr != nil {
			// compensate the reservation made at request time
			if err := c.MemberRepository.AdjustBalanceTx(ctx, tx, locked.MemberID, locked.Amount.Abs()); err != nil {
				return err
			}
			return c.TransactionRepository.MarkStatusTx(ctx, tx, payload.Reference, entity.TxnStatusFailed)
		}
		return c.TransactionRepository.MarkStatusTx(ctx, tx, payload.Reference, entity.TxnStatusCompleted)
	})
	if err != nil {
		return err
	}

	status := entity.TxnStatusCompleted
	if disburseErr != nil {
		status = entity.TxnStatusFailed
		c.Log.Error("wallet-usecase", fmt.Sprintf("disbursement failed: %v", disburseErr), "ProcessWithdrawal", payload.Reference)
	} else {
		c.Log.Info("wallet-usecase", "withdrawal disbursed", "ProcessWithdrawal", payload.Reference)
	}
	c.publishTransaction(txn.MemberID, txn.Reference, entity.TxnTypeWithdrawal, txn.Amount, status)
	return nil
}

func (c *WalletUseCase) publishTransaction(memberID uint64, reference, txnType string, amount decimal.Decimal, status string) {
	if c.MemberProducer == nil {
		return
	}
	event := &model.WalletTransactionEvent{
		EventID:    uuid.NewString(),
		MemberID:   memberID,
		Reference:  reference,
		Type:       txnType,
		Amount:     amount,
		Status:     status,
		RecordedAt: time.Now(),
	}
	if err := c.MemberProducer.SendTransaction(event); err != nil {
		c.Log.Error("wallet-usecase", fmt.Sprintf("failed to publish transaction event: %v", err), "publishTransaction", reference)
	}
}

func (c *WalletUseCase) mapTxError(err error, scope, reference string) *httpError.CommonError {
	var commonErr *httpError.CommonError
	if errors.As(err, &commonErr) {
		return commonErr
	}
	if errors.Is(err, sql.ErrNoRows) {
		errObj := httpError.NewNotFound()
		errObj.Message = "member not found"
		return errObj
	}
	c.Log.Error("wallet-usecase", err.Error(), scope, reference)
	return httpError.NewInternalServerError()
}
