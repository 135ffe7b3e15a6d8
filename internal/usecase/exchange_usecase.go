package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/cambiod/internal/domain"
)

// AccountProvisioner supplies the destination account for an operation,
// creating it when the client does not hold one yet.
type AccountProvisioner interface {
	GetOrCreate(ctx context.Context, tx Transaction, clientID string, currency domain.Currency) (*domain.Account, error)
}

// ReceiptIssuer produces unique comprobante strings.
type ReceiptIssuer interface {
	Generate(ctx context.Context, kind domain.OperationKind) (string, error)
}

// RateSource prices an operation in a single currency.
type RateSource interface {
	TradingRateFor(ctx context.Context, currency domain.Currency) (domain.TradingRate, error)
}

// Retrier retries an operation on transient database failures.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// ExchangeUseCase executes the currency buy/sell ledger operation: debit one
// account, credit the counterpart, apply commission, record one immutable
// transaction. All writes happen in a single database transaction, so a
// failure at any step leaves both balances untouched.
type ExchangeUseCase struct {
	txManager      TransactionManager
	accountRepo    AccountRepository
	txnRepo        TransactionRepository
	rates          RateSource
	provisioner    AccountProvisioner
	receipts       ReceiptIssuer
	idGen          IDGenerator
	retrier        Retrier
	policy         domain.AuthorizationPolicy
	buyCommission  decimal.Decimal
	sellCommission decimal.Decimal
}

// ExchangeConfig holds the commission rates consumed by the use case.
type ExchangeConfig struct {
	BuyCommission  decimal.Decimal
	SellCommission decimal.Decimal
}

// NewExchangeUseCase creates a new ExchangeUseCase. retrier may be nil.
func NewExchangeUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	rates RateSource,
	provisioner AccountProvisioner,
	receipts ReceiptIssuer,
	idGen IDGenerator,
	retrier Retrier,
	cfg ExchangeConfig,
) *ExchangeUseCase {
	return &ExchangeUseCase{
		txManager:      txManager,
		accountRepo:    accountRepo,
		txnRepo:        txnRepo,
		rates:          rates,
		provisioner:    provisioner,
		receipts:       receipts,
		idGen:          idGen,
		retrier:        retrier,
		buyCommission:  cfg.BuyCommission,
		sellCommission: cfg.SellCommission,
	}
}

// ExchangeInput represents input for a buy or sell operation.
type ExchangeInput struct {
	// Actor is the authenticated user performing the operation. Clients may
	// only touch their own accounts; admins and operators may touch any.
	// Nil when authentication is disabled.
	Actor *domain.User
	// SourceAccountID is the account debited: the VES account for a buy, the
	// foreign-currency account for a sell.
	SourceAccountID string
	// Currency is the foreign leg of the operation.
	Currency domain.Currency
	// Amount is denominated in the source currency unless AmountIsDest is set,
	// in which case it is the desired destination-currency amount. The two
	// input modes are mutually exclusive by construction.
	Amount       decimal.Decimal
	AmountIsDest bool
}

// ExchangeResult reports the outcome of a completed operation.
type ExchangeResult struct {
	TransactionID string
	Receipt       string
	Kind          domain.OperationKind
	SourceAccount string
	DestAccount   string
	SourceAmount  decimal.Decimal
	DestAmount    decimal.Decimal
	Commission    decimal.Decimal
	Rate          decimal.Decimal
}

// Buy converts VES into foreign currency at the buy rate. The commission is
// added to the VES debit: total_debit = source_amount + commission.
func (uc *ExchangeUseCase) Buy(ctx context.Context, input ExchangeInput) (*ExchangeResult, error) {
	return uc.execute(ctx, domain.OperationBuy, input)
}

// Sell converts foreign currency into VES at the sell rate. The commission is
// deducted from the VES credit: net_credit = gross_ves - commission.
func (uc *ExchangeUseCase) Sell(ctx context.Context, input ExchangeInput) (*ExchangeResult, error) {
	return uc.execute(ctx, domain.OperationSell, input)
}

func (uc *ExchangeUseCase) execute(ctx context.Context, kind domain.OperationKind, input ExchangeInput) (*ExchangeResult, error) {
	if err := domain.ValidateAmount(input.Amount); err != nil {
		return nil, err
	}

	if !input.Currency.IsForeign() {
		return nil, domain.ErrUnsupportedCurrency
	}

	// The rate provider degrades to defaults instead of failing, so pricing
	// never blocks the operation.
	rate, err := uc.rates.TradingRateFor(ctx, input.Currency)
	if err != nil {
		return nil, err
	}

	if uc.retrier == nil {
		return uc.executeOnce(ctx, kind, input, rate)
	}

	var result *ExchangeResult

	err = uc.retrier.Retry(ctx, func() error {
		var opErr error
		result, opErr = uc.executeOnce(ctx, kind, input, rate)

		return opErr
	})

	return result, err
}

func (uc *ExchangeUseCase) executeOnce(
	ctx context.Context,
	kind domain.OperationKind,
	input ExchangeInput,
	rate domain.TradingRate,
) (*ExchangeResult, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Buys lock VES then foreign, sells the reverse; concurrent opposite
	// operations on one client are serialized by the retrier on deadlock.
	source, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.SourceAccountID)
	if err != nil {
		return nil, err
	}

	if !source.IsActive() {
		return nil, domain.ErrAccountInactive
	}

	if err := uc.authorize(input.Actor, source); err != nil {
		return nil, err
	}

	var plan operationPlan

	switch kind {
	case domain.OperationBuy:
		plan, err = uc.planBuy(source, input, rate)
	default:
		plan, err = uc.planSell(source, input, rate)
	}

	if err != nil {
		return nil, err
	}

	dest, err := uc.provisioner.GetOrCreate(ctx, tx, source.ClientID, plan.destCurrency)
	if err != nil {
		return nil, err
	}

	receipt, err := uc.receipts.Generate(ctx, kind)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:             uc.idGen.Generate(),
		AccountID:      source.ID,
		Kind:           kind,
		SourceCurrency: source.Currency,
		DestCurrency:   plan.destCurrency,
		SourceAmount:   plan.sourceAmount,
		DestAmount:     plan.destCredit,
		Rate:           plan.rate,
		Commission:     plan.commission,
		Receipt:        receipt,
		Status:         domain.TransactionCompleted,
		CreatedAt:      now,
	}

	if err := txn.Validate(); err != nil {
		return nil, err
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, source.ID, source.ApplyDebit(plan.sourceDebit), now); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, dest.ID, dest.ApplyCredit(plan.destCredit), now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &ExchangeResult{
		TransactionID: txn.ID,
		Receipt:       receipt,
		Kind:          kind,
		SourceAccount: source.ID,
		DestAccount:   dest.ID,
		SourceAmount:  plan.sourceAmount,
		DestAmount:    plan.destCredit,
		Commission:    plan.commission,
		Rate:          plan.rate,
	}, nil
}

// operationPlan is the fully priced operation before any write happens.
type operationPlan struct {
	destCurrency domain.Currency
	sourceAmount decimal.Decimal // amount exchanged, in source currency
	sourceDebit  decimal.Decimal // amount actually debited (incl. buy commission)
	destCredit   decimal.Decimal // amount actually credited
	commission   decimal.Decimal
	rate         decimal.Decimal
}

func (uc *ExchangeUseCase) planBuy(source *domain.Account, input ExchangeInput, rate domain.TradingRate) (operationPlan, error) {
	if source.Currency != domain.CurrencyVES {
		return operationPlan{}, domain.ErrCurrencyMismatch
	}

	var sourceAmount, destAmount decimal.Decimal

	if input.AmountIsDest {
		destAmount = domain.RoundMoney(input.Amount)
		sourceAmount = domain.RoundMoney(destAmount.Mul(rate.Buy))
	} else {
		sourceAmount = domain.RoundMoney(input.Amount)
		destAmount = domain.RoundMoney(sourceAmount.Div(rate.Buy))
	}

	if destAmount.LessThanOrEqual(decimal.Zero) {
		return operationPlan{}, domain.ErrInvalidAmount
	}

	commission := domain.RoundMoney(sourceAmount.Mul(uc.buyCommission))
	totalDebit := sourceAmount.Add(commission)

	if err := source.ValidateDebit(totalDebit); err != nil {
		return operationPlan{}, err
	}

	return operationPlan{
		destCurrency: input.Currency,
		sourceAmount: sourceAmount,
		sourceDebit:  totalDebit,
		destCredit:   destAmount,
		commission:   commission,
		rate:         rate.Buy,
	}, nil
}

func (uc *ExchangeUseCase) planSell(source *domain.Account, input ExchangeInput, rate domain.TradingRate) (operationPlan, error) {
	if source.Currency != input.Currency {
		return operationPlan{}, domain.ErrCurrencyMismatch
	}

	var sourceAmount decimal.Decimal

	if input.AmountIsDest {
		sourceAmount = domain.RoundMoney(input.Amount.Div(rate.Sell))
	} else {
		sourceAmount = domain.RoundMoney(input.Amount)
	}

	grossVES := domain.RoundMoney(sourceAmount.Mul(rate.Sell))
	commission := domain.RoundMoney(grossVES.Mul(uc.sellCommission))
	netVES := grossVES.Sub(commission)

	if netVES.LessThanOrEqual(decimal.Zero) {
		return operationPlan{}, domain.ErrInvalidAmount
	}

	// No commission on the foreign side: the source only needs to cover the
	// amount being sold.
	if err := source.ValidateDebit(sourceAmount); err != nil {
		return operationPlan{}, err
	}

	return operationPlan{
		destCurrency: domain.CurrencyVES,
		sourceAmount: sourceAmount,
		sourceDebit:  sourceAmount,
		destCredit:   netVES,
		commission:   commission,
		rate:         rate.Sell,
	}, nil
}

func (uc *ExchangeUseCase) authorize(actor *domain.User, account *domain.Account) error {
	// A nil actor means authentication is disabled upstream.
	if actor == nil {
		return nil
	}

	if !uc.policy.CanOperate(actor, account) {
		return domain.ErrPermissionDenied
	}

	return nil
}
