package domain

const (
	RoleCustomer = "CUSTOMER"
	RoleAgent    = "AGENT"
	RoleAdmin    = "ADMIN"
)

const (
	TxTypeSend       = "SEND"
	TxTypeReceive    = "RECEIVE"
	TxTypeDeposit    = "DEPOSIT"
	TxTypeWithdrawal = "WITHDRAWAL"
	TxTypeCommission = "COMMISSION"
	TxTypeReferral   = "REFERRAL_BONUS"
)

const (
	TxStatusPending   = "PENDING"
	TxStatusCompleted = "COMPLETED"
	TxStatusFailed    = "FAILED"
)

const (
	WalletTypeNGN    = "ngn"
	WalletTypeCrypto = "crypto"
)

const (
	ContributionMethodCash     = "CASH"
	ContributionMethodCard     = "CARD"
	ContributionMethodTransfer = "TRANSFER"
	ContributionMethodWallet   = "WALLET"
)

const (
	ContributionStatusPending   = "PENDING"
	ContributionStatusConfirmed = "CONFIRMED"
	ContributionStatusRejected  = "REJECTED"
)

const (
	CommissionStatusPending = "PENDING"
	CommissionStatusPaid    = "PAID"
)

const (
	WithdrawalStatusPending   = "PENDING"
	WithdrawalStatusCompleted = "COMPLETED"
	WithdrawalStatusFailed    = "FAILED"
)

const (
	SubscriptionStatusTrial    = "TRIAL"
	SubscriptionStatusActive   = "ACTIVE"
	SubscriptionStatusExpired  = "EXPIRED"
	SubscriptionStatusCanceled = "CANCELED"
)

// System setting keys (overrides for config defaults).
const (
	SettingAgentCommissionPct = "agent_commission_percent"
	SettingPlanPriceKobo      = "plan_price_kobo"
	SettingReferrerBonusKobo  = "referral_bonus_referrer_kobo"
	SettingReferredBonusKobo  = "referral_bonus_referred_kobo"
)
