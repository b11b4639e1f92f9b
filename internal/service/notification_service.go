package service

import (
	"encoding/json"
	"fmt"

	"ajopay/internal/models"
	"ajopay/internal/repository"
	"ajopay/internal/ws"
)

// NotificationService persists a notification row and pushes it over the
// realtime feed in one call. Feed delivery is best-effort.
type NotificationService struct {
	repo *repository.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo *repository.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

func (s *NotificationService) Notify(userID uint, notifType, title, body string, data map[string]interface{}) error {
	var dataJSON string
	if data != nil {
		b, _ := json.Marshal(data)
		dataJSON = string(b)
	}
	n := &models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
		Data:   dataJSON,
	}
	if err := s.repo.Create(n); err != nil {
		return err
	}
	if s.hub != nil {
		s.hub.BroadcastToUser(userID, ws.Event{Type: "notification.created", Table: "notifications", Row: n})
	}
	return nil
}

func naira(kobo int64) string {
	return fmt.Sprintf("NGN %.2f", float64(kobo)/100)
}

func (s *NotificationService) NotifyTransferSent(userID uint, amountKobo int64, recipientName, reference string) error {
	return s.Notify(userID, "TRANSFER_SENT", "Transfer sent",
		"You sent "+naira(amountKobo)+" to "+recipientName,
		map[string]interface{}{"amount_kobo": amountKobo, "reference": reference})
}

func (s *NotificationService) NotifyTransferReceived(userID uint, amountKobo int64, senderName, reference string) error {
	return s.Notify(userID, "TRANSFER_RECEIVED", "Money received",
		senderName+" sent you "+naira(amountKobo),
		map[string]interface{}{"amount_kobo": amountKobo, "reference": reference})
}

func (s *NotificationService) NotifyTopup(userID uint, amountKobo int64, reference string) error {
	return s.Notify(userID, "WALLET_TOPUP", "Wallet topped up",
		"Your payment of "+naira(amountKobo)+" was received.",
		map[string]interface{}{"amount_kobo": amountKobo, "reference": reference})
}

func (s *NotificationService) NotifyCashRecorded(userID uint, amountKobo int64, agentName string) error {
	return s.Notify(userID, "CASH_CONTRIBUTION", "Contribution recorded",
		agentName+" recorded your cash contribution of "+naira(amountKobo),
		map[string]interface{}{"amount_kobo": amountKobo})
}

func (s *NotificationService) NotifyCommissionPaid(agentID uint, amountKobo int64) error {
	return s.Notify(agentID, "COMMISSION_PAID", "Commission paid out",
		"Your accrued commission of "+naira(amountKobo)+" was credited to your wallet.",
		map[string]interface{}{"amount_kobo": amountKobo})
}

func (s *NotificationService) NotifyWithdrawal(userID uint, amountKobo int64, status, reference string) error {
	return s.Notify(userID, "WITHDRAWAL_"+status, "Withdrawal "+status,
		"Your withdrawal of "+naira(amountKobo)+" is "+status+".",
		map[string]interface{}{"amount_kobo": amountKobo, "reference": reference})
}

func (s *NotificationService) NotifyReferralBonus(userID uint, amountKobo int64) error {
	return s.Notify(userID, "REFERRAL_BONUS", "Referral bonus",
		"You earned a referral bonus of "+naira(amountKobo),
		map[string]interface{}{"amount_kobo": amountKobo})
}

func (s *NotificationService) NotifyBalanceMismatch(adminID, walletUserID uint, balanceKobo, ledgerKobo int64) error {
	return s.Notify(adminID, "BALANCE_MISMATCH", "Wallet reconciliation mismatch",
		fmt.Sprintf("Wallet of user %d holds %s but ledger sums to %s", walletUserID, naira(balanceKobo), naira(ledgerKobo)),
		map[string]interface{}{"user_id": walletUserID, "balance_kobo": balanceKobo, "ledger_kobo": ledgerKobo})
}
