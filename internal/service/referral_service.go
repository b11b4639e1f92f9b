package service

import (
	"fmt"
	"log"
	"strconv"

	"ajopay/internal/domain"
	"ajopay/internal/models"
	"ajopay/internal/repository"
)

// ReferralService handles referral code processing and bonus credits.
type ReferralService struct {
	referralRepo *repository.ReferralRepository
	walletRepo   *repository.WalletRepository
	txRepo       *repository.TransactionRepository
	settingRepo  *repository.SettingRepository
	notifSvc     *NotificationService
	referrerKobo int64
	referredKobo int64
}

func NewReferralService(
	referralRepo *repository.ReferralRepository,
	walletRepo *repository.WalletRepository,
	txRepo *repository.TransactionRepository,
	settingRepo *repository.SettingRepository,
	notifSvc *NotificationService,
	referrerKobo, referredKobo int64,
) *ReferralService {
	return &ReferralService{
		referralRepo: referralRepo,
		walletRepo:   walletRepo,
		txRepo:       txRepo,
		settingRepo:  settingRepo,
		notifSvc:     notifSvc,
		referrerKobo: referrerKobo,
		referredKobo: referredKobo,
	}
}

// ProcessReferralCode creates a referral record for a new signup and
// credits the signup bonuses. Failures are logged, never fatal to
// registration.
func (s *ReferralService) ProcessReferralCode(referralCode string, newUser *models.User) {
	if referralCode == "" || s.referralRepo == nil {
		return
	}
	rc, err := s.referralRepo.GetByCode(referralCode)
	if err != nil || rc == nil || rc.UserID == newUser.ID {
		return
	}
	if err := s.referralRepo.CreateReferral(&models.Referral{
		ReferrerID:     rc.UserID,
		ReferredUserID: newUser.ID,
	}); err != nil {
		log.Printf("[referral] failed to create referral: %v", err)
		return
	}

	s.creditBonus(rc.UserID, s.bonus(domain.SettingReferrerBonusKobo, s.referrerKobo), newUser.ID)
	s.creditBonus(newUser.ID, s.bonus(domain.SettingReferredBonusKobo, s.referredKobo), rc.UserID)
}

func (s *ReferralService) bonus(settingKey string, fallback int64) int64 {
	if s.settingRepo != nil {
		if v, err := s.settingRepo.Get(settingKey); err == nil {
			if n, err := strconv.ParseInt(v, 10, 64); err == nil && n >= 0 {
				return n
			}
		}
	}
	return fallback
}

func (s *ReferralService) creditBonus(userID uint, amountKobo int64, counterpartyID uint) {
	if amountKobo <= 0 {
		return
	}
	if _, err := s.walletRepo.GetOrCreate(userID); err != nil {
		log.Printf("[referral] wallet for %d: %v", userID, err)
		return
	}
	if err := s.walletRepo.Credit(userID, amountKobo); err != nil {
		log.Printf("[referral] failed to credit %d: %v", userID, err)
		return
	}
	_ = s.txRepo.Create(&models.Transaction{
		UserID:     userID,
		Type:       domain.TxTypeReferral,
		AmountKobo: amountKobo,
		Reference:  fmt.Sprintf("REF-%d-%d", userID, counterpartyID),
		Status:     domain.TxStatusCompleted,
	})
	_ = s.notifSvc.NotifyReferralBonus(userID, amountKobo)
}
