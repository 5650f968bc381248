package lark

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hireflowhq/hireflow/internal/application/port"
	"github.com/hireflowhq/hireflow/internal/domain/entity"
)

// Sender is the minimal messaging surface the notifier needs
type Sender interface {
	SendText(ctx context.Context, openID, text string) error
}

// RoleNotifier implements port.Notifier by resolving every user holding one
// of the target roles and sending each a Lark text message. Every dispatch is
// recorded as a notification row so failures stay auditable.
type RoleNotifier struct {
	sender    Sender
	userRepo  port.UserRepository
	notifRepo port.NotificationRepository
	logger    *zap.Logger
}

// NewRoleNotifier creates a new role notifier
func NewRoleNotifier(sender Sender, userRepo port.UserRepository, notifRepo port.NotificationRepository, logger *zap.Logger) *RoleNotifier {
	return &RoleNotifier{
		sender:    sender,
		userRepo:  userRepo,
		notifRepo: notifRepo,
		logger:    logger,
	}
}

// NotifyRoles sends subject to every user holding one of roles. Users without
// a Lark ID are skipped; the dispatch fails only when no message went out.
func (n *RoleNotifier) NotifyRoles(ctx context.Context, roles []string, subject string, offerID string) error {
	record := &entity.Notification{
		OfferID: offerID,
		Roles:   strings.Join(roles, ","),
		Subject: subject,
		Status:  entity.NotificationPending,
	}
	if err := n.notifRepo.Create(ctx, record); err != nil {
		return fmt.Errorf("record notification: %w", err)
	}

	sent := 0
	var failures []string

	for _, role := range roles {
		users, err := n.userRepo.ListByRole(ctx, role)
		if err != nil {
			failures = append(failures, fmt.Sprintf("list %s users: %v", role, err))
			continue
		}

		for _, user := range users {
			if user.LarkID == "" {
				n.logger.Warn("User has no Lark ID, skipping notification",
					zap.Int64("user_id", user.ID), zap.String("role", role))
				continue
			}
			if err := n.sender.SendText(ctx, user.LarkID, subject); err != nil {
				failures = append(failures, fmt.Sprintf("user %d: %v", user.ID, err))
				continue
			}
			sent++
		}
	}

	if sent == 0 && len(failures) > 0 {
		errMsg := strings.Join(failures, "; ")
		if err := n.notifRepo.MarkFailed(ctx, record.ID, errMsg); err != nil {
			n.logger.Error("Failed to mark notification failed", zap.Error(err))
		}
		return fmt.Errorf("notification dispatch failed: %s", errMsg)
	}

	if err := n.notifRepo.MarkSent(ctx, record.ID); err != nil {
		n.logger.Error("Failed to mark notification sent", zap.Error(err))
	}

	if len(failures) > 0 {
		n.logger.Warn("Partial notification dispatch",
			zap.String("offer_id", offerID), zap.Int("sent", sent), zap.Strings("failures", failures))
	}

	return nil
}

// Verify interface compliance
var _ port.Notifier = (*RoleNotifier)(nil)
