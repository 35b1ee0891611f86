package tool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	storex "github.com/tanpawarit/neobank-assistant/agent/store"
)

// DefaultNotifyTimeout bounds the back-office notification sent after a
// service request is stored.
const DefaultNotifyTimeout = 2 * time.Second

type loanTools struct {
	userID        int64
	store         ServiceRequestStore
	notifier      Notifier
	notifyTimeout time.Duration
}

func (l loanTools) applyForLoan(ctx context.Context, args map[string]any) (string, error) {
	if !hasArg(args, "amount") {
		return missingArgument("amount"), nil
	}
	amountText, _, ok := amountArg(args, "amount")
	if !ok {
		return invalidArgument("amount"), nil
	}
	loanType, ok := stringArg(args, "loan_type")
	if !ok {
		return missingArgument("loan_type"), nil
	}

	req := storex.ServiceRequest{
		UserID:      l.userID,
		ServiceType: "Loan Application - " + loanType,
		Details:     "Amount: " + amountText,
		Status:      storex.StatusUnderReview,
	}
	if err := l.create(ctx, &req); err != nil {
		return "", err
	}

	return fmt.Sprintf("Loan application for %s (%s) submitted successfully. Reference ID: %d", amountText, loanType, req.ID), nil
}

func (l loanTools) requestService(ctx context.Context, args map[string]any) (string, error) {
	serviceType, ok := stringArg(args, "service_type")
	if !ok {
		return missingArgument("service_type"), nil
	}
	details, _ := stringArg(args, "details")

	req := storex.ServiceRequest{
		UserID:      l.userID,
		ServiceType: serviceType,
		Details:     details,
		Status:      storex.StatusRequested,
	}
	if err := l.create(ctx, &req); err != nil {
		return "", err
	}

	return fmt.Sprintf("Service request '%s' collected. Reference ID: %d", serviceType, req.ID), nil
}

func (l loanTools) create(ctx context.Context, req *storex.ServiceRequest) error {
	if l.store == nil {
		return errors.New("service request store is not configured")
	}
	if err := l.store.CreateServiceRequest(ctx, req); err != nil {
		return err
	}

	if l.notifier != nil {
		timeout := l.notifyTimeout
		if timeout <= 0 {
			timeout = DefaultNotifyTimeout
		}
		notifyCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := l.notifier.ServiceRequestCreated(notifyCtx, *req); err != nil {
			log.Ctx(ctx).Warn().
				Err(err).
				Int64("service_request_id", req.ID).
				Msg("tool: service request notification failed")
		}
	}
	return nil
}
