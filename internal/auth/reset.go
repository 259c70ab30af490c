package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/agrogas/agrogas-backend/pkg/db"
	pkgerrors "github.com/agrogas/agrogas-backend/pkg/errors"
	"github.com/agrogas/agrogas-backend/pkg/security"
)

const resetCodeDigits = 6

func (s *service) RequestReset(ctx context.Context, req ResetRequest) (*ResetRequestResponse, error) {
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone required").
			WithDetails(map[string]any{"field": "phone", "rule": "required"})
	}
	if s.resets == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "password reset unavailable")
	}

	if _, err := s.users.FindByPhone(ctx, phone); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	code, err := security.GenerateNumericCode(resetCodeDigits)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate reset code")
	}
	ttl := s.passwordCfg.ResetCodeTTL
	if err := s.resets.StoreResetCode(ctx, phone, code, ttl); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store reset code")
	}

	resp := &ResetRequestResponse{
		Message: fmt.Sprintf("Reset code valid for %d minutes.", int(ttl.Minutes())),
	}
	if s.echoReset {
		resp.ResetCode = &code
	}
	return resp, nil
}

// ConfirmReset swaps the password once the code matches. Expired codes are
// gone from the store and read the same as never requested.
func (s *service) ConfirmReset(ctx context.Context, req ResetConfirmRequest) error {
	phone := strings.TrimSpace(req.Phone)
	code := strings.TrimSpace(req.Code)
	if phone == "" || code == "" || req.NewPassword == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone, code, and new_password required")
	}
	if s.resets == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "password reset unavailable")
	}

	user, err := s.users.FindByPhone(ctx, phone)
	if err != nil {
		if db.IsNotFound(err) {
			return pkgerrors.New(pkgerrors.CodeValidation, "no reset requested for this user")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	stored, found, err := s.resets.ResetCode(ctx, phone)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read reset code")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeValidation, "no reset requested for this user")
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid reset code")
	}

	hash, err := security.HashPassword(req.NewPassword, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}
	if err := s.resets.DeleteResetCode(ctx, phone); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume reset code")
	}
	return nil
}
