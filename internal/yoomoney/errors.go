package yoomoney

import "errors"

// ErrUnknownAccount — label ссылается на незарегистрированный аккаунт.
// Платёж не создаёт аккаунт.
var ErrUnknownAccount = errors.New("account is not registered")

// VerificationError — подпись, свежесть или label не прошли проверку.
// Такие уведомления не ретраятся: отвечаем 400.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return "verification failed: " + e.Reason
}

func verificationFailed(reason string) error {
	return &VerificationError{Reason: reason}
}
