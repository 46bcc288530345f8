package ports

import "fmt"

// TransientError — БД или шлюз недоступны; провайдер платежей
// ретраит вебхук по 5xx, поэтому такие ошибки нельзя глотать
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}
