package repository

import (
	"errors"

	"github.com/lib/pq"
)

// 一意制約違反を呼び出し側で区別するためのセンチネルエラー。
var (
	// ErrEmailTaken はaccounts.emailの一意制約違反を表す。
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken はprofiles.usernameの一意制約違反を表す。
	ErrUsernameTaken = errors.New("username already taken")
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = "23505"

// mapUniqueViolation はpqの一意制約違反を制約名に応じたセンチネルエラーに変換する。
// 対象外のエラーはそのまま返す。
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != uniqueViolation {
		return err
	}

	switch pqErr.Constraint {
	case "accounts_email_key":
		return ErrEmailTaken
	case "profiles_username_key":
		return ErrUsernameTaken
	}
	return err
}
