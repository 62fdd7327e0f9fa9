package repository

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// uniqueViolationCode はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolationCode = "23505"

// uniqueViolation はerrが一意制約違反かを判定する。
// constraintが非空の場合は違反した制約名まで一致を要求する。
// バリデーション層の事前チェックをすり抜けた同時作成レースを
// ユーザー向けエラーに変換するための最後の砦として使用する。
func uniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	if pqErr.Code != uniqueViolationCode {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// escapeLike はLIKEパターンのメタ文字をエスケープする。
// ユーザー入力を前方一致検索に使うときのリテラル化に使用する。
func escapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}
