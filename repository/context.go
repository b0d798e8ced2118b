package repository

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// GetTx get Transaction from context
func GetTx(ctx context.Context) Transaction {
	tx, ok := ctx.Value(ctxTxKey).(ctxTxValue)
	if !ok {
		panic("Not found transaction")
	}
	return tx.tx
}

// GetReadonly get Readonly from context. Falls back to the transaction when
// the context carries one.
func GetReadonly(ctx context.Context) Readonly {
	db, ok := ctx.Value(ctxReadonlyKey).(ctxReadonlyValue)
	if ok {
		return db.db
	}
	tx, ok := ctx.Value(ctxTxKey).(ctxTxValue)
	if ok {
		return tx.tx
	}
	panic("Not found readonly repository")
}

type ctxTxKeyType struct {
}

type ctxReadonlyKeyType struct {
}

var ctxTxKey = ctxTxKeyType{}
var ctxReadonlyKey = ctxReadonlyKeyType{}

type ctxTxValue struct {
	tx *sqlx.Tx
}

type ctxReadonlyValue struct {
	db *sqlx.DB
}
