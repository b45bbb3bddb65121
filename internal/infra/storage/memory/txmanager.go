package memory

import "context"

// TxManager менеджер транзакций для хранилища в памяти
// Атомарность обеспечивает сам Store, поэтому функция выполняется как есть
type TxManager struct{}

func (TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
