package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// TransactionType identifies which transaction-entry surface a draft belongs to
type TransactionType int

const (
	TransactionTypePurchase       TransactionType = 0
	TransactionTypePurchaseReturn TransactionType = 1
	TransactionTypeSale           TransactionType = 2
	TransactionTypeSaleReturn     TransactionType = 3
)

var transactionTypeNames = [...]string{"purchase", "purchase_return", "sale", "sale_return"}

func (t TransactionType) String() string {
	if !t.IsValid() {
		return fmt.Sprintf("TransactionType(%d)", int(t))
	}
	return transactionTypeNames[t]
}

// IsValid reports whether t is one of the known transaction types
func (t TransactionType) IsValid() bool {
	return t >= TransactionTypePurchase && t <= TransactionTypeSaleReturn
}

// IsReturn reports whether t reverses an earlier purchase or sale
func (t TransactionType) IsReturn() bool {
	return t == TransactionTypePurchaseReturn || t == TransactionTypeSaleReturn
}

// IsBatchBased reports whether line items of this type consume existing
// inventory batches and therefore need allocations. Only purchases create
// new batches.
func (t TransactionType) IsBatchBased() bool {
	return t != TransactionTypePurchase
}

// MovesMoneyOut reports whether a paid amount leaves one of our accounts
func (t TransactionType) MovesMoneyOut() bool {
	return t == TransactionTypePurchase || t == TransactionTypeSaleReturn
}

// ParseTransactionType parses the wire name of a transaction type
func ParseTransactionType(s string) (TransactionType, error) {
	for i, name := range transactionTypeNames {
		if name == s {
			return TransactionType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown transaction type %q", s)
}

func (t TransactionType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TransactionType) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !TransactionType(i).IsValid() {
			return fmt.Errorf("unknown transaction type %d", i)
		}
		*t = TransactionType(i)
		return nil
	}
	parsed, err := ParseTransactionType(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TransactionType) Value() (driver.Value, error) {
	return int64(t), nil
}

func (t *TransactionType) Scan(value interface{}) error {
	if value == nil {
		*t = TransactionTypePurchase
		return nil
	}
	switch v := value.(type) {
	case int64:
		*t = TransactionType(v)
	case int:
		*t = TransactionType(v)
	}
	return nil
}
