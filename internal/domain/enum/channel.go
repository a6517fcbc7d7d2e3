package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Channel is the intake channel of an order
type Channel string

const (
	ChannelTable    Channel = "table"
	ChannelPickup   Channel = "pickup"
	ChannelDelivery Channel = "delivery"
)

func (c Channel) String() string {
	return string(c)
}

// IsValid reports whether c is a known channel
func (c Channel) IsValid() bool {
	switch c {
	case ChannelTable, ChannelPickup, ChannelDelivery:
		return true
	}
	return false
}

func (c Channel) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(c))
}

func (c *Channel) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*c = Channel(str)
	return nil
}

func (c Channel) Value() (driver.Value, error) {
	return string(c), nil
}

func (c *Channel) Scan(value interface{}) error {
	return scanString(value, func(s string) { *c = Channel(s) })
}

// PaymentMethod is how an order or bill is settled
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "cash"
	PaymentMethodOnline PaymentMethod = "online"
	PaymentMethodCard   PaymentMethod = "card"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// IsValid reports whether m is a known payment method
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodOnline, PaymentMethodCard:
		return true
	}
	return false
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return string(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	return scanString(value, func(s string) { *m = PaymentMethod(s) })
}

// PaymentStatus tracks settlement of a pickup/delivery order
type PaymentStatus string

const (
	PaymentStatusNone    PaymentStatus = ""
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *PaymentStatus) Scan(value interface{}) error {
	return scanString(value, func(v string) { *s = PaymentStatus(v) })
}

func scanString(value interface{}, set func(string)) error {
	switch v := value.(type) {
	case nil:
		set("")
	case string:
		set(v)
	case []byte:
		set(string(v))
	default:
		return fmt.Errorf("cannot scan %T into string enum", value)
	}
	return nil
}
