package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus int

const (
	OrderStatusPending   OrderStatus = 0
	OrderStatusPreparing OrderStatus = 1
	OrderStatusReady     OrderStatus = 2
	OrderStatusServed    OrderStatus = 3
	OrderStatusCompleted OrderStatus = 4
	OrderStatusCancelled OrderStatus = 5
	OrderStatusConfirmed OrderStatus = 6
	OrderStatusDelivered OrderStatus = 7
)

var orderStatusNames = [...]string{
	"pending",
	"preparing",
	"ready",
	"served",
	"completed",
	"cancelled",
	"confirmed",
	"delivered",
}

// ActiveTableStatuses are the statuses a table order can be billed from
var ActiveTableStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
}

func (s OrderStatus) String() string {
	if int(s) < 0 || int(s) >= len(orderStatusNames) {
		return "unknown"
	}
	return orderStatusNames[s]
}

// IsTerminal reports whether no further transition can leave s
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled || s == OrderStatusDelivered
}

// IsActive reports whether s is one of the billable table statuses
func (s OrderStatus) IsActive() bool {
	for _, a := range ActiveTableStatuses {
		if s == a {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts a status name into an OrderStatus
func ParseOrderStatus(str string) (OrderStatus, error) {
	str = strings.ToLower(strings.TrimSpace(str))
	for i, name := range orderStatusNames {
		if name == str {
			return OrderStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown order status %q", str)
}

func (s OrderStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		// Try unmarshaling as int
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = OrderStatus(i)
		return nil
	}
	parsed, err := ParseOrderStatus(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	if value == nil {
		*s = OrderStatusPending
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = OrderStatus(v)
	case int32:
		*s = OrderStatus(v)
	case int:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}
