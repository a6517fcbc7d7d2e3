package enum

import "database/sql/driver"

// TableStatus is maintained by table management; billing only reads it
type TableStatus string

const (
	TableStatusAvailable   TableStatus = "available"
	TableStatusOccupied    TableStatus = "occupied"
	TableStatusReserved    TableStatus = "reserved"
	TableStatusMaintenance TableStatus = "maintenance"
)

func (s TableStatus) String() string {
	return string(s)
}

func (s TableStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *TableStatus) Scan(value interface{}) error {
	return scanString(value, func(v string) { *s = TableStatus(v) })
}
