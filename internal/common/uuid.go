package common

import (
	"database/sql/driver"
	"fmt"

	"github.com/google/uuid"
)

// UUID is kept as a string so it prints, compares and scans without ceremony.
type UUID string

func NewUUID() UUID {
	return UUID(uuid.NewString())
}

func ParseUUID(value string) (UUID, error) {
	parsed, err := uuid.Parse(value)
	if err != nil {
		return "", err
	}
	return UUID(parsed.String()), nil
}

func (u UUID) String() string {
	return string(u)
}

func (u UUID) IsZero() bool {
	return u == ""
}

func (u UUID) Value() (driver.Value, error) {
	if u == "" {
		return nil, nil
	}
	return string(u), nil
}

func (u *UUID) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*u = ""
	case string:
		*u = UUID(v)
	case []byte:
		*u = UUID(string(v))
	case [16]byte:
		*u = UUID(uuid.UUID(v).String())
	default:
		return fmt.Errorf("unsupported uuid source %T", src)
	}
	return nil
}
