package chrono

import "time"

// TimeAPI is the interface that anything depending on the system clock should use.
type TimeAPI interface {
	// Now returns the current time in the location of the implementation.
	Now() time.Time
	Location() *time.Location
}

// StandardImpl is the standard implementation of TimeAPI using the standard library.
type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl is the constructor of StandardImpl, `location` is an IANA
// time zone name, the portal is in Taiwan so "Asia/Taipei" is the usual value.
func NewStandardImpl(location string) (StandardImpl, error) {
	loc, err := time.LoadLocation(location)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: loc}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always returns the same time, it is meant for tests.
type FixedImpl struct {
	Time time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.Time
}

func (f FixedImpl) Location() *time.Location {
	return f.Time.Location()
}
