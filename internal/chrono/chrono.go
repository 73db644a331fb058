package chrono

import "time"

// StandardImpl is the wall clock pinned to a single location.
type StandardImpl struct {
	location *time.Location
}

// NewStandardImpl loads the IANA zone `name`, an empty name or "Local" uses
// the host's zone.
func NewStandardImpl(name string) (StandardImpl, error) {
	location, err := LoadLocation(name)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func LoadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}
