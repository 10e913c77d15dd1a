package domain

import "fmt"

// FixtureType is a module mounting configuration from the King thermal model.
// The thermal collaborator keys its cell/module temperature outputs by this enum.
type FixtureType int

const (
	OpenRackGlass FixtureType = iota
	RoofMountGlass
	OpenRackPolymer
	InsulatedBackPolymer
	OpenRackThinfilmSteel
	Concentrator22x

	FixtureCount = 6
)

var fixtureNames = [FixtureCount]string{
	"open_rack_glass",
	"roof_mount_glass",
	"open_rack_polymer",
	"insulated_back_polymer",
	"open_rack_thinfilm_steel",
	"concentrator_22x",
}

// Fixtures lists every fixture type in catalog column order.
func Fixtures() []FixtureType {
	out := make([]FixtureType, FixtureCount)
	for i := range out {
		out[i] = FixtureType(i)
	}
	return out
}

func (f FixtureType) String() string {
	if !f.Valid() {
		return fmt.Sprintf("fixture(%d)", int(f))
	}
	return fixtureNames[f]
}

// Valid reports whether f is one of the six known fixtures.
func (f FixtureType) Valid() bool {
	return f >= 0 && int(f) < FixtureCount
}

// ParseFixtureType resolves a fixture by its snake_case name.
func ParseFixtureType(name string) (FixtureType, error) {
	for i, n := range fixtureNames {
		if n == name {
			return FixtureType(i), nil
		}
	}
	return 0, &InvalidParameterError{Param: "fixture", Reason: fmt.Sprintf("unknown fixture %q", name)}
}

func (f FixtureType) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("marshal fixture: invalid value %d", int(f))
	}
	return []byte(f.String()), nil
}

func (f *FixtureType) UnmarshalText(b []byte) error {
	v, err := ParseFixtureType(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}
