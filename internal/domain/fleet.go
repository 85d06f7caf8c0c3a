package domain

import "fmt"

// FleetConfig holds the number of trucks, the only capacity constraint for slots.
type FleetConfig struct {
	NumVehicles int
}

func NewFleetConfig(numVehicles int) (FleetConfig, error) {
	if numVehicles < 1 {
		return FleetConfig{}, fmt.Errorf("%w: fleet must have at least one vehicle (got %d)", ErrConfiguration, numVehicles)
	}
	return FleetConfig{NumVehicles: numVehicles}, nil
}

// Valid reports whether the config was built through NewFleetConfig.
func (f FleetConfig) Valid() bool { return f.NumVehicles >= 1 }
