package connectedcar

import "time"

// Link is a HAL link.
type Link struct {
	Href      string `json:"href" yaml:"href"`
	Templated bool   `json:"templated,omitempty" yaml:"templated,omitempty"`
}

// VehiclesPage is one page of the user's vehicles.
type VehiclesPage struct {
	Links       map[string]Link `json:"_links"`
	Total       int             `json:"total"`
	Embedded    VehiclesList    `json:"_embedded"`
	CurrentPage int             `json:"currentPage"`
	TotalPage   int             `json:"totalPage"`
}

type VehiclesList struct {
	Vehicles []Vehicle `json:"vehicles" yaml:"vehicles"`
}

// Find returns the vehicle with vin.
func (l VehiclesList) Find(vin string) (Vehicle, bool) {
	for _, v := range l.Vehicles {
		if v.VIN == vin {
			return v, true
		}
	}
	return Vehicle{}, false
}

type Vehicle struct {
	ID       string          `json:"id" yaml:"id"`
	VIN      string          `json:"vin" yaml:"vin"`
	Brand    string          `json:"brand" yaml:"brand"`
	Pictures []string        `json:"pictures,omitempty" yaml:"pictures,omitempty"`
	Links    map[string]Link `json:"_links,omitempty" yaml:"links,omitempty"`
}

// VehicleStatus is the last state reported by a vehicle. Only the commonly
// used parts are decoded.
type VehicleStatus struct {
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
	LastPosition *Position    `json:"lastPosition,omitempty"`
	Ignition     *Ignition    `json:"ignition,omitempty"`
	Battery      *Battery     `json:"battery,omitempty"`
	Privacy      *Privacy     `json:"privacy,omitempty"`
	Environment  *Environment `json:"environment,omitempty"`
	Odometer     *Odometer    `json:"odometer,omitempty"`
	Kinetic      *Kinetic     `json:"kinetic,omitempty"`
	Energy       []Energy     `json:"energy,omitempty"`
}

type Position struct {
	Type     string `json:"type"`
	Geometry struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	} `json:"geometry"`
	Properties struct {
		Type      string    `json:"type"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"properties"`
}

type Ignition struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
}

type Battery struct {
	Voltage   float64   `json:"voltage"`
	CreatedAt time.Time `json:"createdAt"`
}

type Privacy struct {
	State     string    `json:"state"`
	CreatedAt time.Time `json:"createdAt"`
}

type Environment struct {
	Luminosity struct {
		Day       bool      `json:"day"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"luminosity"`
	Air struct {
		Temp      float64   `json:"temp"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"air"`
}

type Odometer struct {
	Mileage   float64   `json:"mileage"`
	CreatedAt time.Time `json:"createdAt"`
}

type Kinetic struct {
	Moving    bool      `json:"moving"`
	CreatedAt time.Time `json:"createdAt"`
}

type Energy struct {
	CreatedAt time.Time `json:"createdAt"`
	Type      string    `json:"type"`
	SubType   string    `json:"subType,omitempty"`
	Level     int       `json:"level"`
	Autonomy  *int      `json:"autonomy,omitempty"`
	Charging  *Charging `json:"charging,omitempty"`
}

type Charging struct {
	Plugged         bool   `json:"plugged"`
	Status          string `json:"status"`
	RemainingTime   string `json:"remainingTime,omitempty"`
	ChargingRate    int    `json:"chargingRate"`
	ChargingMode    string `json:"chargingMode,omitempty"`
	NextDelayedTime string `json:"nextDelayedTime,omitempty"`
}
