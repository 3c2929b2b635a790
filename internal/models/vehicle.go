package models

// Group is a fleet group the API account has access to.
type Group struct {
	Code string `json:"Code"`
	Name string `json:"Name"`
}

// Position is the last reported GPS fix. The upstream sends the
// coordinates as numeric strings.
type Position struct {
	Latitude  string `json:"Latitude"`
	Longitude string `json:"Longitude"`
}

// Vehicle represents a fleet vehicle as returned by the GPS API.
type Vehicle struct {
	Code                  string   `json:"Code"`
	Name                  string   `json:"Name"`
	SPZ                   string   `json:"SPZ"` // license plate
	BranchName            string   `json:"BranchName"`
	Speed                 Number   `json:"Speed"` // km/h
	IsActive              bool     `json:"IsActive"`
	Odometer              Number   `json:"Odometer"`
	BatteryPercentage     Number   `json:"BatteryPercentage,omitempty"`
	LastPosition          Position `json:"LastPosition"`
	LastPositionTimestamp string   `json:"LastPositionTimestamp"`
}
