package models

import "time"

const (
	FlightTypeArrival   = "ARR"
	FlightTypeDeparture = "DER"

	FlightModeDomestic      = "DOM"
	FlightModeInternational = "INT"

	StatusOperating    = "Operating"
	StatusNotOperating = "Not operating"
	StatusCancelled    = "Cancelled"
)

// ArrivalRow is one row of the arrivals table. Timestamps are UTC instants.
type ArrivalRow struct {
	Flight            string     `db:"flight"`
	OperationalStatus string     `db:"operational_status"`
	STOA              *time.Time `db:"stoa"`
	FlightType        string     `db:"flight_type"`
	FlightMode        string     `db:"flight_mode"`
	NumberOfPassenger int        `db:"number_of_passenger"`
	ETOA              *time.Time `db:"etoa"`
	ArrivalBeltNo     *string    `db:"arrival_belt_no"`
	PSTA              *string    `db:"psta"` // raw stand, may hold "-" or "None"
	Airline           *string    `db:"airline"`
	Origin            *string    `db:"origin"`
}

// DepartureRow is one row of the departures table.
type DepartureRow struct {
	Flight            string     `db:"flight"`
	OperationalStatus string     `db:"operational_status"`
	STOD              *time.Time `db:"stod"`
	FlightType        string     `db:"flight_type"`
	FlightMode        string     `db:"flight_mode"`
	NumberOfPassenger int        `db:"number_of_passenger"`
	ETOD              *time.Time `db:"etod"`
	DepBoardingGateNo *string    `db:"dep_boarding_gate_no"`
	PSTD              *string    `db:"pstd"`
	Airline           *string    `db:"airline"`
	Destination       *string    `db:"destination"`
}

// FlightRecord is the wire shape shared by arrivals and departures. Fields
// that do not apply to the record's flight_type are serialized as null,
// never omitted.
type FlightRecord struct {
	Flight            string  `json:"flight"`
	OperationalStatus string  `json:"operational_status"`
	FlightType        string  `json:"flight_type"`
	FlightMode        string  `json:"flight_mode"`
	NumberOfPassenger int     `json:"number_of_passenger"`
	Airline           *string `json:"airline"`

	STOA *string `json:"stoa"`
	ETOA *string `json:"etoa"`
	STOD *string `json:"stod"`
	ETOD *string `json:"etod"`

	PSTA *int `json:"psta"`
	PSTD *int `json:"pstd"`

	ArrivalBeltNo     *string `json:"arrival_belt_no"`
	DepBoardingGateNo *string `json:"dep_boarding_gate_no"`

	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
}

// EstimatedTime returns the serialized effective timestamp of the record.
func (r FlightRecord) EstimatedTime() string {
	if r.FlightType == FlightTypeDeparture {
		if r.ETOD != nil {
			return *r.ETOD
		}
		return ""
	}
	if r.ETOA != nil {
		return *r.ETOA
	}
	return ""
}
